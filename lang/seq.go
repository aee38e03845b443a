package lang

import (
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/ndfkit/lang/parser"
)

// rowKind binds a row type to its schema, fragment shape, and converters.
type rowKind[R Row] struct {
	schema *schema
	shape  Shape // rows added to a container
	single Shape // a row parsed on its own
	build  func(in map[string]any, strict bool) (R, error)
	node   func(c *converter, n *parser.Node) (R, bool, error)
	copy   func(R) R
	pair   func(Pair) (R, error)
}

var (
	listRows   *rowKind[*ListRow]
	memberRows *rowKind[*MemberRow]
	paramRows  *rowKind[*ParamRow]
	mapRows    *rowKind[*MapRow]
)

func init() {
	listRows = &rowKind[*ListRow]{
		schema: listSchema,
		shape:  ShapeList,
		single: ShapeRoot,
		build:  buildListRow,
		node:   (*converter).listRow,
		copy:   (*ListRow).Copy,
	}
	memberRows = &rowKind[*MemberRow]{
		schema: memberSchema,
		shape:  ShapeMember,
		single: ShapeMember,
		build:  buildMemberRow,
		node:   (*converter).memberRow,
		copy:   (*MemberRow).Copy,
	}
	paramRows = &rowKind[*ParamRow]{
		schema: paramSchema,
		shape:  ShapeParam,
		single: ShapeParam,
		build:  buildParamRow,
		node:   (*converter).paramRow,
		copy:   (*ParamRow).Copy,
	}
	mapRows = &rowKind[*MapRow]{
		schema: mapSchema,
		shape:  ShapeMap,
		single: ShapeMap,
		build:  buildMapRow,
		node:   (*converter).mapRow,
		copy:   (*MapRow).Copy,
		pair:   pairRow,
	}
}

// rowFrom parses code as exactly one row of kind k.
func rowFrom[R Row](k *rowKind[R], code string) (R, error) {
	var zero R

	n, err := Entry(k.single, code)
	if err != nil {
		return zero, err
	}

	r, ok, err := k.node(&converter{}, n)
	if err != nil {
		return zero, err
	}

	if !ok {
		return zero, ErrCardinalityMismatch.withHint("code yields no row")
	}

	return r, nil
}

// Result carries the rows affected by a container mutation.
type Result[R Row] struct {
	rows   []R
	single bool
}

// Single reports whether exactly one row was supplied directly: one row,
// one field set, one pair, or code yielding exactly one entry.
func (r Result[R]) Single() bool { return r.single }

// Row returns the first affected row, or the zero value if there is none.
func (r Result[R]) Row() R {
	if len(r.rows) == 0 {
		var zero R

		return zero
	}

	return r.rows[0]
}

// Rows returns all affected rows in order.
func (r Result[R]) Rows() []R { return r.rows }

// seq is the ordered row storage shared by all containers.
type seq[R Row] struct {
	rows   []R
	parent Row
	self   Container
	kind   *rowKind[R]
	shape  Shape
}

func (s *seq[R]) init(self Container, k *rowKind[R], shape Shape) {
	s.self = self
	s.kind = k
	s.shape = shape
}

// Len returns the number of rows.
func (s *seq[R]) Len() int { return len(s.rows) }

// At returns the row at index i. It panics if i is out of range.
func (s *seq[R]) At(i int) R { return s.rows[i] }

// Rows returns a copy of the row slice.
func (s *seq[R]) Rows() []R { return slices.Clone(s.rows) }

// All iterates the rows with their indices.
func (s *seq[R]) All() iter.Seq2[int, R] {
	return func(yield func(int, R) bool) {
		for i, r := range s.rows {
			if !yield(i, r) {
				return
			}
		}
	}
}

// ParentRow returns the row owning the container, or nil.
func (s *seq[R]) ParentRow() Row { return s.parent }

func (s *seq[R]) setOwner(r Row) { s.parent = r }

func (s *seq[R]) rowAt(i int) Row { return s.rows[i] }

func (s *seq[R]) indexOf(r Row) int {
	if r == nil {
		return -1
	}

	b := r.row()

	return slices.IndexFunc(s.rows, func(x R) bool { return x.row() == b })
}

// Contains reports whether r itself is a row of the container.
func (s *seq[R]) Contains(r R) bool { return !absent(r) && s.indexOf(r) >= 0 }

// absent reports whether r is the nil row of its kind.
func absent[R Row](r R) bool {
	var zero R

	return any(r) == any(zero)
}

// Compare matches the container against another container of the same
// kind, a slice of rows or field sets, or code.
func (s *seq[R]) Compare(other any, existingOnly bool) bool {
	return s.self.compareTo(other, existingOnly)
}

// Equal is Compare(other, false).
func (s *seq[R]) Equal(other any) bool { return s.Compare(other, false) }

// Add appends rows built from inputs. See [seq.Insert].
func (s *seq[R]) Add(inputs ...any) (Result[R], error) {
	return s.Insert(len(s.rows), inputs...)
}

// Insert places rows built from inputs before index i. Negative indices
// count from the end; out-of-range indices are clamped.
//
// Each input is an existing row, [Fields] or [Loose] values, code of one or
// more rows, or (maps only) a [Pair]. Rows owned by any container are
// deep-copied. The container is unchanged if any input is invalid.
func (s *seq[R]) Insert(i int, inputs ...any) (Result[R], error) {
	rows, single, err := s.convert(inputs, nil)
	if err != nil {
		return Result[R]{}, err
	}

	if i < 0 {
		i += len(s.rows)
	}

	i = max(0, min(i, len(s.rows)))

	s.rows = slices.Insert(s.rows, i, rows...)
	for _, r := range rows {
		s.attach(r)
	}

	return Result[R]{rows: rows, single: single}, nil
}

// Replace substitutes the row at index i with exactly one row built from
// inputs. A row replacing itself is kept as is.
func (s *seq[R]) Replace(i int, inputs ...any) (Result[R], error) {
	i, err := s.index(i)
	if err != nil {
		return Result[R]{}, err
	}

	cur := s.rows[i]

	rows, single, err := s.convert(inputs, func(r R) bool {
		return r.row() == cur.row()
	})
	if err != nil {
		return Result[R]{}, err
	}

	if len(rows) != 1 {
		return Result[R]{}, ErrCardinalityMismatch.
			With(slog.Int("rows", len(rows))).
			withHint("replacing a single index requires exactly one row")
	}

	if rows[0].row() != cur.row() {
		s.detach(cur)
		s.rows[i] = rows[0]
		s.attach(rows[0])
	}

	return Result[R]{rows: rows, single: single}, nil
}

// ReplaceRange substitutes the rows in [start, end) with rows built from
// inputs. The range must not be empty.
func (s *seq[R]) ReplaceRange(start, end int, inputs ...any) (Result[R], error) {
	if err := s.span(start, end); err != nil {
		return Result[R]{}, err
	}

	if start == end {
		return Result[R]{}, ErrIndexOutOfRange.
			With(slog.Int("start", start), slog.Int("end", end)).
			withHint("empty range")
	}

	old := slices.Clone(s.rows[start:end])

	rows, single, err := s.convert(inputs, func(r R) bool {
		return slices.ContainsFunc(old, func(o R) bool { return o.row() == r.row() })
	})
	if err != nil {
		return Result[R]{}, err
	}

	s.rows = slices.Replace(s.rows, start, end, rows...)

	for _, o := range old {
		if !slices.ContainsFunc(rows, func(r R) bool { return r.row() == o.row() }) {
			s.detach(o)
		}
	}

	for _, r := range rows {
		s.attach(r)
	}

	return Result[R]{rows: rows, single: single}, nil
}

// Set assigns exactly one row built from input to index i.
func (s *seq[R]) Set(i int, input any) (R, error) {
	res, err := s.Replace(i, input)
	if err != nil {
		var zero R

		return zero, err
	}

	return res.Row(), nil
}

// Remove detaches and returns the row at index i.
func (s *seq[R]) Remove(i int) (R, error) {
	var zero R

	i, err := s.index(i)
	if err != nil {
		return zero, err
	}

	r := s.rows[i]
	s.rows = slices.Delete(s.rows, i, i+1)
	s.detach(r)

	return r, nil
}

// RemoveRange detaches and returns the rows in [start, end).
func (s *seq[R]) RemoveRange(start, end int) ([]R, error) {
	if err := s.span(start, end); err != nil {
		return nil, err
	}

	out := slices.Clone(s.rows[start:end])
	s.rows = slices.Delete(s.rows, start, end)

	for _, r := range out {
		s.detach(r)
	}

	return out, nil
}

// RemoveAt detaches and returns the rows at the given indices, in ascending
// index order. No row is removed if any index is out of range.
func (s *seq[R]) RemoveAt(indices ...int) ([]R, error) {
	at := make([]int, 0, len(indices))

	for _, i := range indices {
		j, err := s.index(i)
		if err != nil {
			return nil, err
		}

		at = append(at, j)
	}

	slices.Sort(at)
	at = slices.Compact(at)

	out := make([]R, len(at))
	for k, i := range at {
		out[k] = s.rows[i]
	}

	for k := len(at) - 1; k >= 0; k-- {
		s.rows = slices.Delete(s.rows, at[k], at[k]+1)
	}

	for _, r := range out {
		s.detach(r)
	}

	return out, nil
}

// FindByCond returns the first row satisfying pred. Without a match it
// returns ErrNotFound if strict is set, or the zero value otherwise.
func (s *seq[R]) FindByCond(pred func(R) bool, strict bool) (R, error) {
	for _, r := range s.rows {
		if pred(r) {
			return r, nil
		}
	}

	var zero R

	if strict {
		return zero, ErrNotFound.With(slog.String("container", s.self.Kind()))
	}

	return zero, nil
}

// MatchPattern iterates the rows matching a single-row pattern: a row,
// field values, a [Pair], or code. Absent pattern fields are wildcards.
func (s *seq[R]) MatchPattern(pattern any) (iter.Seq[R], error) {
	p, err := s.pattern(pattern)
	if err != nil {
		return nil, err
	}

	return func(yield func(R) bool) {
		for _, r := range s.rows {
			if r.Compare(p, true) && !yield(r) {
				return
			}
		}
	}, nil
}

func (s *seq[R]) pattern(pattern any) (any, error) {
	switch p := pattern.(type) {
	case R:
		return p, nil

	case Fields:
		return s.patternFields(p)
	case Loose:
		return s.patternFields(p)
	case map[string]any:
		return s.patternFields(p)

	case Pair:
		if s.kind.pair == nil {
			break
		}

		return p, nil

	case string:
		rows, err := s.fromCode(p)
		if err != nil {
			return nil, err
		}

		if len(rows) != 1 {
			return nil, ErrCardinalityMismatch.
				With(slog.Int("rows", len(rows))).
				withHint("pattern must denote exactly one row")
		}

		return rows[0], nil
	}

	return nil, ErrInvalidValue.With(slog.String("container", s.self.Kind()))
}

func (s *seq[R]) patternFields(f map[string]any) (any, error) {
	if _, err := s.kind.schema.resolve(f, false); err != nil {
		return nil, err
	}

	return f, nil
}

// byField returns the first row whose text in slot equals value.
func (s *seq[R]) byField(slot int, value string, strict bool) (R, error) {
	return s.byMatch(slot, strict, value, func(r R) bool {
		return r.row().text(slot) == value
	})
}

func (s *seq[R]) byMatch(
	slot int,
	strict bool,
	value string,
	match func(R) bool,
) (R, error) {
	if i := slices.IndexFunc(s.rows, match); i >= 0 {
		return s.rows[i], nil
	}

	var zero R

	if !strict {
		return zero, nil
	}

	name := s.kind.schema.fields[slot].name
	err := ErrNotFound.With(
		slog.String("container", s.self.Kind()),
		slog.String(name, value),
	)

	have := make([]string, 0, len(s.rows))
	for _, r := range s.rows {
		if t := r.row().text(slot); t != "" {
			have = append(have, t)
		}
	}

	hint := name + " " + strconv.Quote(value)
	if sug := suggest(value, have); sug != "" {
		hint += " " + sug
	}

	return zero, err.withHint(hint)
}

// removeBy removes the row found by lookup, if any.
func (s *seq[R]) removeBy(r R, err error) (R, error) {
	var zero R

	if err != nil || absent(r) {
		return zero, err
	}

	i := s.indexOf(r)
	if i < 0 {
		return zero, nil
	}

	return s.Remove(i)
}

// convert turns inputs into rows without touching the container. A row is
// reused unless it is owned elsewhere, or repeated within inputs, in which
// case a deep copy is used. keep names owned rows that may be reused.
func (s *seq[R]) convert(inputs []any, keep func(R) bool) ([]R, bool, error) {
	if len(inputs) == 0 {
		return nil, false, ErrAmbiguousArguments.
			With(slog.String("container", s.self.Kind())).
			withHint("no input")
	}

	var (
		out    []R
		single = len(inputs) == 1
	)

	for _, in := range inputs {
		switch x := in.(type) {
		case R:
			out = append(out, x)

		case Fields:
			r, err := s.kind.build(x, true)
			if err != nil {
				return nil, false, err
			}

			out = append(out, r)

		case map[string]any:
			r, err := s.kind.build(x, true)
			if err != nil {
				return nil, false, err
			}

			out = append(out, r)

		case Loose:
			r, err := s.kind.build(x, false)
			if err != nil {
				return nil, false, err
			}

			out = append(out, r)

		case Pair:
			if s.kind.pair == nil {
				return nil, false, s.unsupported(in)
			}

			r, err := s.kind.pair(x)
			if err != nil {
				return nil, false, err
			}

			out = append(out, r)

		case string:
			rows, err := s.fromCode(x)
			if err != nil {
				return nil, false, err
			}

			if len(rows) != 1 {
				single = false
			}

			out = append(out, rows...)

		default:
			return nil, false, s.unsupported(in)
		}
	}

	for i, r := range out {
		reused := slices.ContainsFunc(out[:i], func(o R) bool {
			return o.row() == r.row()
		})

		if reused || (r.Parent() != nil && (keep == nil || !keep(r))) {
			out[i] = s.kind.copy(r)
		}
	}

	return out, single, nil
}

func (s *seq[R]) unsupported(in any) *Error {
	return ErrInvalidValue.With(
		slog.String("container", s.self.Kind()),
		slog.String("input", typeName(in)),
	)
}

// fromCode parses code as rows of the container's shape.
func (s *seq[R]) fromCode(code string) ([]R, error) {
	nodes, err := entries(s.shape, code, false)
	if err != nil {
		return nil, err
	}

	c := &converter{}
	out := make([]R, 0, len(nodes))

	for _, n := range nodes {
		r, ok, err := s.kind.node(c, n)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, r)
		}
	}

	return out, nil
}

func (s *seq[R]) attach(r R) { r.row().parent = s.self }

func (s *seq[R]) detach(r R) {
	if b := r.row(); b.parent == s.self {
		b.parent = nil
	}
}

func (s *seq[R]) index(i int) (int, error) {
	j := i
	if j < 0 {
		j += len(s.rows)
	}

	if j < 0 || j >= len(s.rows) {
		return -1, ErrIndexOutOfRange.With(
			slog.String("container", s.self.Kind()),
			slog.Int("index", i),
			slog.Int("len", len(s.rows)),
		)
	}

	return j, nil
}

func (s *seq[R]) span(start, end int) error {
	if start < 0 || end > len(s.rows) || start > end {
		return ErrIndexOutOfRange.With(
			slog.String("container", s.self.Kind()),
			slog.Int("start", start),
			slog.Int("end", end),
			slog.Int("len", len(s.rows)),
		)
	}

	return nil
}

// copyFrom fills s with detached deep copies of src's rows.
func (s *seq[R]) copyFrom(src *seq[R]) {
	s.rows = make([]R, 0, len(src.rows))

	for _, r := range src.rows {
		c := s.kind.copy(r)
		s.attach(c)
		s.rows = append(s.rows, c)
	}
}

func (s *seq[R]) describe() string {
	var sb strings.Builder

	sb.WriteString(s.self.Kind())
	sb.WriteByte('[')

	for i, r := range s.rows {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(r.String())
	}

	sb.WriteByte(']')

	return sb.String()
}

// operand resolves the right-hand side of a container comparison to a peer
// of the same concrete type, when there is one, and the rows to compare.
func operand[C Container, R Row](s *seq[R], other any) (C, []any, bool) {
	var zero C

	switch o := other.(type) {
	case C:
		rows := make([]any, o.Len())
		for i := range rows {
			rows[i] = o.rowAt(i)
		}

		return o, rows, true

	case []R:
		return zero, anySlice(o), true
	case []Row:
		return zero, anySlice(o), true
	case []Fields:
		return zero, anySlice(o), true

	case Text:
		return operand[C](s, string(o))

	case string:
		if v, err := exprValue(o); err == nil {
			if c, ok := v.(C); ok {
				return operand[C](s, c)
			}
		}

		rows, err := s.fromCode(o)
		if err != nil {
			return zero, nil, false
		}

		return zero, anySlice(rows), true
	}

	return zero, nil, false
}

// compareRows compares rows pairwise in order, or with existingOnly set,
// requires every element of others to match some row.
func compareRows[R Row](rows []R, others []any, existingOnly bool) bool {
	if !existingOnly {
		if len(rows) != len(others) {
			return false
		}

		for i, o := range others {
			if !rows[i].Compare(o, false) {
				return false
			}
		}

		return true
	}

	for _, o := range others {
		if !slices.ContainsFunc(rows, func(r R) bool { return r.Compare(o, true) }) {
			return false
		}
	}

	return true
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}

	return out
}
