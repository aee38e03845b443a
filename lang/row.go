package lang

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Row is a single entry of a [Container]: a value plus kind-specific
// metadata fields. It is implemented by [*ListRow], [*MemberRow],
// [*ParamRow], and [*MapRow].
//
// Field names may be given as canonical names or aliases; both address the
// same slot.
type Row interface {
	// Kind returns the row's type name, e.g. "ListRow".
	Kind() string

	// Get returns the value of the named field, or nil if it is absent.
	Get(name string) (Value, error)

	// Set assigns a single field. A nil value clears it.
	Set(name string, v any) error

	// Edit assigns several fields at once. Unknown names are an error.
	Edit(f Fields) error

	// EditLoose is like Edit but ignores unknown names.
	EditLoose(f Fields) error

	// EditCode parses code as exactly one row of this kind and applies its
	// fields as an edit.
	EditCode(code string) error

	// Fields returns the present fields keyed by canonical name.
	Fields() Fields

	// Parent returns the owning container, or nil if the row is detached.
	Parent() Container

	// Index returns the row's position in its parent, or -1 if detached.
	Index() (int, error)

	// Compare reports whether other matches the row. With existingOnly set,
	// fields absent from other are wildcards and nested containers match by
	// containment.
	Compare(other any, existingOnly bool) bool

	// Equal is Compare(other, false).
	Equal(other any) bool

	String() string

	row() *base
	fromCode(code string) (Row, error)
}

// base holds the storage shared by all row kinds.
type base struct {
	schema *schema
	cells  []Value
	parent Container
	self   Row
}

func newBase(s *schema, self Row) base {
	return base{schema: s, cells: make([]Value, len(s.fields)), self: self}
}

func (b *base) row() *base { return b }

// Kind returns the row's type name.
func (b *base) Kind() string { return b.schema.kind }

// Get returns the value of the named field.
func (b *base) Get(name string) (Value, error) {
	slot, err := b.schema.lookup(name)
	if err != nil {
		return nil, err
	}

	return b.cells[slot], nil
}

// Set assigns a single field.
func (b *base) Set(name string, v any) error {
	return b.edit(map[string]any{name: v}, true)
}

// Edit assigns the given fields, rejecting unknown names.
func (b *base) Edit(f Fields) error { return b.edit(f, true) }

// EditLoose assigns the given fields, skipping unknown names.
func (b *base) EditLoose(f Fields) error { return b.edit(f, false) }

// EditCode applies the fields of a single row parsed from code.
func (b *base) EditCode(code string) error {
	r, err := b.self.fromCode(code)
	if err != nil {
		return err
	}

	return b.edit(map[string]any(r.Fields()), true)
}

// Fields returns the present fields keyed by canonical name.
func (b *base) Fields() Fields {
	f := make(Fields, len(b.cells))

	for i, v := range b.cells {
		if v != nil {
			f[b.schema.fields[i].name] = v
		}
	}

	return f
}

// Parent returns the owning container.
func (b *base) Parent() Container { return b.parent }

// Index returns the position of the row within its parent.
func (b *base) Index() (int, error) {
	if b.parent == nil {
		return -1, nil
	}

	if i := b.parent.indexOf(b.self); i >= 0 {
		return i, nil
	}

	return -1, ErrOwnershipInvariant.With(
		slog.String("row", b.schema.kind),
		slog.String("parent", b.parent.Kind()),
	)
}

// Equal reports whether other is structurally identical to the row.
func (b *base) Equal(other any) bool { return b.Compare(other, false) }

// Compare matches the row against another row of the same kind, a field
// mapping, a [Pair] (map rows), or code parsed as a single row.
func (b *base) Compare(other any, existingOnly bool) bool {
	switch o := other.(type) {
	case Row:
		ob := o.row()
		if ob.schema != b.schema {
			return false
		}

		for i, v := range b.cells {
			if !compareValue(v, ob.cells[i], existingOnly) {
				return false
			}
		}

		return true

	case Fields:
		return b.compareMap(o, existingOnly)
	case Loose:
		return b.compareMap(o, existingOnly)
	case map[string]any:
		return b.compareMap(o, existingOnly)

	case Pair:
		if b.schema != mapSchema {
			return false
		}

		return b.compareMap(map[string]any{"key": o.Key, "value": o.Value}, existingOnly)

	case string:
		r, err := b.self.fromCode(o)
		if err != nil {
			return false
		}

		return b.Compare(r, existingOnly)
	}

	return false
}

func (b *base) compareMap(in map[string]any, existingOnly bool) bool {
	for name, v := range in {
		if _, ok := b.schema.slot[name]; !ok && v != nil {
			// unknown fields are never present on the row
			return false
		}
	}

	vals, err := b.schema.resolve(in, false)
	if err != nil {
		return false
	}

	for i, v := range b.cells {
		o, ok := vals[i]
		if !ok {
			if existingOnly {
				continue
			}

			o = nil
		}

		if !compareValue(v, o, existingOnly) {
			return false
		}
	}

	return true
}

// compareValue compares a row's field value vs against vo. Text compares
// byte-wise; if either side is a container the container decides.
func compareValue(vs Value, vo any, existingOnly bool) bool {
	ov, err := toValue(vo)
	if err != nil {
		return false
	}

	if existingOnly && ov == nil {
		return true
	}

	if c, ok := vs.(Container); ok {
		if ov == nil {
			return false
		}

		return c.compareTo(ov, existingOnly)
	}

	if c, ok := ov.(Container); ok {
		if vs == nil {
			return false
		}

		return c.compareTo(vs, existingOnly)
	}

	return vs == ov
}

// String returns a representation such as
// ListRow[0](value='12', visibility=None, namespace='A').
func (b *base) String() string {
	var sb strings.Builder

	sb.WriteString(b.schema.kind)
	sb.WriteByte('[')

	if i, err := b.Index(); err == nil && i >= 0 {
		sb.WriteString(strconv.Itoa(i))
	} else {
		sb.WriteString("DANGLING")
	}

	sb.WriteString("](")

	for i, f := range b.schema.fields {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(f.name)
		sb.WriteByte('=')
		sb.WriteString(valueString(b.cells[i]))
	}

	sb.WriteByte(')')

	return sb.String()
}

// edit validates every field and the prospective required fields before
// assigning anything.
func (b *base) edit(in map[string]any, strict bool) error {
	vals, err := b.schema.resolve(in, strict)
	if err != nil {
		return err
	}

	for i, f := range b.schema.fields {
		if !f.required {
			continue
		}

		v, ok := vals[i]
		if !ok {
			v = b.cells[i]
		}

		if v == nil {
			return ErrMissingRequiredField.With(
				slog.String("row", b.schema.kind),
				slog.String("field", f.name),
			)
		}
	}

	for _, slot := range slices.Sorted(maps.Keys(vals)) {
		b.put(slot, vals[slot])
	}

	return nil
}

// put assigns v to a slot, adopting container values. A container owned by
// another row is deep-copied first. The previous container value is
// released unless another slot still holds it.
func (b *base) put(slot int, v Value) {
	if c, ok := v.(Container); ok {
		switch owner := c.ParentRow(); owner {
		case nil:
			c.setOwner(b.self)
		case b.self:
		default:
			c = c.clone()
			c.setOwner(b.self)
			v = c
		}
	}

	old := b.cells[slot]
	b.cells[slot] = v

	if oc, ok := old.(Container); ok && !sameValue(old, v) && !b.holds(oc) {
		oc.setOwner(nil)
	}
}

func (b *base) holds(c Container) bool {
	for _, v := range b.cells {
		if sameValue(v, c) {
			return true
		}
	}

	return false
}

// copyFor returns a detached deep copy of b's cells owned by self.
func (b *base) copyFor(self Row) base {
	c := newBase(b.schema, self)

	for i, v := range b.cells {
		if vc, ok := v.(Container); ok {
			clone := vc.clone()
			clone.setOwner(self)
			v = clone
		}

		c.cells[i] = v
	}

	return c
}

func (b *base) text(slot int) string {
	if t, ok := b.cells[slot].(Text); ok {
		return string(t)
	}

	return ""
}

// ListRow is an entry of a [*List]: a value with an optional visibility and
// namespace binding.
type ListRow struct{ base }

// NewListRow returns a detached list row with the given fields.
func NewListRow(f Fields) (*ListRow, error) { return buildListRow(f, true) }

func buildListRow(in map[string]any, strict bool) (*ListRow, error) {
	r := &ListRow{}
	r.base = newBase(listSchema, r)

	if err := r.edit(in, strict); err != nil {
		return nil, err
	}

	return r, nil
}

// ListRowFrom parses code as a single list item.
func ListRowFrom(code string) (*ListRow, error) {
	return rowFrom(listRows, code)
}

func (r *ListRow) fromCode(code string) (Row, error) { return ListRowFrom(code) }

// Copy returns a detached deep copy of r.
func (r *ListRow) Copy() *ListRow {
	c := &ListRow{}
	c.base = r.copyFor(c)

	return c
}

// Value returns the row's value.
func (r *ListRow) Value() Value { return r.cells[listValue] }

// Visibility returns the visibility keyword, or "".
func (r *ListRow) Visibility() string { return r.text(listVisibility) }

// Namespace returns the bound name, or "".
func (r *ListRow) Namespace() string { return r.text(listNamespace) }

// SetValue assigns the row's value.
func (r *ListRow) SetValue(v any) error { return r.Set("value", v) }

// SetNamespace assigns the bound name. An empty name clears it.
func (r *ListRow) SetNamespace(name string) error {
	return r.Set("namespace", textOrNil(name))
}

// SetVisibility assigns the visibility keyword. An empty keyword clears it.
func (r *ListRow) SetVisibility(vis string) error {
	return r.Set("visibility", textOrNil(vis))
}

// MemberRow is an entry of an [*Object] or [*Template].
type MemberRow struct{ base }

// NewMemberRow returns a detached member row with the given fields.
func NewMemberRow(f Fields) (*MemberRow, error) { return buildMemberRow(f, true) }

func buildMemberRow(in map[string]any, strict bool) (*MemberRow, error) {
	r := &MemberRow{}
	r.base = newBase(memberSchema, r)

	if err := r.edit(in, strict); err != nil {
		return nil, err
	}

	return r, nil
}

// MemberRowFrom parses code as a single object member.
func MemberRowFrom(code string) (*MemberRow, error) {
	return rowFrom(memberRows, code)
}

func (r *MemberRow) fromCode(code string) (Row, error) { return MemberRowFrom(code) }

// Copy returns a detached deep copy of r.
func (r *MemberRow) Copy() *MemberRow {
	c := &MemberRow{}
	c.base = r.copyFor(c)

	return c
}

// Value returns the member's value.
func (r *MemberRow) Value() Value { return r.cells[memberValue] }

// Member returns the member name, or "" for a positional argument.
func (r *MemberRow) Member() string { return r.text(memberMember) }

// Type returns the type annotation, or "".
func (r *MemberRow) Type() string { return r.text(memberType) }

// Visibility returns the visibility keyword, or "".
func (r *MemberRow) Visibility() string { return r.text(memberVisibility) }

// Namespace returns the bound name, or "".
func (r *MemberRow) Namespace() string { return r.text(memberNamespace) }

// SetValue assigns the member's value.
func (r *MemberRow) SetValue(v any) error { return r.Set("value", v) }

// SetMember assigns the member name. An empty name clears it.
func (r *MemberRow) SetMember(name string) error {
	return r.Set("member", textOrNil(name))
}

// SetType assigns the type annotation. An empty type clears it.
func (r *MemberRow) SetType(typ string) error {
	return r.Set("type", textOrNil(typ))
}

// ParamRow is a template parameter with an optional type and default.
type ParamRow struct{ base }

// NewParamRow returns a detached parameter row with the given fields.
func NewParamRow(f Fields) (*ParamRow, error) { return buildParamRow(f, true) }

func buildParamRow(in map[string]any, strict bool) (*ParamRow, error) {
	r := &ParamRow{}
	r.base = newBase(paramSchema, r)

	if err := r.edit(in, strict); err != nil {
		return nil, err
	}

	return r, nil
}

// ParamRowFrom parses code as a single template parameter.
func ParamRowFrom(code string) (*ParamRow, error) {
	return rowFrom(paramRows, code)
}

func (r *ParamRow) fromCode(code string) (Row, error) { return ParamRowFrom(code) }

// Copy returns a detached deep copy of r.
func (r *ParamRow) Copy() *ParamRow {
	c := &ParamRow{}
	c.base = r.copyFor(c)

	return c
}

// Param returns the parameter name.
func (r *ParamRow) Param() string { return r.text(paramParam) }

// Type returns the type annotation, or "".
func (r *ParamRow) Type() string { return r.text(paramType) }

// Value returns the default value, or nil.
func (r *ParamRow) Value() Value { return r.cells[paramValue] }

// SetValue assigns the default value.
func (r *ParamRow) SetValue(v any) error { return r.Set("value", v) }

// MapRow is a key/value entry of a [*Map].
type MapRow struct{ base }

// NewMapRow returns a detached map row with the given fields.
func NewMapRow(f Fields) (*MapRow, error) { return buildMapRow(f, true) }

func buildMapRow(in map[string]any, strict bool) (*MapRow, error) {
	r := &MapRow{}
	r.base = newBase(mapSchema, r)

	if err := r.edit(in, strict); err != nil {
		return nil, err
	}

	return r, nil
}

func pairRow(p Pair) (*MapRow, error) {
	return buildMapRow(map[string]any{"key": p.Key, "value": p.Value}, true)
}

// MapRowFrom parses code such as ('a', 1) as a single map entry.
func MapRowFrom(code string) (*MapRow, error) {
	return rowFrom(mapRows, code)
}

func (r *MapRow) fromCode(code string) (Row, error) { return MapRowFrom(code) }

// Copy returns a detached deep copy of r.
func (r *MapRow) Copy() *MapRow {
	c := &MapRow{}
	c.base = r.copyFor(c)

	return c
}

// Key returns the entry's key.
func (r *MapRow) Key() Value { return r.cells[mapKey] }

// Value returns the entry's value.
func (r *MapRow) Value() Value { return r.cells[mapValue] }

// SetKey assigns the entry's key.
func (r *MapRow) SetKey(k any) error { return r.Set("key", k) }

// SetValue assigns the entry's value.
func (r *MapRow) SetValue(v any) error { return r.Set("value", v) }

// EditPair assigns both key and value.
func (r *MapRow) EditPair(p Pair) error {
	return r.edit(map[string]any{"key": p.Key, "value": p.Value}, true)
}

// keyMatches reports whether the row's key is key, either verbatim or as
// the content of a quoted string.
func (r *MapRow) keyMatches(key string) bool {
	k, ok := r.cells[mapKey].(Text)
	if !ok {
		return false
	}

	if string(k) == key {
		return true
	}

	if u, err := strconv.Unquote(string(k)); err == nil && u == key {
		return true
	}

	if n := len(k); n >= 2 && k[0] == '\'' && k[n-1] == '\'' {
		return string(k[1:n-1]) == key
	}

	return false
}

func textOrNil(s string) any {
	if s == "" {
		return nil
	}

	return Text(s)
}
