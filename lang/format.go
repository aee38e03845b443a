package lang

import (
	"cmp"
	"io"
	"log/slog"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultWidth is the default line width budget of the printer.
const DefaultWidth = 100

const indentUnit = "    "

// FormatOption configures [Format] and [Sprint].
type FormatOption func(*printer)

// WithWidth sets the line width budget used to choose between condensed
// and multi-line layout. Non-positive widths are ignored.
func WithWidth(width int) FormatOption {
	return func(p *printer) {
		if width > 0 {
			p.width = width
		}
	}
}

// Format writes the canonical source text of item to w. The item may be any
// [Value], any [Row], or a [Pair]. A root list prints its statements
// separated by blank lines and terminated by a newline.
func Format(w io.Writer, item any, opts ...FormatOption) error {
	p := &printer{width: DefaultWidth}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.item(item); err != nil {
		return err
	}

	_, err := io.WriteString(w, p.String())

	return err
}

// Sprint returns the canonical source text of item, or "" if item cannot be
// printed.
func Sprint(item any, opts ...FormatOption) string {
	var b strings.Builder

	if err := Format(&b, item, opts...); err != nil {
		return ""
	}

	return b.String()
}

type printer struct {
	strings.Builder

	width int
	depth int
}

func (p *printer) item(item any) error {
	switch x := item.(type) {
	case *List:
		if x != nil && x.IsRoot {
			p.root(x)

			return nil
		}

		p.value(x)

	case Value:
		p.value(x)

	case *ListRow:
		p.listRow(x)
	case *MemberRow:
		p.memberRow(x)
	case *ParamRow:
		p.paramRow(x)
	case *MapRow:
		p.pair(x)

	case Pair:
		r, err := pairRow(x)
		if err != nil {
			return err
		}

		p.pair(r)

	default:
		return ErrInvalidValue.With(slog.String("item", typeName(item)))
	}

	return nil
}

func (p *printer) root(l *List) {
	for i, r := range l.rows {
		if i > 0 {
			p.WriteString("\n\n")
		}

		p.listRow(r)
	}

	if len(l.rows) > 0 {
		p.WriteByte('\n')
	}
}

func (p *printer) value(v Value) {
	switch x := v.(type) {
	case Text:
		p.WriteString(string(x))
	case *Template:
		p.template(x, "_")
	case *Object:
		p.object(x)
	case *List:
		p.list(x)
	case *Params:
		p.params(x)
	case *Map:
		p.mapping(x)
	}
}

// entry writes the visibility and binding prefix of v, then v. A template
// takes its name from the binding.
func (p *printer) entry(vis, ns string, v Value) {
	if vis != "" {
		p.WriteString(vis)
		p.WriteByte(' ')
	}

	if t, ok := v.(*Template); ok {
		p.template(t, cmp.Or(ns, "_"))

		return
	}

	if ns != "" {
		p.WriteString(ns)
		p.WriteString(" is ")
	}

	p.value(v)
}

func (p *printer) listRow(r *ListRow) {
	p.entry(r.Visibility(), r.Namespace(), r.Value())
}

func (p *printer) memberRow(r *MemberRow) {
	if m := r.Member(); m != "" {
		p.WriteString(m)

		if t := r.Type(); t != "" {
			p.WriteString(": ")
			p.WriteString(t)
		}

		p.WriteString(" = ")
	}

	p.entry(r.Visibility(), r.Namespace(), r.Value())
}

func (p *printer) paramRow(r *ParamRow) {
	p.WriteString(r.Param())

	if t := r.Type(); t != "" {
		p.WriteString(": ")
		p.WriteString(t)
	}

	if v := r.Value(); v != nil {
		p.WriteString(" = ")
		p.value(v)
	}
}

// pair writes a map row as (key, value), splitting it over three lines if
// either side is a container or the pair does not fit.
func (p *printer) pair(r *MapRow) {
	cells := r.cells
	multi := false

	total := 0
	for _, v := range cells {
		if _, ok := v.(Container); ok {
			multi = true
		}

		total += textWidth(v) + 2
	}

	multi = multi || total > p.space()

	p.block("(", ")", ",", len(cells), multi, func(i int) { p.value(cells[i]) })
}

func (p *printer) list(l *List) {
	p.block(l.Type+"[", "]", ",", len(l.rows), p.multiline(l), func(i int) {
		p.listRow(l.rows[i])
	})
}

func (p *printer) object(o *Object) {
	p.block(o.Type+"(", ")", "", len(o.rows), true, func(i int) {
		p.memberRow(o.rows[i])
	})
}

func (p *printer) params(ps *Params) {
	p.block("[", "]", ",", ps.Len(), true, func(i int) {
		p.paramRow(ps.rows[i])
	})
}

func (p *printer) template(t *Template, name string) {
	p.WriteString("template ")
	p.WriteString(name)

	if t.Params != nil {
		p.params(t.Params)
	} else {
		p.WriteString("[]")
	}

	p.WriteString(" is ")
	p.object(&t.Object)
}

func (p *printer) mapping(m *Map) {
	p.block("MAP[", "]", ",", len(m.rows), p.multiline(m), func(i int) {
		p.pair(m.rows[i])
	})
}

// block writes n rows between open and close, either condensed on the
// current line or one per line indented one level deeper.
func (p *printer) block(open, closer, sep string, n int, multi bool, row func(int)) {
	p.WriteString(open)

	if n == 0 {
		p.WriteString(closer)

		return
	}

	if !multi {
		for i := range n {
			if i > 0 {
				p.WriteString(sep)
				p.WriteByte(' ')
			}

			row(i)
		}

		p.WriteString(closer)

		return
	}

	p.depth++

	for i := range n {
		p.newline()
		row(i)

		if i < n-1 {
			p.WriteString(sep)
		}
	}

	p.depth--

	p.newline()
	p.WriteString(closer)
}

func (p *printer) newline() {
	p.WriteByte('\n')

	for range p.depth {
		p.WriteString(indentUnit)
	}
}

func (p *printer) space() int { return p.width - p.depth*len(indentUnit) }

// multiline reports whether c needs one row per line: some row carries a
// view field or a container, or the condensed rows exceed the space left.
func (p *printer) multiline(c Container) bool {
	total := 0

	for i := range c.Len() {
		b := c.rowAt(i).row()

		for j, f := range b.schema.fields {
			v := b.cells[j]
			if v == nil {
				continue
			}

			if _, ok := v.(Container); ok || f.view {
				return true
			}
		}

		total += rowWidth(b) + 2
	}

	return total > p.space()
}

func rowWidth(b *base) int {
	w := 0
	for _, v := range b.cells {
		w += textWidth(v)
	}

	if b.schema == mapSchema {
		w += 4 // "(" ", " ")"
	}

	return w
}

// columns measures display width with ambiguous-width runes counted as
// narrow, so layout does not depend on the locale.
var columns = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false

	return c
}()

// textWidth returns the display columns of a text atom.
func textWidth(v Value) int {
	if t, ok := v.(Text); ok {
		return columns.StringWidth(string(t))
	}

	return 0
}
