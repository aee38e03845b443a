package lang

import (
	"github.com/ardnew/ndfkit/lang/parser"
)

// converter builds model entities from syntax nodes. A tree parsed
// leniently may contain ERROR nodes: in item positions they become text
// rows, in parameter and pair positions they are dropped.
type converter struct {
	rows int
}

// root converts a source_file node to a root list.
func (c *converter) root(n *parser.Node) (*List, error) {
	l := NewRoot()

	if err := fill(c, &l.seq, listRows, n); err != nil {
		return nil, err
	}

	return l, nil
}

// fill appends the rows converted from the named children of n to s.
func fill[R Row](c *converter, s *seq[R], k *rowKind[R], n *parser.Node) error {
	for _, ch := range named(n) {
		r, ok, err := k.node(c, ch)
		if err != nil {
			return err
		}

		if ok {
			s.rows = append(s.rows, r)
			s.attach(r)
		}
	}

	return nil
}

// item collects the fields of a statement or list item, stamping the
// metadata of wrapper nodes before converting the wrapped value.
func (c *converter) item(n *parser.Node, f map[string]any) error {
	if n == nil {
		f["value"] = Text("")

		return nil
	}

	switch n.Kind() {
	case parser.KindVisibility:
		f["visibility"] = Text(n.Field("type").Text())

		return c.item(n.Field("item"), f)

	case parser.KindAssignment:
		f["namespace"] = Text(n.Field("name").Text())
		n = n.Field("value")

	case parser.KindTemplate:
		f["namespace"] = Text(n.Field("name").Text())

		t, err := c.template(n)
		if err != nil {
			return err
		}

		f["value"] = t

		return nil
	}

	v, err := c.value(n)
	if err != nil {
		return err
	}

	f["value"] = v

	return nil
}

// value converts an expression node. Containers are built recursively;
// everything else is kept as its source text.
func (c *converter) value(n *parser.Node) (Value, error) {
	if n == nil {
		return Text(""), nil
	}

	switch n.Kind() {
	case parser.KindObject:
		o := NewObject(n.Field("type").Text())
		if err := fill(c, &o.seq, memberRows, n.Field("members")); err != nil {
			return nil, err
		}

		return o, nil

	case parser.KindList, parser.KindVectorType:
		l := NewList()
		l.Type = n.Field("type").Text()

		if err := fill(c, &l.seq, listRows, n.Field("items")); err != nil {
			return nil, err
		}

		return l, nil

	case parser.KindMap:
		m := NewMap()
		if err := fill(c, &m.seq, mapRows, n.Field("pairs")); err != nil {
			return nil, err
		}

		return m, nil
	}

	return Text(n.Text()), nil
}

func (c *converter) template(n *parser.Node) (*Template, error) {
	t := NewTemplate(n.Field("type").Text())

	if err := fill(c, &t.Params.seq, paramRows, n.Field("params")); err != nil {
		return nil, err
	}

	if err := fill(c, &t.seq, memberRows, n.Field("members")); err != nil {
		return nil, err
	}

	return t, nil
}

func (c *converter) listRow(n *parser.Node) (*ListRow, bool, error) {
	f := map[string]any{}
	if err := c.item(n, f); err != nil {
		return nil, false, err
	}

	r, err := buildListRow(f, true)
	if err != nil {
		return nil, false, err
	}

	c.rows++

	return r, true, nil
}

func (c *converter) memberRow(n *parser.Node) (*MemberRow, bool, error) {
	f := map[string]any{}

	if n.Kind() == parser.KindMember {
		if name := n.Field("name"); name != nil {
			f["member"] = Text(name.Text())
		}

		if typ := n.Field("type"); typ != nil {
			f["type"] = Text(typ.Text())
		}

		n = n.Field("value")
	}

	if err := c.item(n, f); err != nil {
		return nil, false, err
	}

	r, err := buildMemberRow(f, true)
	if err != nil {
		return nil, false, err
	}

	c.rows++

	return r, true, nil
}

func (c *converter) paramRow(n *parser.Node) (*ParamRow, bool, error) {
	if n.Kind() != parser.KindParam {
		return nil, false, nil
	}

	f := map[string]any{"param": Text(n.Field("name").Text())}

	if typ := n.Field("type"); typ != nil {
		f["type"] = Text(typ.Text())
	}

	if v := n.Field("value"); v != nil {
		val, err := c.value(v)
		if err != nil {
			return nil, false, err
		}

		f["value"] = val
	}

	r, err := buildParamRow(f, true)
	if err != nil {
		return nil, false, err
	}

	c.rows++

	return r, true, nil
}

func (c *converter) mapRow(n *parser.Node) (*MapRow, bool, error) {
	if n.Kind() != parser.KindPair {
		return nil, false, nil
	}

	key, err := c.value(n.Field("left"))
	if err != nil {
		return nil, false, err
	}

	val, err := c.value(n.Field("right"))
	if err != nil {
		return nil, false, err
	}

	r, err := buildMapRow(map[string]any{"key": key, "value": val}, true)
	if err != nil {
		return nil, false, err
	}

	c.rows++

	return r, true, nil
}

// exprValue parses code as a single statement and returns its value.
func exprValue(code string) (Value, error) {
	n, err := Entry(ShapeRoot, code)
	if err != nil {
		return nil, err
	}

	f := map[string]any{}
	if err := (&converter{}).item(n, f); err != nil {
		return nil, err
	}

	v, _ := f["value"].(Value)

	return v, nil
}
