package lang

// List is a sequence of [*ListRow]. A root list holds the statements of a
// whole document; other lists are bracketed, optionally typed vectors.
type List struct {
	seq[*ListRow]

	IsRoot bool
	Type   string // element type of a typed vector, or ""
}

// NewList returns an empty, detached inline list.
func NewList() *List {
	l := &List{}
	l.init(l, listRows, ShapeList)

	return l
}

// NewRoot returns an empty document.
func NewRoot() *List {
	l := &List{IsRoot: true}
	l.init(l, listRows, ShapeRoot)

	return l
}

func (*List) isValue() {}

// Kind returns "List".
func (*List) Kind() string { return "List" }

func (l *List) String() string { return l.describe() }

// Copy returns a detached deep copy of l.
func (l *List) Copy() *List {
	c := &List{IsRoot: l.IsRoot, Type: l.Type}
	c.init(c, listRows, l.shape)
	c.copyFrom(&l.seq)

	return c
}

func (l *List) clone() Container { return l.Copy() }

func (l *List) compareTo(other any, existingOnly bool) bool {
	peer, rows, ok := operand[*List](&l.seq, other)
	if !ok {
		return false
	}

	var typ string
	if peer != nil {
		typ = peer.Type
	}

	if (!existingOnly || typ != "") && typ != l.Type {
		return false
	}

	return compareRows(l.rows, rows, existingOnly)
}

// ByNamespace returns the first row bound to name.
func (l *List) ByNamespace(name string, strict bool) (*ListRow, error) {
	return l.byField(listNamespace, name, strict)
}

// RemoveByNamespace removes the first row bound to name.
func (l *List) RemoveByNamespace(name string, strict bool) (*ListRow, error) {
	return l.removeBy(l.ByNamespace(name, strict))
}

// Object is a typed sequence of [*MemberRow].
type Object struct {
	seq[*MemberRow]

	Type string
}

// NewObject returns an empty, detached object of the given type.
func NewObject(typ string) *Object {
	o := &Object{Type: typ}
	o.init(o, memberRows, ShapeMember)

	return o
}

func (*Object) isValue() {}

// Kind returns "Object".
func (*Object) Kind() string { return "Object" }

func (o *Object) String() string { return o.describe() }

// Copy returns a detached deep copy of o.
func (o *Object) Copy() *Object {
	c := &Object{Type: o.Type}
	c.init(c, memberRows, ShapeMember)
	c.copyFrom(&o.seq)

	return c
}

func (o *Object) clone() Container { return o.Copy() }

func (o *Object) compareTo(other any, existingOnly bool) bool {
	peer, rows, ok := operand[*Object](&o.seq, other)
	if !ok {
		return false
	}

	return o.compareObject(peer, rows, existingOnly)
}

func (o *Object) compareObject(peer *Object, rows []any, existingOnly bool) bool {
	var typ string
	if peer != nil {
		typ = peer.Type
	}

	if (!existingOnly || typ != "") && typ != o.Type {
		return false
	}

	return compareRows(o.rows, rows, existingOnly)
}

// ByNamespace returns the first member bound to name.
func (o *Object) ByNamespace(name string, strict bool) (*MemberRow, error) {
	return o.byField(memberNamespace, name, strict)
}

// ByMember returns the first member with the given member name.
func (o *Object) ByMember(name string, strict bool) (*MemberRow, error) {
	return o.byField(memberMember, name, strict)
}

// RemoveByNamespace removes the first member bound to name.
func (o *Object) RemoveByNamespace(name string, strict bool) (*MemberRow, error) {
	return o.removeBy(o.ByNamespace(name, strict))
}

// RemoveByMember removes the first member with the given member name.
func (o *Object) RemoveByMember(name string, strict bool) (*MemberRow, error) {
	return o.removeBy(o.ByMember(name, strict))
}

// Template is an [Object] with a parameter list. Its name is the namespace
// of the row holding it.
type Template struct {
	Object

	Params *Params
}

// NewTemplate returns an empty, detached template of the given type.
func NewTemplate(typ string) *Template {
	t := &Template{Object: Object{Type: typ}, Params: NewParams()}
	t.init(t, memberRows, ShapeMember)

	return t
}

// Kind returns "Template".
func (*Template) Kind() string { return "Template" }

func (t *Template) String() string {
	return t.describe() + "(params=" + t.Params.String() + ")"
}

// Copy returns a detached deep copy of t.
func (t *Template) Copy() *Template {
	c := &Template{Object: Object{Type: t.Type}, Params: t.Params.Copy()}
	c.init(c, memberRows, ShapeMember)
	c.copyFrom(&t.seq)

	return c
}

func (t *Template) clone() Container { return t.Copy() }

func (t *Template) compareTo(other any, existingOnly bool) bool {
	peer, rows, ok := operand[*Template](&t.seq, other)
	if !ok {
		return false
	}

	if peer == nil {
		if !existingOnly && t.Params.Len() > 0 {
			return false
		}

		return t.compareObject(nil, rows, existingOnly)
	}

	return t.compareObject(&peer.Object, rows, existingOnly) &&
		t.Params.compareTo(peer.Params, existingOnly)
}

// Params is the parameter list of a [*Template].
type Params struct {
	seq[*ParamRow]
}

// NewParams returns an empty, detached parameter list.
func NewParams() *Params {
	p := &Params{}
	p.init(p, paramRows, ShapeParam)

	return p
}

func (*Params) isValue() {}

// Kind returns "Params".
func (*Params) Kind() string { return "Params" }

func (p *Params) String() string { return p.describe() }

// Copy returns a detached deep copy of p.
func (p *Params) Copy() *Params {
	c := NewParams()
	c.copyFrom(&p.seq)

	return c
}

func (p *Params) clone() Container { return p.Copy() }

func (p *Params) compareTo(other any, existingOnly bool) bool {
	_, rows, ok := operand[*Params](&p.seq, other)
	if !ok {
		return false
	}

	return compareRows(p.rows, rows, existingOnly)
}

// ByParam returns the first parameter with the given name.
func (p *Params) ByParam(name string, strict bool) (*ParamRow, error) {
	return p.byField(paramParam, name, strict)
}

// RemoveByParam removes the first parameter with the given name.
func (p *Params) RemoveByParam(name string, strict bool) (*ParamRow, error) {
	return p.removeBy(p.ByParam(name, strict))
}

// Map is an ordered sequence of [*MapRow] key/value pairs.
type Map struct {
	seq[*MapRow]
}

// NewMap returns an empty, detached map.
func NewMap() *Map {
	m := &Map{}
	m.init(m, mapRows, ShapeMap)

	return m
}

func (*Map) isValue() {}

// Kind returns "Map".
func (*Map) Kind() string { return "Map" }

func (m *Map) String() string { return m.describe() }

// Copy returns a detached deep copy of m.
func (m *Map) Copy() *Map {
	c := NewMap()
	c.copyFrom(&m.seq)

	return c
}

func (m *Map) clone() Container { return m.Copy() }

func (m *Map) compareTo(other any, existingOnly bool) bool {
	_, rows, ok := operand[*Map](&m.seq, other)
	if !ok {
		return false
	}

	return compareRows(m.rows, rows, existingOnly)
}

// Has reports whether some row's key is key. Quoted string keys also match
// their unquoted content, so Has("a") finds the key 'a'.
func (m *Map) Has(key string) bool {
	for _, r := range m.rows {
		if r.keyMatches(key) {
			return true
		}
	}

	return false
}

// ByKey returns the first row whose key matches key as in [Map.Has].
func (m *Map) ByKey(key string, strict bool) (*MapRow, error) {
	return m.byMatch(mapKey, strict, key, func(r *MapRow) bool {
		return r.keyMatches(key)
	})
}

// RemoveByKey removes the first row whose key matches key.
func (m *Map) RemoveByKey(key string, strict bool) (*MapRow, error) {
	return m.removeBy(m.ByKey(key, strict))
}
