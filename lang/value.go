package lang

import (
	"fmt"
	"log/slog"
	"strconv"
)

// Value is the content of a row field: either a [Text] atom or a
// [Container]. A nil Value means the field is absent.
type Value interface {
	isValue()
}

// Text is an opaque fragment of source text such as a number, a quoted
// string, an identifier, or an operator expression. Equality is byte-wise;
// embedded quotes must match exactly.
type Text string

func (Text) isValue() {}

// String returns the raw text.
func (t Text) String() string { return string(t) }

// Container is an ordered sequence of rows of a single kind, owned by at
// most one row at a time. It is implemented by [*List], [*Object],
// [*Template], [*Params], and [*Map].
type Container interface {
	Value

	// Kind returns the container's type name, e.g. "List" or "Map".
	Kind() string

	// Len returns the number of rows.
	Len() int

	// ParentRow returns the row owning this container, or nil if detached.
	ParentRow() Row

	String() string

	rowAt(i int) Row
	indexOf(r Row) int
	setOwner(r Row)
	clone() Container
	compareTo(other any, existingOnly bool) bool
}

// Fields holds named field values for a row. Keys may be canonical names or
// aliases. Values may be nil, a string (stored as [Text]), a [Value], or a
// boolean or number (stored as its text form).
//
// Passing Fields to a row or container method applies strict validation:
// unknown field names are an error.
type Fields map[string]any

// Loose is like [Fields] but unknown field names are silently ignored.
type Loose map[string]any

// Pair is a key/value tuple accepted by [*Map] methods and [*MapRow.EditPair].
type Pair struct {
	Key   any
	Value any
}

// toValue normalizes a caller-supplied field value.
func toValue(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Text:
		return x, nil
	case string:
		return Text(x), nil
	case *List:
		return nilOr(x)
	case *Object:
		return nilOr(x)
	case *Template:
		return nilOr(x)
	case *Params:
		return nilOr(x)
	case *Map:
		return nilOr(x)
	case bool:
		return Text(strconv.FormatBool(x)), nil
	case int:
		return Text(strconv.Itoa(x)), nil
	case int64:
		return Text(strconv.FormatInt(x, 10)), nil
	case float64:
		return Text(strconv.FormatFloat(x, 'g', -1, 64)), nil
	case fmt.Stringer:
		return Text(x.String()), nil
	}

	return nil, ErrInvalidValue.With(slog.String("type", fmt.Sprintf("%T", v)))
}

func nilOr[C interface {
	Container
	comparable
}](c C) (Value, error) {
	var zero C
	if c == zero {
		return nil, nil
	}

	return c, nil
}

// valueString renders v for row representations: quoted text, a container
// summary, or None.
func valueString(v Value) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case Text:
		return "'" + string(x) + "'"
	case Container:
		return x.String()
	}

	return fmt.Sprint(v)
}

// sameValue reports whether a and b refer to the same value: identical
// containers, or equal text.
func sameValue(a, b Value) bool {
	ca, aok := a.(Container)
	cb, bok := b.(Container)

	if aok || bok {
		return aok && bok && ca == cb
	}

	return a == b
}
