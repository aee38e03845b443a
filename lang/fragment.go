package lang

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/ndfkit/lang/parser"
)

// Shape selects the syntactic context a code fragment is parsed in.
type Shape int

// Fragment shapes.
const (
	ShapeRoot   Shape = iota // document statements
	ShapeList                // list items
	ShapeMember              // object members
	ShapeParam               // template parameters
	ShapeMap                 // map pairs
)

var shapeName = [...]string{"root", "list", "member", "param", "map"}

// String returns the shape name.
func (s Shape) String() string {
	if int(s) < len(shapeName) {
		return shapeName[s]
	}

	return "Shape(" + strconv.Itoa(int(s)) + ")"
}

// wrapper returns the format string enclosing a fragment of shape s and the
// number of lines it adds before the fragment.
func (s Shape) wrapper() (string, int) {
	switch s {
	case ShapeList:
		return "[\n%s\n]", 1
	case ShapeMember:
		return "T(\n%s\n)", 1
	case ShapeParam:
		return "template N[\n%s\n] is T()", 1
	case ShapeMap:
		return "MAP[\n%s\n]", 1
	}

	return "%s", 0
}

// Entries parses code as zero or more entries of the given shape and returns
// their syntax nodes. Syntax errors are reported with line numbers relative
// to code.
func Entries(shape Shape, code string) ([]*parser.Node, error) {
	return entries(shape, code, false)
}

// Entry is like [Entries] but requires exactly one entry.
func Entry(shape Shape, code string) (*parser.Node, error) {
	nodes, err := Entries(shape, code)
	if err != nil {
		return nil, err
	}

	if len(nodes) != 1 {
		return nil, ErrCardinalityMismatch.With(
			slog.String("shape", shape.String()),
			slog.Int("entries", len(nodes)),
		)
	}

	return nodes[0], nil
}

func entries(shape Shape, code string, lenient bool) ([]*parser.Node, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyCode.With(slog.String("shape", shape.String()))
	}

	tree, err := fragmentTree(shape, code)
	if err != nil {
		return nil, err
	}

	if !lenient && len(tree.errs) > 0 {
		return nil, newSyntaxError(tree.errs, code, tree.offset)
	}

	root := tree.root
	if shape == ShapeRoot {
		return named(root), nil
	}

	kind, field := shape.enclosing()

	outer := named(root)
	if len(outer) != 1 || outer[0].Kind() != kind {
		return nil, ErrSyntax.
			With(slog.String("shape", shape.String())).
			withHint("code escapes its enclosing " + string(kind))
	}

	return named(outer[0].Field(field)), nil
}

// enclosing returns the node kind of the wrapper of shape s and the field
// holding the fragment.
func (s Shape) enclosing() (parser.Kind, string) {
	switch s {
	case ShapeList:
		return parser.KindList, "items"
	case ShapeMember:
		return parser.KindObject, "members"
	case ShapeParam:
		return parser.KindTemplate, "params"
	case ShapeMap:
		return parser.KindMap, "pairs"
	}

	return parser.KindSourceFile, ""
}

// named returns the children of n that are neither comments nor MISSING
// placeholders.
func named(n *parser.Node) []*parser.Node {
	if n == nil {
		return nil
	}

	out := make([]*parser.Node, 0, len(n.Children()))

	for _, c := range n.Children() {
		if c.Kind().IsComment() || c.IsMissing() {
			continue
		}

		out = append(out, c)
	}

	return out
}
