package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/ardnew/ndfkit/lang/token"
)

// Kind is the type tag of a syntax [Node].
type Kind string

// Node kinds. Sequence kinds (Members, Params, Items, Pairs) only group the
// children of their parent construct.
const (
	KindSourceFile Kind = "source_file"
	KindVisibility Kind = "visibility"
	KindAssignment Kind = "assignment"
	KindTemplate   Kind = "template"
	KindObject     Kind = "object"
	KindMember     Kind = "member"
	KindParam      Kind = "param"
	KindList       Kind = "list"
	KindVectorType Kind = "vector_type"
	KindMap        Kind = "map"
	KindPair       Kind = "pair"
	KindTuple      Kind = "tuple"
	KindParen      Kind = "paren"
	KindBinary     Kind = "binary"
	KindUnary      Kind = "unary"
	KindParamRef   Kind = "param_ref"
	KindName       Kind = "name"
	KindType       Kind = "type"
	KindKeyword    Kind = "keyword"
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindGUID       Kind = "guid"
	KindReference  Kind = "reference"
	KindBuiltin    Kind = "builtin"
	KindMembers    Kind = "members"
	KindParams     Kind = "params"
	KindItems      Kind = "items"
	KindPairs      Kind = "pairs"

	KindCommentInline       Kind = "comment_inline"
	KindCommentBlockClassic Kind = "comment_block_classic"
	KindCommentBlockRound   Kind = "comment_block_round"
	KindCommentBlockCurly   Kind = "comment_block_curly"

	KindError Kind = "ERROR"
)

// IsComment reports whether k is one of the comment kinds.
func (k Kind) IsComment() bool {
	switch k {
	case KindCommentInline,
		KindCommentBlockClassic,
		KindCommentBlockRound,
		KindCommentBlockCurly:
		return true
	}

	return false
}

// Node is an element of the concrete syntax tree. Only named constructs are
// represented; punctuation is implied by the kind.
type Node struct {
	kind     Kind
	src      []byte
	start    int
	end      int
	pos      token.Pos
	children []*Node
	fields   map[string]*Node
	missing  bool
}

// Kind returns the node's type tag.
func (n *Node) Kind() Kind { return n.kind }

// Start returns the byte offset of the first byte of n.
func (n *Node) Start() int { return n.start }

// End returns the byte offset just past the last byte of n.
func (n *Node) End() int { return n.end }

// Pos returns the line and column where n begins.
func (n *Node) Pos() token.Pos { return n.pos }

// Text returns the raw source covered by n.
func (n *Node) Text() string {
	if n == nil || n.start >= n.end {
		return ""
	}

	return string(n.src[n.start:n.end])
}

// Children returns the named children of n in source order, including
// comments.
func (n *Node) Children() []*Node { return n.children }

// Field returns the child stored under name, or nil.
func (n *Node) Field(name string) *Node {
	if n == nil {
		return nil
	}

	return n.fields[name]
}

// IsError reports whether n is an ERROR node covering unparsable input.
func (n *Node) IsError() bool { return n.kind == KindError }

// IsMissing reports whether n is a zero-width placeholder for a required
// token that was not present.
func (n *Node) IsMissing() bool { return n.missing }

// HasError reports whether n or any descendant is an error or missing node.
func (n *Node) HasError() bool {
	if n.IsError() || n.IsMissing() {
		return true
	}

	for _, c := range n.children {
		if c.HasError() {
			return true
		}
	}

	return false
}

// Dump writes an indented tree of n to w, one node per line with its kind,
// byte range, and field name where applicable.
func (n *Node) Dump(w io.Writer) error {
	return n.dump(w, "", 0)
}

func (n *Node) dump(w io.Writer, field string, depth int) error {
	var b strings.Builder

	b.WriteString(strings.Repeat("  ", depth))

	if field != "" {
		b.WriteString(field)
		b.WriteString(": ")
	}

	switch {
	case n.missing:
		fmt.Fprintf(&b, "(MISSING %q)", string(n.kind))
	default:
		fmt.Fprintf(&b, "(%s [%d, %d])", n.kind, n.start, n.end)
	}

	if len(n.children) == 0 && !n.missing {
		fmt.Fprintf(&b, " %q", n.Text())
	}

	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	for _, c := range n.children {
		if err := c.dump(w, n.fieldOf(c), depth+1); err != nil {
			return err
		}
	}

	return nil
}

func (n *Node) fieldOf(c *Node) string {
	for name, f := range n.fields {
		if f == c {
			return name
		}
	}

	return ""
}

func (n *Node) add(c *Node) *Node {
	if c != nil {
		n.children = append(n.children, c)
	}

	return c
}

func (n *Node) set(name string, c *Node) *Node {
	if c == nil {
		return nil
	}

	if n.fields == nil {
		n.fields = make(map[string]*Node, 4)
	}

	n.fields[name] = c

	return n.add(c)
}
