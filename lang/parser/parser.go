// Package parser builds a concrete syntax tree from NDF source.
//
// The parser is a hand-written recursive descent over the token stream of
// package lexer. It never gives up: unexpected input becomes an ERROR node and
// absent punctuation becomes a zero-width MISSING node, each also reported as
// an [Error]. Callers decide whether a tree with errors is acceptable.
package parser

import (
	"strconv"
	"strings"

	"github.com/ardnew/ndfkit/lang/lexer"
	"github.com/ardnew/ndfkit/lang/token"
)

// Error describes one syntax problem found while parsing.
type Error struct {
	Line     int
	Column   int
	Expected []string
	Found    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("line ")
	b.WriteString(strconv.Itoa(e.Line))
	b.WriteString(", column ")
	b.WriteString(strconv.Itoa(e.Column))
	b.WriteString(": unexpected ")
	b.WriteString(e.Found)

	if len(e.Expected) > 0 {
		b.WriteString(", expected ")
		b.WriteString(strings.Join(e.Expected, " or "))
	}

	return b.String()
}

// Parse parses src as a whole document. The returned tree is never nil; its
// root has kind [KindSourceFile]. The error slice lists every ERROR and
// MISSING node in the tree in source order.
func Parse(src []byte) (*Node, []*Error) {
	p := &parser{src: src, toks: lexer.Tokenize(src)}

	return p.sourceFile(), p.errs
}

type sepMode int

const (
	sepOptional sepMode = iota // commas allowed, not needed
	sepRequired                // commas between elements
)

type parser struct {
	src     []byte
	toks    []token.Token
	i       int
	lastEnd int
	pending []*Node
	errs    []*Error
}

func (p *parser) sourceFile() *Node {
	root := &Node{
		kind: KindSourceFile,
		src:  p.src,
		end:  len(p.src),
		pos:  token.Pos{Line: 1, Column: 1},
	}

	for {
		t := p.peek()
		p.flush(root)

		if t.Kind == token.EOF {
			return root
		}

		if startsStatement(t) {
			root.add(p.entry(true))

			continue
		}

		root.add(p.errorNode(startsStatement, "statement"))
	}
}

// entry parses an optionally visibility-qualified binding or expression.
// Templates are only accepted where allowTemplate is set.
func (p *parser) entry(allowTemplate bool) *Node {
	t := p.peek()
	if !t.Kind.IsVisibility() {
		return p.binding(allowTemplate)
	}

	n := p.open(KindVisibility, t)
	n.set("type", p.leaf(KindKeyword))
	n.set("item", p.binding(allowTemplate))

	return p.close(n)
}

func (p *parser) binding(allowTemplate bool) *Node {
	t := p.peek()

	switch {
	case allowTemplate && t.Kind == token.Template:
		return p.template()

	case t.Kind == token.Ident && p.peekN(1).Kind == token.Is:
		n := p.open(KindAssignment, t)
		n.set("name", p.leaf(KindName))
		p.next() // is
		n.set("value", p.expression())

		return p.close(n)
	}

	return p.expression()
}

func (p *parser) template() *Node {
	n := p.open(KindTemplate, p.next())

	n.set("name", p.expectLeaf(token.Ident, KindName))
	n.set("params", p.sequence(KindParams, token.LBrack, token.RBrack,
		sepOptional, startsParam, p.param))
	p.want(n, token.Is)
	n.set("type", p.expectLeaf(token.Ident, KindName))
	n.set("members", p.sequence(KindMembers, token.LParen, token.RParen,
		sepOptional, startsItem, p.member))

	return p.close(n)
}

func (p *parser) member() *Node {
	t := p.peek()
	n := p.open(KindMember, t)

	if t.Kind == token.Ident {
		switch p.peekN(1).Kind {
		case token.Assign, token.Colon:
			n.set("name", p.leaf(KindName))

			if p.peek().Kind == token.Colon {
				p.next()
				n.set("type", p.typeName())
			}

			p.want(n, token.Assign)
		}
	}

	n.set("value", p.entry(false))

	return p.close(n)
}

func (p *parser) param() *Node {
	n := p.open(KindParam, p.peek())
	n.set("name", p.leaf(KindName))

	if p.peek().Kind == token.Colon {
		p.next()
		n.set("type", p.typeName())
	}

	if p.peek().Kind == token.Assign {
		p.next()
		n.set("value", p.expression())
	}

	return p.close(n)
}

// typeName parses a type annotation: a name optionally followed by a
// balanced <...> argument list.
func (p *parser) typeName() *Node {
	t := p.peek()
	if t.Kind != token.Ident {
		return p.missing("type")
	}

	n := p.open(KindType, t)
	p.next()

	if p.peek().Kind == token.Lt {
		depth := 0

		for {
			t := p.peek()
			if t.Kind == token.EOF {
				break
			}

			p.next()

			if t.Kind == token.Lt {
				depth++
			} else if t.Kind == token.Gt {
				depth--
				if depth == 0 {
					break
				}
			}
		}
	}

	return p.close(n)
}

func (p *parser) expression() *Node {
	left := p.unary()

	for isBinaryOperator(p.peek()) {
		p.next()

		n := &Node{kind: KindBinary, src: p.src, start: left.start, pos: left.pos}
		n.set("left", left)
		n.set("right", p.unary())
		left = p.close(n)
	}

	return left
}

func (p *parser) unary() *Node {
	t := p.peek()
	if !isUnaryOperator(t) {
		return p.primary()
	}

	n := p.open(KindUnary, p.next())
	n.set("value", p.unary())

	return p.close(n)
}

func (p *parser) primary() *Node {
	t := p.peek()

	switch t.Kind {
	case token.Number:
		return p.leaf(KindNumber)
	case token.String:
		return p.leaf(KindString)
	case token.GUID:
		return p.leaf(KindGUID)
	case token.Reference:
		return p.leaf(KindReference)
	case token.Builtin:
		return p.leaf(KindBuiltin)

	case token.Ident:
		switch p.peekN(1).Kind {
		case token.LParen:
			return p.object()
		case token.LBrack:
			return p.vector()
		}

		return p.leaf(KindName)

	case token.Map:
		if p.peekN(1).Kind == token.LBrack {
			return p.mapping()
		}

		return p.leaf(KindName)

	case token.Lt:
		n := p.open(KindParamRef, p.next())
		n.set("name", p.expectLeaf(token.Ident, KindName))
		p.want(n, token.Gt)

		return p.close(n)

	case token.LParen:
		return p.parenthesized()

	case token.LBrack:
		n := p.open(KindList, t)
		n.set("items", p.items())

		return p.close(n)
	}

	return p.missing("expression")
}

func (p *parser) object() *Node {
	n := p.open(KindObject, p.peek())
	n.set("type", p.leaf(KindName))
	n.set("members", p.sequence(KindMembers, token.LParen, token.RParen,
		sepOptional, startsItem, p.member))

	return p.close(n)
}

func (p *parser) vector() *Node {
	n := p.open(KindVectorType, p.peek())
	n.set("type", p.leaf(KindName))
	n.set("items", p.items())

	return p.close(n)
}

func (p *parser) items() *Node {
	return p.sequence(KindItems, token.LBrack, token.RBrack, sepRequired,
		startsItem, func() *Node { return p.entry(false) })
}

func (p *parser) mapping() *Node {
	n := p.open(KindMap, p.next())
	n.set("pairs", p.sequence(KindPairs, token.LBrack, token.RBrack,
		sepRequired, startsPair, p.pair))

	return p.close(n)
}

func (p *parser) pair() *Node {
	n := p.open(KindPair, p.next()) // (
	n.set("left", p.expression())
	p.want(n, token.Comma)
	n.set("right", p.expression())
	p.want(n, token.RParen)

	return p.close(n)
}

// parenthesized parses (x) as a paren node, (x, y) as a pair, and any other
// comma-separated group as a tuple.
func (p *parser) parenthesized() *Node {
	t := p.next()
	elems := []*Node{p.expression()}

	for p.peek().Kind == token.Comma {
		p.next()

		if p.peek().Kind == token.RParen {
			break
		}

		elems = append(elems, p.expression())
	}

	var n *Node

	switch len(elems) {
	case 1:
		n = p.open(KindParen, t)
		n.set("value", elems[0])
	case 2:
		n = p.open(KindPair, t)
		n.set("left", elems[0])
		n.set("right", elems[1])
	default:
		n = p.open(KindTuple, t)
		for _, e := range elems {
			n.add(e)
		}
	}

	p.want(n, token.RParen)

	return p.close(n)
}

// sequence parses open elem (sep elem)* closer into a node of the given kind.
func (p *parser) sequence(
	kind Kind,
	open, closer token.Kind,
	sep sepMode,
	starts func(token.Token) bool,
	elem func() *Node,
) *Node {
	t := p.peek()
	n := p.open(kind, t)

	if t.Kind != open {
		n.add(p.missing(open.String()))

		return n
	}

	p.next()

	for {
		t = p.peek()
		p.flush(n)

		if t.Kind == closer || t.Kind == token.EOF {
			break
		}

		if t.Kind == token.Comma {
			p.next()

			if sep == sepRequired {
				n.add(p.errorToken(t, string(kind)))
			}

			continue
		}

		if !starts(t) {
			n.add(p.errorNode(isSeparator, string(kind)))

			continue
		}

		n.add(elem())

		switch t = p.peek(); {
		case t.Kind == token.Comma:
			p.next()
		case t.Kind == closer, t.Kind == token.EOF:
		case sep == sepRequired:
			n.add(p.missing(token.Comma.String()))
		}
	}

	p.want(n, closer)

	return p.close(n)
}

// errorNode consumes at least one token, then continues up to (not
// including) the first token at bracket depth zero for which stop holds.
func (p *parser) errorNode(
	stop func(token.Token) bool,
	expected ...string,
) *Node {
	first := p.peek()
	n := p.open(KindError, first)
	p.fail(first, expected...)

	depth := 0

	for consumed := 0; ; consumed++ {
		t := p.peek()
		if t.Kind == token.EOF || (consumed > 0 && depth == 0 && stop(t)) {
			break
		}

		switch t.Kind {
		case token.LParen, token.LBrack:
			depth++
		case token.RParen, token.RBrack:
			if depth > 0 {
				depth--
			}
		}

		p.next()
	}

	return p.close(n)
}

// errorToken wraps the already consumed token t in an ERROR node.
func (p *parser) errorToken(t token.Token, expected ...string) *Node {
	p.fail(t, expected...)

	return &Node{
		kind:  KindError,
		src:   p.src,
		start: t.Pos.Offset,
		end:   t.End,
		pos:   t.Pos,
	}
}

// missing returns a zero-width node standing in for an absent token.
func (p *parser) missing(expected string) *Node {
	t := p.peek()
	p.fail(t, expected)

	return &Node{
		kind:    Kind(expected),
		src:     p.src,
		start:   p.lastEnd,
		end:     p.lastEnd,
		pos:     t.Pos,
		missing: true,
	}
}

// want consumes a token of the given kind, or attaches a MISSING node to n.
func (p *parser) want(n *Node, kind token.Kind) bool {
	if p.peek().Kind == kind {
		p.next()

		return true
	}

	n.add(p.missing(kind.String()))

	return false
}

func (p *parser) expectLeaf(tk token.Kind, kind Kind) *Node {
	if p.peek().Kind != tk {
		return p.missing(tk.String())
	}

	return p.leaf(kind)
}

func (p *parser) leaf(kind Kind) *Node {
	t := p.next()

	return &Node{
		kind:  kind,
		src:   p.src,
		start: t.Pos.Offset,
		end:   t.End,
		pos:   t.Pos,
	}
}

func (p *parser) open(kind Kind, at token.Token) *Node {
	return &Node{
		kind:  kind,
		src:   p.src,
		start: at.Pos.Offset,
		end:   at.Pos.Offset,
		pos:   at.Pos,
	}
}

func (p *parser) close(n *Node) *Node {
	if p.lastEnd > n.start {
		n.end = p.lastEnd
	}

	return n
}

func (p *parser) fail(at token.Token, expected ...string) {
	p.errs = append(p.errs, &Error{
		Line:     at.Pos.Line,
		Column:   at.Pos.Column,
		Expected: expected,
		Found:    at.String(),
	})
}

// flush attaches comments collected since the last call to n.
func (p *parser) flush(n *Node) {
	for _, c := range p.pending {
		n.add(c)
	}

	p.pending = p.pending[:0]
}

// peek returns the next significant token, moving any comments in front of
// it to the pending list.
func (p *parser) peek() token.Token {
	for p.toks[p.i].Kind.IsComment() {
		p.pending = append(p.pending, p.comment(p.toks[p.i]))
		p.i++
	}

	return p.toks[p.i]
}

// peekN returns the n-th significant token after the next one.
func (p *parser) peekN(n int) token.Token {
	p.peek()

	j := p.i
	for n > 0 && p.toks[j].Kind != token.EOF {
		j++
		if !p.toks[j].Kind.IsComment() {
			n--
		}
	}

	return p.toks[j]
}

func (p *parser) next() token.Token {
	t := p.peek()
	if t.Kind != token.EOF {
		p.i++
		p.lastEnd = t.End
	}

	return t
}

func (p *parser) comment(t token.Token) *Node {
	kind := KindCommentInline

	switch t.Kind {
	case token.CommentBlock:
		kind = KindCommentBlockClassic
	case token.CommentRound:
		kind = KindCommentBlockRound
	case token.CommentCurly:
		kind = KindCommentBlockCurly
	}

	return &Node{
		kind:  kind,
		src:   p.src,
		start: t.Pos.Offset,
		end:   t.End,
		pos:   t.Pos,
	}
}

func startsExpression(t token.Token) bool {
	switch t.Kind {
	case token.Number, token.String, token.GUID, token.Reference,
		token.Builtin, token.Ident, token.Map, token.LParen, token.LBrack,
		token.Lt:
		return true
	}

	return isUnaryOperator(t)
}

func startsItem(t token.Token) bool {
	return t.Kind.IsVisibility() || startsExpression(t)
}

func startsStatement(t token.Token) bool {
	return t.Kind == token.Template || startsItem(t)
}

func startsParam(t token.Token) bool { return t.Kind == token.Ident }

func startsPair(t token.Token) bool { return t.Kind == token.LParen }

func isSeparator(t token.Token) bool {
	switch t.Kind {
	case token.Comma, token.RParen, token.RBrack:
		return true
	}

	return false
}

func isUnaryOperator(t token.Token) bool {
	if t.Kind != token.Operator {
		return false
	}

	switch t.Text {
	case "-", "+", "!":
		return true
	}

	return false
}

func isBinaryOperator(t token.Token) bool {
	switch t.Kind {
	case token.Lt, token.Gt:
		return true
	case token.Operator:
		return t.Text != "!"
	}

	return false
}
