// Package lexer splits NDF source into tokens.
//
// The lexer never fails. Characters it cannot classify, and strings or
// comments left open at end of input, are returned as [token.Illegal] tokens
// so the parser can report them in place.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/ndfkit/lang/token"
)

// Lexer produces tokens from a byte slice.
type Lexer struct {
	src  []byte
	pos  int
	line int
	col  int
}

// New returns a Lexer positioned at the start of src.
func New(src []byte) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize returns every token in src, including comments, terminated by a
// single [token.EOF].
func Tokenize(src []byte) []token.Token {
	l := New(src)
	toks := make([]token.Token, 0, len(src)/4+1)

	for {
		tok := l.Next()
		toks = append(toks, tok)

		if tok.Kind == token.EOF {
			return toks
		}
	}
}

// Next returns the next token. After the end of input it keeps returning
// [token.EOF].
func (l *Lexer) Next() token.Token {
	l.skipSpace()

	start := l.position()

	if l.eof() {
		return token.Token{Kind: token.EOF, Pos: start, End: l.pos}
	}

	r := l.peek()

	switch {
	case isIdentStart(r):
		return l.ident(start)

	case isDigit(r), r == '.' && isDigit(l.peekAt(1)):
		return l.number(start)

	case r == '\'' || r == '"':
		return l.str(start, r)

	case r == '$' && l.peekAt(1) == '/',
		r == '~' && l.peekAt(1) == '/',
		r == '.' && l.peekAt(1) == '/':
		return l.reference(start)
	}

	switch r {
	case '/':
		switch l.peekAt(1) {
		case '/':
			return l.lineComment(start)
		case '*':
			return l.blockComment(start, "/*", "*/", token.CommentBlock)
		}

	case '(':
		if l.peekAt(1) == '*' {
			return l.blockComment(start, "(*", "*)", token.CommentRound)
		}

	case '{':
		return l.blockComment(start, "{", "}", token.CommentCurly)
	}

	return l.punct(start, r)
}

func (l *Lexer) ident(start token.Pos) token.Token {
	for !l.eof() && isIdentContinue(l.peek()) {
		l.advance()
	}

	text := string(l.src[start.Offset:l.pos])

	if text == "GUID" && l.peek() == ':' && l.peekAt(1) == '{' {
		return l.guid(start)
	}

	return l.emit(token.Lookup(text), start)
}

func (l *Lexer) guid(start token.Pos) token.Token {
	l.advance() // :
	l.advance() // {

	for !l.eof() {
		if l.advance() == '}' {
			return l.emit(token.GUID, start)
		}
	}

	return l.emit(token.Illegal, start)
}

func (l *Lexer) number(start token.Pos) token.Token {
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()

		for !l.eof() && isHexDigit(l.peek()) {
			l.advance()
		}

		return l.emit(token.Number, start)
	}

	l.digits()

	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		l.digits()
	}

	if r := l.peek(); r == 'e' || r == 'E' {
		next := l.peekAt(1)
		if isDigit(next) ||
			(next == '+' || next == '-') && isDigit(l.peekAt(2)) {
			l.advance()
			l.advance()
			l.digits()
		}
	}

	return l.emit(token.Number, start)
}

func (l *Lexer) digits() {
	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) str(start token.Pos, quote rune) token.Token {
	l.advance()

	for !l.eof() {
		switch l.advance() {
		case '\\':
			if !l.eof() {
				l.advance()
			}
		case quote:
			return l.emit(token.String, start)
		}
	}

	return l.emit(token.Illegal, start)
}

func (l *Lexer) reference(start token.Pos) token.Token {
	l.advance()
	l.advance()

	for !l.eof() {
		if r := l.peek(); !isIdentContinue(r) && r != '/' {
			break
		}

		l.advance()
	}

	return l.emit(token.Reference, start)
}

func (l *Lexer) lineComment(start token.Pos) token.Token {
	for !l.eof() && l.peek() != '\n' {
		l.advance()
	}

	return l.emit(token.CommentLine, start)
}

func (l *Lexer) blockComment(
	start token.Pos,
	open, closer string,
	kind token.Kind,
) token.Token {
	for range utf8.RuneCountInString(open) {
		l.advance()
	}

	for !l.eof() {
		if strings.HasPrefix(string(l.src[l.pos:]), closer) {
			for range utf8.RuneCountInString(closer) {
				l.advance()
			}

			return l.emit(kind, start)
		}

		l.advance()
	}

	return l.emit(token.Illegal, start)
}

func (l *Lexer) punct(start token.Pos, r rune) token.Token {
	l.advance()

	kind := token.Illegal

	switch r {
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '[':
		kind = token.LBrack
	case ']':
		kind = token.RBrack
	case ',':
		kind = token.Comma
	case ':':
		kind = token.Colon
	case '=':
		kind = token.Assign
		if l.peek() == '=' {
			l.advance()

			kind = token.Operator
		}
	case '<':
		kind = token.Lt
		if l.peek() == '=' {
			l.advance()

			kind = token.Operator
		}
	case '>':
		kind = token.Gt
		if l.peek() == '=' {
			l.advance()

			kind = token.Operator
		}
	case '!':
		kind = token.Operator
		if l.peek() == '=' {
			l.advance()
		}
	case '+', '-', '*', '/', '%', '|', '&', '^':
		kind = token.Operator
	}

	return l.emit(kind, start)
}

func (l *Lexer) emit(kind token.Kind, start token.Pos) token.Token {
	return token.Token{
		Kind: kind,
		Text: string(l.src[start.Offset:l.pos]),
		Pos:  start,
		End:  l.pos,
	}
}

func (l *Lexer) skipSpace() {
	for !l.eof() && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) position() token.Pos {
	return token.Pos{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(l.src[l.pos:])

	return r
}

// peekAt returns the rune n runes past the current position, or 0.
func (l *Lexer) peekAt(n int) rune {
	pos := l.pos

	for ; n > 0 && pos < len(l.src); n-- {
		_, size := utf8.DecodeRune(l.src[pos:])
		pos += size
	}

	if pos >= len(l.src) {
		return 0
	}

	r, _ := utf8.DecodeRune(l.src[pos:])

	return r
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRune(l.src[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
