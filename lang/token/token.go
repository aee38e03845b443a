// Package token defines the lexical tokens of NDF source.
package token

import (
	"strconv"
)

// Kind identifies the lexical class of a [Token].
type Kind int

const (
	Illegal Kind = iota
	EOF

	// Trivia. The parser keeps these out of the grammar and attaches them to
	// the enclosing sequence as comment nodes.
	CommentLine  // // ...
	CommentBlock // /* ... */
	CommentRound // (* ... *)
	CommentCurly // { ... }

	// Literals.
	Ident
	Number
	String
	GUID      // GUID:{...}
	Reference // $/a/b, ~/a, ./a
	Builtin   // nil, true, false

	// Keywords.
	Is
	Template
	Export
	Private
	Public
	Map // MAP

	// Punctuation.
	LParen
	RParen
	LBrack
	RBrack
	Comma
	Assign // =
	Colon
	Lt // <
	Gt // >

	// Operator is any binary or unary operator other than < and >.
	Operator
)

var kindName = [...]string{
	Illegal:      "illegal",
	EOF:          "EOF",
	CommentLine:  "comment",
	CommentBlock: "comment",
	CommentRound: "comment",
	CommentCurly: "comment",
	Ident:        "identifier",
	Number:       "number",
	String:       "string",
	GUID:         "guid",
	Reference:    "reference",
	Builtin:      "builtin",
	Is:           "is",
	Template:     "template",
	Export:       "export",
	Private:      "private",
	Public:       "public",
	Map:          "MAP",
	LParen:       "(",
	RParen:       ")",
	LBrack:       "[",
	RBrack:       "]",
	Comma:        ",",
	Assign:       "=",
	Colon:        ":",
	Lt:           "<",
	Gt:           ">",
	Operator:     "operator",
}

// String returns the name used for k in diagnostics.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindName) {
		return kindName[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsComment reports whether k is one of the comment forms.
func (k Kind) IsComment() bool {
	return k >= CommentLine && k <= CommentCurly
}

// IsVisibility reports whether k is a visibility keyword.
func (k Kind) IsVisibility() bool {
	return k == Export || k == Private || k == Public
}

// keywords maps reserved words to their kinds. Words that are operators
// (div) or builtin values are included so identifiers never shadow them.
var keywords = map[string]Kind{
	"is":       Is,
	"template": Template,
	"export":   Export,
	"private":  Private,
	"public":   Public,
	"MAP":      Map,
	"nil":      Builtin,
	"true":     Builtin,
	"false":    Builtin,
	"div":      Operator,
}

// Lookup returns the kind of the word ident: a keyword kind if ident is
// reserved, and [Ident] otherwise.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}

	return Ident
}

// Pos is a location in source text. Line and Column are 1-based; Column
// counts runes.
type Pos struct {
	Offset int
	Line   int
	Column int
}

// String formats p as "line:column".
func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is a lexeme with its kind and source span [Pos.Offset, End).
type Token struct {
	Kind Kind
	Text string
	Pos  Pos
	End  int
}

// String returns a quoted form of the token for diagnostics.
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case Illegal:
		return "illegal " + strconv.Quote(t.Text)
	default:
		return strconv.Quote(t.Text)
	}
}
