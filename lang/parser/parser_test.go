package parser

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *Node {
	t.Helper()

	root, errs := Parse([]byte(src))
	if len(errs) > 0 {
		t.Fatalf("Parse(%q) errors: %v", src, errs)
	}

	if root.HasError() {
		t.Fatalf("Parse(%q) tree has error nodes", src)
	}

	return root
}

func statements(n *Node) []*Node {
	var out []*Node

	for _, c := range n.Children() {
		if !c.Kind().IsComment() {
			out = append(out, c)
		}
	}

	return out
}

func TestParse_Assignment(t *testing.T) {
	root := mustParse(t, "A is 12")

	stmts := statements(root)
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}

	a := stmts[0]
	if a.Kind() != KindAssignment {
		t.Fatalf("statement kind = %s, want %s", a.Kind(), KindAssignment)
	}

	if got := a.Field("name").Text(); got != "A" {
		t.Errorf("name = %q, want %q", got, "A")
	}

	v := a.Field("value")
	if v.Kind() != KindNumber || v.Text() != "12" {
		t.Errorf("value = %s %q, want number %q", v.Kind(), v.Text(), "12")
	}
}

func TestParse_StatementKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []Kind
	}{
		{
			name:  "visibility wraps assignment",
			input: "export A is 1",
			kinds: []Kind{KindVisibility},
		},
		{
			name:  "bare expression",
			input: "T(m1=1, m2=2)",
			kinds: []Kind{KindObject},
		},
		{
			name:  "several statements",
			input: "A is 1\nB is [1, 2]\n\nC is MAP[(1, 2)]",
			kinds: []Kind{KindAssignment, KindAssignment, KindAssignment},
		},
		{
			name:  "template",
			input: "private template T[a: int = 1, b] is O(x = <a>)",
			kinds: []Kind{KindVisibility},
		},
		{
			name:  "binary expression",
			input: "1 + 2 * $/A",
			kinds: []Kind{KindBinary},
		},
		{
			name:  "vector type",
			input: "V is float[1.0, 2.0]",
			kinds: []Kind{KindAssignment},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := statements(mustParse(t, tt.input))
			if len(stmts) != len(tt.kinds) {
				t.Fatalf("got %d statements, want %d", len(stmts), len(tt.kinds))
			}

			for i, s := range stmts {
				if s.Kind() != tt.kinds[i] {
					t.Errorf("statement %d kind = %s, want %s", i, s.Kind(), tt.kinds[i])
				}
			}
		})
	}
}

func TestParse_ObjectMembers(t *testing.T) {
	root := mustParse(t, "Test is TObject\n(\n  Member1: int = 1\n  export N is 2\n  3\n)")

	obj := statements(root)[0].Field("value")
	if obj.Kind() != KindObject {
		t.Fatalf("value kind = %s, want object", obj.Kind())
	}

	if got := obj.Field("type").Text(); got != "TObject" {
		t.Errorf("type = %q, want TObject", got)
	}

	members := statements(obj.Field("members"))
	if len(members) != 3 {
		t.Fatalf("got %d members, want 3", len(members))
	}

	m := members[0]
	if m.Field("name").Text() != "Member1" ||
		m.Field("type").Text() != "int" ||
		m.Field("value").Text() != "1" {
		t.Errorf("member 0 = %q:%q=%q", m.Field("name").Text(),
			m.Field("type").Text(), m.Field("value").Text())
	}

	if members[1].Field("name") != nil {
		t.Errorf("member 1 has unexpected name %q", members[1].Field("name").Text())
	}

	if got := members[1].Field("value").Kind(); got != KindVisibility {
		t.Errorf("member 1 value kind = %s, want visibility", got)
	}

	if got := members[2].Field("value").Text(); got != "3" {
		t.Errorf("member 2 value = %q, want 3", got)
	}
}

func TestParse_TemplateFields(t *testing.T) {
	root := mustParse(t, "template T[A, B: string = 'x'] is Obj(m = <A>)")

	tpl := statements(root)[0]
	if tpl.Kind() != KindTemplate {
		t.Fatalf("kind = %s, want template", tpl.Kind())
	}

	if got := tpl.Field("name").Text(); got != "T" {
		t.Errorf("name = %q, want T", got)
	}

	if got := tpl.Field("type").Text(); got != "Obj" {
		t.Errorf("type = %q, want Obj", got)
	}

	params := statements(tpl.Field("params"))
	if len(params) != 2 {
		t.Fatalf("got %d params, want 2", len(params))
	}

	if params[0].Field("type") != nil || params[0].Field("value") != nil {
		t.Errorf("param 0 should only have a name")
	}

	if got := params[1].Field("value").Text(); got != "'x'" {
		t.Errorf("param 1 value = %q, want 'x'", got)
	}

	member := statements(tpl.Field("members"))[0]
	if got := member.Field("value").Kind(); got != KindParamRef {
		t.Errorf("member value kind = %s, want param_ref", got)
	}
}

func TestParse_MapPairs(t *testing.T) {
	root := mustParse(t, "MAP[('a',1),('2', [1, 2]),]")

	m := statements(root)[0]
	if m.Kind() != KindMap {
		t.Fatalf("kind = %s, want map", m.Kind())
	}

	pairs := statements(m.Field("pairs"))
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}

	if pairs[0].Field("left").Text() != "'a'" || pairs[0].Field("right").Text() != "1" {
		t.Errorf("pair 0 = (%q, %q)", pairs[0].Field("left").Text(), pairs[0].Field("right").Text())
	}

	if got := pairs[1].Field("right").Kind(); got != KindList {
		t.Errorf("pair 1 right kind = %s, want list", got)
	}
}

func TestParse_Parenthesized(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"(1)", KindParen},
		{"(1, 2)", KindPair},
		{"(1, 2, 3)", KindTuple},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := statements(mustParse(t, tt.input))[0].Kind(); got != tt.want {
				t.Errorf("kind = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParse_CommentsAreChildren(t *testing.T) {
	root := mustParse(t, "// head\nA is [1, /* inner */ 2] { tail }")

	var kinds []Kind
	for _, c := range root.Children() {
		kinds = append(kinds, c.Kind())
	}

	want := []Kind{KindCommentInline, KindAssignment, KindCommentBlockCurly}
	if len(kinds) != len(want) {
		t.Fatalf("root children = %v, want %v", kinds, want)
	}

	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("child %d = %s, want %s", i, kinds[i], want[i])
		}
	}

	items := statements(root)[0].Field("value").Field("items")

	comments := 0
	for _, c := range items.Children() {
		if c.Kind() == KindCommentBlockClassic {
			comments++
		}
	}

	if comments != 1 {
		t.Errorf("items has %d block comments, want 1", comments)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
		col   int
	}{
		{"missing close paren", "A is T(m = 1", 1, 13},
		{"root comma", "A is 1, B is 2", 1, 7},
		{"missing list comma", "[1 2]", 1, 4},
		{"missing value", "A is", 1, 5},
		{"illegal char", "A is 1\n@", 2, 1},
		{"unterminated string", "A is 'abc", 1, 6},
		{"map entry not a pair", "MAP[1]", 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, errs := Parse([]byte(tt.input))
			if len(errs) == 0 {
				t.Fatalf("Parse(%q) reported no errors", tt.input)
			}

			if !root.HasError() {
				t.Errorf("Parse(%q) tree has no error nodes", tt.input)
			}

			if errs[0].Line != tt.line || errs[0].Column != tt.col {
				t.Errorf("first error at %d:%d, want %d:%d (%v)",
					errs[0].Line, errs[0].Column, tt.line, tt.col, errs[0])
			}
		})
	}
}

func TestParse_ErrorRecoveryContinues(t *testing.T) {
	root, errs := Parse([]byte("A is [1, , 2]\nB is 3"))
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}

	stmts := statements(root)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}

	if got := stmts[1].Field("name").Text(); got != "B" {
		t.Errorf("second statement name = %q, want B", got)
	}
}

func TestError_Message(t *testing.T) {
	_, errs := Parse([]byte("A is T("))
	if len(errs) == 0 {
		t.Fatal("expected an error")
	}

	msg := errs[0].Error()
	for _, want := range []string{"line 1", "column 8", "EOF", `)`} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not contain %q", msg, want)
		}
	}
}

func TestNode_Dump(t *testing.T) {
	var b strings.Builder

	if err := mustParse(t, "A is 1").Dump(&b); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	out := b.String()
	for _, want := range []string{"(source_file [0, 6])", "name: (name [0, 1]) \"A\"", "value: (number [5, 6]) \"1\""} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump() output missing %q:\n%s", want, out)
		}
	}
}
