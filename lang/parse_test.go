package lang

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/ndfkit/log"
)

func TestParse_Statements(t *testing.T) {
	root := mustParse(t, `
// leading comment
export A is 1
B is O(x = 2)
template T[a] is O(v = a)
'bare'
`)

	if !root.IsRoot || root.Len() != 4 {
		t.Fatalf("root = %s", root)
	}

	want := []Fields{
		{"value": Text("1"), "visibility": Text("export"), "namespace": Text("A")},
		{"namespace": Text("B")},
		{"namespace": Text("T")},
		{"value": Text("'bare'")},
	}

	for i, w := range want {
		if !root.At(i).Compare(w, true) {
			t.Errorf("row %d = %s, want match of %v", i, root.At(i), w)
		}
	}

	if _, ok := root.At(2).Value().(*Template); !ok {
		t.Errorf("row 2 value = %T, want *Template", root.At(2).Value())
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse(context.Background(), "A is [1,\nB is 2")
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("Parse() error = %v, want ErrSyntax", err)
	}

	var serr *SyntaxError
	if !errors.As(err, &serr) || len(serr.Errors) == 0 {
		t.Fatalf("error = %#v, want *SyntaxError", err)
	}

	if !strings.HasPrefix(serr.Error(), "syntax error at line ") {
		t.Errorf("Error() = %q", serr.Error())
	}
}

func TestParse_Lenient(t *testing.T) {
	root, err := Parse(context.Background(), "A is 1\n@\nB is 2", WithLenient(true))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if root.Len() != 3 {
		t.Fatalf("Len() = %d, want 3: %s", root.Len(), root)
	}

	if got := root.At(1).Value(); got != Text("@") {
		t.Errorf("error row value = %v, want @", got)
	}

	if _, err := Parse(context.Background(), "A is 1\n@\nB is 2"); !errors.Is(err, ErrSyntax) {
		t.Errorf("strict Parse() error = %v", err)
	}
}

func TestParse_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Parse(ctx, "A is 1"); !errors.Is(err, context.Canceled) {
		t.Errorf("Parse() error = %v, want context.Canceled", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestParseReader(t *testing.T) {
	ctx := context.Background()

	root, err := ParseReader(ctx, strings.NewReader("A is [1, 2]"),
		WithLogger(log.Make(io.Discard, log.WithLevel(log.LevelTrace))))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}

	if got := Sprint(root); got != "A is [1, 2]\n" {
		t.Errorf("Sprint() = %q", got)
	}

	if _, err := ParseReader(ctx, failingReader{}); !errors.Is(err, ErrReadInput) {
		t.Errorf("ParseReader() error = %v, want ErrReadInput", err)
	}
}

func TestParseTree(t *testing.T) {
	tree, err := ParseTree(context.Background(), "A is 1")
	if err != nil {
		t.Fatalf("ParseTree() error = %v", err)
	}

	if len(tree.Children()) != 1 {
		t.Errorf("children = %d, want 1", len(tree.Children()))
	}
}

func TestExpression(t *testing.T) {
	got, err := Expression("private N is 1")
	if err != nil {
		t.Fatalf("Expression() error = %v", err)
	}

	want := Fields{"visibility": Text("private"), "namespace": Text("N"), "value": Text("1")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Expression() mismatch (-want +got):\n%s", diff)
	}

	all, err := Expressions("1\n2")
	if err != nil || len(all) != 2 {
		t.Errorf("Expressions() = %v, %v", all, err)
	}

	if _, err := Expression("1\n2"); !errors.Is(err, ErrCardinalityMismatch) {
		t.Errorf("Expression() with two statements error = %v", err)
	}

	if _, err := Expression(""); !errors.Is(err, ErrEmptyCode) {
		t.Errorf("Expression(\"\") error = %v", err)
	}
}
