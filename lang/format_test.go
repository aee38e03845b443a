package lang

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormat_Document(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "condensed list",
			src:  "A is [1,2]",
			want: "A is [1, 2]\n",
		},
		{
			name: "statements",
			src:  "A is 1\nexport B is 'x'",
			want: "A is 1\n\nexport B is 'x'\n",
		},
		{
			name: "object",
			src:  "T is O(a = 1, b: int = 2)",
			want: "T is O(\n    a = 1\n    b: int = 2\n)\n",
		},
		{
			name: "template",
			src:  "template T[a, b: int = 1] is O(x = a)",
			want: "template T[\n    a,\n    b: int = 1\n] is O(\n    x = a\n)\n",
		},
		{
			name: "map with container value",
			src:  "M is MAP[('k', [1, 2]), ('j', 3)]",
			want: "M is MAP[\n    (\n        'k',\n        [1, 2]\n    ),\n    ('j', 3)\n]\n",
		},
		{
			name: "binding in list",
			src:  "L is [n is 1, 2]",
			want: "L is [\n    n is 1,\n    2\n]\n",
		},
		{
			name: "nested container in list",
			src:  "L is [[1], 2]",
			want: "L is [\n    [1],\n    2\n]\n",
		},
		{
			name: "typed vector",
			src:  "V is float[1.0, 2.0]",
			want: "V is float[1.0, 2.0]\n",
		},
		{
			name: "empty containers",
			src:  "A is []\nB is T()\nC is MAP[]",
			want: "A is []\n\nB is T()\n\nC is MAP[]\n",
		},
		{
			name: "empty document",
			src:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sprint(mustParse(t, tt.src))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Sprint() mismatch (-want +got):\n%s", diff)
			}

			// canonical output is a fixed point
			again := Sprint(mustParse(t, got))
			if diff := cmp.Diff(got, again); diff != "" {
				t.Errorf("reformat mismatch (-first +second):\n%s", diff)
			}
		})
	}
}

func TestFormat_Width(t *testing.T) {
	l := NewList()
	if _, err := l.Add("aaaa, bbbb"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if got, want := Sprint(l, WithWidth(12)), "[aaaa, bbbb]"; got != want {
		t.Errorf("width 12 = %q, want %q", got, want)
	}

	if got, want := Sprint(l, WithWidth(11)), "[\n    aaaa,\n    bbbb\n]"; got != want {
		t.Errorf("width 11 = %q, want %q", got, want)
	}

	if got, want := Sprint(l, WithWidth(0)), "[aaaa, bbbb]"; got != want {
		t.Errorf("width 0 = %q, want %q", got, want)
	}
}

func TestFormat_WidthColumns(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		width int
		want  string
	}{
		{"accented fits", "'éé', 'éé'", 12, "['éé', 'éé']"},
		{"accented breaks", "'éé', 'éé'", 11, "[\n    'éé',\n    'éé'\n]"},
		{"wide fits", "'日本', x", 11, "['日本', x]"},
		{"wide breaks", "'日本', x", 10, "[\n    '日本',\n    x\n]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewList()
			if _, err := l.Add(tt.code); err != nil {
				t.Fatalf("Add() error = %v", err)
			}

			if got := Sprint(l, WithWidth(tt.width)); got != tt.want {
				t.Errorf("width %d = %q, want %q", tt.width, got, tt.want)
			}
		})
	}
}

func TestFormat_Items(t *testing.T) {
	m, _ := NewMemberRow(Fields{"m": "a", "t": "int", "v": "1"})
	p, _ := NewParamRow(Fields{"p": "n", "v": "2"})

	tests := []struct {
		name string
		item any
		want string
	}{
		{"text", Text("'x'"), "'x'"},
		{"member row", m, "a: int = 1"},
		{"param row", p, "n = 2"},
		{"pair", Pair{Key: "'a'", Value: "1"}, "('a', 1)"},
		{"object", NewObject("T"), "T()"},
		{"unnamed template", NewTemplate("T"), "template _[] is T()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sprint(tt.item); got != tt.want {
				t.Errorf("Sprint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat_InvalidItem(t *testing.T) {
	var b bytes.Buffer

	if err := Format(&b, 42); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Format(42) error = %v", err)
	}

	if b.Len() != 0 {
		t.Errorf("wrote %q on error", b.String())
	}

	if got := Sprint(struct{}{}); got != "" {
		t.Errorf("Sprint(struct{}) = %q", got)
	}
}

func TestFormat_AfterEdit(t *testing.T) {
	root := mustParse(t, "Test is TObject(Member1: int = 1)")

	obj := root.At(0).Value().(*Object)
	if _, err := obj.Add("Member2 = [1, 2]"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := obj.At(0).SetValue("42"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}

	want := "Test is TObject(\n    Member1: int = 42\n    Member2 = [1, 2]\n)\n"
	if diff := cmp.Diff(want, Sprint(root)); diff != "" {
		t.Errorf("Sprint() mismatch (-want +got):\n%s", diff)
	}
}
