package lang

import (
	"errors"
	"testing"
)

func TestWalk(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kinds []string
	}{
		{
			name:  "nested",
			src:   "A is [1, O(x = 2)]",
			kinds: []string{"List", "ListRow", "List", "ListRow", "ListRow", "Object", "MemberRow"},
		},
		{
			name:  "template",
			src:   "template T[a] is O(v = a)",
			kinds: []string{"List", "ListRow", "Template", "Params", "ParamRow", "MemberRow"},
		},
		{
			name:  "map",
			src:   "M is MAP[('k', [1])]",
			kinds: []string{"List", "ListRow", "Map", "MapRow", "List", "ListRow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string

			for item := range Walk(mustParse(t, tt.src), nil) {
				got = append(got, walkKind(item))
			}

			if len(got) != len(tt.kinds) {
				t.Fatalf("Walk() = %v, want %v", got, tt.kinds)
			}

			for i := range got {
				if got[i] != tt.kinds[i] {
					t.Errorf("item %d = %s, want %s", i, got[i], tt.kinds[i])
				}
			}
		})
	}
}

func walkKind(item any) string {
	switch x := item.(type) {
	case Row:
		return x.Kind()
	case Container:
		return x.Kind()
	}

	return typeName(item)
}

func TestWalk_Stop(t *testing.T) {
	n := 0

	for range Walk(mustParse(t, "A is [1, 2, 3]"), nil) {
		n++
		if n == 2 {
			break
		}
	}

	if n != 2 {
		t.Errorf("visited %d items after break, want 2", n)
	}
}

func TestWhere(t *testing.T) {
	root := mustParse(t, "A is [1, O(x = 2)]\nexport B is T(y = 'z')")

	tests := []struct {
		expr string
		want int
	}{
		{`kind == "MemberRow"`, 2},
		{`kind == "MemberRow" && member == "x"`, 1},
		{`type == "O"`, 1},
		{`container == "List" && index == 1`, 2},
		{`visibility == "export"`, 1},
		{`value == "List"`, 1},
		{`value == "'z'"`, 1},
		{`false`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			pred, err := Where(tt.expr)
			if err != nil {
				t.Fatalf("Where() error = %v", err)
			}

			n := 0
			for range Walk(root, pred) {
				n++
			}

			if n != tt.want {
				t.Errorf("matches = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestWhere_FindByCond(t *testing.T) {
	root := mustParse(t, "A is 1\nB is 2")

	pred, err := Where(`namespace == "B"`)
	if err != nil {
		t.Fatalf("Where() error = %v", err)
	}

	r, err := root.FindByCond(func(r *ListRow) bool { return pred(r) }, true)
	if err != nil || r.Value() != Text("2") {
		t.Errorf("FindByCond() = %v, %v", r, err)
	}
}

func TestWhere_CompileError(t *testing.T) {
	if _, err := Where(`kind ==`); !errors.Is(err, ErrCompile) {
		t.Errorf("Where() error = %v, want ErrCompile", err)
	}

	if _, err := Where(`index + 1`); !errors.Is(err, ErrCompile) {
		t.Errorf("non-boolean Where() error = %v, want ErrCompile", err)
	}
}
