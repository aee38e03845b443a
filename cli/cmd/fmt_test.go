package cmd

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"

	"github.com/ardnew/ndfkit/lang"
)

const (
	messy     = "a is 1\nb is  [1,2]\n"
	canonical = "a is 1\n\nb is [1, 2]\n"
)

func TestNative_Run(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{
			name:  "statements",
			input: messy,
			width: 100,
			want:  canonical,
		},
		{
			name:  "object members",
			input: "T is O(a = 1 b: int = 2)",
			width: 100,
			want:  "T is O(\n    a = 1\n    b: int = 2\n)\n",
		},
		{
			name:  "narrow width",
			input: "L is [1, 2, 3]",
			width: 8,
			want:  "L is [\n    1,\n    2,\n    3\n]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "doc.ndf", tt.input)

			var buf bytes.Buffer

			f := &Native{Width: tt.width, Source: []string{path}}
			if err := f.Run(testContext(t, &buf)); err != nil {
				t.Fatalf("Native.Run() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNative_Stdin(t *testing.T) {
	withStdin(t, messy)

	var buf bytes.Buffer

	f := &Native{Width: 100, Source: []string{"-"}}
	if err := f.Run(testContext(t, &buf)); err != nil {
		t.Fatalf("Native.Run() error = %v", err)
	}

	if got := buf.String(); got != canonical {
		t.Errorf("got %q, want %q", got, canonical)
	}
}

func TestNative_Check(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.ndf", canonical)
	bad := writeFile(t, dir, "bad.ndf", messy)

	var buf bytes.Buffer

	f := &Native{Width: 100, Check: true, Source: []string{good}}
	if err := f.Run(testContext(t, &buf)); err != nil {
		t.Errorf("Check on canonical source: error = %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("Check on canonical source printed %q", buf.String())
	}

	f.Source = []string{good, bad}

	err := f.Run(testContext(t, &buf))
	if !errors.Is(err, ErrNotCanonical) {
		t.Fatalf("Check error = %v, want ErrNotCanonical", err)
	}

	if !strings.Contains(buf.String(), "bad.ndf") || strings.Contains(buf.String(), "good.ndf") {
		t.Errorf("Check listed %q, want only bad.ndf", buf.String())
	}
}

func TestNative_Write(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.ndf", messy)

	var buf bytes.Buffer

	f := &Native{Width: 100, Write: true, Source: []string{path}}
	if err := f.Run(testContext(t, &buf)); err != nil {
		t.Fatalf("Native.Run() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != canonical {
		t.Errorf("rewritten file = %q, want %q", data, canonical)
	}

	if buf.Len() != 0 {
		t.Errorf("Write printed %q", buf.String())
	}
}

func TestNative_Diff(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.ndf", messy)

	var buf bytes.Buffer

	f := &Native{Width: 100, Diff: true, Color: ColorNever, Source: []string{path}}
	if err := f.Run(testContext(t, &buf)); err != nil {
		t.Fatalf("Native.Run() error = %v", err)
	}

	for _, want := range []string{
		"--- " + path + "\n",
		"-b is  [1,2]\n",
		"+b is [1, 2]\n",
		" a is 1\n",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("diff missing %q:\n%s", want, buf.String())
		}
	}

	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("diff contains color escapes with ColorNever")
	}
}

func TestNative_CollectsErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.ndf", "a is 1")
	broken := writeFile(t, dir, "broken.ndf", "x is [1 2]")
	missing := dir + "/missing.ndf"

	var buf bytes.Buffer

	f := &Native{Width: 100, Source: []string{missing, broken, good}}
	err := f.Run(testContext(t, &buf))

	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("Native.Run() error = %v, want *multierror.Error", err)
	}

	if len(merr.Errors) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(merr.Errors), merr)
	}

	if !errors.Is(merr.Errors[0], ErrReadSource) {
		t.Errorf("first error = %v, want ErrReadSource", merr.Errors[0])
	}

	if !errors.Is(merr.Errors[1], ErrParseSource) || !errors.Is(merr.Errors[1], lang.ErrSyntax) {
		t.Errorf("second error = %v, want ErrParseSource wrapping ErrSyntax", merr.Errors[1])
	}

	if got := buf.String(); got != "a is 1\n" {
		t.Errorf("good source output = %q", got)
	}
}

func TestNative_Lenient(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.ndf", "A is 1\n@\nB is 2")

	var buf bytes.Buffer

	f := &Native{Width: 100, Lenient: true, Source: []string{path}}
	if err := f.Run(testContext(t, &buf)); err != nil {
		t.Fatalf("Native.Run() error = %v", err)
	}

	if got, want := buf.String(), "A is 1\n\n@\n\nB is 2\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNative_NoSource(t *testing.T) {
	f := &Native{Width: 100, Source: []string{"/nonexistent/doc.ndf"}}

	if err := f.Run(testContext(t, &bytes.Buffer{})); !errors.Is(err, ErrReadSource) {
		t.Errorf("Native.Run() error = %v, want ErrReadSource", err)
	}
}

func TestJSON_Run(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.ndf", "A is [1, 2]")

	var buf bytes.Buffer

	j := &JSON{Indent: 0, Input: Input{Source: []string{path}}}
	if err := j.Run(testContext(t, &buf)); err != nil {
		t.Fatalf("JSON.Run() error = %v", err)
	}

	want := `[{"namespace":"A","value":{"kind":"List","rows":[{"value":1},{"value":2}]}}]` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJSON_ConcatenatesSources(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.ndf", "A is 1")
	b := writeFile(t, dir, "b.ndf", "B is 2")

	var buf bytes.Buffer

	j := &JSON{Indent: 0, Input: Input{Source: []string{a, b}}}
	if err := j.Run(testContext(t, &buf)); err != nil {
		t.Fatalf("JSON.Run() error = %v", err)
	}

	want := `[{"namespace":"A","value":1},{"namespace":"B","value":2}]` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestYAML_Run(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.ndf", "export A is 'x'")

	var buf bytes.Buffer

	y := &YAML{Indent: 2, Input: Input{Source: []string{path}}}
	if err := y.Run(testContext(t, &buf)); err != nil {
		t.Fatalf("YAML.Run() error = %v", err)
	}

	for _, want := range []string{"namespace: A", "visibility: export"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("YAML output %q missing %q", buf.String(), want)
		}
	}
}

func TestExport_Errors(t *testing.T) {
	broken := writeFile(t, t.TempDir(), "broken.ndf", "x is [1 2]")

	j := &JSON{Input: Input{Source: []string{"/nonexistent/doc.ndf"}}}
	if err := j.Run(testContext(t, &bytes.Buffer{})); !errors.Is(err, ErrNoSource) {
		t.Errorf("JSON.Run() error = %v, want ErrNoSource", err)
	}

	y := &YAML{Input: Input{Source: []string{broken}}}
	if err := y.Run(testContext(t, &bytes.Buffer{})); !errors.Is(err, lang.ErrSyntax) {
		t.Errorf("YAML.Run() error = %v, want ErrSyntax", err)
	}
}

func TestTree_Run(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"stray comma", "A is [1, , 2]", "(ERROR ["},
		{"missing comma", "A is [1 2]", `(MISSING ",")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "doc.ndf", tt.src)

			var buf bytes.Buffer

			tr := &Tree{Source: []string{path}}
			if err := tr.Run(testContext(t, &buf)); err != nil {
				t.Fatalf("Tree.Run() error = %v", err)
			}

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if !strings.HasPrefix(lines[0], "(source_file [0, ") {
				t.Errorf("first line = %q, want source_file root", lines[0])
			}

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("tree does not contain %q:\n%s", tt.want, buf.String())
			}
		})
	}
}
