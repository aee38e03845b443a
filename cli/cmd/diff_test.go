package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
)

func numbered(n int, replace map[int]string) string {
	var sb strings.Builder

	for i := 1; i <= n; i++ {
		if s, ok := replace[i]; ok {
			sb.WriteString(s + "\n")

			continue
		}

		fmt.Fprintf(&sb, "l%d\n", i)
	}

	return sb.String()
}

func TestWriteDiff_Equal(t *testing.T) {
	var buf bytes.Buffer

	if err := writeDiff(&buf, "x.ndf", "a\n", "a\n", false); err != nil {
		t.Fatal(err)
	}

	if buf.Len() != 0 {
		t.Errorf("diff of equal text = %q, want empty", buf.String())
	}
}

func TestWriteDiff_Hunks(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		headers []string
	}{
		{
			name:    "single change",
			a:       numbered(20, nil),
			b:       numbered(20, map[int]string{10: "X"}),
			headers: []string{"@@ -7,7 +7,7 @@"},
		},
		{
			name:    "nearby changes share a hunk",
			a:       numbered(20, nil),
			b:       numbered(20, map[int]string{5: "X", 10: "Y"}),
			headers: []string{"@@ -2,12 +2,12 @@"},
		},
		{
			name:    "distant changes",
			a:       numbered(30, nil),
			b:       numbered(30, map[int]string{2: "X", 25: "Y"}),
			headers: []string{"@@ -1,5 +1,5 @@", "@@ -22,7 +22,7 @@"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			if err := writeDiff(&buf, "x.ndf", tt.a, tt.b, false); err != nil {
				t.Fatal(err)
			}

			var got []string

			for line := range strings.Lines(buf.String()) {
				if strings.HasPrefix(line, "@@") {
					got = append(got, strings.TrimSuffix(line, "\n"))
				}
			}

			if strings.Join(got, "|") != strings.Join(tt.headers, "|") {
				t.Errorf("hunk headers = %q, want %q", got, tt.headers)
			}
		})
	}
}

func TestWriteDiff_Color(t *testing.T) {
	var buf bytes.Buffer

	if err := writeDiff(&buf, "x.ndf", "a\n", "b\n", true); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("colored diff has no escapes: %q", buf.String())
	}
}

func TestHunkRange(t *testing.T) {
	tests := []struct {
		before, count int
		want          string
	}{
		{0, 0, "0,0"},
		{4, 1, "5"},
		{4, 3, "5,3"},
	}

	for _, tt := range tests {
		if got := hunkRange(tt.before, tt.count); got != tt.want {
			t.Errorf("hunkRange(%d, %d) = %q, want %q", tt.before, tt.count, got, tt.want)
		}
	}
}

func TestColor_Enabled(t *testing.T) {
	var buf bytes.Buffer

	if !ColorAlways.enabled(&buf) {
		t.Error("ColorAlways disabled")
	}

	if ColorNever.enabled(os.Stdout) {
		t.Error("ColorNever enabled")
	}

	if ColorAuto.enabled(&buf) {
		t.Error("ColorAuto enabled for a buffer")
	}
}
