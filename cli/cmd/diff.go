package cmd

import (
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines shown around each change.
const diffContext = 3

// Color selects when diff output is colorized.
type Color string

const (
	ColorAuto   Color = "auto"
	ColorAlways Color = "always"
	ColorNever  Color = "never"
)

// enabled reports whether output written to w should be colorized.
func (c Color) enabled(w io.Writer) bool {
	switch c {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type diffPalette struct {
	header, hunk, del, ins *color.Color
}

func newDiffPalette(enable bool) diffPalette {
	p := diffPalette{
		header: color.New(color.Bold),
		hunk:   color.New(color.FgCyan),
		del:    color.New(color.FgRed),
		ins:    color.New(color.FgGreen),
	}

	for _, c := range []*color.Color{p.header, p.hunk, p.del, p.ins} {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

type lineOp struct {
	op   diffpatch.Operation
	text string
}

// lineOps returns the line-level edit script turning a into b.
func lineOps(a, b string) []lineOp {
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var ops []lineOp

	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}

			ops = append(ops, lineOp{op: d.Type, text: strings.TrimSuffix(line, "\n")})
		}
	}

	return ops
}

// writeDiff writes a unified diff from a to b labelled with name. Nothing is
// written when a and b are equal.
func writeDiff(w io.Writer, name, a, b string, colored bool) error {
	if a == b {
		return nil
	}

	p := newDiffPalette(colored)
	ops := lineOps(a, b)

	// oldN[k] and newN[k] count the lines of each side preceding ops[k].
	oldN := make([]int, len(ops)+1)
	newN := make([]int, len(ops)+1)

	for k, o := range ops {
		oldN[k+1], newN[k+1] = oldN[k], newN[k]

		if o.op != diffpatch.DiffInsert {
			oldN[k+1]++
		}

		if o.op != diffpatch.DiffDelete {
			newN[k+1]++
		}
	}

	var sb strings.Builder

	p.header.Fprintf(&sb, "--- %s\n", name)
	p.header.Fprintf(&sb, "+++ %s (formatted)\n", name)

	for start, end := range hunks(ops) {
		p.hunk.Fprintf(&sb, "@@ -%s +%s @@\n",
			hunkRange(oldN[start], oldN[end]-oldN[start]),
			hunkRange(newN[start], newN[end]-newN[start]),
		)

		for _, o := range ops[start:end] {
			switch o.op {
			case diffpatch.DiffDelete:
				p.del.Fprintln(&sb, "-"+o.text)
			case diffpatch.DiffInsert:
				p.ins.Fprintln(&sb, "+"+o.text)
			default:
				sb.WriteString(" " + o.text + "\n")
			}
		}
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// hunks yields the [start, end) op ranges of each hunk. Changes separated by
// at most 2*diffContext unchanged lines share a hunk.
func hunks(ops []lineOp) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		k := 0

		for {
			for k < len(ops) && ops[k].op == diffpatch.DiffEqual {
				k++
			}

			if k == len(ops) {
				return
			}

			start := max(0, k-diffContext)
			last := k

			for j := k + 1; j < len(ops) && j <= last+2*diffContext; j++ {
				if ops[j].op != diffpatch.DiffEqual {
					last = j
				}
			}

			end := min(len(ops), last+1+diffContext)

			if !yield(start, end) {
				return
			}

			k = end
		}
	}
}

// hunkRange formats the "start,count" part of a hunk header. before is the
// number of lines preceding the hunk.
func hunkRange(before, count int) string {
	switch count {
	case 0:
		return strconv.Itoa(before) + ",0"
	case 1:
		return strconv.Itoa(before + 1)
	}

	return strconv.Itoa(before+1) + "," + strconv.Itoa(count)
}
