package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/ndfkit/lang"
	"github.com/ardnew/ndfkit/log"
)

// Query selects rows of a document and optionally edits them.
//
// Without assignments every selected row is printed in canonical form. With
// assignments each selected row is edited and the whole document is printed.
type Query struct {
	Where string   `help:"Select rows for which the expression holds."                                    placeholder:"EXPR"       short:"e"`
	Match string   `help:"Select rows matching a row pattern; fields absent from the pattern match anything." placeholder:"CODE"       short:"m"`
	Set   []string `help:"Assign FIELD=CODE on every selected row; an empty CODE clears the field."       placeholder:"FIELD=CODE" sep:"none" short:"s"`
	Width int      `default:"100"                                                                         help:"Line width before rows are broken across lines." short:"w"`

	Input `embed:""`
}

// Run executes the query command.
func (q *Query) Run(ctx context.Context) error {
	sel, err := q.selector()
	if err != nil {
		return err
	}

	assign, err := assignments(q.Set)
	if err != nil {
		return err
	}

	doc, err := q.parse(ctx)
	if err != nil {
		return err
	}

	var rows []lang.Row

	for item := range lang.Walk(doc, sel) {
		rows = append(rows, item.(lang.Row))
	}

	log.DebugContext(ctx, "query",
		slog.String("where", q.Where),
		slog.String("match", q.Match),
		slog.Int("selected", len(rows)),
	)

	out := stdout(ctx)
	width := lang.WithWidth(q.Width)

	if len(assign) == 0 {
		for _, r := range rows {
			if _, err := fmt.Fprintln(out, lang.Sprint(r, width)); err != nil {
				return err
			}
		}

		return nil
	}

	for _, r := range rows {
		if err := r.EditLoose(assign); err != nil {
			idx, _ := r.Index()

			return ErrEdit.Wrap(err).With(
				slog.String("kind", r.Kind()),
				slog.Int("index", idx),
			)
		}
	}

	return lang.Format(out, doc, width)
}

// selector returns the predicate selecting rows by all given criteria.
func (q *Query) selector() (func(any) bool, error) {
	conds := []func(any) bool{isRow}

	if q.Where != "" {
		where, err := lang.Where(q.Where)
		if err != nil {
			return nil, err
		}

		conds = append(conds, where)
	}

	if q.Match != "" {
		match, err := matcher(q.Match)
		if err != nil {
			return nil, err
		}

		conds = append(conds, match)
	}

	return func(item any) bool {
		for _, c := range conds {
			if !c(item) {
				return false
			}
		}

		return true
	}, nil
}

func isRow(item any) bool {
	_, ok := item.(lang.Row)

	return ok
}

// matcher returns a predicate comparing rows against code in pattern mode.
// The code must parse as a row of at least one kind.
func matcher(code string) (func(any) bool, error) {
	_, err := lang.ListRowFrom(code)

	if err != nil {
		for _, from := range []func(string) error{
			func(s string) error { _, err := lang.MemberRowFrom(s); return err },
			func(s string) error { _, err := lang.ParamRowFrom(s); return err },
			func(s string) error { _, err := lang.MapRowFrom(s); return err },
		} {
			if from(code) == nil {
				err = nil

				break
			}
		}
	}

	if err != nil {
		return nil, err
	}

	return func(item any) bool {
		r, ok := item.(lang.Row)

		return ok && r.Compare(code, true)
	}, nil
}

// assignments parses FIELD=CODE pairs.
func assignments(set []string) (lang.Fields, error) {
	if len(set) == 0 {
		return nil, nil
	}

	f := make(lang.Fields, len(set))

	for _, s := range set {
		name, code, ok := strings.Cut(s, "=")

		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, ErrInvalidAssignment.With(slog.String("assignment", s))
		}

		if code = strings.TrimSpace(code); code == "" {
			f[name] = nil
		} else {
			f[name] = code
		}
	}

	return f, nil
}
