package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/ardnew/ndfkit/lang"
	"github.com/ardnew/ndfkit/log"
)

// Fmt parses documents and prints them in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Print canonical NDF text (default)."`
	JSON   JSON   `cmd:""                    help:"Export the document model as JSON."`
	YAML   YAML   `cmd:""                    help:"Export the document model as YAML."`
	Tree   Tree   `cmd:""                    help:"Dump the concrete syntax tree."`
}

// Native prints each source in canonical form.
type Native struct {
	Width   int   `default:"100"  help:"Line width before rows are broken across lines." short:"w"`
	Check   bool  `               help:"List sources that are not canonical and fail."     short:"c"`
	Diff    bool  `               help:"Print a diff against the canonical form."          short:"d"`
	Write   bool  `               help:"Rewrite sources in place."`
	Color   Color `default:"auto" enum:"auto,always,never"                                  help:"Colorize diff output (${enum})."`
	Lenient bool  `               help:"Keep unparseable statements as opaque text."`

	Source []string `arg:"" default:"-" help:"Source input file(s) or '-' for stdin." name:"source"`
}

// Run executes the fmt command. Every source is processed; failures are
// collected and returned together.
func (f *Native) Run(ctx context.Context) error {
	var errs *multierror.Error

	for _, path := range f.Source {
		if path == stdinSource {
			continue
		}

		if _, err := os.Stat(path); err != nil {
			errs = multierror.Append(errs,
				ErrReadSource.Wrap(err).With(slog.String("source", path)))
		}
	}

	srcs := OpenSources(f.Source)
	if srcs == nil {
		if errs != nil {
			return errs.ErrorOrNil()
		}

		return ErrNoSource
	}

	out := stdout(ctx)

	for _, src := range srcs.Sources() {
		if err := f.format(ctx, out, src); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	return errs.ErrorOrNil()
}

func (f *Native) format(ctx context.Context, out io.Writer, src Source) error {
	text, err := src.ReadAll()
	if err != nil {
		return err
	}

	doc, err := lang.Parse(ctx, text,
		lang.WithLenient(f.Lenient),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return ErrParseSource.Wrap(err).With(sourceAttr(src))
	}

	formatted := lang.Sprint(doc, lang.WithWidth(f.Width))
	changed := formatted != text

	log.DebugContext(ctx, "formatted",
		sourceAttr(src),
		slog.Int("statements", doc.Len()),
		slog.Bool("changed", changed),
	)

	switch {
	case f.Diff:
		err = writeDiff(out, src.Name, text, formatted, f.Color.enabled(out))

	case f.Write && !src.IsStdin():
		if changed {
			err = rewrite(src.Name, formatted)
		}

	case f.Check:
		if changed {
			_, err = fmt.Fprintln(out, src.Name)
		}

	default:
		_, err = io.WriteString(out, formatted)
	}

	if err != nil {
		return ErrWriteSource.Wrap(err).With(sourceAttr(src))
	}

	if f.Check && changed {
		return ErrNotCanonical.With(sourceAttr(src))
	}

	return nil
}

// rewrite replaces the content of the file at path, keeping its mode.
func rewrite(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	return os.WriteFile(path, []byte(content), info.Mode().Perm())
}

// Input selects the document read by the export and query commands.
type Input struct {
	Lenient bool `help:"Keep unparseable statements as opaque text."`

	Source []string `arg:"" default:"-" help:"Source input file(s) or '-' for stdin; files are concatenated." name:"source"`
}

// parse reads every source as one document.
func (e Input) parse(ctx context.Context) (*lang.List, error) {
	srcs := OpenSources(e.Source)
	if srcs == nil {
		return nil, ErrNoSource.With(slog.Any("source", e.Source))
	}

	doc, err := lang.ParseReader(ctx, srcs,
		lang.WithLenient(e.Lenient),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return nil, ErrParseSource.Wrap(err)
	}

	return doc, nil
}

// JSON exports the document model as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output (0 for compact)." short:"i"`

	Input `embed:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	doc, err := j.parse(ctx)
	if err != nil {
		return err
	}

	if err := lang.FormatJSON(ctx, stdout(ctx), doc, j.Indent); err != nil {
		return ErrExport.Wrap(err).With(slog.String("format", "json"))
	}

	return nil
}

// YAML exports the document model as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output (0 for flow style)." short:"i"`

	Input `embed:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	doc, err := y.parse(ctx)
	if err != nil {
		return err
	}

	if err := lang.FormatYAML(ctx, stdout(ctx), doc, y.Indent); err != nil {
		return ErrExport.Wrap(err).With(slog.String("format", "yaml"))
	}

	return nil
}

// Tree dumps the concrete syntax tree, including ERROR and MISSING nodes.
type Tree struct {
	Source []string `arg:"" default:"-" help:"Source input file(s) or '-' for stdin; files are concatenated." name:"source"`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) error {
	srcs := OpenSources(t.Source)
	if srcs == nil {
		return ErrNoSource.With(slog.Any("source", t.Source))
	}

	var sb strings.Builder
	if _, err := srcs.WriteTo(&sb); err != nil {
		return ErrReadSource.Wrap(err)
	}

	tree, err := lang.ParseTree(ctx, sb.String(),
		lang.WithLenient(true),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return ErrParseSource.Wrap(err)
	}

	return tree.Dump(stdout(ctx))
}
