package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"

	"github.com/ardnew/ndfkit/lang/parser"
	"github.com/ardnew/ndfkit/log"
)

// Option configures parsing behavior.
type Option func(*options)

type options struct {
	logger  log.Logger
	lenient bool
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLenient disables the syntax error check. ERROR nodes are then kept as
// text rows and MISSING nodes are skipped.
func WithLenient(lenient bool) Option {
	return func(o *options) {
		o.lenient = lenient
	}
}

func makeOptions(opts ...Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Parse parses a whole document into a root [List].
func Parse(ctx context.Context, src string, opts ...Option) (*List, error) {
	o := makeOptions(opts...)

	tree, err := parseTree(ctx, src, o)
	if err != nil {
		return nil, err
	}

	c := &converter{}

	root, err := c.root(tree)
	if err != nil {
		return nil, err
	}

	o.logger.TraceContext(ctx, "convert",
		slog.Int("statements", root.Len()),
		slog.Int("rows", c.rows),
	)

	return root, nil
}

// ParseReader reads r to the end and parses it as a whole document.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*List, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	makeOptions(opts...).logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return Parse(ctx, string(data), opts...)
}

// ParseTree returns the concrete syntax tree of a whole document.
func ParseTree(
	ctx context.Context,
	src string,
	opts ...Option,
) (*parser.Node, error) {
	return parseTree(ctx, src, makeOptions(opts...))
}

func parseTree(ctx context.Context, src string, o options) (*parser.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, errs := parser.Parse([]byte(src))

	o.logger.TraceContext(ctx, "parse",
		slog.Int("source_bytes", len(src)),
		slog.Int("errors", len(errs)),
		slog.Bool("lenient", o.lenient),
	)

	if len(errs) > 0 && !o.lenient {
		return nil, newSyntaxError(errs, src, 0)
	}

	return tree, nil
}

// Expression parses code as exactly one statement and returns its fields
// keyed by canonical name: value, and the namespace and visibility when
// present.
func Expression(code string, opts ...Option) (Fields, error) {
	all, err := Expressions(code, opts...)
	if err != nil {
		return nil, err
	}

	if len(all) != 1 {
		return nil, ErrCardinalityMismatch.With(slog.Int("statements", len(all)))
	}

	return all[0], nil
}

// Expressions parses code as statements and returns the fields of each.
func Expressions(code string, opts ...Option) ([]Fields, error) {
	o := makeOptions(opts...)

	nodes, err := entries(ShapeRoot, code, o.lenient)
	if err != nil {
		return nil, err
	}

	c := &converter{}
	out := make([]Fields, 0, len(nodes))

	for _, n := range nodes {
		f := Fields{}
		if err := c.item(n, f); err != nil {
			return nil, err
		}

		out = append(out, f)
	}

	return out, nil
}
