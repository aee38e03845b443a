package lang

import (
	"errors"
	"log/slog"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/ndfkit/lang/parser"
)

// Predefined errors (sentinel values). Match them with [errors.Is]; the
// errors returned by this package carry additional attributes describing the
// offending row, field, or input.
var (
	ErrSyntax               = NewError("syntax error")
	ErrInvalidField         = NewError("invalid field")
	ErrAmbiguousArguments   = NewError("ambiguous arguments")
	ErrCardinalityMismatch  = NewError("cardinality mismatch")
	ErrMissingRequiredField = NewError("missing required field")
	ErrOwnershipInvariant   = NewError("ownership invariant violated")
	ErrNotFound             = NewError("no matching row")
	ErrInvalidValue         = NewError("invalid value type")
	ErrEmptyCode            = NewError("expected ndf code")
	ErrIndexOutOfRange      = NewError("index out of range")
	ErrReadInput            = NewError("failed to read input")
	ErrCompile              = NewError("expression compilation failed")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	for _, a := range e.attrs {
		if a.Key == hintKey {
			part = append(part, a.Value.String())
		}
	}

	return strings.Join(part, ": ")
}

// Is reports whether target is an *Error with the same message, so that
// errors derived from a sentinel with [Error.Wrap] or [Error.With] still
// match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Attrs returns the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// hintKey marks an attribute whose value is appended to the error message.
const hintKey = "hint"

// withHint attaches a human-readable hint that also appears in Error().
func (e *Error) withHint(hint string) *Error {
	return e.With(slog.String(hintKey, hint))
}

// SyntaxError reports the syntax errors of one parse, with the source line
// of the first error and a caret under its column.
type SyntaxError struct {
	Errors []*parser.Error
	Source string
}

func newSyntaxError(errs []*parser.Error, source string, offset int) *SyntaxError {
	shifted := make([]*parser.Error, len(errs))

	for i, e := range errs {
		c := *e
		c.Line = max(1, c.Line-offset)
		shifted[i] = &c
	}

	return &SyntaxError{Errors: shifted, Source: source}
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if len(e.Errors) == 0 {
		return ErrSyntax.msg
	}

	msg, snippet, expected := e.formatWithContext()

	var b strings.Builder

	b.WriteString(msg)
	b.WriteString(snippet)

	if len(expected) > 0 {
		b.WriteString("\texpected: ")
		b.WriteString(strings.Join(expected, ", "))
	}

	if n := len(e.Errors) - 1; n > 0 {
		b.WriteString("\n\t(and ")
		b.WriteString(strconv.Itoa(n))
		b.WriteString(" more)")
	}

	return b.String()
}

// Is matches [ErrSyntax].
func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", ErrSyntax.msg),
		slog.Int("count", len(e.Errors)),
	}

	if len(e.Errors) > 0 {
		first := e.Errors[0]
		attrs = append(attrs,
			slog.Int("line", first.Line),
			slog.Int("column", first.Column),
			slog.String("found", first.Found),
		)
	}

	return slog.GroupValue(attrs...)
}

// formatWithContext formats the first error with the offending source line.
func (e *SyntaxError) formatWithContext() (string, string, []string) {
	first := e.Errors[0]
	lines := strings.Split(e.Source, "\n")

	var buf, src strings.Builder

	buf.WriteString("syntax error at line ")
	buf.WriteString(strconv.Itoa(first.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(first.Column))
	buf.WriteString(": unexpected ")
	buf.WriteString(first.Found)
	buf.WriteString("\n")

	if first.Line > 0 && first.Line <= len(lines) {
		line := lines[first.Line-1]

		src.WriteString("  ")
		src.WriteString(strconv.Itoa(first.Line))
		src.WriteString(" | ")
		src.WriteString(line)
		src.WriteRune('\n')

		// 2 leading spaces + " | "
		padding := strings.Repeat(" ", len(strconv.Itoa(first.Line))+5)
		if first.Column > 0 {
			padding += strings.Repeat(" ", first.Column-1)
		}

		src.WriteString(padding + "^\n")
	}

	exp := make([]string, 0, len(first.Expected))
	for _, x := range first.Expected {
		exp = append(exp, strconv.Quote(x))
	}

	slices.Sort(exp)

	return buf.String(), src.String(), exp
}

// typeName describes the dynamic type of value for error attributes.
func typeName(value any) string {
	if value == nil {
		return "nil"
	}

	return reflect.TypeOf(value).String()
}
