package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/fatih/color"
)

// palette holds the colors of the pretty handler. All colors are disabled
// when output is not a terminal.
type palette struct {
	key, text, number, yes, no, stamp, source *color.Color
	level                                     map[Level]*color.Color
}

func newPalette(enable bool) palette {
	p := palette{
		key:    color.New(color.FgHiBlack),
		text:   color.New(color.FgCyan),
		number: color.New(color.FgYellow),
		yes:    color.New(color.FgGreen),
		no:     color.New(color.FgRed),
		stamp:  color.New(color.FgBlue),
		source: color.New(color.FgHiBlack, color.Italic),
		level: map[Level]*color.Color{
			LevelTrace: color.New(color.FgMagenta),
			LevelDebug: color.New(color.FgBlue),
			LevelInfo:  color.New(color.FgGreen),
			LevelWarn:  color.New(color.FgYellow),
			LevelError: color.New(color.FgRed, color.Bold),
		},
	}

	all := []*color.Color{p.key, p.text, p.number, p.yes, p.no, p.stamp, p.source}
	for _, c := range p.level {
		all = append(all, c)
	}

	for _, c := range all {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

func (p palette) forLevel(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return p.level[LevelError]
	case l >= slog.LevelWarn:
		return p.level[LevelWarn]
	case l >= slog.LevelInfo:
		return p.level[LevelInfo]
	case l >= slog.LevelDebug:
		return p.level[LevelDebug]
	}

	return p.level[LevelTrace]
}

// prettyHandler writes one aligned line per record:
//
//	TIME LEVEL message key=value group.key=value
type prettyHandler struct {
	opts   *slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	paint  palette
	attrs  []slog.Attr
	prefix string
}

func newPrettyHandler(c config, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:  opts,
		mu:    &sync.Mutex{},
		w:     c.output,
		paint: newPalette(c.color),
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		if a := h.opts.ReplaceAttr(nil, slog.Time(slog.TimeKey, r.Time)); a.Key != "" {
			h.paint.stamp.Fprint(buf, a.Value.String())
			buf.WriteByte(' ')
		}
	}

	name := strings.ToUpper(Level(r.Level).String())
	h.paint.forLevel(r.Level).Fprintf(buf, "%-5s", name)

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			buf.WriteByte(' ')
			h.paint.source.Fprintf(buf, "%s:%d", src.File, src.Line)
		}
	}

	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(buf, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// WithAttrs returns a handler that writes attrs, qualified by the current
// group, after every message.
func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)

	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			h.writeAttr(buf, sub, g)
		}

		return
	}

	buf.WriteByte(' ')
	h.paint.key.Fprint(buf, prefix+a.Key+"=")
	h.writeValue(buf, a.Value)
}

func (h *prettyHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		h.paint.text.Fprint(buf, quote(v.String()))

	case slog.KindInt64:
		h.paint.number.Fprint(buf, strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		h.paint.number.Fprint(buf, strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		h.paint.number.Fprint(buf, strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			h.paint.yes.Fprint(buf, "true")
		} else {
			h.paint.no.Fprint(buf, "false")
		}

	case slog.KindDuration:
		h.paint.number.Fprint(buf, v.Duration().String())

	case slog.KindTime:
		h.paint.stamp.Fprint(buf, v.Time().Format(time.RFC3339))

	default:
		if err, ok := v.Any().(error); ok {
			h.paint.no.Fprint(buf, quote(err.Error()))

			return
		}

		h.paint.text.Fprint(buf, quote(fmt.Sprint(v.Any())))
	}
}

// quote returns s, quoted if it is empty or contains spaces, quotes, '=',
// or control characters.
func quote(s string) string {
	if s == "" {
		return `""`
	}

	for _, r := range s {
		if unicode.IsSpace(r) || r == '"' || r == '=' || !unicode.IsPrint(r) {
			return strconv.Quote(s)
		}
	}

	return s
}
