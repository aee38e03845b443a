package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// ToNative converts a model entity to maps, slices, and scalars suitable for
// encoding. A row becomes a map of its present fields; a container becomes
// {"kind", "type", "rows"} with "params" added for templates; a root list
// becomes the slice of its rows. Number, boolean, nil, and quoted string
// atoms become native values; other text is kept verbatim.
func ToNative(item any) any {
	switch x := item.(type) {
	case nil:
		return nil

	case Text:
		return nativeText(string(x))

	case Row:
		out := make(map[string]any, len(x.row().cells))
		for name, v := range x.Fields() {
			out[name] = ToNative(v)
		}

		return out

	case *List:
		if x.IsRoot {
			return nativeRows(x)
		}

		return nativeContainer(x, x.Type)

	case *Template:
		m := nativeContainer(x, x.Type)
		if x.Params != nil {
			m["params"] = nativeRows(x.Params)
		}

		return m

	case *Object:
		return nativeContainer(x, x.Type)

	case Container:
		return nativeContainer(x, "")
	}

	return fmt.Sprint(item)
}

func nativeContainer(c Container, typ string) map[string]any {
	m := map[string]any{
		"kind": c.Kind(),
		"rows": nativeRows(c),
	}

	if typ != "" {
		m["type"] = typ
	}

	return m
}

func nativeRows(c Container) []any {
	rows := make([]any, c.Len())
	for i := range rows {
		rows[i] = ToNative(c.rowAt(i))
	}

	return rows
}

// nativeText converts a text atom to its native Go value when it is a plain
// literal.
func nativeText(s string) any {
	switch s {
	case "nil":
		return nil
	case "true":
		return true
	case "false":
		return false
	}

	if s != "" && strings.ContainsRune("0123456789+-.", rune(s[0])) {
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return i
		}

		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
	}

	if n := len(s); n >= 2 && (s[0] == '\'' || s[0] == '"') && s[n-1] == s[0] {
		inner := s[1 : n-1]
		if !strings.ContainsRune(inner, rune(s[0])) {
			return inner
		}
	}

	return s
}

// FormatJSON writes item as JSON to the writer.
func FormatJSON(_ context.Context, w io.Writer, item any, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(ToNative(item), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(ToNative(item))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes item as YAML to the writer.
func FormatYAML(ctx context.Context, w io.Writer, item any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, ToNative(item), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}
