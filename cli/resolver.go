package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/ndfkit/lang"
	"github.com/ardnew/ndfkit/log"
)

// config implements [kong.Resolver] over flattened configuration values.
//
// Keys are flag names. Nested tables are flattened by joining their keys
// with '-', and '_' is accepted in place of '-', so all of these configure
// the --log-level flag:
//
//	log-level: debug
//	log_level: debug
//	log:
//	  level: debug
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. Unknown flags resolve to nil so that
// Kong falls back to their defaults.
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	return c[flag.Name], nil
}

func (c config) set(key string, v any) {
	key = strings.ReplaceAll(key, "_", "-")

	if m, ok := v.(map[string]any); ok {
		for k, sub := range m {
			c.set(joinKey(key, k), sub)
		}

		return
	}

	if v = scalar(v); v != nil {
		c[key] = v
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "-" + key
}

// scalar converts a decoded configuration value into a form Kong parses:
// strings and booleans as is, numbers as strings, and sequences as
// comma-separated strings.
func scalar(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string, bool:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		part := make([]string, 0, len(x))
		for _, e := range x {
			part = append(part, fmt.Sprint(scalar(e)))
		}

		return strings.Join(part, ",")
	}

	return fmt.Sprint(v)
}

// resolveJSON returns a [kong.ConfigurationLoader] for JSON configuration
// files. Keys follow the same rules as [resolveYAML].
func resolveJSON(ctx context.Context) kong.ConfigurationLoader {
	return resolveTree(ctx, "json", json.Unmarshal)
}

// resolveYAML returns a [kong.ConfigurationLoader] for YAML configuration
// files. A malformed file is reported and ignored.
func resolveYAML(ctx context.Context) kong.ConfigurationLoader {
	return resolveTree(ctx, "yaml", func(data []byte, v any) error {
		return yaml.UnmarshalContext(ctx, data, v)
	})
}

// resolveTree decodes a document of nested tables with unmarshal and
// flattens it into a [config].
func resolveTree(
	ctx context.Context,
	format string,
	unmarshal func([]byte, any) error,
) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		c := config{}
		if len(bytes.TrimSpace(data)) == 0 {
			return c, nil
		}

		var doc map[string]any
		if err := unmarshal(data, &doc); err != nil {
			log.WarnContext(ctx, "ignoring configuration",
				slog.String("format", format),
				slog.Any("error", err),
			)

			return c, nil
		}

		for k, v := range doc {
			c.set(k, v)
		}

		return c, nil
	}
}

// resolveNDF returns a [kong.ConfigurationLoader] for configuration written
// as an NDF document. Flags are read from the object bound to namespace:
//
//	config is Config(
//	    log_level = 'debug'
//	    log = Log(pretty = false)
//	)
//
// Quoted strings are unquoted, true and false become booleans, nested
// objects are flattened, and lists become comma-separated values. Other
// values are used verbatim. A malformed file is reported and ignored.
func resolveNDF(ctx context.Context, namespace string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		doc, err := lang.ParseReader(ctx, r, lang.WithLogger(log.Default()))
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration",
				slog.String("format", "ndf"),
				slog.Any("error", err),
			)

			return config{}, nil
		}

		row, err := doc.ByNamespace(namespace, true)
		if err != nil {
			log.DebugContext(ctx, "no configuration namespace",
				slog.String("namespace", namespace),
			)

			return config{}, nil
		}

		obj, ok := row.Value().(*lang.Object)
		if !ok {
			log.WarnContext(ctx, "ignoring configuration",
				slog.String("namespace", namespace),
				slog.String("reason", "value is not an object"),
			)

			return config{}, nil
		}

		c := config{}
		for k, v := range objectValues(obj) {
			c.set(k, v)
		}

		return c, nil
	}
}

// objectValues converts the named members of obj to configuration values.
func objectValues(obj *lang.Object) map[string]any {
	out := make(map[string]any, obj.Len())

	for _, m := range obj.All() {
		if m.Member() == "" {
			continue
		}

		out[m.Member()] = nativeValue(m.Value())
	}

	return out
}

func nativeValue(v lang.Value) any {
	switch x := v.(type) {
	case lang.Text:
		s := x.String()

		if u, err := strconv.Unquote(s); err == nil {
			return u
		}

		if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
			return s[1 : len(s)-1]
		}

		if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
			return b
		}

		return s

	case *lang.Object:
		return objectValues(x)

	case *lang.List:
		items := make([]any, 0, x.Len())
		for _, r := range x.All() {
			items = append(items, nativeValue(r.Value()))
		}

		return items
	}

	return nil
}
