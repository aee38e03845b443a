package lang

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
)

// field describes one storage slot of a row kind.
type field struct {
	name     string
	aliases  []string
	required bool
	view     bool // metadata that forces multi-line layout when set
}

// schema is the field table of a row kind. Every name in an alias group
// resolves to the same slot.
type schema struct {
	kind   string
	fields []field
	slot   map[string]int
}

func newSchema(kind string, fields ...field) *schema {
	s := &schema{kind: kind, fields: fields, slot: map[string]int{}}

	for i, f := range fields {
		s.slot[f.name] = i
		for _, a := range f.aliases {
			s.slot[a] = i
		}
	}

	return s
}

// Slot indices per row kind.
const (
	listValue = iota
	listVisibility
	listNamespace
)

const (
	memberValue = iota
	memberMember
	memberType
	memberVisibility
	memberNamespace
)

const (
	paramParam = iota
	paramType
	paramValue
)

const (
	mapKey = iota
	mapValue
)

var (
	listSchema = newSchema("ListRow",
		field{name: "value", aliases: []string{"v"}, required: true},
		field{name: "visibility", aliases: []string{"vis"}, view: true},
		field{name: "namespace", aliases: []string{"n"}, view: true},
	)

	memberSchema = newSchema("MemberRow",
		field{name: "value", aliases: []string{"v"}, required: true},
		field{name: "member", aliases: []string{"m"}, view: true},
		field{name: "type", aliases: []string{"t"}},
		field{name: "visibility", aliases: []string{"vis"}, view: true},
		field{name: "namespace", aliases: []string{"n"}, view: true},
	)

	paramSchema = newSchema("ParamRow",
		field{name: "param", aliases: []string{"p"}, required: true, view: true},
		field{name: "type", aliases: []string{"t"}},
		field{name: "value", aliases: []string{"v"}},
	)

	mapSchema = newSchema("MapRow",
		field{name: "key", aliases: []string{"k"}, required: true},
		field{name: "value", aliases: []string{"v"}, required: true},
	)
)

// names returns the canonical field names in slot order.
func (s *schema) names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.name
	}

	return out
}

// lookup resolves a canonical name or alias to its slot.
func (s *schema) lookup(name string) (int, error) {
	if i, ok := s.slot[name]; ok {
		return i, nil
	}

	return -1, s.unknown(name)
}

func (s *schema) unknown(name string) *Error {
	err := ErrInvalidField.With(
		slog.String("row", s.kind),
		slog.String("field", name),
	)

	if hint := suggest(name, slices.Sorted(maps.Keys(s.slot))); hint != "" {
		return err.withHint(strconv.Quote(name) + " " + hint)
	}

	return err.withHint(strconv.Quote(name))
}

// resolve validates a set of named values and maps them to slots. In strict
// mode unknown names fail with ErrInvalidField; otherwise they are skipped.
// Two names of the same alias group, or the reserved name "parent", fail
// with ErrAmbiguousArguments.
func (s *schema) resolve(in map[string]any, strict bool) (map[int]Value, error) {
	out := make(map[int]Value, len(in))
	seen := make(map[int]string, len(in))

	for _, name := range slices.Sorted(maps.Keys(in)) {
		if name == "parent" {
			return nil, ErrAmbiguousArguments.
				With(slog.String("row", s.kind)).
				withHint("parent is set by container mutation only")
		}

		slot, ok := s.slot[name]
		if !ok {
			if strict {
				return nil, s.unknown(name)
			}

			continue
		}

		if prev, dup := seen[slot]; dup {
			return nil, ErrAmbiguousArguments.
				With(
					slog.String("row", s.kind),
					slog.String("field", s.fields[slot].name),
				).
				withHint("mutually exclusive names " +
					strconv.Quote(prev) + " and " + strconv.Quote(name))
		}

		seen[slot] = name

		v, err := toValue(in[name])
		if err != nil {
			return nil, WrapError(err).With(
				slog.String("row", s.kind),
				slog.String("field", s.fields[slot].name),
			)
		}

		out[slot] = v
	}

	return out, nil
}

// suggest returns a "did you mean" phrase for the closest candidates, or "".
func suggest(pattern string, candidates []string) string {
	matches := fuzzy.Find(pattern, candidates)
	if len(matches) == 0 {
		return ""
	}

	quoted := make([]string, 0, 3)
	for _, m := range matches[:min(3, len(matches))] {
		quoted = append(quoted, strconv.Quote(m.Str))
	}

	return "(did you mean " + strings.Join(quoted, " or ") + "?)"
}
