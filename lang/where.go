package lang

import (
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Where compiles a boolean expr-lang expression into a predicate over rows,
// suitable for [Walk] and FindByCond. The expression sees:
//
//   - kind: the row kind, e.g. "MemberRow"
//   - index: the row's position in its container, or -1
//   - container: the kind of the owning container, or ""
//   - value, member, namespace, visibility, param, key: the field's text, the
//     kind of a container value, or "" when absent
//   - type: the row's type annotation, or else the type of an Object or
//     List value
//
// Items other than rows never match.
func Where(src string) (func(any) bool, error) {
	program, err := expr.Compile(src, expr.Env(rowEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.String("source", src))
	}

	return func(item any) bool {
		r, ok := item.(Row)
		if !ok {
			return false
		}

		out, err := vm.Run(program, rowEnv(r))
		if err != nil {
			return false
		}

		match, _ := out.(bool)

		return match
	}, nil
}

// rowEnv builds the expression environment of r. A nil row yields the
// environment with every name present and empty.
func rowEnv(r Row) map[string]any {
	env := map[string]any{
		"kind":       "",
		"index":      -1,
		"container":  "",
		"type":       "",
		"value":      "",
		"member":     "",
		"namespace":  "",
		"visibility": "",
		"param":      "",
		"key":        "",
	}

	if r == nil {
		return env
	}

	b := r.row()
	env["kind"] = b.schema.kind

	if b.parent != nil {
		env["container"] = b.parent.Kind()
	}

	if i, err := r.Index(); err == nil {
		env["index"] = i
	}

	for i, f := range b.schema.fields {
		switch v := b.cells[i].(type) {
		case Text:
			env[f.name] = string(v)
		case Container:
			env[f.name] = v.Kind()
		}
	}

	if slot := b.schema.slot["value"]; env["type"] == "" {
		switch v := b.cells[slot].(type) {
		case *Object:
			env["type"] = v.Type
		case *Template:
			env["type"] = v.Type
		case *List:
			env["type"] = v.Type
		}
	}

	return env
}
