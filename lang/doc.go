// Package lang provides an editable document model for NDF, a declarative,
// statement-based configuration language for hierarchical data.
//
// # Model
//
// A document is a root [List] of statements. Values are either opaque
// [Text] atoms or containers:
//
//   - [List]: items, optionally a typed vector such as float[1.0, 2.0]
//   - [Object]: typed members, e.g. TObject(Member1: int = 1)
//   - [Template]: an Object with parameters, template T[a, b] is O(...)
//   - [Params]: the parameter list of a template
//   - [Map]: ordered key/value pairs, MAP[('a', 1), ('b', 2)]
//
// Each container holds rows of one kind: [ListRow], [MemberRow], [ParamRow],
// or [MapRow]. Row fields are addressed by canonical name or alias:
//
//	ListRow    value/v  visibility/vis  namespace/n
//	MemberRow  value/v  member/m  type/t  visibility/vis  namespace/n
//	ParamRow   param/p  type/t  value/v
//	MapRow     key/k    value/v
//
// # Ownership
//
// A container is owned by at most one row, and a row by at most one
// container. Assigning a container owned by another row, or adding a row
// owned by another container, stores a deep copy; the original stays where
// it was. Removed rows are detached and may be inserted elsewhere.
//
// # Matching
//
// [Row.Compare] and the containers' Compare methods support exact equality
// and pattern matching. In pattern mode fields absent from the pattern are
// wildcards and nested containers match by unordered containment:
//
//	root, _ := lang.Parse(ctx, src)
//	obj := root.At(0).Value().(*lang.Object)
//	rows, _ := obj.MatchPattern(lang.Fields{"m": "Member1"})
//	for r := range rows {
//		_ = r.Edit(lang.Fields{"v": "2"})
//	}
//	fmt.Print(lang.Sprint(root))
//
// # Printing
//
// [Format] emits canonical text: four-space indentation, one blank line
// between statements, and per container a choice between a condensed line
// and one row per line, made against a column budget ([WithWidth]).
package lang
