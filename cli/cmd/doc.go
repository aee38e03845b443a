// Package cmd implements the ndfkit subcommands.
//
// [Fmt] prints documents in canonical form, or exports them as JSON, YAML,
// or a concrete syntax tree. [Query] selects rows with an expression
// predicate or a row pattern and optionally edits them in place.
//
// Commands read their sources through [OpenSources] and write to the
// standard output of the [kong.Context] stored with [WithContext].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
