// Package cli wires the ndfkit command line.
//
// [Run] builds a Kong application from [CLI]: the logging and profiling
// flag groups plus the fmt, query, and version commands of package cmd.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: text or json
//   - --log-time-layout: Go time layout or a name such as RFC3339 or none
//   - --log-caller: include the source location of each message
//   - --log-pretty: colorized single-line text records
//
// Logging flags are applied before the rest of the command line is parsed,
// so they affect messages produced while parsing.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: profile to record (allocs, block, clock, cpu, ...)
//   - --pprof-dir: output directory, by default under the user cache dir
//
// # Configuration Files
//
// Flag defaults are read from the user configuration directory, for example
// ~/.config/ndfkit on Linux. Three files are consulted when present:
//
//	config.json   {"log-level": "debug"}
//	config.yaml   log: {level: debug}
//	config.ndf    config is Config(log_level = 'debug')
//
// Command-line flags override configuration values.
package cli
