// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Loggers are configured once, at creation, with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//	logger.Info("parsed", slog.Int("statements", 3))
//
// [Logger.With] adds attributes to every subsequent message, and
// [Logger.Wrap] derives a logger with some options overridden.
//
// The zero [Logger] is valid and discards everything, so libraries can
// accept a Logger option and log unconditionally.
//
// # Levels
//
// In addition to the slog levels there is [LevelTrace], below
// [LevelDebug], used for per-operation detail. Level names are printed in
// upper case ("TRACE" rather than "DEBUG-4").
//
// # Formats
//
// [FormatText] (default) and [FormatJSON] are supported. Text output is
// rendered by a pretty handler unless [WithPretty](false) is given; it is
// colored only when writing to a terminal or when forced by [WithColor].
//
// # Package-level logger
//
// Functions such as [Info] and [ErrorContext] use a package-level logger
// writing to standard error. Reconfigure it with [Config]. Context-unaware
// functions use [DefaultContextProvider], which returns [context.TODO].
package log
