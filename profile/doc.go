// Package profile starts optional runtime profiling with
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag [Modes] is empty and [Profiler.Start] always returns a
// no-op [Stopper], so callers never need their own build constraints.
//
//	p := profile.Profiler{Mode: "cpu", Path: dir}
//	defer p.Start().Stop()
//
// Profiles are written into Path, or the working directory when Path is
// empty. Inspect them with "go tool pprof".
package profile
