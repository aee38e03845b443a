package profile

// Stopper stops a running profile and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes a single profiling session.
type Profiler struct {
	// Mode is one of [Modes]. Profiling is disabled when Mode is empty or
	// not recognized.
	Mode string
	// Path is the output directory.
	Path string
	// Quiet suppresses the informational messages of the profiler.
	Quiet bool
}

// Option modifies a [Profiler].
type Option func(Profiler) Profiler

// WithMode sets the profiling mode.
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithPath sets the output directory.
func WithPath(path string) Option {
	return func(p Profiler) Profiler {
		p.Path = path

		return p
	}
}

// WithQuiet sets whether informational messages are suppressed.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

// Make returns a [Profiler] configured by opts.
func Make(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		if opt != nil {
			p = opt(p)
		}
	}

	return p
}

// Enabled reports whether Start would start a profile.
func (p Profiler) Enabled() bool {
	return p.Mode != "" && supported(p.Mode)
}

// Start begins profiling and returns a [Stopper] that ends it.
// Both Start and Stop are always safe to call.
func (p Profiler) Start() Stopper {
	if !p.Enabled() {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
