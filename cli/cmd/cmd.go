package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer commands print results to.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Source is a single input document.
type Source struct {
	// Name is the resolved path, or "-" for stdin.
	Name string

	open func() (io.ReadCloser, error)
}

// IsStdin reports whether s reads standard input.
func (s Source) IsStdin() bool { return s.Name == stdinSource }

// Open opens the source for reading.
func (s Source) Open() (io.ReadCloser, error) { return s.open() }

// ReadAll returns the full content of the source.
func (s Source) ReadAll() (string, error) {
	r, err := s.Open()
	if err != nil {
		return "", ErrReadSource.Wrap(err).With(sourceAttr(s))
	}
	defer r.Close()

	var sb strings.Builder
	if _, err := io.Copy(&sb, r); err != nil {
		return "", ErrReadSource.Wrap(err).With(sourceAttr(s))
	}

	return sb.String(), nil
}

// SourceFiles is an ordered, deduplicated set of input documents.
type SourceFiles interface {
	IsZero() bool
	Stdin() io.Reader
	Sources() []Source
	io.Reader
	io.WriterTo
}

type sourceFiles struct {
	files    []Source
	hasStdin bool
	reader   io.Reader
}

// IsZero reports whether there are no source files.
func (s *sourceFiles) IsZero() bool { return len(s.files) == 0 && !s.hasStdin }

// Stdin returns os.Stdin if stdin was included as a source, or nil otherwise.
func (s *sourceFiles) Stdin() io.Reader {
	if s.hasStdin {
		return os.Stdin
	}

	return nil
}

// Sources returns the regular files in order followed by stdin, if present.
func (s *sourceFiles) Sources() []Source {
	out := append([]Source(nil), s.files...)
	if s.hasStdin {
		out = append(out, stdinFile())
	}

	return out
}

// Read implements io.Reader by reading all sources in order as a single
// document. Consecutive sources are separated by a newline so that the
// last statement of one never runs into the first statement of the next.
func (s *sourceFiles) Read(p []byte) (n int, err error) {
	if s.reader == nil {
		s.reader = s.concat()
	}

	return s.reader.Read(p)
}

// WriteTo implements io.WriterTo by writing all sources to w in order.
func (s *sourceFiles) WriteTo(w io.Writer) (n int64, err error) {
	if s.reader == nil {
		s.reader = s.concat()
	}

	return io.Copy(w, s.reader)
}

func (s *sourceFiles) concat() io.Reader {
	srcs := s.Sources()
	readers := make([]io.Reader, 0, 2*len(srcs))

	for i, src := range srcs {
		if i > 0 {
			readers = append(readers, strings.NewReader("\n"))
		}

		readers = append(readers, &lazyReader{src: src})
	}

	return io.MultiReader(readers...)
}

// lazyReader opens its source on first read and closes it at EOF.
type lazyReader struct {
	src Source
	rc  io.ReadCloser
	err error
}

func (l *lazyReader) Read(p []byte) (int, error) {
	if l.err != nil {
		return 0, l.err
	}

	if l.rc == nil {
		if l.rc, l.err = l.src.Open(); l.err != nil {
			return 0, l.err
		}
	}

	n, err := l.rc.Read(p)
	if err == io.EOF {
		_ = l.rc.Close()
		l.err = io.EOF
	}

	return n, err
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// OpenSources returns the input documents named by sources.
//
// The function deduplicates files by resolving symlinks and comparing
// device/inode pairs. Files that cannot be resolved are skipped. All
// occurrences of "-" are replaced with a single stdin source placed last.
// OpenSources returns nil if no source remains.
func OpenSources(sources []string) SourceFiles {
	if len(sources) == 0 {
		return nil
	}

	var srcs sourceFiles

	srcs.files = make([]Source, 0, len(sources))
	seen := make(map[fileKey]struct{})

	var stdinKey fileKey
	if info, err := os.Stdin.Stat(); err == nil {
		stdinKey, _ = makeFileKey(info)
	}

	for _, src := range sources {
		if src == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		file, ok := uniqueFile(src, seen)
		if !ok {
			continue
		}

		srcs.files = append(srcs.files, file)
	}

	// Stdin may have been included via "-" or as a named file.
	// Both of which will be represented by stdinKey in seen.
	_, srcs.hasStdin = seen[stdinKey]

	if srcs.IsZero() {
		return nil
	}

	return &srcs
}

// uniqueFile returns the source at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
func uniqueFile(path string, seen map[fileKey]struct{}) (Source, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Source{}, false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return Source{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		return Source{}, false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return Source{}, false
	}

	if _, exists := seen[key]; exists {
		return Source{}, false
	}

	seen[key] = struct{}{}

	return Source{
		Name: resolved,
		open: func() (io.ReadCloser, error) { return os.Open(resolved) },
	}, true
}

func stdinFile() Source {
	return Source{
		Name: stdinSource,
		open: func() (io.ReadCloser, error) { return io.NopCloser(os.Stdin), nil },
	}
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
