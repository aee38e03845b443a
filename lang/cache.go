package lang

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/ndfkit/lang/parser"
)

// fragment is a cached parse of one wrapped fragment.
type fragment struct {
	once   sync.Once
	root   *parser.Node
	errs   []*parser.Error
	offset int
}

// fragments caches syntax trees keyed by the hash of shape and code. Trees
// are never mutated after parsing, so entries can be shared.
var fragments sync.Map

func fragmentTree(shape Shape, code string) (*fragment, error) {
	key := xxh3.HashString(shape.String() + "\x00" + code)

	v, _ := fragments.LoadOrStore(key, new(fragment))

	f, ok := v.(*fragment)
	if !ok {
		return nil, ErrInvalidValue.
			With(slog.String("issue", "invalid fragment type in cache"))
	}

	f.once.Do(func() {
		format, offset := shape.wrapper()
		f.root, f.errs = parser.Parse([]byte(fmt.Sprintf(format, code)))
		f.offset = offset
	})

	return f, nil
}

// ClearCache discards all cached fragment syntax trees.
func ClearCache() {
	fragments.Clear()
}
