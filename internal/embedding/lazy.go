package embedding

import (
	"context"
	"fmt"
	"sync"
)

// Lazy defers expensive model loading until the first Embed call. The load
// runs at most once per process; concurrent first callers block on the same
// initialization and share the resulting instance. A failed load is not
// retried: every later call reports ErrUnavailable.
type Lazy struct {
	factory    func() (Embedder, error)
	dimensions int
	once       sync.Once
	inner      Embedder
	initErr    error
}

// NewLazy wraps factory. dimensions must be known up front so that callers
// can size an index before the model has been loaded.
func NewLazy(dimensions int, factory func() (Embedder, error)) *Lazy {
	return &Lazy{factory: factory, dimensions: dimensions}
}

func (l *Lazy) init() (Embedder, error) {
	l.once.Do(func() {
		inner, err := l.factory()
		if err != nil {
			l.initErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			return
		}
		l.inner = inner
	})
	return l.inner, l.initErr
}

// Embed initializes the backend on first use and delegates to it.
func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	inner, err := l.init()
	if err != nil {
		return nil, err
	}
	return inner.Embed(ctx, text)
}

// EmbedBatch initializes the backend on first use and delegates to it.
func (l *Lazy) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	inner, err := l.init()
	if err != nil {
		return nil, err
	}
	return inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the configured embedding dimension without triggering a load.
func (l *Lazy) Dimensions() int {
	return l.dimensions
}

// Close closes the backend if it was ever initialized.
func (l *Lazy) Close() error {
	if l.inner != nil {
		return l.inner.Close()
	}
	return nil
}
