// Package embedding provides text embedding via ONNX with caching and a
// process-wide lazy initialization guard.
package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable marks an embedding backend that failed to initialize or
// respond. Handlers surface it as a service-unavailable condition; the core
// never retries on its own.
var ErrUnavailable = errors.New("embedder unavailable")

// Embedder produces unit-norm vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
