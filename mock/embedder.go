package mock

import (
	"context"

	"github.com/webdex/webdex"
)

var _ webdex.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of webdex.Embedder.
type Embedder struct {
	EmbedFn      func(ctx context.Context, text string) ([]float32, error)
	DimensionsFn func() int
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

func (e *Embedder) Dimensions() int {
	if e.DimensionsFn == nil {
		return 0
	}
	return e.DimensionsFn()
}
