package webdex

import "context"

// Embedder produces one vector per text from an external embedding service.
type Embedder interface {
	// Embed requests an embedding vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector dimensionality produced by Embed,
	// used when creating collections.
	Dimensions() int
}
