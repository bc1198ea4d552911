// Package gemini implements embedding via the Google Gemini API.
package gemini

import (
	"context"

	"google.golang.org/genai"

	"github.com/webdex/webdex"
)

const model = "gemini-embedding-001"

// DefaultDimensions is the requested output dimensionality.
const DefaultDimensions = 768

// Ensure Embedder implements webdex.Embedder at compile time.
var _ webdex.Embedder = (*Embedder)(nil)

// Embedder implements webdex.Embedder using Google Gemini.
type Embedder struct {
	client     *genai.Client
	dimensions int
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithDimensions overrides the requested output dimensionality.
func WithDimensions(n int) Option {
	return func(e *Embedder) {
		if n > 0 {
			e.dimensions = n
		}
	}
}

// NewEmbedder creates a new Embedder.
func NewEmbedder(client *genai.Client, opts ...Option) *Embedder {
	e := &Embedder{
		client:     client,
		dimensions: DefaultDimensions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed requests one embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, webdex.Errorf(webdex.EINVALID, "text required")
	}

	dims := int32(e.dimensions)
	result, err := e.client.Models.EmbedContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: text}},
		}},
		&genai.EmbedContentConfig{
			OutputDimensionality: &dims,
		},
	)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, webdex.Errorf(webdex.EINTERNAL, "gemini returned no embedding")
	}

	return result.Embeddings[0].Values, nil
}

// Dimensions returns the vector dimensionality produced by Embed.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}
