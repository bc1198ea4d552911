package mock

import (
	"context"

	"github.com/webdex/webdex"
)

var _ webdex.VectorStore = (*VectorStore)(nil)

// VectorStore is a mock implementation of webdex.VectorStore.
type VectorStore struct {
	EnsureCollectionFn func(ctx context.Context, name string, size int, distance string) error
	UpsertPointsFn     func(ctx context.Context, name string, points []webdex.IndexPoint) error
	SearchFn           func(ctx context.Context, name string, vector []float32, limit int, threshold float32) ([]webdex.VectorMatch, error)
}

func (s *VectorStore) EnsureCollection(ctx context.Context, name string, size int, distance string) error {
	return s.EnsureCollectionFn(ctx, name, size, distance)
}

func (s *VectorStore) UpsertPoints(ctx context.Context, name string, points []webdex.IndexPoint) error {
	return s.UpsertPointsFn(ctx, name, points)
}

func (s *VectorStore) Search(ctx context.Context, name string, vector []float32, limit int, threshold float32) ([]webdex.VectorMatch, error) {
	return s.SearchFn(ctx, name, vector, limit, threshold)
}
