package webdex

import (
	"context"
	"fmt"
	"strings"
)

// Distance metrics supported by the vector store.
const (
	DistanceCosine = "Cosine"
	DistanceDot    = "Dot"
)

// PointPayload is the typed payload stored alongside each vector.
type PointPayload struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
}

// IndexPoint is one embedded chunk destined for the vector store.
type IndexPoint struct {
	ID      string       `json:"id"`
	Vector  []float32    `json:"vector"`
	Payload PointPayload `json:"payload"`
}

// VectorMatch is one nearest-neighbor search result.
type VectorMatch struct {
	ID      string       `json:"id"`
	Score   float32      `json:"score"`
	Payload PointPayload `json:"payload"`
}

// VectorStore is the external vector index.
type VectorStore interface {
	// EnsureCollection makes sure a collection with the given vector size
	// and distance metric exists. The check is idempotent: creation happens
	// only on a not-found response; any other unexpected status is an
	// error.
	EnsureCollection(ctx context.Context, name string, size int, distance string) error

	// UpsertPoints writes a batch of points in one call.
	UpsertPoints(ctx context.Context, name string, points []IndexPoint) error

	// Search returns up to limit nearest neighbors of vector, optionally
	// filtered by a minimum score threshold (0 disables the threshold).
	Search(ctx context.Context, name string, vector []float32, limit int, threshold float32) ([]VectorMatch, error)
}

// PointID derives the stable point identifier for a chunk.
func PointID(sourceID string, ordinal int) string {
	return fmt.Sprintf("%s:%d", sourceID, ordinal)
}

// CollectionName derives the deterministic collection name for a job from a
// configurable prefix. Characters outside [a-zA-Z0-9_-] are replaced so the
// name is safe for URL paths.
func CollectionName(prefix, jobID string) string {
	name := prefix + jobID
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
