package index_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webdex/webdex"
	"github.com/webdex/webdex/index"
	"github.com/webdex/webdex/mock"
)

func unitEmbedder() *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(_ context.Context, text string) ([]float32, error) {
			return []float32{float32(len(text))}, nil
		},
		DimensionsFn: func() int { return 1 },
	}
}

// recordingStore collects upserted points and remembers collection setup.
type recordingStore struct {
	mu       sync.Mutex
	ensured  []string
	size     int
	distance string
	batches  [][]webdex.IndexPoint
}

func (s *recordingStore) store() *mock.VectorStore {
	return &mock.VectorStore{
		EnsureCollectionFn: func(_ context.Context, name string, size int, distance string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.ensured = append(s.ensured, name)
			s.size = size
			s.distance = distance
			return nil
		},
		UpsertPointsFn: func(_ context.Context, _ string, points []webdex.IndexPoint) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.batches = append(s.batches, append([]webdex.IndexPoint(nil), points...))
			return nil
		},
	}
}

func (s *recordingStore) allPoints() []webdex.IndexPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []webdex.IndexPoint
	for _, b := range s.batches {
		all = append(all, b...)
	}
	return all
}

func TestIndexer_Run_ChunksEmbedsAndUpserts(t *testing.T) {
	t.Parallel()

	rec := &recordingStore{}
	ix := index.NewIndexer(unitEmbedder(), rec.store())

	files := []webdex.FileEntry{
		webdex.NewFileEntry("a.md", "https://docs.test/a", webdex.FileTypePage, "First sentence. Second sentence."),
		webdex.NewFileEntry("b.md", "https://docs.test/b", webdex.FileTypePage, "Other text here."),
	}

	result, err := ix.Run(context.Background(), "docs", files, nil, webdex.SubRange{Lo: 70, Hi: 99})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 2, result.Chunks)
	assert.Equal(t, 2, result.Points)
	assert.Equal(t, []string{"docs"}, rec.ensured)
	assert.Equal(t, 1, rec.size)
	assert.Equal(t, webdex.DistanceCosine, rec.distance)

	points := rec.allPoints()
	require.Len(t, points, 2)
	assert.Equal(t, webdex.PointID(files[0].Hash, 0), points[0].ID)
	assert.Equal(t, "a.md", points[0].Payload.Name)
	assert.Equal(t, "https://docs.test/a", points[0].Payload.URL)
	assert.Equal(t, 0, points[0].Payload.Ordinal)
}

func TestIndexer_Run_BatchesUpserts(t *testing.T) {
	t.Parallel()

	rec := &recordingStore{}
	ix := index.NewIndexer(unitEmbedder(), rec.store(),
		index.WithBatchSize(2),
		// One sentence per chunk so chunk count is predictable.
		index.WithChunkOptions(webdex.ChunkOptions{TargetTokens: 1, OverlapTokens: 0}),
	)

	text := "Alpha one. Beta two. Gamma three. Delta four. Epsilon five."
	files := []webdex.FileEntry{
		webdex.NewFileEntry("a.md", "https://docs.test/a", webdex.FileTypePage, text),
	}

	result, err := ix.Run(context.Background(), "docs", files, nil, webdex.SubRange{Lo: 70, Hi: 99})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Chunks)
	assert.Equal(t, 5, result.Points)
	require.Len(t, rec.batches, 3)
	assert.Len(t, rec.batches[0], 2)
	assert.Len(t, rec.batches[1], 2)
	assert.Len(t, rec.batches[2], 1)
}

func TestIndexer_Run_EmbedErrorIsFatal(t *testing.T) {
	t.Parallel()

	embedder := &mock.Embedder{
		EmbedFn: func(context.Context, string) ([]float32, error) {
			return nil, webdex.Errorf(webdex.EUNAVAILABLE, "embedding service down")
		},
		DimensionsFn: func() int { return 1 },
	}
	rec := &recordingStore{}
	ix := index.NewIndexer(embedder, rec.store())

	files := []webdex.FileEntry{
		webdex.NewFileEntry("a.md", "https://docs.test/a", webdex.FileTypePage, "Some text."),
	}

	_, err := ix.Run(context.Background(), "docs", files, nil, webdex.SubRange{Lo: 70, Hi: 99})
	assert.Equal(t, webdex.EUNAVAILABLE, webdex.ErrorCode(err))
	assert.Empty(t, rec.allPoints())
}

func TestIndexer_Run_UpsertErrorIsFatal(t *testing.T) {
	t.Parallel()

	store := &mock.VectorStore{
		EnsureCollectionFn: func(context.Context, string, int, string) error { return nil },
		UpsertPointsFn: func(context.Context, string, []webdex.IndexPoint) error {
			return webdex.Errorf(webdex.EUNAVAILABLE, "store down")
		},
	}
	ix := index.NewIndexer(unitEmbedder(), store)

	files := []webdex.FileEntry{
		webdex.NewFileEntry("a.md", "https://docs.test/a", webdex.FileTypePage, "Some text."),
	}

	_, err := ix.Run(context.Background(), "docs", files, nil, webdex.SubRange{Lo: 70, Hi: 99})
	assert.Equal(t, webdex.EUNAVAILABLE, webdex.ErrorCode(err))
}

func TestIndexer_Run_ExportFailureLoggedAndSkipped(t *testing.T) {
	t.Parallel()

	rec := &recordingStore{}
	exporter := &mock.Exporter{
		ExportChunkFn: func(string, webdex.Chunk) error {
			return errors.New("disk full")
		},
	}
	reporter := &mock.Reporter{}
	ix := index.NewIndexer(unitEmbedder(), rec.store(), index.WithExporter(exporter))

	files := []webdex.FileEntry{
		webdex.NewFileEntry("a.md", "https://docs.test/a", webdex.FileTypePage, "Some text."),
	}

	result, err := ix.Run(context.Background(), "docs", files, reporter, webdex.SubRange{Lo: 70, Hi: 99})
	require.NoError(t, err)

	// The chunk is still indexed despite the export failure.
	assert.Equal(t, 1, result.Points)
	assert.Equal(t, 1, result.ExportFailed)

	var warned bool
	for _, line := range reporter.Logs() {
		if strings.Contains(line, "warn") && strings.Contains(line, "export failed") {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning log for the export failure")
}

func TestIndexer_Run_ProgressWithinSubRange(t *testing.T) {
	t.Parallel()

	rec := &recordingStore{}
	reporter := &mock.Reporter{}
	ix := index.NewIndexer(unitEmbedder(), rec.store())

	files := []webdex.FileEntry{
		webdex.NewFileEntry("a.md", "https://docs.test/a", webdex.FileTypePage, "One."),
		webdex.NewFileEntry("b.md", "https://docs.test/b", webdex.FileTypePage, "Two."),
	}

	_, err := ix.Run(context.Background(), "docs", files, reporter, webdex.SubRange{Lo: 70, Hi: 99})
	require.NoError(t, err)

	reports := reporter.ProgressReports()
	require.NotEmpty(t, reports)
	for _, pct := range reports {
		assert.GreaterOrEqual(t, pct, 70)
		assert.LessOrEqual(t, pct, 99)
	}
	assert.Equal(t, 99, reports[len(reports)-1])
}

func TestIndexer_Run_Cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recordingStore{}
	ix := index.NewIndexer(unitEmbedder(), rec.store())

	files := []webdex.FileEntry{
		webdex.NewFileEntry("a.md", "https://docs.test/a", webdex.FileTypePage, "Some text."),
	}

	_, err := ix.Run(ctx, "docs", files, nil, webdex.SubRange{Lo: 70, Hi: 99})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.allPoints())
}

func TestIndexer_Search(t *testing.T) {
	t.Parallel()

	store := &mock.VectorStore{
		SearchFn: func(_ context.Context, name string, vector []float32, limit int, threshold float32) ([]webdex.VectorMatch, error) {
			assert.Equal(t, "docs", name)
			assert.Equal(t, 3, limit)
			return []webdex.VectorMatch{{ID: "src:0", Score: 0.9}}, nil
		},
	}
	ix := index.NewIndexer(unitEmbedder(), store)

	matches, err := ix.Search(context.Background(), "docs", "how to install", 3, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "src:0", matches[0].ID)
}

func TestIndexer_Search_EmptyQuery(t *testing.T) {
	t.Parallel()

	ix := index.NewIndexer(unitEmbedder(), &mock.VectorStore{})
	_, err := ix.Search(context.Background(), "docs", "", 3, 0)

	assert.Equal(t, webdex.EINVALID, webdex.ErrorCode(err))
}
