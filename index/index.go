// Package index turns file entries into embedded points in the vector
// store. It owns the chunk → embed → upsert pipeline and the batching
// policy; collection naming and persistence of file entries stay with the
// caller.
package index

import (
	"context"
	"fmt"

	"github.com/webdex/webdex"
)

// DefaultBatchSize is the number of points sent per upsert call.
const DefaultBatchSize = 64

// Indexer embeds chunks and writes them to the vector store.
type Indexer struct {
	embedder  webdex.Embedder
	store     webdex.VectorStore
	exporter  webdex.Exporter
	opts      webdex.ChunkOptions
	batchSize int
	distance  string
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithExporter attaches an advisory chunk exporter. Export failures are
// logged and skipped, never fatal.
func WithExporter(e webdex.Exporter) Option {
	return func(ix *Indexer) {
		ix.exporter = e
	}
}

// WithChunkOptions overrides the chunking defaults.
func WithChunkOptions(opts webdex.ChunkOptions) Option {
	return func(ix *Indexer) {
		ix.opts = opts
	}
}

// WithBatchSize overrides the upsert batch size.
func WithBatchSize(n int) Option {
	return func(ix *Indexer) {
		if n > 0 {
			ix.batchSize = n
		}
	}
}

// WithDistance overrides the collection distance metric.
func WithDistance(distance string) Option {
	return func(ix *Indexer) {
		ix.distance = distance
	}
}

// NewIndexer creates an Indexer backed by the given embedder and store.
func NewIndexer(embedder webdex.Embedder, store webdex.VectorStore, opts ...Option) *Indexer {
	ix := &Indexer{
		embedder:  embedder,
		store:     store,
		batchSize: DefaultBatchSize,
		distance:  webdex.DistanceCosine,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Result summarizes one indexing run.
type Result struct {
	Files        int
	Chunks       int
	Points       int
	ExportFailed int
}

// Run chunks, embeds, and upserts every file into collection. Embedding and
// upsert errors abort the run; export errors are logged and skipped.
// Progress is reported per file inside sub.
func (ix *Indexer) Run(ctx context.Context, collection string, files []webdex.FileEntry, reporter webdex.Reporter, sub webdex.SubRange) (*Result, error) {
	if reporter == nil {
		reporter = webdex.NopReporter{}
	}

	if err := ix.store.EnsureCollection(ctx, collection, ix.embedder.Dimensions(), ix.distance); err != nil {
		return nil, err
	}

	result := &Result{}
	var batch []webdex.IndexPoint

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ix.store.UpsertPoints(ctx, collection, batch); err != nil {
			return err
		}
		result.Points += len(batch)
		batch = batch[:0]
		return nil
	}

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		chunks := webdex.BuildChunks(file.Name, file.URL, file.Text, ix.opts)
		result.Files++
		result.Chunks += len(chunks)

		for _, chunk := range chunks {
			vector, err := ix.embedder.Embed(ctx, chunk.Text)
			if err != nil {
				return result, webdex.Errorf(webdex.ErrorCode(err), "embedding %s chunk %d: %s", file.Name, chunk.Ordinal, webdex.ErrorMessage(err))
			}

			if ix.exporter != nil {
				if err := ix.exporter.ExportChunk(file.Hash, chunk); err != nil {
					result.ExportFailed++
					reporter.Log(webdex.LevelWarn, fmt.Sprintf("export failed for %s chunk %d: %v", file.Name, chunk.Ordinal, err))
				}
			}

			batch = append(batch, webdex.IndexPoint{
				ID:     webdex.PointID(file.Hash, chunk.Ordinal),
				Vector: vector,
				Payload: webdex.PointPayload{
					URL:     chunk.URL,
					Name:    chunk.Name,
					Ordinal: chunk.Ordinal,
					Text:    chunk.Text,
				},
			})
			if len(batch) >= ix.batchSize {
				if err := flush(); err != nil {
					return result, err
				}
			}
		}

		reporter.Progress(sub.Pct(i+1, len(files)))
	}

	if err := flush(); err != nil {
		return result, err
	}

	reporter.Log(webdex.LevelInfo, fmt.Sprintf("indexed %d chunks from %d files into %s", result.Chunks, result.Files, collection))
	return result, nil
}

// Search embeds query and returns its nearest chunks from collection.
func (ix *Indexer) Search(ctx context.Context, collection, query string, limit int, threshold float32) ([]webdex.VectorMatch, error) {
	if query == "" {
		return nil, webdex.Errorf(webdex.EINVALID, "search query required")
	}
	if limit <= 0 {
		limit = 5
	}

	vector, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return ix.store.Search(ctx, collection, vector, limit, threshold)
}
