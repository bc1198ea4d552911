package webdex

// Exporter persists chunks outside the vector store, e.g. as JSONL lines
// and readable mirror files. Export failures are advisory: the indexing
// pipeline logs and skips them without aborting the run.
type Exporter interface {
	// ExportChunk persists one chunk for the given source.
	ExportChunk(sourceID string, chunk Chunk) error
}
