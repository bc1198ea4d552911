package mock

import "github.com/webdex/webdex"

var _ webdex.Exporter = (*Exporter)(nil)

// Exporter is a mock implementation of webdex.Exporter.
type Exporter struct {
	ExportChunkFn func(sourceID string, chunk webdex.Chunk) error
}

func (e *Exporter) ExportChunk(sourceID string, chunk webdex.Chunk) error {
	return e.ExportChunkFn(sourceID, chunk)
}
