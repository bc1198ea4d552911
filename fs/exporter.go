// Package fs provides file-based chunk exports: a JSONL stream for
// downstream tooling and a readable markdown mirror for humans.
package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/webdex/webdex"
)

// Ensure Exporter implements webdex.Exporter at compile time.
var _ webdex.Exporter = (*Exporter)(nil)

// ChunksFile is the JSONL file name under the export directory.
const ChunksFile = "chunks.jsonl"

// ReadableDir is the readable mirror directory under the export directory.
const ReadableDir = "readable"

// exportLine is one JSONL record. The source identifier ties chunks of the
// same file together across the line stream.
type exportLine struct {
	SourceID string `json:"sourceId"`
	Ordinal  int    `json:"ordinal"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Text     string `json:"text"`
}

// Exporter writes chunks under a base directory. It is safe for concurrent
// use; JSONL lines are appended under a lock so lines never interleave.
type Exporter struct {
	baseDir  string
	readable bool

	mu    sync.Mutex
	lines *os.File
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithReadableMirror enables per-chunk markdown mirror files alongside the
// JSONL stream.
func WithReadableMirror() Option {
	return func(e *Exporter) {
		e.readable = true
	}
}

// NewExporter creates an Exporter rooted at baseDir. The directory is
// created if missing; the JSONL file is truncated so each run exports a
// fresh stream.
func NewExporter(baseDir string, opts ...Option) (*Exporter, error) {
	e := &Exporter{baseDir: baseDir}
	for _, opt := range opts {
		opt(e)
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(baseDir, ChunksFile), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	e.lines = f
	return e, nil
}

// ExportChunk appends the chunk as one JSONL line and, when enabled, writes
// its readable mirror file.
func (e *Exporter) ExportChunk(sourceID string, chunk webdex.Chunk) error {
	data, err := json.Marshal(exportLine{
		SourceID: sourceID,
		Ordinal:  chunk.Ordinal,
		Name:     chunk.Name,
		URL:      chunk.URL,
		Text:     chunk.Text,
	})
	if err != nil {
		return err
	}

	e.mu.Lock()
	_, err = e.lines.Write(append(data, '\n'))
	e.mu.Unlock()
	if err != nil {
		return err
	}

	if e.readable {
		return e.writeReadable(sourceID, chunk)
	}
	return nil
}

// writeReadable writes readable/<sourceID>/<ordinal>.md with frontmatter.
func (e *Exporter) writeReadable(sourceID string, chunk webdex.Chunk) error {
	dir := filepath.Join(e.baseDir, ReadableDir, safeName(sourceID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(chunk.URL)
	b.WriteString("\nname: ")
	b.WriteString(chunk.Name)
	b.WriteString(fmt.Sprintf("\nordinal: %d", chunk.Ordinal))
	b.WriteString("\n---\n\n")
	b.WriteString(chunk.Text)
	b.WriteString("\n")

	path := filepath.Join(dir, fmt.Sprintf("%04d.md", chunk.Ordinal))
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// Close flushes and closes the JSONL stream.
func (e *Exporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lines.Close()
}

// safeName makes a string safe as a single path element.
func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
