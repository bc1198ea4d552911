package webdex

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// PageRecord is the result of fetching and extracting one URL. It is
// produced once per fetched URL and consumed by the chunking pipeline;
// persistence is the caller's concern.
type PageRecord struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Headings []string `json:"headings,omitempty"`
	Text     string   `json:"text"`
	Err      error    `json:"-"`
}

// FileEntry is a PageRecord-derived (or repository-derived) file emitted to
// the caller for persistence and fed into the chunk/index pipeline.
type FileEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
	Size int    `json:"size"`
	Text string `json:"text"`
	Hash string `json:"hash"`
}

// File entry types.
const (
	FileTypePage = "page"
	FileTypeRepo = "repo"
)

// NewFileEntry builds a FileEntry from content, filling in size and
// content hash.
func NewFileEntry(name, url, typ, text string) FileEntry {
	return FileEntry{
		Name: name,
		URL:  url,
		Type: typ,
		Size: len(text),
		Text: text,
		Hash: ContentHash(text),
	}
}

// ContentHash computes a stable content hash using xxhash.
func ContentHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}
