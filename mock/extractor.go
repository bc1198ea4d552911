package mock

import "github.com/webdex/webdex"

var _ webdex.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of webdex.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*webdex.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*webdex.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ webdex.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of webdex.LinkExtractor.
type LinkExtractor struct {
	LinksFn func(html string, baseURL string) ([]string, error)
}

func (e *LinkExtractor) Links(html string, baseURL string) ([]string, error) {
	return e.LinksFn(html, baseURL)
}

var _ webdex.Converter = (*Converter)(nil)

// Converter is a mock implementation of webdex.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
