package webdex

// ExtractResult holds the content extracted from one HTML page.
// All fields degrade to empty values or defaults; extraction never fails on
// missing elements.
type ExtractResult struct {
	// Title is the page title, falling back to the first h1, then "Untitled".
	Title string

	// Headings is the text of all h1-h6 elements in document order,
	// non-empty only.
	Headings []string

	// Text is the cleaned body text of the best-matching content container
	// with boilerplate removed and whitespace collapsed.
	Text string

	// ContentHTML is the markup of the content container, used for
	// markdown conversion in readable export mode.
	ContentHTML string
}

// Extractor turns a fetched HTML document into structured page content.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// LinkExtractor pulls outbound link URLs from an HTML document.
type LinkExtractor interface {
	// Links returns the absolute URLs of anchors in the document, resolved
	// against baseURL, in document order. Non-HTTP schemes (mailto:,
	// javascript:) are excluded.
	Links(html string, baseURL string) ([]string, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be clean HTML (e.g., from an Extractor).
	Convert(html string) (string, error)
}
