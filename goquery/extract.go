// Package goquery implements HTML content and link extraction on top of
// github.com/PuerkitoBio/goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/webdex/webdex"
)

// Ensure Extractor implements webdex.Extractor at compile time.
var _ webdex.Extractor = (*Extractor)(nil)

// contentSelectors are candidate content containers in priority order.
var contentSelectors = []string{
	"main",
	"[role=main]",
	".main-content",
	"#main-content",
	"article",
	"body",
}

// boilerplateSelectors are removed from the content container before text
// extraction.
var boilerplateSelectors = []string{
	"nav",
	"header",
	"footer",
	"aside",
	"script",
	"style",
	"noscript",
	".nav", ".navbar", ".menu", ".sidebar",
	".footer", ".header",
	".ad", ".ads", ".advertisement",
	".cookie", ".cookie-banner", ".cookie-consent",
	".modal", ".popup",
}

// Extractor turns a fetched HTML document into a title, heading list, and
// cleaned body text. Missing elements degrade to empty values or defaults;
// Extract never fails on them.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the page content.
func (e *Extractor) Extract(html string) (*webdex.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, webdex.Errorf(webdex.EINVALID, "failed to parse HTML: %v", err)
	}

	result := &webdex.ExtractResult{
		Title:    extractTitle(doc),
		Headings: extractHeadings(doc),
	}

	container := selectContainer(doc)
	if container == nil {
		return result, nil
	}

	container.Find(strings.Join(boilerplateSelectors, ", ")).Remove()

	result.Text = collapseWhitespace(container.Text())
	if contentHTML, err := container.Html(); err == nil {
		result.ContentHTML = contentHTML
	}

	return result, nil
}

// extractTitle returns the first <title> text, else the first <h1> text,
// else "Untitled".
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return "Untitled"
}

// extractHeadings returns the text of all h1-h6 elements in document order,
// skipping empty ones.
func extractHeadings(doc *goquery.Document) []string {
	var headings []string
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		if text := collapseWhitespace(sel.Text()); text != "" {
			headings = append(headings, text)
		}
	})
	return headings
}

// selectContainer returns the best-matching content container.
func selectContainer(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// collapseWhitespace reduces all interior whitespace runs to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
