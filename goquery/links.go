package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/webdex/webdex"
)

// Ensure LinkExtractor implements webdex.LinkExtractor at compile time.
var _ webdex.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor pulls outbound anchor URLs from HTML documents.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// Links returns the absolute URLs of anchors in the document, resolved
// against baseURL, deduplicated in document order. Non-HTTP schemes
// (mailto:, javascript:, tel:) are excluded.
func (e *LinkExtractor) Links(html string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, webdex.Errorf(webdex.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, webdex.Errorf(webdex.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" || isNonHTTPLink(href) {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}

		link := resolved.String()
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})

	return links, nil
}

// isNonHTTPLink reports whether href uses a scheme that can never resolve
// to a fetchable page.
func isNonHTTPLink(href string) bool {
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:", "ftp:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
