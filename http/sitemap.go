package http

import (
	"bufio"
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/webdex/webdex"
)

// Ensure Discoverer implements webdex.SitemapService.
var _ webdex.SitemapService = (*Discoverer)(nil)

// locRe matches <loc> entries. Sitemaps in the wild are often slightly
// malformed, so entries are pattern-matched instead of XML-parsed.
var locRe = regexp.MustCompile(`(?is)<loc>\s*(.*?)\s*</loc>`)

// Discoverer finds and expands sitemap documents into a bounded list of
// candidate URLs. Sitemap indexes are expanded recursively, short-circuiting
// once the caller's URL bound is reached.
type Discoverer struct {
	fetcher   webdex.Fetcher
	userAgent string
}

// NewDiscoverer creates a Discoverer that fetches through the given
// retrying fetcher.
func NewDiscoverer(fetcher webdex.Fetcher, userAgent string) *Discoverer {
	return &Discoverer{fetcher: fetcher, userAgent: userAgent}
}

// DiscoverURLs fetches the default sitemap location plus any Sitemap:
// directives from robots.txt and expands them into a deduplicated,
// insertion-ordered URL list truncated to limit.
func (d *Discoverer) DiscoverURLs(ctx context.Context, baseURL string, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, webdex.Errorf(webdex.EINVALID, "invalid base URL %q", baseURL)
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	candidates := []string{root.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	candidates = append(candidates, d.sitemapsFromRobots(ctx, robotsURL)...)

	urls := make([]string, 0, limit)
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)

	for _, sitemapURL := range candidates {
		if len(urls) >= limit {
			break
		}
		d.expand(ctx, sitemapURL, seenSitemaps, seenURLs, &urls, limit)
	}

	return urls, nil
}

// sitemapsFromRobots extracts Sitemap: directives from robots.txt.
// A missing or unfetchable robots document yields no candidates.
func (d *Discoverer) sitemapsFromRobots(ctx context.Context, robotsURL string) []string {
	body, ok := d.fetch(ctx, robotsURL)
	if !ok {
		return nil
	}

	var sitemaps []string
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	return sitemaps
}

// expand fetches one sitemap document and appends its URLs, recursing into
// sitemap indexes. Expansion stops as soon as the bound is reached.
func (d *Discoverer) expand(ctx context.Context, sitemapURL string, seenSitemaps, seenURLs map[string]bool, urls *[]string, limit int) {
	if ctx.Err() != nil || len(*urls) >= limit || seenSitemaps[sitemapURL] {
		return
	}
	seenSitemaps[sitemapURL] = true

	body, ok := d.fetch(ctx, sitemapURL)
	if !ok {
		return
	}

	locs := extractLocs(body)
	if strings.Contains(strings.ToLower(body), "<sitemapindex") {
		for _, sub := range locs {
			if len(*urls) >= limit {
				return
			}
			d.expand(ctx, sub, seenSitemaps, seenURLs, urls, limit)
		}
		return
	}

	for _, loc := range locs {
		if len(*urls) >= limit {
			return
		}
		if !seenURLs[loc] {
			seenURLs[loc] = true
			*urls = append(*urls, loc)
		}
	}
}

// extractLocs returns all <loc> entry values in document order.
func extractLocs(body string) []string {
	matches := locRe.FindAllStringSubmatch(body, -1)
	locs := make([]string, 0, len(matches))
	for _, m := range matches {
		if loc := strings.TrimSpace(m[1]); loc != "" {
			locs = append(locs, loc)
		}
	}
	return locs
}

// fetch retrieves a document body, treating any non-2xx outcome as absent.
func (d *Discoverer) fetch(ctx context.Context, rawURL string) (string, bool) {
	req := &webdex.FetchRequest{URL: rawURL}
	if d.userAgent != "" {
		req.Header = http.Header{"User-Agent": []string{d.userAgent}}
	}
	resp, err := d.fetcher.Fetch(ctx, req)
	if err != nil || !resp.OK() {
		return "", false
	}
	return string(resp.Body), true
}
