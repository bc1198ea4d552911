package webdex

import "context"

// SitemapService discovers candidate URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs finds URLs from a site's sitemaps. It checks robots.txt
	// for Sitemap directives and the default /sitemap.xml location, and
	// resolves sitemap indexes recursively. The result is deduplicated,
	// insertion-ordered, and truncated to limit.
	DiscoverURLs(ctx context.Context, baseURL string, limit int) ([]string, error)
}
