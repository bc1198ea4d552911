package webdex

import (
	"net/url"
	"strings"
	"time"
)

// Default crawl tuning values applied by CrawlTarget.Validate callers.
const (
	DefaultMaxDepth    = 3
	DefaultMaxPages    = 200
	DefaultDelay       = 500 * time.Millisecond
	DefaultConcurrency = 4
	DefaultUserAgent   = "webdex/1.0"
)

// CrawlTarget describes one crawl run. It is immutable for the duration
// of the run.
type CrawlTarget struct {
	// Seed URLs the frontier starts from.
	Seeds []string `json:"seeds"`

	// AllowedDomains restricts discovered links. A host is allowed when it
	// equals an entry or is a subdomain of it.
	AllowedDomains []string `json:"allowedDomains"`

	// BasePath, when set, restricts discovered links to paths under it.
	BasePath string `json:"basePath,omitempty"`

	// MaxDepth is the number of link-following hops from a seed.
	MaxDepth int `json:"maxDepth"`

	// MaxPages caps the number of pages processed in the run.
	MaxPages int `json:"maxPages"`

	// Delay is the minimum spacing between requests to the same host.
	Delay time.Duration `json:"delay"`

	// Concurrency is the global in-flight fetch cap.
	Concurrency int `json:"concurrency"`

	// UserAgent is sent with every request and matched against robots groups.
	UserAgent string `json:"userAgent"`

	// Politeness enables robots.txt compliance. Disabled only for tests
	// and controlled environments.
	Politeness bool `json:"politeness"`

	// Sitemap enables seeding the frontier from sitemap discovery.
	Sitemap bool `json:"sitemap"`
}

// Validate returns an error if the target contains invalid fields.
func (t *CrawlTarget) Validate() error {
	if len(t.Seeds) == 0 {
		return Errorf(EINVALID, "at least one seed URL required")
	}
	for _, seed := range t.Seeds {
		u, err := url.Parse(seed)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Errorf(EINVALID, "invalid seed URL %q", seed)
		}
	}
	if len(t.AllowedDomains) == 0 {
		return Errorf(EINVALID, "at least one allowed domain required")
	}
	if t.MaxDepth < 0 {
		return Errorf(EINVALID, "max depth must not be negative")
	}
	if t.MaxPages <= 0 {
		return Errorf(EINVALID, "max pages must be positive")
	}
	if t.Concurrency <= 0 {
		return Errorf(EINVALID, "concurrency must be positive")
	}
	return nil
}

// RepoTarget describes one repository ingestion run. Files are pulled from
// a source-repository tree listing instead of crawled HTML.
type RepoTarget struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`

	// Extensions restricts ingested files, e.g. [".md", ".txt"].
	// Empty means a default documentation set.
	Extensions []string `json:"extensions,omitempty"`

	// MaxFiles caps the number of files pulled from the tree listing.
	MaxFiles int `json:"maxFiles"`
}

// Validate returns an error if the target contains invalid fields.
func (t *RepoTarget) Validate() error {
	if t.Owner == "" || t.Repo == "" {
		return Errorf(EINVALID, "repository owner and name required")
	}
	if t.MaxFiles <= 0 {
		return Errorf(EINVALID, "max files must be positive")
	}
	return nil
}

// NormalizeURL canonicalizes a URL for deduplication: the fragment is
// stripped, the scheme and host are lowercased, and a trailing "/" on the
// root path is removed. Invalid URLs are returned unchanged minus any
// fragment so that dedup still behaves consistently.
func NormalizeURL(rawURL string) string {
	if idx := strings.Index(rawURL, "#"); idx != -1 {
		rawURL = rawURL[:idx]
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String()
}

// HostAllowed reports whether host is covered by the allow-list.
// A host matches an entry when it is equal to it or is a subdomain of it:
// "sub.example.com" is allowed by "example.com", "notexample.com" is not.
func HostAllowed(host string, allowed []string) bool {
	host = strings.ToLower(host)
	for _, domain := range allowed {
		domain = strings.ToLower(domain)
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
