package crawl_test

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webdex/webdex"
	"github.com/webdex/webdex/crawl"
	"github.com/webdex/webdex/mock"
)

const longBody = "This page has enough cleaned body text to clear the minimal-content threshold used by the crawler for noise filtering."

// testTarget returns a permissive single-domain target.
func testTarget() *webdex.CrawlTarget {
	return &webdex.CrawlTarget{
		Seeds:          []string{"https://a.test/index.html"},
		AllowedDomains: []string{"a.test"},
		MaxDepth:       1,
		MaxPages:       50,
		Concurrency:    2,
		UserAgent:      "webdex/1.0",
	}
}

// pageFetcher serves canned bodies keyed by URL and records fetch activity.
type pageFetcher struct {
	mu       sync.Mutex
	fetched  []string
	latency  time.Duration
	inflight atomic.Int32
	maxSeen  atomic.Int32
}

func (p *pageFetcher) fetch(ctx context.Context, req *webdex.FetchRequest) (*webdex.FetchResponse, error) {
	cur := p.inflight.Add(1)
	for {
		max := p.maxSeen.Load()
		if cur <= max || p.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}
	defer p.inflight.Add(-1)

	if p.latency > 0 {
		time.Sleep(p.latency)
	}

	p.mu.Lock()
	p.fetched = append(p.fetched, req.URL)
	p.mu.Unlock()

	return &webdex.FetchResponse{StatusCode: 200, Body: []byte(longBody)}, nil
}

func (p *pageFetcher) urls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.fetched...)
}

// passthroughExtractor returns the body as cleaned text.
func passthroughExtractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(html string) (*webdex.ExtractResult, error) {
			return &webdex.ExtractResult{Title: "Page", Text: html}, nil
		},
	}
}

func noLinks() *mock.LinkExtractor {
	return &mock.LinkExtractor{
		LinksFn: func(html, baseURL string) ([]string, error) { return nil, nil },
	}
}

func TestCrawler_Run_FrontierFiltering(t *testing.T) {
	t.Parallel()

	fetcher := &pageFetcher{}
	links := &mock.LinkExtractor{
		LinksFn: func(html, baseURL string) ([]string, error) {
			if baseURL != "https://a.test/index.html" {
				return nil, nil
			}
			// What a link extractor would resolve from the seed page:
			// same-domain, cross-domain, and a fragment-only self link.
			// mailto: links never make it out of the extractor.
			return []string{
				"https://a.test/b",
				"https://x.test/c",
				"https://a.test/index.html#frag",
			}, nil
		},
	}

	c := &crawl.Crawler{
		Fetcher:   &mock.Fetcher{FetchFn: fetcher.fetch},
		Extractor: passthroughExtractor(),
		Links:     links,
	}

	result, err := c.Run(context.Background(), testTarget(), nil, webdex.SubRange{Lo: 0, Hi: 70})

	require.NoError(t, err)
	assert.Equal(t, webdex.JobCompleted, result.Status)

	// Only the seed and the same-domain link are fetched. The cross-domain
	// link is filtered and the fragment-only link dedups to the seed.
	urls := fetcher.urls()
	assert.ElementsMatch(t, []string{"https://a.test/index.html", "https://a.test/b"}, urls)

	// Depth 1 is not below maxDepth 1, so /b's links are never expanded.
	assert.Equal(t, 2, result.Processed)
}

func TestCrawler_Run_NoURLFetchedTwice(t *testing.T) {
	t.Parallel()

	fetcher := &pageFetcher{}
	// Every page links to the same two URLs; each must be fetched once.
	links := &mock.LinkExtractor{
		LinksFn: func(html, baseURL string) ([]string, error) {
			return []string{"https://a.test/shared", "https://a.test/other"}, nil
		},
	}

	target := testTarget()
	target.MaxDepth = 3
	c := &crawl.Crawler{
		Fetcher:   &mock.Fetcher{FetchFn: fetcher.fetch},
		Extractor: passthroughExtractor(),
		Links:     links,
	}

	_, err := c.Run(context.Background(), target, nil, webdex.SubRange{Lo: 0, Hi: 70})
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, u := range fetcher.urls() {
		seen[u]++
	}
	for u, n := range seen {
		assert.Equal(t, 1, n, "URL %s fetched %d times", u, n)
	}
}

func TestCrawler_Run_ConcurrencyCapAndWallClock(t *testing.T) {
	t.Parallel()

	fetcher := &pageFetcher{latency: 100 * time.Millisecond}
	links := &mock.LinkExtractor{
		LinksFn: func(html, baseURL string) ([]string, error) {
			return []string{
				"https://a.test/1", "https://a.test/2", "https://a.test/3", "https://a.test/4",
			}, nil
		},
	}

	target := testTarget()
	target.Concurrency = 2
	target.MaxPages = 5
	target.MaxDepth = 1

	c := &crawl.Crawler{
		Fetcher:   &mock.Fetcher{FetchFn: fetcher.fetch},
		Extractor: passthroughExtractor(),
		Links:     links,
	}

	start := time.Now()
	result, err := c.Run(context.Background(), target, nil, webdex.SubRange{Lo: 0, Hi: 70})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 5, result.Processed)
	assert.LessOrEqual(t, fetcher.maxSeen.Load(), int32(2), "no more than 2 fetches in flight")
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond, "5 fetches at 100ms under concurrency 2")
}

func TestCrawler_Run_PerHostDelayEnforced(t *testing.T) {
	t.Parallel()

	fetcher := &pageFetcher{}
	links := &mock.LinkExtractor{
		LinksFn: func(html, baseURL string) ([]string, error) {
			return []string{"https://a.test/1", "https://a.test/2"}, nil
		},
	}

	target := testTarget()
	target.Delay = 50 * time.Millisecond
	target.Concurrency = 3
	target.MaxPages = 3

	c := &crawl.Crawler{
		Fetcher:   &mock.Fetcher{FetchFn: fetcher.fetch},
		Extractor: passthroughExtractor(),
		Links:     links,
	}

	start := time.Now()
	_, err := c.Run(context.Background(), target, nil, webdex.SubRange{Lo: 0, Hi: 70})
	elapsed := time.Since(start)

	require.NoError(t, err)
	// 3 same-host fetches spaced by at least 50ms each after the first.
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
}

func TestCrawler_Run_RobotsDisallowedSkipped(t *testing.T) {
	t.Parallel()

	var pageFetches atomic.Int32
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, req *webdex.FetchRequest) (*webdex.FetchResponse, error) {
			u, _ := url.Parse(req.URL)
			if u.Path == "/robots.txt" {
				return &webdex.FetchResponse{
					StatusCode: 200,
					Body:       []byte("User-agent: *\nDisallow: /private\n"),
				}, nil
			}
			pageFetches.Add(1)
			return &webdex.FetchResponse{StatusCode: 200, Body: []byte(longBody)}, nil
		},
	}

	target := testTarget()
	target.Politeness = true
	target.Seeds = []string{"https://a.test/private/page"}

	c := &crawl.Crawler{
		Fetcher:   fetcher,
		Extractor: passthroughExtractor(),
		Links:     noLinks(),
	}

	result, err := c.Run(context.Background(), target, nil, webdex.SubRange{Lo: 0, Hi: 70})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Disallowed)
	assert.Zero(t, result.Failed)
	assert.Equal(t, int32(0), pageFetches.Load(), "disallowed page must not be fetched")
}

func TestCrawler_Run_ShortContentSkipped(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, req *webdex.FetchRequest) (*webdex.FetchResponse, error) {
			return &webdex.FetchResponse{StatusCode: 200, Body: []byte("tiny")}, nil
		},
	}

	c := &crawl.Crawler{
		Fetcher:   fetcher,
		Extractor: passthroughExtractor(),
		Links:     noLinks(),
	}

	result, err := c.Run(context.Background(), testTarget(), nil, webdex.SubRange{Lo: 0, Hi: 70})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Files)
}

func TestCrawler_Run_FailedFetchDoesNotStopRun(t *testing.T) {
	t.Parallel()

	links := &mock.LinkExtractor{
		LinksFn: func(html, baseURL string) ([]string, error) {
			return []string{"https://a.test/good"}, nil
		},
	}
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, req *webdex.FetchRequest) (*webdex.FetchResponse, error) {
			if strings.HasSuffix(req.URL, "/good") {
				return &webdex.FetchResponse{StatusCode: 200, Body: []byte(longBody)}, nil
			}
			return &webdex.FetchResponse{StatusCode: 500, Body: nil}, nil
		},
	}

	c := &crawl.Crawler{
		Fetcher:   fetcher,
		Extractor: passthroughExtractor(),
		Links:     links,
	}

	result, err := c.Run(context.Background(), testTarget(), nil, webdex.SubRange{Lo: 0, Hi: 70})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Files, 1)
	assert.Equal(t, webdex.JobCompleted, result.Status)
}

func TestCrawler_Run_CancellationStopsDispatch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, req *webdex.FetchRequest) (*webdex.FetchResponse, error) {
			cancel()
			return &webdex.FetchResponse{StatusCode: 200, Body: []byte(longBody)}, nil
		},
	}
	links := &mock.LinkExtractor{
		LinksFn: func(html, baseURL string) ([]string, error) {
			return []string{"https://a.test/more1", "https://a.test/more2"}, nil
		},
	}

	c := &crawl.Crawler{
		Fetcher:   fetcher,
		Extractor: passthroughExtractor(),
		Links:     links,
	}

	result, err := c.Run(ctx, testTarget(), nil, webdex.SubRange{Lo: 0, Hi: 70})

	require.NoError(t, err)
	assert.Equal(t, webdex.JobCancelled, result.Status)
}

func TestCrawler_Run_SitemapSeedsFrontier(t *testing.T) {
	t.Parallel()

	fetcher := &pageFetcher{}
	sitemaps := &mock.SitemapService{
		DiscoverURLsFn: func(ctx context.Context, baseURL string, limit int) ([]string, error) {
			return []string{"https://a.test/from-sitemap"}, nil
		},
	}

	target := testTarget()
	target.Sitemap = true

	c := &crawl.Crawler{
		Fetcher:   &mock.Fetcher{FetchFn: fetcher.fetch},
		Sitemaps:  sitemaps,
		Extractor: passthroughExtractor(),
		Links:     noLinks(),
	}

	_, err := c.Run(context.Background(), target, nil, webdex.SubRange{Lo: 0, Hi: 70})

	require.NoError(t, err)
	assert.Contains(t, fetcher.urls(), "https://a.test/from-sitemap")
}

func TestCrawler_Run_ProgressReportedInSubRange(t *testing.T) {
	t.Parallel()

	fetcher := &pageFetcher{}
	reporter := &mock.Reporter{}

	target := testTarget()
	target.MaxPages = 4

	c := &crawl.Crawler{
		Fetcher:   &mock.Fetcher{FetchFn: fetcher.fetch},
		Extractor: passthroughExtractor(),
		Links:     noLinks(),
	}

	_, err := c.Run(context.Background(), target, reporter, webdex.SubRange{Lo: 0, Hi: 70})
	require.NoError(t, err)

	reports := reporter.ProgressReports()
	require.NotEmpty(t, reports)
	for _, pct := range reports {
		assert.GreaterOrEqual(t, pct, 0)
		assert.LessOrEqual(t, pct, 70)
	}
}
