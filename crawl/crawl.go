// Package crawl provides the crawl frontier and scheduler: it owns the work
// queue, enforces depth/domain/path policy, and dispatches fetches under a
// global concurrency cap and a per-host politeness policy.
package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/webdex/webdex"
	"golang.org/x/sync/semaphore"
)

// DefaultMinContentLen is the minimal cleaned-text length below which a
// page is treated as noise and discarded.
const DefaultMinContentLen = 80

// Crawler orchestrates one crawl run. All fields are dependencies; run
// state (frontier, politeness, robots cache) is created per run and
// discarded at its end, so a Crawler is safe to reuse across jobs.
type Crawler struct {
	Fetcher   webdex.Fetcher
	Sitemaps  webdex.SitemapService
	Extractor webdex.Extractor
	Links     webdex.LinkExtractor

	// Converter, when set, renders page content as markdown for the
	// emitted file entries; otherwise the extractor's cleaned text is
	// used. Markdown keeps heading lines that the chunker segments on.
	Converter webdex.Converter

	// MinContentLen overrides DefaultMinContentLen when positive.
	MinContentLen int
}

// Result holds the outcome of a crawl run.
type Result struct {
	Status     webdex.JobStatus
	Files      []webdex.FileEntry
	Processed  int
	Failed     int
	Skipped    int
	Disallowed int
}

// itemResult is what a worker reports back to the scheduler loop for one
// dequeued item. Workers never touch the frontier; discovered links travel
// here so only the owning loop mutates queue state.
type itemResult struct {
	item       Item
	file       *webdex.FileEntry
	discovered []string
	disallowed bool
	skipped    bool
	err        error
}

// Run executes one crawl run: seed → frontier → fetch → extract → file
// entries. Progress is reported as processed-count over the page budget,
// scaled into the caller's sub-range. Cancellation is observed before each
// batch and before each unit of work; in-flight results are discarded after
// cancellation.
func (c *Crawler) Run(ctx context.Context, target *webdex.CrawlTarget, reporter webdex.Reporter, sub webdex.SubRange) (*Result, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = webdex.NopReporter{}
	}

	frontier := NewFrontier()
	for _, seed := range target.Seeds {
		frontier.Push(seed, 0)
	}
	if target.Sitemap && c.Sitemaps != nil {
		urls, err := c.Sitemaps.DiscoverURLs(ctx, target.Seeds[0], target.MaxPages)
		if err != nil {
			reporter.Log(webdex.LevelWarn, fmt.Sprintf("sitemap discovery failed: %v", err))
		}
		for _, u := range urls {
			frontier.Push(u, 0)
		}
	}

	run := &runState{
		crawler:  c,
		target:   target,
		reporter: reporter,
		hosts:    newHostPolicy(target.Delay),
		robots:   newRobotsCache(c.Fetcher, target.UserAgent),
		sem:      semaphore.NewWeighted(int64(target.Concurrency)),
	}

	result := &Result{Status: webdex.JobRunning}

	for result.Processed < target.MaxPages && frontier.Len() > 0 {
		if ctx.Err() != nil {
			result.Status = webdex.JobCancelled
			return result, nil
		}

		budget := target.MaxPages - result.Processed
		n := target.Concurrency
		if n > budget {
			n = budget
		}
		batch := frontier.PopBatch(n)
		if len(batch) == 0 {
			break
		}

		resultCh := make(chan itemResult, len(batch))
		dispatched := 0
		for _, item := range batch {
			if ctx.Err() != nil {
				break
			}
			dispatched++
			go run.process(ctx, item, resultCh)
		}

		for i := 0; i < dispatched; i++ {
			res := <-resultCh
			if ctx.Err() != nil {
				// Result discarded once cancellation is observed.
				continue
			}
			c.collect(res, result, frontier, target, reporter)
		}

		reporter.Progress(sub.Pct(result.Processed, target.MaxPages))
	}

	if ctx.Err() != nil {
		result.Status = webdex.JobCancelled
	} else {
		result.Status = webdex.JobCompleted
	}
	reporter.Log(webdex.LevelInfo, fmt.Sprintf(
		"crawl finished: %d processed, %d files, %d failed, %d skipped, %d disallowed",
		result.Processed, len(result.Files), result.Failed, result.Skipped, result.Disallowed))
	return result, nil
}

// collect folds one worker result into the run result and expands
// discovered links. Only the scheduler loop calls it, so frontier and
// counters need no extra locking.
func (c *Crawler) collect(res itemResult, result *Result, frontier *Frontier, target *webdex.CrawlTarget, reporter webdex.Reporter) {
	result.Processed++

	switch {
	case res.disallowed:
		result.Disallowed++
		reporter.Log(webdex.LevelDebug, fmt.Sprintf("robots disallowed: %s", res.item.URL))
	case res.err != nil:
		result.Failed++
		reporter.Log(webdex.LevelWarn, fmt.Sprintf("fetch failed: %s: %v", res.item.URL, res.err))
	case res.skipped:
		result.Skipped++
	case res.file != nil:
		result.Files = append(result.Files, *res.file)
	}

	if res.item.Depth < target.MaxDepth {
		for _, link := range filterLinks(res.discovered, target) {
			frontier.Push(link, res.item.Depth+1)
		}
	}
}

// runState carries the per-run shared caches and limits.
type runState struct {
	crawler  *Crawler
	target   *webdex.CrawlTarget
	reporter webdex.Reporter
	hosts    *hostPolicy
	robots   *robotsCache
	sem      *semaphore.Weighted
}

// process handles one item: semaphore, per-host politeness, robots check,
// fetch, extract. Semaphore and host lock are released on every exit path
// so a failing worker never leaks concurrency budget.
func (s *runState) process(ctx context.Context, item Item, out chan<- itemResult) {
	res := itemResult{item: item}
	defer func() { out <- res }()

	u, err := url.Parse(item.URL)
	if err != nil {
		res.err = webdex.Errorf(webdex.EINVALID, "invalid URL %q", item.URL)
		return
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		res.err = err
		return
	}
	defer s.sem.Release(1)

	release, err := s.hosts.acquire(ctx, u.Host)
	if err != nil {
		res.err = err
		return
	}
	defer release()

	if s.target.Politeness && !s.robots.allowed(ctx, u.Scheme, u.Host, u.Path) {
		res.disallowed = true
		return
	}

	resp, err := s.crawler.Fetcher.Fetch(ctx, &webdex.FetchRequest{
		URL:    item.URL,
		Header: http.Header{"User-Agent": []string{s.target.UserAgent}},
	})
	if err != nil {
		res.err = err
		return
	}
	if !resp.OK() {
		res.err = webdex.Errorf(webdex.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, item.URL)
		return
	}

	html := string(resp.Body)

	if links, err := s.crawler.Links.Links(html, item.URL); err == nil {
		res.discovered = links
	}

	extracted, err := s.crawler.Extractor.Extract(html)
	if err != nil {
		res.err = err
		return
	}

	minLen := s.crawler.MinContentLen
	if minLen <= 0 {
		minLen = DefaultMinContentLen
	}
	if len(extracted.Text) < minLen {
		res.skipped = true
		return
	}

	text := extracted.Text
	if s.crawler.Converter != nil && extracted.ContentHTML != "" {
		if md, err := s.crawler.Converter.Convert(extracted.ContentHTML); err == nil && md != "" {
			text = md
		}
	}

	file := webdex.NewFileEntry(fileName(u, extracted.Title), item.URL, webdex.FileTypePage, text)
	res.file = &file
}

// fileName derives a readable entry name from the URL path, falling back to
// the page title, then the host.
func fileName(u *url.URL, title string) string {
	path := u.Path
	if path == "" || path == "/" {
		if title != "" {
			return title
		}
		return u.Host
	}
	return path[1:]
}
