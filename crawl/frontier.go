package crawl

import (
	"sync"

	"github.com/webdex/webdex"
	"github.com/webdex/webdex/bloom"
)

// Frontier sizing for the seen-set Bloom filter.
const (
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.01
)

// Item is one unit of crawl work: a URL and its link-following depth.
type Item struct {
	URL   string
	Depth int
}

// Frontier is a FIFO crawl queue with Bloom-filter deduplication. URLs are
// normalized (fragment-stripped, scheme/host lowercased) before dedup, so a
// URL is enqueued at most once per run. It is safe for concurrent use,
// though the scheduler loop is its only owner during a run.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue []Item
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		seen: bloom.NewFilter(frontierExpectedURLs, frontierFalsePositiveRate),
	}
}

// Push enqueues a URL at the given depth.
// Returns false if the URL has already been seen this run.
func (f *Frontier) Push(rawURL string, depth int) bool {
	url := webdex.NormalizeURL(rawURL)
	if url == "" {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.seen.AddIfNew(url) {
		return false
	}
	f.queue = append(f.queue, Item{URL: url, Depth: depth})
	return true
}

// PopBatch dequeues up to n items from the queue front.
func (f *Frontier) PopBatch(n int) []Item {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n > len(f.queue) {
		n = len(f.queue)
	}
	if n <= 0 {
		return nil
	}
	batch := make([]Item, n)
	copy(batch, f.queue[:n])
	f.queue = f.queue[n:]
	return batch
}

// Len returns the number of queued items.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen reports whether the URL has been queued or processed this run.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(webdex.NormalizeURL(rawURL))
}
