// Package bloom provides URL deduplication for crawl frontiers using Bloom
// filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter for URL deduplication. False positives cause
// a URL to be skipped, never fetched twice; false negatives do not occur.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected URLs with the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{f: bloom.NewWithEstimates(n, fpRate)}
}

// Add marks a URL as seen.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Test returns true if the URL might have been seen.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}

// AddIfNew marks a URL as seen and reports whether it was new.
func (f *Filter) AddIfNew(url string) bool {
	if f.f.TestString(url) {
		return false
	}
	f.f.AddString(url)
	return true
}

// EstimatedCount returns the approximate number of URLs added.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
