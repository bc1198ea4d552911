// Package mock provides hand-written mocks for webdex interfaces, using
// function fields so tests configure only the behavior they need.
package mock

import (
	"context"

	"github.com/webdex/webdex"
)

var _ webdex.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of webdex.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, req *webdex.FetchRequest) (*webdex.FetchResponse, error)
}

func (f *Fetcher) Fetch(ctx context.Context, req *webdex.FetchRequest) (*webdex.FetchResponse, error) {
	return f.FetchFn(ctx, req)
}
