package mock

import (
	"context"

	"github.com/webdex/webdex"
)

var _ webdex.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of webdex.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, limit int) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, limit int) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, limit)
}
