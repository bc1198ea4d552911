package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/webdex/webdex"
)

// Ensure LoggingSitemapService implements webdex.SitemapService.
var _ webdex.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with discovery logging.
type LoggingSitemapService struct {
	next   webdex.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next webdex.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs the URL count and
// duration.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, limit int) ([]string, error) {
	begin := time.Now()
	urls, err := s.next.DiscoverURLs(ctx, baseURL, limit)
	if err != nil {
		s.logger.Error("sitemap discovery",
			"base", baseURL,
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}

	s.logger.Info("sitemap discovery",
		"base", baseURL,
		"urls", len(urls),
		"duration", time.Since(begin),
	)
	return urls, nil
}
