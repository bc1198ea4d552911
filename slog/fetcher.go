package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/webdex/webdex"
)

// Ensure LoggingFetcher implements webdex.Fetcher at compile time.
var _ webdex.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-request logging.
type LoggingFetcher struct {
	next   webdex.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next webdex.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome with status,
// bytes, and duration.
func (f *LoggingFetcher) Fetch(ctx context.Context, req *webdex.FetchRequest) (*webdex.FetchResponse, error) {
	begin := time.Now()
	resp, err := f.next.Fetch(ctx, req)
	if err != nil {
		f.logger.Error("fetch",
			"url", req.URL,
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}

	f.logger.Info("fetch",
		"url", req.URL,
		"status", resp.StatusCode,
		"bytes", len(resp.Body),
		"duration", time.Since(begin),
	)
	return resp, nil
}
