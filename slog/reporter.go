// Package slog adapts webdex observability contracts to log/slog and
// provides logging decorators for the networked services.
package slog

import (
	"log/slog"

	"github.com/webdex/webdex"
)

// Ensure Reporter implements webdex.Reporter at compile time.
var _ webdex.Reporter = (*Reporter)(nil)

// Reporter forwards reported lines and progress to a slog.Logger.
type Reporter struct {
	logger *slog.Logger
}

// NewReporter creates a Reporter backed by logger.
func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// Log maps the reported level onto the matching slog level.
func (r *Reporter) Log(level webdex.Level, msg string) {
	switch level {
	case webdex.LevelDebug:
		r.logger.Debug(msg)
	case webdex.LevelWarn:
		r.logger.Warn(msg)
	case webdex.LevelError:
		r.logger.Error(msg)
	default:
		r.logger.Info(msg)
	}
}

// Progress logs completion at debug level so it does not drown out the
// regular log stream.
func (r *Reporter) Progress(pct int) {
	r.logger.Debug("progress", "pct", pct)
}
