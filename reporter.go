package webdex

// Level is the severity of a reported log line.
type Level string

// Log levels.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Reporter is the narrow observability contract between the core and its
// caller. The core depends only on this abstraction, never on a concrete
// transport.
type Reporter interface {
	// Log reports a human-readable message at a level.
	Log(level Level, msg string)

	// Progress reports overall completion as a 0-100 integer. Callers
	// typically restrict a component to a sub-range via SubRange.
	Progress(pct int)
}

// NopReporter discards all logs and progress.
type NopReporter struct{}

func (NopReporter) Log(Level, string) {}
func (NopReporter) Progress(int)      {}

// SubRange maps a component's fractional completion into a caller-owned
// band of the 0-100 progress scale, e.g. 0-70 for crawling and 70-99 for
// indexing.
type SubRange struct {
	Lo int
	Hi int
}

// Pct converts done/total into a percentage inside the sub-range.
// The result is clamped to [Lo, Hi].
func (r SubRange) Pct(done, total int) int {
	if total <= 0 {
		return r.Lo
	}
	if done < 0 {
		done = 0
	}
	if done > total {
		done = total
	}
	return r.Lo + (r.Hi-r.Lo)*done/total
}
