package mock

import (
	"sync"

	"github.com/webdex/webdex"
)

var _ webdex.Reporter = (*Reporter)(nil)

// Reporter records log lines and progress reports for assertions.
// It is safe for concurrent use.
type Reporter struct {
	mu        sync.Mutex
	logs      []string
	progress  []int
	LogFn     func(level webdex.Level, msg string)
	ProgressF func(pct int)
}

func (r *Reporter) Log(level webdex.Level, msg string) {
	r.mu.Lock()
	r.logs = append(r.logs, string(level)+": "+msg)
	r.mu.Unlock()
	if r.LogFn != nil {
		r.LogFn(level, msg)
	}
}

func (r *Reporter) Progress(pct int) {
	r.mu.Lock()
	r.progress = append(r.progress, pct)
	r.mu.Unlock()
	if r.ProgressF != nil {
		r.ProgressF(pct)
	}
}

// Logs returns a copy of the recorded log lines.
func (r *Reporter) Logs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.logs...)
}

// ProgressReports returns a copy of the recorded progress values.
func (r *Reporter) ProgressReports() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.progress...)
}
