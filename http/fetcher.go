// Package http provides the networked implementations of webdex contracts:
// a bounded retrying Fetcher and a sitemap Discoverer.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/webdex/webdex"
)

// DefaultFetchTimeout is the default per-attempt timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxRetries is the default number of retries after the initial
// attempt.
const DefaultMaxRetries = 3

// Backoff clamps, per delay source.
const (
	retryAfterMin = 1 * time.Second
	retryAfterMax = 120 * time.Second

	rateResetMin = 1 * time.Second
	rateResetMax = 300 * time.Second

	expBase = 500 * time.Millisecond
	expMin  = 500 * time.Millisecond
	expMax  = 15 * time.Second
)

// Ensure Fetcher implements webdex.Fetcher at compile time.
var _ webdex.Fetcher = (*Fetcher)(nil)

// Fetcher issues HTTP requests with a per-attempt timeout and retries
// transient failures (429, 502-504, timeouts, connection errors) with
// backoff. Non-transient statuses are returned as-is without retry.
type Fetcher struct {
	client     *http.Client
	timeout    time.Duration
	maxRetries int
	reporter   webdex.Reporter
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-attempt timeout.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxRetries sets the retry cap after the initial attempt.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithReporter sets the reporter that receives one informational line per
// retry/backoff decision.
func WithReporter(r webdex.Reporter) Option {
	return func(f *Fetcher) {
		f.reporter = r
	}
}

// WithSleepFunc replaces the backoff sleep.
// This is useful for testing without waiting for real delays.
func WithSleepFunc(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

// WithClock replaces the time source used for rate-limit reset math.
// This is useful for testing.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

// NewFetcher creates a new retrying Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:    DefaultFetchTimeout,
		maxRetries: DefaultMaxRetries,
		reporter:   webdex.NopReporter{},
		now:        time.Now,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Fetch performs the request, retrying transient outcomes up to the retry
// cap. After the cap is reached the last response (or nil with the last
// error) is returned; the caller treats continued failure as a skip, not a
// crawl-fatal error.
func (f *Fetcher) Fetch(ctx context.Context, req *webdex.FetchRequest) (*webdex.FetchResponse, error) {
	var lastResp *webdex.FetchResponse
	var lastErr error

	for attempt := 1; attempt <= f.maxRetries+1; attempt++ {
		resp, err := f.attempt(ctx, req)
		if err == nil && resp.OK() {
			return resp, nil
		}
		if err == nil && !retryableStatus(resp.StatusCode) {
			// Caller decides fatality for non-transient statuses.
			return resp, nil
		}
		lastResp, lastErr = resp, err

		if attempt > f.maxRetries {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		delay := f.backoff(attempt, resp)
		if err != nil {
			f.reporter.Log(webdex.LevelInfo, fmt.Sprintf("retry %s (attempt %d) after %s: %v", req.URL, attempt+1, delay, err))
		} else {
			f.reporter.Log(webdex.LevelInfo, fmt.Sprintf("retry %s (attempt %d) after %s: HTTP %d", req.URL, attempt+1, delay, resp.StatusCode))
		}

		if err := f.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return lastResp, lastErr
}

// attempt performs one request with the configured timeout.
func (f *Fetcher) attempt(ctx context.Context, req *webdex.FetchRequest) (*webdex.FetchResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, webdex.Errorf(webdex.EINVALID, "invalid request URL %q: %v", req.URL, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &webdex.FetchResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// retryableStatus reports whether a status is transient: rate-limited (429)
// or server-transient (502/503/504).
func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// backoff computes the delay before the next attempt, in priority order:
// Retry-After seconds, rate-limit reset timestamp, exponential backoff with
// jitter. Each source has its own clamp.
func (f *Fetcher) backoff(attempt int, resp *webdex.FetchResponse) time.Duration {
	if resp != nil {
		if secs, ok := parseSeconds(resp.Header.Get("Retry-After")); ok {
			return clamp(time.Duration(secs*float64(time.Second)), retryAfterMin, retryAfterMax)
		}
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			if reset, ok := parseSeconds(resp.Header.Get("X-RateLimit-Reset")); ok {
				until := time.Unix(int64(reset), 0).Sub(f.now())
				return clamp(until, rateResetMin, rateResetMax)
			}
		}
	}
	return ExponentialBackoff(attempt)
}

// ExponentialBackoff returns the attempt's exponential delay with
// deterministic jitter: base = 500ms * 2^(attempt-1), jitter = base * 0.3 *
// ((attempt mod 5) + 1), clamped to [500ms, 15s]. Ignoring jitter the delay
// is monotonically non-decreasing in attempt up to the clamp ceiling.
func ExponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := expBase << (attempt - 1)
	jitter := time.Duration(float64(base) * 0.3 * float64(attempt%5+1))
	return clamp(base+jitter, expMin, expMax)
}

func parseSeconds(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return secs, true
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// sleepContext sleeps for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
