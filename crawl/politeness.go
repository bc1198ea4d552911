package crawl

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/webdex/webdex"
	"golang.org/x/time/rate"
)

// hostPolicy serializes requests per host and enforces the minimum
// inter-request delay. State is scoped to one run and discarded at its end.
type hostPolicy struct {
	delay time.Duration

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	limiters map[string]*rate.Limiter
}

func newHostPolicy(delay time.Duration) *hostPolicy {
	return &hostPolicy{
		delay:    delay,
		locks:    make(map[string]*sync.Mutex),
		limiters: make(map[string]*rate.Limiter),
	}
}

// acquire blocks until the caller may issue a request to host: it takes the
// per-host lock (size 1) and waits out the remaining inter-request delay.
// The returned release function must be called on every exit path.
func (p *hostPolicy) acquire(ctx context.Context, host string) (release func(), err error) {
	p.mu.Lock()
	lock, ok := p.locks[host]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[host] = lock

		limit := rate.Inf
		if p.delay > 0 {
			limit = rate.Every(p.delay)
		}
		p.limiters[host] = rate.NewLimiter(limit, 1)
	}
	limiter := p.limiters[host]
	p.mu.Unlock()

	lock.Lock()
	if err := limiter.Wait(ctx); err != nil {
		lock.Unlock()
		return nil, err
	}
	return lock.Unlock, nil
}

// robotsCache resolves and caches robots rule sets per host for one run.
// The per-host once keeps concurrent first lookups from double-fetching the
// same robots document.
type robotsCache struct {
	fetcher   webdex.Fetcher
	userAgent string

	mu    sync.Mutex
	once  map[string]*sync.Once
	rules map[string]*webdex.RobotsRuleSet
}

func newRobotsCache(fetcher webdex.Fetcher, userAgent string) *robotsCache {
	return &robotsCache{
		fetcher:   fetcher,
		userAgent: userAgent,
		once:      make(map[string]*sync.Once),
		rules:     make(map[string]*webdex.RobotsRuleSet),
	}
}

// allowed reports whether path may be fetched on host. A missing or
// unfetchable robots document allows all paths.
func (c *robotsCache) allowed(ctx context.Context, scheme, host, path string) bool {
	c.mu.Lock()
	once, ok := c.once[host]
	if !ok {
		once = &sync.Once{}
		c.once[host] = once
	}
	c.mu.Unlock()

	once.Do(func() {
		rules := c.resolve(ctx, scheme, host)
		c.mu.Lock()
		c.rules[host] = rules
		c.mu.Unlock()
	})

	c.mu.Lock()
	rules := c.rules[host]
	c.mu.Unlock()
	return rules.IsAllowed(path)
}

// resolve fetches and parses a host's robots.txt.
func (c *robotsCache) resolve(ctx context.Context, scheme, host string) *webdex.RobotsRuleSet {
	robotsURL := url.URL{Scheme: scheme, Host: host, Path: "/robots.txt"}
	req := &webdex.FetchRequest{
		URL:    robotsURL.String(),
		Header: http.Header{"User-Agent": []string{c.userAgent}},
	}
	resp, err := c.fetcher.Fetch(ctx, req)
	if err != nil || !resp.OK() {
		return nil
	}
	return webdex.ParseRobots(string(resp.Body), c.userAgent)
}
