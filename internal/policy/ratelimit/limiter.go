// Package ratelimit caps page requests per host with a token bucket.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/JakeFAU/fashion-etl/internal/scrape"
)

// Config holds rate limiter configuration. A non-positive RPS disables
// limiting.
type Config struct {
	RPS   float64
	Burst int
}

// Limiter hands out per-host tokens.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	limit := rate.Limit(cfg.RPS)
	if cfg.RPS <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// Wait blocks until a token for rawURL's host is available or ctx ends.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	if err := l.forHost(hostOf(rawURL)).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

func (l *Limiter) forHost(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[host] = limiter
	}
	return limiter
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}

// Fetcher wraps a scrape.Fetcher so every request first takes a token.
type Fetcher struct {
	next    scrape.Fetcher
	limiter *Limiter
	logger  *zap.Logger
}

// Wrap decorates next with l.
func Wrap(next scrape.Fetcher, l *Limiter, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{next: next, limiter: l, logger: logger}
}

// Fetch waits for a token, then delegates.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (scrape.FetchResponse, error) {
	start := time.Now()
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return scrape.FetchResponse{}, err
	}
	if waited := time.Since(start); waited > time.Millisecond {
		f.logger.Debug("Rate limited", zap.String("url", rawURL), zap.Duration("waited", waited))
	}
	return f.next.Fetch(ctx, rawURL)
}
