// Package collyfetcher implements scrape.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/fashion-etl/internal/scrape"
)

const defaultTimeout = 10 * time.Second

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
}

// Fetcher implements scrape.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	c.WithTransport(newHTTPTransport())
	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET using Colly. Transport failures are
// returned as errors; every HTTP answer, including non-2xx ones, is returned
// with its status so the caller decides what counts as a failed page.
func (f *Fetcher) Fetch(ctx context.Context, url string) (scrape.FetchResponse, error) {
	var (
		result   scrape.FetchResponse
		fetchErr error
	)
	collector := f.buildCollector(time.Now(), &result, &fetchErr)
	if err := f.runCollector(ctx, collector, url, &fetchErr); err != nil {
		return scrape.FetchResponse{}, err
	}
	return result, nil
}

func (f *Fetcher) buildCollector(start time.Time, result *scrape.FetchResponse, fetchErr *error) *colly.Collector {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = !f.cfg.RespectRobots
	collector.ParseHTTPErrorResponse = true
	collector.SetRequestTimeout(f.cfg.Timeout)
	f.configureCollectorHooks(collector, start, result, fetchErr)
	return collector
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	start time.Time,
	result *scrape.FetchResponse,
	fetchErr *error,
) {
	hooks.OnResponse(func(r *colly.Response) {
		*result = scrape.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			*fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
