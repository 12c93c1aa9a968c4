// Package scrape turns the paginated storefront into raw product records.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/fashion-etl/internal/metrics"
	"github.com/JakeFAU/fashion-etl/internal/product"
)

// ErrUnexpectedStatus marks a page that answered outside the 2xx range.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Fetcher retrieves a single page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// Config bounds the randomized pause taken before every page request.
type Config struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Result is the outcome of a paginated extraction.
type Result struct {
	Products     []product.RawProduct
	PagesFetched int
}

// SiteExtractor walks listing pages in order until a fetch fails or the page
// ceiling is reached.
type SiteExtractor struct {
	fetcher Fetcher
	cfg     Config
	metrics *metrics.Recorder
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
	jitter  func(lo, hi time.Duration) time.Duration
}

// NewSiteExtractor constructs a SiteExtractor.
func NewSiteExtractor(fetcher Fetcher, cfg Config, rec *metrics.Recorder, logger *zap.Logger) *SiteExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	return &SiteExtractor{
		fetcher: fetcher,
		cfg:     cfg,
		metrics: rec,
		logger:  logger,
		sleep:   sleepContext,
		jitter:  uniformJitter,
	}
}

// PageURL returns the address of a 1-based listing page.
func PageURL(baseURL string, page int) string {
	if page <= 1 {
		return baseURL
	}
	return fmt.Sprintf("%s/page%d", strings.TrimRight(baseURL, "/"), page)
}

// ExtractAll fetches pages 1..maxPages and accumulates their records. The
// first failed fetch ends the walk; records from earlier pages are kept.
func (e *SiteExtractor) ExtractAll(ctx context.Context, baseURL string, maxPages int) Result {
	var result Result
	for page := 1; page <= maxPages; page++ {
		url := PageURL(baseURL, page)
		e.logger.Info("Fetching page", zap.Int("page", page), zap.String("url", url))

		if err := e.sleep(ctx, e.jitter(e.cfg.MinDelay, e.cfg.MaxDelay)); err != nil {
			e.logger.Warn("Extraction interrupted", zap.Int("page", page), zap.Error(err))
			break
		}

		body, err := e.fetchPage(ctx, url)
		if err != nil {
			e.logger.Warn("Failed to fetch page, stopping extraction",
				zap.Int("page", page), zap.String("url", url), zap.Error(err))
			break
		}
		result.PagesFetched++

		products := ExtractProducts(bytes.NewReader(body), e.logger)
		e.metrics.ObserveRecords(url, len(products))
		result.Products = append(result.Products, products...)
		e.logger.Info("Extracted products from page", zap.Int("page", page), zap.Int("count", len(products)))
	}
	e.logger.Info("Total products extracted", zap.Int("count", len(result.Products)))
	return result
}

func (e *SiteExtractor) fetchPage(ctx context.Context, url string) ([]byte, error) {
	resp, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.metrics.ObservePage(url, "error")
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	e.metrics.ObservePage(url, strconv.Itoa(resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: %w: %d", url, ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp.Body, nil
}

func uniformJitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("page delay: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
