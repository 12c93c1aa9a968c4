package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/fashion-etl/internal/metrics"
)

const baseURL = "https://shop.example"

func TestPageURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, baseURL, PageURL(baseURL, 1))
	assert.Equal(t, baseURL+"/page2", PageURL(baseURL, 2))
	assert.Equal(t, baseURL+"/page10", PageURL(baseURL+"/", 10))
}

func TestExtractAllStopsAtFirstFailedFetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		responses: map[string]FetchResponse{
			baseURL:            okPage(2),
			baseURL + "/page2": okPage(1),
			baseURL + "/page4": okPage(5),
		},
		errs: map[string]error{
			baseURL + "/page3": errors.New("dial tcp: connection refused"),
		},
	}
	ext := newTestExtractor(fetcher)

	res := ext.ExtractAll(context.Background(), baseURL, 10)
	assert.Len(t, res.Products, 3)
	assert.Equal(t, 2, res.PagesFetched)
	assert.Equal(t, []string{baseURL, baseURL + "/page2", baseURL + "/page3"}, fetcher.calls)
}

func TestExtractAllStopsOnNon2xx(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		responses: map[string]FetchResponse{
			baseURL:            okPage(1),
			baseURL + "/page2": {StatusCode: http.StatusNotFound, Body: []byte(listingWith(4))},
		},
	}
	ext := newTestExtractor(fetcher)

	res := ext.ExtractAll(context.Background(), baseURL, 5)
	assert.Len(t, res.Products, 1)
	assert.Equal(t, 1, res.PagesFetched)
	assert.Len(t, fetcher.calls, 2)
}

func TestExtractAllHonorsPageCeiling(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{responses: map[string]FetchResponse{}}
	for page := 1; page <= 6; page++ {
		fetcher.responses[PageURL(baseURL, page)] = okPage(1)
	}
	rec := metrics.New()
	ext := NewSiteExtractor(fetcher, Config{}, rec, zap.NewNop())
	var delays int
	ext.sleep = func(context.Context, time.Duration) error {
		delays++
		return nil
	}

	res := ext.ExtractAll(context.Background(), baseURL, 3)
	assert.Len(t, res.Products, 3)
	assert.Equal(t, 3, res.PagesFetched)
	assert.Equal(t, 3, delays)
	assert.NotContains(t, fetcher.calls, baseURL+"/page4")
}

func TestExtractAllZeroCeiling(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	res := newTestExtractor(fetcher).ExtractAll(context.Background(), baseURL, 0)
	assert.Empty(t, res.Products)
	assert.Empty(t, fetcher.calls)
}

func TestExtractAllCanceledDuringDelay(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{responses: map[string]FetchResponse{baseURL: okPage(1)}}
	ext := NewSiteExtractor(fetcher, Config{MinDelay: time.Hour, MaxDelay: time.Hour}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := ext.ExtractAll(ctx, baseURL, 2)
	assert.Empty(t, res.Products)
	assert.Empty(t, fetcher.calls)
}

func TestUniformJitterBounds(t *testing.T) {
	t.Parallel()

	lo, hi := time.Second, 3*time.Second
	for range 1000 {
		d := uniformJitter(lo, hi)
		require.GreaterOrEqual(t, d, lo)
		require.Less(t, d, hi)
	}
	assert.Equal(t, lo, uniformJitter(lo, lo))
}

func TestNewSiteExtractorClampsDelays(t *testing.T) {
	t.Parallel()

	ext := NewSiteExtractor(&fakeFetcher{}, Config{MinDelay: 2 * time.Second, MaxDelay: time.Second}, nil, nil)
	assert.Equal(t, 2*time.Second, ext.cfg.MaxDelay)
}

func newTestExtractor(f Fetcher) *SiteExtractor {
	ext := NewSiteExtractor(f, Config{}, nil, zap.NewNop())
	ext.sleep = func(context.Context, time.Duration) error { return nil }
	return ext
}

func okPage(cards int) FetchResponse {
	return FetchResponse{StatusCode: http.StatusOK, Body: []byte(listingWith(cards))}
}

func listingWith(cards int) string {
	html := "<html><body>"
	for i := range cards {
		html += fmt.Sprintf(`<div class="collection-card"><h3 class="product-title">Item %d</h3>`+
			`<span class="price">$%d.00</span></div>`, i, i+1)
	}
	return html + "</body></html>"
}

type fakeFetcher struct {
	responses map[string]FetchResponse
	errs      map[string]error
	calls     []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (FetchResponse, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return FetchResponse{}, err
	}
	resp, ok := f.responses[url]
	if !ok {
		return FetchResponse{}, fmt.Errorf("no route for %s", url)
	}
	resp.URL = url
	return resp, nil
}
