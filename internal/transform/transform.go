// Package transform normalizes raw product records into the canonical table.
package transform

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/fashion-etl/internal/metrics"
	"github.com/JakeFAU/fashion-etl/internal/product"
)

// ExchangeRate converts source-currency prices into the target currency.
const ExchangeRate = 16000

// DefaultSize fills rows scraped without a size line.
const DefaultSize = "One Size"

const (
	unknownProductTitle = "Unknown Product"
	defaultColors       = 1
	maxColors           = math.MaxInt32
)

// ErrPriceOutOfRange is returned when a rescaled price cannot be represented.
var ErrPriceOutOfRange = errors.New("price out of range")

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Transformer turns raw records into a normalized, deduplicated Table.
type Transformer struct {
	clock   Clock
	metrics *metrics.Recorder
	logger  *zap.Logger
}

// New constructs a Transformer.
func New(clock Clock, rec *metrics.Recorder, logger *zap.Logger) *Transformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transformer{clock: clock, metrics: rec, logger: logger}
}

type dedupKey struct {
	title  string
	price  float64
	size   string
	gender string
}

// Transform cleans the raw records. Empty input yields an empty table. Any
// failure while cleaning also yields an empty table; a partially cleaned
// result is never returned.
func (t *Transformer) Transform(raw []product.RawProduct) (table product.Table) {
	t.logger.Info("Starting data transformation")
	if len(raw) == 0 {
		t.logger.Warn("No data to transform")
		return product.Table{}
	}

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("An error occurred during data transformation", zap.Any("panic", r))
			table = product.Table{}
		}
		t.metrics.SetRowsTransformed(table.Len())
	}()

	rows, err := t.normalize(raw)
	if err != nil {
		t.logger.Error("An error occurred during data transformation", zap.Error(err))
		return product.Table{}
	}
	t.logger.Info("Final data shape",
		zap.Int("rows", len(rows)),
		zap.Int("columns", len(product.Columns())),
	)
	return product.Table{Rows: rows}
}

func (t *Transformer) normalize(raw []product.RawProduct) ([]product.Row, error) {
	stamp := t.clock.Now().Format(product.TimestampLayout)
	seen := make(map[dedupKey]struct{}, len(raw))
	rows := make([]product.Row, 0, len(raw))

	for i, rec := range raw {
		title, ok := trimmedText(rec.Title)
		if !ok {
			continue
		}
		gender, ok := trimmedText(rec.Gender)
		if !ok {
			continue
		}
		if title == unknownProductTitle {
			continue
		}

		price, err := convertPrice(rec.Price)
		if err != nil {
			return nil, fmt.Errorf("record %d (%q): %w", i, title, err)
		}
		row := product.Row{
			Title:     title,
			Price:     price,
			Rating:    coerceRating(rec.Rating),
			Colors:    coerceColors(rec.Colors),
			Size:      sizeOrDefault(rec.Size),
			Gender:    gender,
			Timestamp: stamp,
		}

		key := dedupKey{title: row.Title, price: row.Price, size: row.Size, gender: row.Gender}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, row)
	}
	return rows, nil
}

func trimmedText(v product.Value) (string, bool) {
	s, ok := v.Str()
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func convertPrice(v product.Value) (float64, error) {
	price, ok := finite(v)
	if !ok || price < 0 {
		price = 0
	}
	converted := price * ExchangeRate
	if math.IsInf(converted, 0) {
		return 0, fmt.Errorf("%w: %s", ErrPriceOutOfRange, v)
	}
	return converted, nil
}

func coerceRating(v product.Value) float64 {
	rating, ok := finite(v)
	if !ok {
		return 0
	}
	return rating
}

func coerceColors(v product.Value) int {
	colors, ok := finite(v)
	if !ok || colors < defaultColors || colors > maxColors {
		return defaultColors
	}
	return int(math.Trunc(colors))
}

func sizeOrDefault(v product.Value) string {
	if s, ok := v.Str(); ok {
		return s
	}
	return DefaultSize
}

func finite(v product.Value) (float64, bool) {
	f, ok := v.Float()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
