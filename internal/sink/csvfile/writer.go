// Package csvfile writes the normalized table as a timestamped CSV snapshot.
package csvfile

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/fashion-etl/internal/product"
	"github.com/JakeFAU/fashion-etl/internal/storage"
)

const (
	fileLayout  = "20060102_150405"
	contentType = "text/csv; charset=utf-8"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Writer serializes tables with every non-numeric field quoted.
type Writer struct {
	store  storage.BlobStore
	clock  Clock
	logger *zap.Logger
}

// New constructs a Writer persisting through store.
func New(store storage.BlobStore, clock Clock, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{store: store, clock: clock, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (*Writer) Name() string { return "csv" }

// FileName returns the snapshot name for a run started at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("products_%s.csv", t.Format(fileLayout))
}

// Write stores the table as products_<YYYYMMDD_HHMMSS>.csv.
func (w *Writer) Write(ctx context.Context, table product.Table) bool {
	name := FileName(w.clock.Now())
	var buf bytes.Buffer
	Encode(&buf, table)

	uri, err := w.store.PutObject(ctx, name, contentType, &buf)
	if err != nil {
		w.logger.Error("Error saving to CSV", zap.String("file", name), zap.Error(err))
		return false
	}
	w.logger.Info("Data successfully saved to CSV", zap.String("uri", uri), zap.Int("rows", table.Len()))
	return true
}

// Encode renders the header and rows. Strings are double-quoted with embedded
// quotes doubled; numbers are written bare.
func Encode(buf *bytes.Buffer, table product.Table) {
	for i, col := range table.Columns() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeQuoted(buf, col)
	}
	buf.WriteByte('\n')

	for _, r := range table.Rows {
		writeQuoted(buf, r.Title)
		buf.WriteByte(',')
		buf.WriteString(formatFloat(r.Price))
		buf.WriteByte(',')
		buf.WriteString(formatFloat(r.Rating))
		buf.WriteByte(',')
		buf.WriteString(strconv.Itoa(r.Colors))
		buf.WriteByte(',')
		writeQuoted(buf, r.Size)
		buf.WriteByte(',')
		writeQuoted(buf, r.Gender)
		buf.WriteByte(',')
		writeQuoted(buf, r.Timestamp)
		buf.WriteByte('\n')
	}
}

func writeQuoted(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	buf.WriteString(strings.ReplaceAll(s, `"`, `""`))
	buf.WriteByte('"')
}

// formatFloat renders floats the way spreadsheet and pandas readers expect:
// integral values keep a ".0" suffix and very large or small magnitudes use
// exponent notation.
func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
