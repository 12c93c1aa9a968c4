package transform

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/fashion-etl/internal/clock/system"
	"github.com/JakeFAU/fashion-etl/internal/product"
)

var fixedNow = time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

const fixedStamp = "2023-01-01 12:00:00"

func raw(title, price, rating, colors, size, gender product.Value) product.RawProduct {
	return product.RawProduct{Title: title, Price: price, Rating: rating, Colors: colors, Size: size, Gender: gender}
}

// scaled multiplies at run time, matching the transformer's float arithmetic.
func scaled(f float64) float64 { return f * ExchangeRate }

func text(s string) product.Value { return product.Text(s) }

var none = product.Missing()

func TestTransformValidInput(t *testing.T) {
	t.Parallel()

	in := []product.RawProduct{
		raw(text("Test Product 1"), text("19.99"), text("4.5"), text("3"), text("M"), text("Men")),
		raw(text("Test Product 2"), text("29.99"), text("3.8"), text("2"), text("L"), text("Women")),
		raw(text("Test Product 3"), text("39.99"), none, none, none, text("Unisex")),
	}

	got := New(system.Fixed(fixedNow), nil, zap.NewNop()).Transform(in)

	want := product.Table{Rows: []product.Row{
		{Title: "Test Product 1", Price: scaled(19.99), Rating: 4.5, Colors: 3, Size: "M", Gender: "Men", Timestamp: fixedStamp},
		{Title: "Test Product 2", Price: scaled(29.99), Rating: 3.8, Colors: 2, Size: "L", Gender: "Women", Timestamp: fixedStamp},
		{Title: "Test Product 3", Price: scaled(39.99), Rating: 0, Colors: 1, Size: DefaultSize, Gender: "Unisex", Timestamp: fixedStamp},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Transform() mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 319840.0, got.Rows[0].Price, 1e-6)
}

func TestTransformFiltersAndDeduplicates(t *testing.T) {
	t.Parallel()

	in := []product.RawProduct{
		raw(text("Unknown Product"), text("invalid"), text("not a number"), text("many"), text("S"), text("Men")),
		raw(text("Missing Price"), none, text("4.0"), text("5"), text("XL"), text("Men")),
		raw(text("Test Product 1"), text("19.99"), text("4.5"), text("3"), text("M"), text("Men")),
		raw(text("Test Product 1"), product.Number(19.99), text("1.0"), text("7"), text("M"), text(" Men ")),
		raw(text("  "), text("1"), none, none, none, text("Men")),
		raw(text("No Gender"), text("1"), none, none, none, none),
		raw(none, text("1"), none, none, none, text("Women")),
	}

	got := New(system.Fixed(fixedNow), nil, nil).Transform(in)
	require.Equal(t, 2, got.Len())

	missing := got.Rows[0]
	assert.Equal(t, "Missing Price", missing.Title)
	assert.Zero(t, missing.Price)
	assert.InDelta(t, 4.0, missing.Rating, 1e-9)
	assert.Equal(t, 5, missing.Colors)

	first := got.Rows[1]
	assert.Equal(t, "Test Product 1", first.Title)
	assert.Equal(t, 3, first.Colors, "first occurrence wins")
	assert.InDelta(t, 4.5, first.Rating, 1e-9)
}

func TestTransformDefaults(t *testing.T) {
	t.Parallel()

	in := []product.RawProduct{
		raw(text(" Padded "), text("-5"), product.Number(4.8), product.Number(0), none, text("Women")),
		raw(text("Fractional"), text("2"), text("NaN"), text("2.9"), text(""), text("Men")),
	}
	got := New(system.Fixed(fixedNow), nil, nil).Transform(in)
	require.Equal(t, 2, got.Len())

	assert.Equal(t, "Padded", got.Rows[0].Title)
	assert.Zero(t, got.Rows[0].Price)
	assert.InDelta(t, 4.8, got.Rows[0].Rating, 1e-9)
	assert.Equal(t, 1, got.Rows[0].Colors)
	assert.Equal(t, DefaultSize, got.Rows[0].Size)

	assert.Zero(t, got.Rows[1].Rating)
	assert.Equal(t, 2, got.Rows[1].Colors)
	assert.Equal(t, "", got.Rows[1].Size)
	for _, row := range got.Rows {
		assert.Equal(t, fixedStamp, row.Timestamp)
	}
}

func TestTransformEmptyInput(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	tr := New(system.Fixed(fixedNow), nil, zap.New(core))

	assert.True(t, tr.Transform(nil).Empty())
	assert.True(t, tr.Transform([]product.RawProduct{}).Empty())
	assert.Equal(t, 2, logs.FilterMessage("No data to transform").Len())
	assert.Equal(t, product.Columns(), tr.Transform(nil).Columns())
}

func TestTransformFailureYieldsEmptyTable(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.ErrorLevel)
	tr := New(system.Fixed(fixedNow), nil, zap.New(core))

	in := []product.RawProduct{
		raw(text("Fine"), text("10"), none, none, none, text("Men")),
		raw(text("Huge"), product.Number(1e305), none, none, none, text("Men")),
	}
	got := tr.Transform(in)
	assert.True(t, got.Empty())
	assert.Equal(t, 1, logs.FilterMessage("An error occurred during data transformation").Len())
}

func TestTransformRecoversPanics(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.ErrorLevel)
	tr := New(nil, nil, zap.New(core))

	got := tr.Transform([]product.RawProduct{raw(text("A"), text("1"), none, none, none, text("Men"))})
	assert.True(t, got.Empty())
	assert.Equal(t, 1, logs.Len())
}
