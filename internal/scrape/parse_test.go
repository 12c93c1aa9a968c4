package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{in: "$99.99", want: 99.99, wantOK: true},
		{in: "$1,299.50", want: 1299.50, wantOK: true},
		{in: " 12 ", want: 12, wantOK: true},
		{in: "Price Unavailable"},
		{in: "$"},
		{in: ""},
		{in: "$NaN"},
		{in: "$Inf"},
	}
	for _, tc := range tests {
		got, ok := ParsePrice(tc.in)
		assert.Equal(t, tc.wantOK, ok, "ParsePrice(%q)", tc.in)
		assert.InDelta(t, tc.want, got, 1e-9, "ParsePrice(%q)", tc.in)
	}
}

func TestParseRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{in: "Rating: ⭐4.5/5", want: 4.5, wantOK: true},
		{in: "Rating: ⭐ 3.9 / 5", want: 3.9, wantOK: true},
		{in: "⭐5/5", want: 5, wantOK: true},
		{in: "⭐4.8", want: 4.8, wantOK: true},
		{in: "Rating: ⭐Invalid Rating/5"},
		{in: "Rating: ⭐ Invalid Rating / 5"},
		{in: "Rating: Not Rated"},
		{in: "⭐abc/5"},
		{in: ""},
	}
	for _, tc := range tests {
		got, ok := ParseRating(tc.in)
		assert.Equal(t, tc.wantOK, ok, "ParseRating(%q)", tc.in)
		assert.InDelta(t, tc.want, got, 1e-9, "ParseRating(%q)", tc.in)
	}
}

func TestParseColors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{in: "3 Colors", want: 3, wantOK: true},
		{in: "  1 Colors ", want: 1, wantOK: true},
		{in: "Colors: many"},
		{in: "2.5 Colors"},
		{in: ""},
		{in: "   "},
	}
	for _, tc := range tests {
		got, ok := ParseColors(tc.in)
		assert.Equal(t, tc.wantOK, ok, "ParseColors(%q)", tc.in)
		assert.Equal(t, tc.want, got, "ParseColors(%q)", tc.in)
	}
}

func FuzzParsersNeverPanic(f *testing.F) {
	for _, seed := range []string{"$1,000.00", "⭐4.5/5", "3 Colors", "⭐", "/", ""} {
		f.Add(seed)
	}
	f.Fuzz(func(_ *testing.T, in string) {
		ParsePrice(in)
		ParseRating(in)
		ParseColors(in)
	})
}
