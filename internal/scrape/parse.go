package scrape

import (
	"math"
	"strconv"
	"strings"
)

const (
	ratingMarker  = "⭐"
	invalidRating = "Invalid Rating"
)

// ParsePrice converts a price label such as "$1,299.99" into a number. It
// reports false when the remainder is not a finite decimal.
func ParsePrice(text string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(text)
	return parseDecimal(cleaned)
}

// ParseRating extracts the score between the star marker and the "/" of a
// label such as "Rating: ⭐4.5 / 5". The "Invalid Rating" placeholder reports
// false, as does any label without a marker or with a non-numeric score.
func ParseRating(text string) (float64, bool) {
	parts := strings.Split(text, ratingMarker)
	if len(parts) < 2 {
		return 0, false
	}
	score, _, _ := strings.Cut(parts[1], "/")
	score = strings.TrimSpace(score)
	if score == invalidRating {
		return 0, false
	}
	return parseDecimal(score)
}

// ParseColors reads the leading integer of a label such as "3 Colors".
func ParseColors(text string) (int, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseDecimal(text string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
