// Package product defines the raw and normalized catalog records shared across
// the extract, transform and load stages.
package product

import (
	"strconv"
	"strings"
)

// TimestampLayout is the wall-clock format stamped on every normalized row.
const TimestampLayout = "2006-01-02 15:04:05"

// Column names of the normalized dataset, in schema order.
const (
	ColumnTitle     = "title"
	ColumnPrice     = "price"
	ColumnRating    = "rating"
	ColumnColors    = "colors"
	ColumnSize      = "size"
	ColumnGender    = "gender"
	ColumnTimestamp = "timestamp"
)

// Columns returns the canonical column order of a Table.
func Columns() []string {
	return []string{
		ColumnTitle,
		ColumnPrice,
		ColumnRating,
		ColumnColors,
		ColumnSize,
		ColumnGender,
		ColumnTimestamp,
	}
}

type valueKind uint8

const (
	kindMissing valueKind = iota
	kindText
	kindNumber
)

// Value is a single scraped field. It is either absent, free text, or a number
// that was already parsed during extraction. The zero Value is absent.
type Value struct {
	kind valueKind
	text string
	num  float64
}

// Missing returns an absent Value.
func Missing() Value {
	return Value{}
}

// Text wraps a string field.
func Text(s string) Value {
	return Value{kind: kindText, text: s}
}

// Number wraps a numeric field.
func Number(f float64) Value {
	return Value{kind: kindNumber, num: f}
}

// NumberIf returns Number(f) when ok, otherwise Missing. It pairs with the
// (value, ok) results of the field parsers.
func NumberIf(f float64, ok bool) Value {
	if !ok {
		return Missing()
	}
	return Number(f)
}

// IsSet reports whether the field was present.
func (v Value) IsSet() bool {
	return v.kind != kindMissing
}

// Str returns the text of a text field. Numbers and absent fields report false.
func (v Value) Str() (string, bool) {
	if v.kind != kindText {
		return "", false
	}
	return v.text, true
}

// Float coerces the field to a number: numbers pass through, text is parsed as
// a decimal after trimming. Anything else reports false.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case kindNumber:
		return v.num, true
	case kindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// String renders the value for logs.
func (v Value) String() string {
	switch v.kind {
	case kindText:
		return v.text
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return "<missing>"
	}
}

// RawProduct is one listing as scraped, before normalization. Every field is
// optional.
type RawProduct struct {
	ImageURL   Value
	ProductAlt Value
	Title      Value
	Price      Value
	Rating     Value
	Colors     Value
	Size       Value
	Gender     Value
}

// Row is one record of the normalized dataset.
type Row struct {
	Title     string
	Price     float64
	Rating    float64
	Colors    int
	Size      string
	Gender    string
	Timestamp string
}

// Values returns the row's cells in Columns order.
func (r Row) Values() []any {
	return []any{r.Title, r.Price, r.Rating, r.Colors, r.Size, r.Gender, r.Timestamp}
}

// Table is the normalized dataset. A Table is read-only once built.
type Table struct {
	Rows []Row
}

// Columns returns the table's schema.
func (Table) Columns() []string {
	return Columns()
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}
