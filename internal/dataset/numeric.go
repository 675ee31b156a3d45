package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Numeric fields in the source are free text. Parsing is lossy-but-available:
// a blank or non-numeric value yields zero and never an error, so one bad cell
// cannot abort an analysis. The (value, ok) variants let callers record which
// fields fell back.
//
// Accepted: optional sign, digits, optional decimal point, optional exponent
// ("1.5e8"). Rejected: thousands separators, currency symbols, NaN, Inf.

// ParseDecimal parses raw as an exact decimal.
func ParseDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseFloat parses raw as a float64.
func ParseFloat(raw string) (float64, bool) {
	d, ok := ParseDecimal(raw)
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// ParseInt parses raw as a base-10 integer. Fractional input is rejected.
func ParseInt(raw string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float is ParseFloat with the fallback applied.
func Float(raw string) float64 {
	f, _ := ParseFloat(raw)
	return f
}

// Int is ParseInt with the fallback applied.
func Int(raw string) int64 {
	n, _ := ParseInt(raw)
	return n
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate parses raw against the date layouts seen in transaction exports.
// A blank or unrecognized value reports false.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
