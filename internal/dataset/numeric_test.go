package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"100", 100, true},
		{" 200.50 ", 200.5, true},
		{"-3.25", -3.25, true},
		{"+7", 7, true},
		{"1.5e8", 150000000, true},
		{".5", 0.5, true},
		{"", 0, false},
		{"   ", 0, false},
		{"N/A", 0, false},
		{"1,000", 0, false},
		{"$100", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"12abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseFloat(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.InDelta(t, tt.want, Float(tt.raw), 1e-9, "Float must apply the same fallback")
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"250", 250, true},
		{" 12 ", 12, true},
		{"-4", -4, true},
		{"1200.0", 0, false},
		{"", 0, false},
		{"lots", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseInt(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, Int(tt.raw))
		})
	}
}

func TestParseDecimalIsExact(t *testing.T) {
	a, ok := ParseDecimal("0.1")
	assert.True(t, ok)
	b, _ := ParseDecimal("0.2")
	assert.Equal(t, "0.3", a.Add(b).String())
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "C001", NormalizeID("c001"))
	assert.Equal(t, "C001", NormalizeID("  C001 "))
	assert.Equal(t, "C001", NormalizeID(NormalizeID(" c001\t")))
	assert.Equal(t, "", NormalizeID("   "))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{" 2024-03-05 ", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-05 14:30:00", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC), true},
		{"2024-03-05T14:30:00Z", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC), true},
		{"2024/03/05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"03/05/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"3/5/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"2024-13-01", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}
