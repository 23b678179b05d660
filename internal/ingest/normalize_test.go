package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
)

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-03-05", "2024/03/05", "03/05/2024", "2024-03-05 18:22:01", "2024-03-05T23:10:00Z"} {
		got, ok := ParseDate(s)
		assert.True(t, ok, s)
		assert.Equal(t, want, got, s)
	}
	for _, s := range []string{"", "yesterday", "2024-13-40"} {
		_, ok := ParseDate(s)
		assert.False(t, ok, s)
	}
}

func TestParseNumber(t *testing.T) {
	testCases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12", 12, true},
		{" 3.5 ", 3.5, true},
		{"45.2%", 45.2, true},
		{"$1,234.50", 1234.5, true},
		{"-7", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tc := range testCases {
		got, ok := parseNumber(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizeClassifiesUndeclaredColumns(t *testing.T) {
	sch, _ := dataset.Lookup(dataset.Summary)
	rec, ok := Normalize(map[string]string{
		"Date":     "2024-01-01",
		"Channel":  " Email ",
		"Sales":    "250",
		"Revenue":  "99.5",
		"Region":   "EMEA",
		"Comments": "",
	}, sch, false)

	assert.True(t, ok)
	assert.Equal(t, "Email", rec.Dimension("Channel"))
	assert.Equal(t, 250.0, rec.Metric("Sales"))
	assert.Equal(t, 99.5, rec.Metric("Revenue"))
	assert.Equal(t, "EMEA", rec.Dimension("Region"))
	assert.NotContains(t, rec.Dimensions, "Comments")
}

func TestNormalizeDeclaredDimensionStaysString(t *testing.T) {
	sch, _ := dataset.Lookup(dataset.Ads)
	rec, ok := Normalize(map[string]string{"Ad Name": "1234", "Date": "bogus"}, sch, false)
	assert.True(t, ok)
	assert.Equal(t, "1234", rec.Dimension("Ad Name"))
	assert.False(t, rec.HasDate())

	_, ok = Normalize(map[string]string{"Ad Name": "1234", "Date": "bogus"}, sch, true)
	assert.False(t, ok)
}
