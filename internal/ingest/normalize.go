package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
	"github.com/ScottDudley1/demo-dashboard/internal/models"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Normalize coerces one raw CSV row. The second result is false only when
// requireDate is set and the row has no usable date.
func Normalize(raw map[string]string, sch dataset.Schema, requireDate bool) (models.Record, bool) {
	rec := models.Record{
		Dimensions: make(map[string]string),
		Metrics:    make(map[string]float64),
	}
	dateField := sch.DateField
	if dateField == "" {
		dateField = "Date"
	}
	if d, ok := ParseDate(raw[dateField]); ok {
		rec.Date = d
	} else if requireDate {
		return models.Record{}, false
	}

	for col, val := range raw {
		if col == dateField {
			continue
		}
		val = strings.TrimSpace(val)
		switch {
		case sch.IsDimension(col):
			if val != "" {
				rec.Dimensions[col] = val
			}
		case sch.IsMetric(col):
			if f, ok := parseNumber(val); ok {
				rec.Metrics[col] = f
			}
		default:
			// undeclared column: numeric values are metrics
			if f, ok := parseNumber(val); ok {
				rec.Metrics[col] = f
			} else if val != "" {
				rec.Dimensions[col] = val
			}
		}
	}
	return rec, true
}

// ParseDate reads a calendar date, dropping any time of day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DayUTC(t), true
		}
	}
	return time.Time{}, false
}

// parseNumber accepts "1,234.5", "$12" and "45.2%". Negative, NaN and
// infinite values come back as 0.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, true
	}
	return f, true
}
