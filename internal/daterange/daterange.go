// Package daterange computes the date-range picker presets and parses
// user-supplied ranges. "Now" is always passed in, nothing reads the clock
// except SystemClock.
package daterange

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ScottDudley1/demo-dashboard/internal/models"
)

var (
	ErrInvalidRange  = errors.New("invalid date range")
	ErrUnknownPreset = errors.New("unknown date preset")
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{ Loc *time.Location }

func (c SystemClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now()
	}
	return time.Now().In(c.Loc)
}

type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

const (
	Yesterday       = "yesterday"
	Last7Days       = "last_7_days"
	Last30Days      = "last_30_days"
	Last60Days      = "last_60_days"
	Last90Days      = "last_90_days"
	MonthToDate     = "month_to_date"
	LastMonthToDate = "last_month_to_date"
	QuarterToDate   = "quarter_to_date"
	YearToDate      = "year_to_date"
	LastYearToDate  = "last_year_to_date"
)

// MaxRangeDays is the longest from/to span Parse accepts.
const MaxRangeDays = 3 * 366

type Preset struct {
	Key   string
	Label string
	Range models.DateRange
}

// MarshalJSON sends the resolved range as calendar days next to the key.
func (p Preset) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key   string `json:"key"`
		Label string `json:"label"`
		models.RangeLabel
	}{Key: p.Key, Label: p.Label, RangeLabel: p.Range.Label()})
}

var presetOrder = []struct{ key, label string }{
	{Yesterday, "Yesterday"},
	{Last7Days, "Last 7 Days"},
	{Last30Days, "Last 30 Days"},
	{Last60Days, "Last 60 Days"},
	{Last90Days, "Last 90 Days"},
	{MonthToDate, "This Month To Date"},
	{LastMonthToDate, "Last Month To Date"},
	{QuarterToDate, "This Quarter To Date"},
	{YearToDate, "This Year"},
	{LastYearToDate, "Last Year To Date"},
}

// Presets lists the picker presets relative to now.
func Presets(now time.Time) []Preset {
	out := make([]Preset, 0, len(presetOrder))
	for _, p := range presetOrder {
		r, _ := Resolve(p.key, now)
		out = append(out, Preset{Key: p.key, Label: p.label, Range: r})
	}
	return out
}

func Resolve(key string, now time.Time) (models.DateRange, error) {
	today := models.DayUTC(now)
	y, m, _ := today.Date()
	switch strings.ToLower(strings.TrimSpace(key)) {
	case Yesterday:
		d := today.AddDate(0, 0, -1)
		return models.DateRange{Start: d, End: d}, nil
	case Last7Days:
		return lastDays(today, 7), nil
	case Last30Days:
		return lastDays(today, 30), nil
	case Last60Days:
		return lastDays(today, 60), nil
	case Last90Days:
		return lastDays(today, 90), nil
	case MonthToDate:
		return models.DateRange{Start: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), End: today}, nil
	case LastMonthToDate:
		start := time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC)
		return models.DateRange{Start: start, End: sameDayIn(start, today.Day())}, nil
	case QuarterToDate:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return models.DateRange{Start: time.Date(y, qm, 1, 0, 0, 0, 0, time.UTC), End: today}, nil
	case YearToDate:
		return models.DateRange{Start: time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC), End: today}, nil
	case LastYearToDate:
		start := time.Date(y-1, 1, 1, 0, 0, 0, 0, time.UTC)
		monthStart := time.Date(y-1, m, 1, 0, 0, 0, 0, time.UTC)
		return models.DateRange{Start: start, End: sameDayIn(monthStart, today.Day())}, nil
	}
	return models.DateRange{}, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
}

// Default is the caller fallback: the last days days ending today.
func Default(now time.Time, days int) models.DateRange {
	if days <= 0 {
		days = 30
	}
	return lastDays(models.DayUTC(now), days)
}

// Parse builds the active range from query input. A preset wins over from/to.
// Empty input, a half-open pair or a start after end fall back to Default;
// a date that does not parse, or a span over MaxRangeDays, is ErrInvalidRange.
func Parse(from, to, preset string, now time.Time, fallbackDays int) (models.DateRange, error) {
	if strings.TrimSpace(preset) != "" {
		return Resolve(preset, now)
	}
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return Default(now, fallbackDays), nil
	}
	start, err := time.Parse(models.DayLayout, from)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("%w: from=%q", ErrInvalidRange, from)
	}
	end, err := time.Parse(models.DayLayout, to)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("%w: to=%q", ErrInvalidRange, to)
	}
	r := models.NewDateRange(start, end)
	if !r.Valid() {
		return Default(now, fallbackDays), nil
	}
	if span := int(r.End.Sub(r.Start).Hours()/24) + 1; span > MaxRangeDays {
		return models.DateRange{}, fmt.Errorf("%w: %d days, at most %d", ErrInvalidRange, span, MaxRangeDays)
	}
	return r, nil
}

func lastDays(today time.Time, n int) models.DateRange {
	return models.DateRange{Start: today.AddDate(0, 0, -(n - 1)), End: today}
}

// sameDayIn returns day d of monthStart's month, clamped to its last day.
func sameDayIn(monthStart time.Time, d int) time.Time {
	last := monthStart.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(monthStart.Year(), monthStart.Month(), d, 0, 0, 0, 0, time.UTC)
}
