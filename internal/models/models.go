package models

import (
	"sort"
	"time"
)

const DayLayout = "2006-01-02"

// Record is one normalized CSV row. Records are read-only once ingested;
// the maps are shared between copies.
type Record struct {
	Date       time.Time
	Dimensions map[string]string
	Metrics    map[string]float64
}

func (r Record) HasDate() bool { return !r.Date.IsZero() }

func (r Record) Dimension(dim string) string { return r.Dimensions[dim] }

// Metric returns 0 for an absent or unparseable field.
func (r Record) Metric(key string) float64 { return r.Metrics[key] }

func (r Record) HasMetric(key string) bool {
	_, ok := r.Metrics[key]
	return ok
}

// DayKey is the calendar-date group key, "" when the record has no date.
func (r Record) DayKey() string {
	if !r.HasDate() {
		return ""
	}
	return r.Date.Format(DayLayout)
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: DayUTC(start), End: DayUTC(end)}
}

func (d DateRange) Valid() bool {
	return !d.Start.IsZero() && !d.End.IsZero() && !d.Start.After(d.End)
}

func (d DateRange) Contains(t time.Time) bool {
	day := DayUTC(t)
	return !day.Before(d.Start) && !day.After(d.End)
}

// Days lists every calendar day from Start to End. Nil when invalid.
func (d DateRange) Days() []time.Time {
	if !d.Valid() {
		return nil
	}
	var out []time.Time
	for day := DayUTC(d.Start); !day.After(d.End); day = day.AddDate(0, 0, 1) {
		out = append(out, day)
	}
	return out
}

func (d DateRange) Label() RangeLabel {
	return RangeLabel{Start: d.Start.Format(DayLayout), End: d.End.Format(DayLayout)}
}

type RangeLabel struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Selection is the active filter state: per-dimension value sets (empty means
// no restriction) and an optional date range (nil means unbounded).
type Selection struct {
	Dimensions map[string][]string
	Range      *DateRange
}

func (s Selection) Values(dim string) []string { return s.Dimensions[dim] }

func (s Selection) Active(dim string) bool { return len(s.Dimensions[dim]) > 0 }

func (s Selection) Clone() Selection {
	out := Selection{Dimensions: make(map[string][]string, len(s.Dimensions))}
	for k, v := range s.Dimensions {
		out.Dimensions[k] = append([]string(nil), v...)
	}
	if s.Range != nil {
		r := *s.Range
		out.Range = &r
	}
	return out
}

// With returns a copy with dim set to vals.
func (s Selection) With(dim string, vals ...string) Selection {
	out := s.Clone()
	out.Dimensions[dim] = append([]string(nil), vals...)
	return out
}

// Equal compares dimension sets ignoring value order and empty entries.
func (s Selection) Equal(o Selection) bool {
	if (s.Range == nil) != (o.Range == nil) {
		return false
	}
	if s.Range != nil && (!s.Range.Start.Equal(o.Range.Start) || !s.Range.End.Equal(o.Range.End)) {
		return false
	}
	keys := map[string]struct{}{}
	for k, v := range s.Dimensions {
		if len(v) > 0 {
			keys[k] = struct{}{}
		}
	}
	for k, v := range o.Dimensions {
		if len(v) > 0 {
			keys[k] = struct{}{}
		}
	}
	for k := range keys {
		a, b := sortedCopy(s.Dimensions[k]), sortedCopy(o.Dimensions[k])
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

func sortedCopy(v []string) []string {
	out := append([]string(nil), v...)
	sort.Strings(out)
	return out
}

// Point is one entry of a per-day series.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Chart is the shape consumed by the chart renderer.
type Chart struct {
	Categories []string      `json:"categories"`
	Series     []ChartSeries `json:"series"`
}

type ChartSeries struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

func DayUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
