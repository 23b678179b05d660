package metrics

import (
	"math"
	"sort"

	"github.com/ScottDudley1/demo-dashboard/internal/models"
)

// BuildSeries returns metric per day. With a valid range every day of it is
// present, zero-filled. Without one only the days found in records appear.
// The result always has at least one point.
func BuildSeries(records []models.Record, metric string, rng *models.DateRange) []models.Point {
	byDay := Aggregate(records, metric, GroupDay)

	var out []models.Point
	if rng != nil && rng.Valid() {
		days := rng.Days()
		out = make([]models.Point, 0, len(days))
		for _, d := range days {
			key := d.Format(models.DayLayout)
			out = append(out, models.Point{Date: key, Value: byDay[key]})
		}
	} else {
		keys := make([]string, 0, len(byDay))
		for k := range byDay {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out = make([]models.Point, 0, len(keys))
		for _, k := range keys {
			out = append(out, models.Point{Date: k, Value: byDay[k]})
		}
	}
	if len(out) == 0 {
		return []models.Point{{Date: "", Value: 0}}
	}
	return out
}

type Sparkline struct {
	Name       string    `json:"name"`
	Categories []string  `json:"categories"`
	Data       []float64 `json:"data"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
}

// NewSparkline pads the y axis: 10% under a positive minimum (else 0) and 10%
// over the maximum.
func NewSparkline(name string, pts []models.Point) Sparkline {
	s := Sparkline{Name: name, Categories: make([]string, 0, len(pts)), Data: make([]float64, 0, len(pts))}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		s.Categories = append(s.Categories, p.Date)
		s.Data = append(s.Data, p.Value)
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if len(pts) == 0 {
		lo, hi = 0, 0
	}
	if lo > 0 {
		s.Min = lo * 0.9
	}
	s.Max = hi * 1.1
	return s
}
