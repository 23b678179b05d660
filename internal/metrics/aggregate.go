package metrics

import (
	"sort"

	"github.com/ScottDudley1/demo-dashboard/internal/models"
)

const (
	GroupDay = "day"
	Unknown  = "Unknown"
)

// group keeps accumulators in first-appearance order.
type group struct {
	keys []string
	accs map[string]*Accumulator
}

func groupBy(records []models.Record, by string) *group {
	g := &group{accs: map[string]*Accumulator{}}
	for _, r := range records {
		key, ok := groupKey(r, by)
		if !ok {
			continue
		}
		acc, seen := g.accs[key]
		if !seen {
			acc = NewAccumulator()
			g.accs[key] = acc
			g.keys = append(g.keys, key)
		}
		acc.Add(r)
	}
	return g
}

func groupKey(r models.Record, by string) (string, bool) {
	if by == GroupDay {
		return r.DayKey(), r.HasDate()
	}
	if v := r.Dimension(by); v != "" {
		return v, true
	}
	return Unknown, true
}

// Aggregate evaluates metric per group. by is GroupDay, which skips records
// without a date, or a dimension, whose empty values land in Unknown.
func Aggregate(records []models.Record, metric, by string) map[string]float64 {
	f := FormulaFor(metric)
	g := groupBy(records, by)
	out := make(map[string]float64, len(g.keys))
	for _, k := range g.keys {
		out[k] = f.Eval(g.accs[k])
	}
	return out
}

// Total is the scorecard value of metric over all records.
func Total(records []models.Record, metric string) float64 {
	return Evaluate(records, metric)
}

type BreakdownOptions struct {
	KeepUnknown bool
	SortByValue bool
	Limit       int
}

type BreakdownItem struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Share float64 `json:"share"` // percent of the listed items' total
}

// Breakdown groups metric by dim for charts. Unknown is dropped unless asked
// for, so a catch-all bar never shows up.
func Breakdown(records []models.Record, metric, dim string, opts BreakdownOptions) []BreakdownItem {
	f := FormulaFor(metric)
	g := groupBy(records, dim)
	items := make([]BreakdownItem, 0, len(g.keys))
	for _, k := range g.keys {
		if k == Unknown && !opts.KeepUnknown {
			continue
		}
		items = append(items, BreakdownItem{Key: k, Value: f.Eval(g.accs[k])})
	}
	if opts.SortByValue {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Value > items[j].Value })
	}
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	var total float64
	for _, it := range items {
		total += it.Value
	}
	if total > 0 {
		for i := range items {
			items[i].Share = round2(items[i].Value / total * 100)
		}
	}
	return items
}

func BreakdownChart(name string, items []BreakdownItem) models.Chart {
	c := models.Chart{Categories: make([]string, 0, len(items))}
	data := make([]float64, 0, len(items))
	for _, it := range items {
		c.Categories = append(c.Categories, it.Key)
		data = append(data, it.Value)
	}
	c.Series = []models.ChartSeries{{Name: name, Data: data}}
	return c
}

// DailyChart plots one series per metric over the days of rng, or the days
// present in records when rng is nil.
func DailyChart(records []models.Record, rng *models.DateRange, metrics ...string) models.Chart {
	var c models.Chart
	for i, m := range metrics {
		pts := BuildSeries(records, m, rng)
		data := make([]float64, len(pts))
		for j, p := range pts {
			if i == 0 {
				c.Categories = append(c.Categories, p.Date)
			}
			data[j] = p.Value
		}
		c.Series = append(c.Series, models.ChartSeries{Name: FormulaFor(m).Label, Data: data})
	}
	if c.Categories == nil {
		c.Categories = []string{}
	}
	return c
}
