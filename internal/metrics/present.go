package metrics

import (
	"sort"
	"strings"
	"sync"

	"github.com/pariz/gountries"

	"github.com/ScottDudley1/demo-dashboard/internal/models"
)

type Scorecard struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Value     float64   `json:"value"`
	Display   string    `json:"display"`
	Info      string    `json:"info,omitempty"`
	Sparkline Sparkline `json:"sparkline"`
}

// Scorecards builds one card per key over already filtered records.
func Scorecards(records []models.Record, keys []string, rng *models.DateRange) []Scorecard {
	acc := NewAccumulator()
	for _, r := range records {
		acc.Add(r)
	}
	out := make([]Scorecard, 0, len(keys))
	for _, k := range keys {
		f := FormulaFor(k)
		v := f.Eval(acc)
		out = append(out, Scorecard{
			Key:       k,
			Label:     f.Label,
			Value:     round3(v),
			Display:   Display(v, f.Unit),
			Info:      info(k, v, len(records), acc),
			Sparkline: NewSparkline(k, BuildSeries(records, k, rng)),
		})
	}
	return out
}

// RecordRow is a drill-down line of the tables.
type RecordRow struct {
	Date       string             `json:"date,omitempty"`
	Dimensions map[string]string  `json:"dimensions"`
	Metrics    map[string]float64 `json:"metrics"`
}

func recordRow(r models.Record) RecordRow {
	return RecordRow{Date: r.DayKey(), Dimensions: r.Dimensions, Metrics: r.Metrics}
}

func totals(acc *Accumulator, keys []string) map[string]float64 {
	out := make(map[string]float64, len(keys))
	for _, k := range keys {
		out[k] = round3(FormulaFor(k).Eval(acc))
	}
	return out
}

type DailyRow struct {
	Date    string             `json:"date"`
	Totals  map[string]float64 `json:"totals"`
	Records []RecordRow        `json:"records"`
}

// DailyTable totals keys per day, newest day first. Dateless records are left out.
func DailyTable(records []models.Record, keys []string) []DailyRow {
	byDay := map[string]*DailyRow{}
	accs := map[string]*Accumulator{}
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		d := r.DayKey()
		row, ok := byDay[d]
		if !ok {
			row = &DailyRow{Date: d}
			byDay[d] = row
			accs[d] = NewAccumulator()
		}
		row.Records = append(row.Records, recordRow(r))
		accs[d].Add(r)
	}
	out := make([]DailyRow, 0, len(byDay))
	for d, row := range byDay {
		row.Totals = totals(accs[d], keys)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

type GroupRow struct {
	Key     string             `json:"key"`
	Count   int                `json:"count"`
	Totals  map[string]float64 `json:"totals"`
	Records []RecordRow        `json:"records"`
}

// GroupTable totals keys per value of dim. Records without the dimension are
// shown under Unknown, sorted last.
func GroupTable(records []models.Record, dim string, keys []string) []GroupRow {
	rows := map[string]*GroupRow{}
	accs := map[string]*Accumulator{}
	for _, r := range records {
		k, _ := groupKey(r, dim)
		row, ok := rows[k]
		if !ok {
			row = &GroupRow{Key: k}
			rows[k] = row
			accs[k] = NewAccumulator()
		}
		row.Count++
		row.Records = append(row.Records, recordRow(r))
		accs[k].Add(r)
	}
	out := make([]GroupRow, 0, len(rows))
	for k, row := range rows {
		row.Totals = totals(accs[k], keys)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].Key == Unknown) != (out[j].Key == Unknown) {
			return out[j].Key == Unknown
		}
		return out[i].Key < out[j].Key
	})
	return out
}

type SourceMediumRow struct {
	Source             string  `json:"source"`
	Medium             string  `json:"medium"`
	Sessions           float64 `json:"sessions"`
	Users              float64 `json:"users"`
	Pageviews          float64 `json:"pageviews"`
	BounceRate         float64 `json:"bounce_rate"`
	AvgSessionDuration float64 `json:"avg_session_duration"`
	Duration           string  `json:"duration"`
}

// SourceMedium pairs traffic sources with their medium, by sessions
// descending. Records missing either side are skipped.
func SourceMedium(records []models.Record) []SourceMediumRow {
	type pair struct{ source, medium string }
	var order []pair
	accs := map[pair]*Accumulator{}
	for _, r := range records {
		p := pair{r.Dimension("Source"), r.Dimension("Medium")}
		if p.source == "" || p.medium == "" {
			continue
		}
		acc, ok := accs[p]
		if !ok {
			acc = NewAccumulator()
			accs[p] = acc
			order = append(order, p)
		}
		acc.Add(r)
	}
	out := make([]SourceMediumRow, 0, len(order))
	for _, p := range order {
		acc := accs[p]
		dur := Formulas["AvgSessionDuration"].Eval(acc)
		out = append(out, SourceMediumRow{
			Source:             p.source,
			Medium:             p.medium,
			Sessions:           acc.Sums["Sessions"],
			Users:              acc.Sums["Users"],
			Pageviews:          acc.Sums["Pageviews"],
			BounceRate:         round2(Formulas["BounceRate"].Eval(acc)),
			AvgSessionDuration: round2(dur),
			Duration:           Duration(dur),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sessions > out[j].Sessions })
	return out
}

type GeoRow struct {
	Country string  `json:"country"`
	Alpha2  string  `json:"alpha2,omitempty"`
	Alpha3  string  `json:"alpha3,omitempty"`
	Value   float64 `json:"value"`
}

type GeoMap struct {
	Metric string   `json:"metric"`
	Max    float64  `json:"max"`
	Rows   []GeoRow `json:"rows"`
}

var countries = sync.OnceValue(gountries.New)

// Geo totals metric per country and resolves ISO codes for the map layer.
// Names gountries does not know keep empty codes.
func Geo(records []models.Record, metric string) GeoMap {
	items := Breakdown(records, metric, "Country", BreakdownOptions{SortByValue: true})
	m := GeoMap{Metric: metric, Rows: make([]GeoRow, 0, len(items))}
	q := countries()
	for _, it := range items {
		row := GeoRow{Country: it.Key, Value: round3(it.Value)}
		if c, ok := lookupCountry(q, it.Key); ok {
			row.Alpha2, row.Alpha3 = c.Alpha2, c.Alpha3
		}
		if it.Value > m.Max {
			m.Max = round3(it.Value)
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

func lookupCountry(q *gountries.Query, name string) (gountries.Country, bool) {
	if c, err := q.FindCountryByName(name); err == nil {
		return c, true
	}
	if n := strings.TrimSpace(name); len(n) == 2 || len(n) == 3 {
		if c, err := q.FindCountryByAlpha(n); err == nil {
			return c, true
		}
	}
	return gountries.Country{}, false
}
