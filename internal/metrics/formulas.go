// Package metrics aggregates filtered records into the numbers, series and
// tables the dashboard renders.
package metrics

import (
	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
	"github.com/ScottDudley1/demo-dashboard/internal/models"
)

type Kind string

const (
	KindSum   Kind = "sum"
	KindRatio Kind = "ratio"
	KindMean  Kind = "mean"
)

type Unit string

const (
	UnitCount    Unit = "count"
	UnitMoney    Unit = "money"
	UnitPercent  Unit = "percent"
	UnitDuration Unit = "duration"
)

// Accumulator holds the running totals of one group.
type Accumulator struct {
	Records int
	Sums    map[string]float64
	Counts  map[string]int // records carrying the field
}

func NewAccumulator() *Accumulator {
	return &Accumulator{Sums: map[string]float64{}, Counts: map[string]int{}}
}

func (a *Accumulator) Add(r models.Record) {
	a.Records++
	for k, v := range r.Metrics {
		a.Sums[k] += v
		a.Counts[k]++
	}
}

// Formula turns a group's totals into one metric value.
type Formula struct {
	Key   string
	Label string
	Kind  Kind
	Unit  Unit
	Eval  func(*Accumulator) float64
}

// Formulas lists the metrics that are not plain sums, plus the summable
// metrics that need a non-count unit.
var Formulas = map[string]Formula{
	"Spend":              sum("Spend", "Total Spend", UnitMoney),
	"CPC":                ratio("CPC", "Avg. CPC", UnitMoney, "Spend", "Clicks", 1),
	"CPM":                ratio("CPM", "CPM", UnitMoney, "Spend", "Impressions", 1000),
	"CTR":                ratio("CTR", "CTR", UnitPercent, "Clicks", "Impressions", 100),
	"ConversionRate":     ratio("ConversionRate", "Conversion Rate", UnitPercent, "Conversions", "Clicks", 100),
	"CostPerConversion":  ratio("CostPerConversion", "Cost Per Conv.", UnitMoney, "Spend", "Conversions", 1),
	"BounceRate":         mean("BounceRate", "Bounce Rate", UnitPercent),
	"AvgSessionDuration": mean("AvgSessionDuration", "Avg. Session Duration", UnitDuration),
}

// FormulaFor returns the registered formula of key, or a plain sum.
func FormulaFor(key string) Formula {
	if f, ok := Formulas[key]; ok {
		return f
	}
	return sum(key, dataset.Label(key), UnitCount)
}

func sum(key, label string, unit Unit) Formula {
	return Formula{Key: key, Label: label, Kind: KindSum, Unit: unit, Eval: func(a *Accumulator) float64 {
		return a.Sums[key]
	}}
}

// ratio evaluates scale*num/den over the summed fields, 0 when den is 0.
func ratio(key, label string, unit Unit, num, den string, scale float64) Formula {
	return Formula{Key: key, Label: label, Kind: KindRatio, Unit: unit, Eval: func(a *Accumulator) float64 {
		d := a.Sums[den]
		if d == 0 {
			return 0
		}
		return a.Sums[num] / d * scale
	}}
}

// mean averages over the records that carry the field.
func mean(key, label string, unit Unit) Formula {
	return Formula{Key: key, Label: label, Kind: KindMean, Unit: unit, Eval: func(a *Accumulator) float64 {
		n := a.Counts[key]
		if n == 0 {
			return 0
		}
		return a.Sums[key] / float64(n)
	}}
}

// Evaluate runs key's formula over one group of records.
func Evaluate(records []models.Record, key string) float64 {
	acc := NewAccumulator()
	for _, r := range records {
		acc.Add(r)
	}
	return FormulaFor(key).Eval(acc)
}
