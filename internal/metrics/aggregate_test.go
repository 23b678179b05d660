package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScottDudley1/demo-dashboard/internal/models"
)

func row(date string, dims map[string]string, metrics map[string]float64) models.Record {
	r := models.Record{Dimensions: dims, Metrics: metrics}
	if r.Dimensions == nil {
		r.Dimensions = map[string]string{}
	}
	if r.Metrics == nil {
		r.Metrics = map[string]float64{}
	}
	if date != "" {
		r.Date, _ = time.Parse(models.DayLayout, date)
	}
	return r
}

func ctrRecords() []models.Record {
	return []models.Record{
		row("2024-01-01", nil, map[string]float64{"Clicks": 10, "Impressions": 100}),
		row("2024-01-02", nil, map[string]float64{"Clicks": 0, "Impressions": 50}),
		row("2024-01-03", nil, map[string]float64{"Clicks": 5, "Impressions": 0}),
	}
}

func TestAggregateCTRPerDay(t *testing.T) {
	got := Aggregate(ctrRecords(), "CTR", GroupDay)
	assert.Equal(t, map[string]float64{
		"2024-01-01": 10.0,
		"2024-01-02": 0.0,
		"2024-01-03": 0.0,
	}, got)
}

func TestAggregateDaySumMatchesTotal(t *testing.T) {
	recs := []models.Record{
		row("2024-01-01", nil, map[string]float64{"Spend": 1.25}),
		row("2024-01-01", nil, map[string]float64{"Spend": 2.5}),
		row("2024-01-05", nil, map[string]float64{}),
		row("2024-01-07", nil, map[string]float64{"Spend": 10}),
	}
	var sum float64
	for _, v := range Aggregate(recs, "Spend", GroupDay) {
		sum += v
	}
	var want float64
	for _, r := range recs {
		want += r.Metric("Spend")
	}
	assert.InDelta(t, want, sum, 1e-9)
	assert.InDelta(t, want, Total(recs, "Spend"), 1e-9)
}

func TestAggregateSkipsDatelessForDays(t *testing.T) {
	recs := []models.Record{
		row("", nil, map[string]float64{"Sales": 4}),
		row("2024-01-01", nil, map[string]float64{"Sales": 1}),
	}
	assert.Equal(t, map[string]float64{"2024-01-01": 1}, Aggregate(recs, "Sales", GroupDay))
	assert.Equal(t, 5.0, Total(recs, "Sales"))
}

func TestAggregateByDimensionBucketsUnknown(t *testing.T) {
	recs := []models.Record{
		row("2024-01-01", map[string]string{"Channel": "Email"}, map[string]float64{"Leads": 2}),
		row("2024-01-01", nil, map[string]float64{"Leads": 3}),
		row("2024-01-02", map[string]string{"Channel": "Email"}, map[string]float64{"Leads": 1}),
	}
	assert.Equal(t, map[string]float64{"Email": 3, Unknown: 3}, Aggregate(recs, "Leads", "Channel"))
}

func TestBreakdownDropsUnknownByDefault(t *testing.T) {
	recs := []models.Record{
		row("", map[string]string{"Channel": "Search"}, map[string]float64{"Spend": 10}),
		row("", nil, map[string]float64{"Spend": 50}),
		row("", map[string]string{"Channel": "Email"}, map[string]float64{"Spend": 30}),
	}

	items := Breakdown(recs, "Spend", "Channel", BreakdownOptions{})
	require.Len(t, items, 2)
	assert.Equal(t, "Search", items[0].Key, "first appearance order")
	assert.Equal(t, 25.0, items[0].Share)
	assert.Equal(t, 75.0, items[1].Share)

	items = Breakdown(recs, "Spend", "Channel", BreakdownOptions{KeepUnknown: true, SortByValue: true, Limit: 2})
	require.Len(t, items, 2)
	assert.Equal(t, Unknown, items[0].Key)
	assert.Equal(t, "Email", items[1].Key)

	chart := BreakdownChart("Spend", items)
	assert.Equal(t, []string{Unknown, "Email"}, chart.Categories)
	assert.Equal(t, []float64{50, 30}, chart.Series[0].Data)
}

func TestDailyChartAlignsSeries(t *testing.T) {
	rng := models.NewDateRange(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	c := DailyChart(ctrRecords(), &rng, "Clicks", "Impressions")
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, c.Categories)
	require.Len(t, c.Series, 2)
	assert.Equal(t, []float64{10, 0, 5}, c.Series[0].Data)
	assert.Equal(t, []float64{100, 50, 0}, c.Series[1].Data)
	assert.Equal(t, "Impressions", c.Series[1].Name)
}
