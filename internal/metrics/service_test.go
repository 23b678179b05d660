package metrics

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScottDudley1/demo-dashboard/internal/daterange"
	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
	"github.com/ScottDudley1/demo-dashboard/internal/models"
	"github.com/ScottDudley1/demo-dashboard/internal/store"
	"github.com/ScottDudley1/demo-dashboard/internal/telemetry"
)

func visit(date, country, city, source, medium string, sessions float64) models.Record {
	return row(date, map[string]string{"Country": country, "City": city, "Source": source, "Medium": medium},
		map[string]float64{"Sessions": sessions, "Users": sessions / 2, "Pageviews": sessions * 3})
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	st := store.NewMemoryStore()
	st.Put(dataset.Analytics, []models.Record{
		visit("2024-01-08", "USA", "NYC", "google", "organic", 10),
		visit("2024-01-09", "USA", "LA", "bing", "cpc, brand", 4),
		visit("2024-01-09", "UK", "London", "google", "organic", 6),
		visit("2024-01-10", "France", "Paris", "direct", "none", 2),
	}, 0, time.Now())
	clock := daterange.FixedClock{T: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)}
	return NewService(st, telemetry.New(prometheus.NewRegistry()), clock, 30)
}

func TestServiceOptionsPrunesAndReflectsSelection(t *testing.T) {
	s := newTestService(t)
	res, err := s.Options(dataset.Analytics, url.Values{"country": {"USA"}, "city": {"NYC,London"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"LA", "NYC"}, res.Options["City"])
	assert.Equal(t, []string{"NYC"}, res.Selection.Dimensions["City"])
	assert.Equal(t, "City", res.Labels["city"])
	require.NotNil(t, res.Selection.Range)
	assert.Equal(t, "2024-01-10", res.Selection.Range.End)
}

func TestServiceScorecards(t *testing.T) {
	s := newTestService(t)
	res, err := s.Scorecards(dataset.Analytics, url.Values{"from": {"2024-01-09"}, "to": {"2024-01-10"}, "metrics": {"Sessions,Users"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Records)
	require.Len(t, res.Cards, 2)
	assert.Equal(t, 12.0, res.Cards[0].Value)
	assert.Len(t, res.Cards[0].Sparkline.Data, 2)
}

func TestServiceSeriesAllTime(t *testing.T) {
	s := newTestService(t)
	res, err := s.Series(dataset.Analytics, url.Values{"preset": {"all"}, "metric": {"Sessions"}, "source": {"google"}})
	require.NoError(t, err)
	assert.Nil(t, res.Selection.Range)
	assert.Equal(t, []models.Point{{Date: "2024-01-08", Value: 10}, {Date: "2024-01-09", Value: 6}}, res.Points)
	assert.Len(t, res.Chart.Series, 1)
}

func TestServiceBreakdownAndTables(t *testing.T) {
	s := newTestService(t)
	v := url.Values{"preset": {"all"}, "by": {"country"}, "metric": {"Sessions"}, "sort": {"value"}}

	br, err := s.Breakdown(dataset.Analytics, v)
	require.NoError(t, err)
	assert.Equal(t, "Country", br.By)
	assert.Equal(t, "USA", br.Items[0].Key)
	assert.Equal(t, 14.0, br.Items[0].Value)

	groups, err := s.Groups(dataset.Analytics, url.Values{"preset": {"all"}, "by": {"city"}, "limit": {"2"}, "offset": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, 4, groups.Total)
	require.Len(t, groups.Rows, 2)
	assert.Equal(t, "London", groups.Rows[0].Key)

	sm, err := s.SourceMedium(dataset.Analytics, url.Values{"preset": {"all"}})
	require.NoError(t, err)
	assert.Equal(t, "google", sm.Rows[0].Source)
	assert.Equal(t, 16.0, sm.Rows[0].Sessions)

	daily, err := s.Daily(dataset.Analytics, url.Values{"preset": {"last_7_days"}})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", daily.Rows[0].Date)

	geo, err := s.Geo(dataset.Analytics, url.Values{"preset": {"all"}, "metric": {"Sessions"}})
	require.NoError(t, err)
	assert.Equal(t, 14.0, geo.Max)
}

func TestServiceErrors(t *testing.T) {
	s := newTestService(t)

	_, err := s.Scorecards("crm", nil)
	assert.True(t, errors.Is(err, dataset.ErrUnknownDataset))

	_, err = s.Scorecards(dataset.Ads, nil)
	assert.True(t, errors.Is(err, store.ErrNotLoaded))

	_, err = s.Series(dataset.Analytics, url.Values{"metric": {"CPC"}})
	assert.True(t, errors.Is(err, ErrBadQuery))

	_, err = s.Breakdown(dataset.Analytics, url.Values{"by": {"campaign"}})
	assert.True(t, errors.Is(err, ErrBadQuery))

	_, err = s.Options(dataset.Analytics, url.Values{"from": {"2024-99-01"}, "to": {"2024-01-02"}})
	assert.True(t, errors.Is(err, ErrBadQuery))

	_, err = s.Series(dataset.Analytics, url.Values{"from": {"1000-01-01"}, "to": {"9999-12-31"}})
	assert.True(t, errors.Is(err, ErrBadQuery))
}

func TestClampLimitOffset(t *testing.T) {
	l, o := clampLimitOffset(0, -5, 10)
	assert.Equal(t, 10, l)
	assert.Equal(t, 0, o)

	l, o = clampLimitOffset(5000, 20, 10)
	assert.Equal(t, 1000, l)
	assert.Equal(t, 10, o)
	assert.Empty(t, paginate([]int{1, 2}, l, o))
}
