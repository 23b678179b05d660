package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateRange(t *testing.T) {
	r := NewDateRange(time.Date(2024, 2, 28, 17, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC))
	assert.True(t, r.Valid())
	assert.Len(t, r.Days(), 3, "leap day included")
	assert.True(t, r.Contains(time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, RangeLabel{Start: "2024-02-28", End: "2024-03-01"}, r.Label())

	assert.Nil(t, DateRange{}.Days())
}

func TestSelectionEqualIgnoresOrderAndEmptySets(t *testing.T) {
	a := Selection{Dimensions: map[string][]string{"City": {"NYC", "LA"}, "Country": {}}}
	b := Selection{}.With("City", "LA", "NYC")
	assert.True(t, a.Equal(b))

	c := b.With("City", "LA")
	assert.False(t, b.Equal(c))
	assert.Equal(t, []string{"LA", "NYC"}, b.Values("City"), "With copies")

	rng := NewDateRange(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	d := b.Clone()
	d.Range = &rng
	assert.False(t, b.Equal(d))
}

func TestRecordDayKey(t *testing.T) {
	assert.Equal(t, "", Record{}.DayKey())
	assert.Equal(t, "2024-01-05", Record{Date: time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)}.DayKey())
}
