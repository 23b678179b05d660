package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScottDudley1/demo-dashboard/internal/config"
	"github.com/ScottDudley1/demo-dashboard/internal/daterange"
	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
	"github.com/ScottDudley1/demo-dashboard/internal/store"
	"github.com/ScottDudley1/demo-dashboard/internal/telemetry"
)

func newTestLoader(t *testing.T, shift bool, sources map[string]string) (*Loader, *store.MemoryStore) {
	t.Helper()
	dir := t.TempDir()
	for name, body := range sources {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".csv"), []byte(body), 0o644))
	}
	cfg := config.Config{
		DataDir:    dir,
		ShiftDates: shift,
		Sources:    map[string]string{},
	}
	for name := range sources {
		cfg.Sources[name] = name + ".csv"
	}
	st := store.NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := daterange.FixedClock{T: time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)}
	l := NewLoader(NewFetcher(NewHTTPClient(time.Second), 0), st, log, telemetry.New(prometheus.NewRegistry()), cfg, clock)
	return l, st
}

func TestLoaderLoadStoresRecords(t *testing.T) {
	l, st := newTestLoader(t, false, map[string]string{dataset.Ads: adsCSV})

	stats, err := l.Load(context.Background(), dataset.Ads)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Rows)

	recs, err := st.Get(dataset.Ads)
	require.NoError(t, err)
	assert.Len(t, recs, 4)
	assert.Equal(t, "2024-01-01", recs[0].DayKey())

	info, _ := st.Info(dataset.Ads)
	assert.Equal(t, 1, info.Skipped)
}

func TestLoaderShiftDates(t *testing.T) {
	l, st := newTestLoader(t, true, map[string]string{dataset.Ads: adsCSV})

	_, err := l.Load(context.Background(), dataset.Ads)
	require.NoError(t, err)
	recs, _ := st.Get(dataset.Ads)
	assert.Equal(t, "2025-08-19", recs[3].DayKey())
}

func TestLoaderUnknownAndBrokenDatasets(t *testing.T) {
	l, st := newTestLoader(t, false, map[string]string{dataset.Summary: "Date,Sales\n2024-01-01,\"oops\n"})

	_, err := l.Load(context.Background(), "crm")
	assert.ErrorIs(t, err, dataset.ErrUnknownDataset)

	_, err = l.Load(context.Background(), dataset.Summary)
	assert.Error(t, err)
	assert.False(t, st.Loaded(dataset.Summary), "failed ingest leaves the store untouched")
}

func TestLoaderAsyncAndAll(t *testing.T) {
	l, st := newTestLoader(t, false, map[string]string{
		dataset.Ads:     adsCSV,
		dataset.Summary: "Date,Channel,Sales\n2024-01-01,Email,3\n",
	})
	assert.Equal(t, []string{dataset.Ads, dataset.Summary}, l.Datasets())

	res := <-l.LoadAsync(context.Background(), dataset.Summary)
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Stats.Rows)

	require.NoError(t, l.LoadAll(context.Background()))
	assert.True(t, st.Loaded(dataset.Ads))
	assert.True(t, st.Loaded(dataset.Summary))
}
