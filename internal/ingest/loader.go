package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ScottDudley1/demo-dashboard/internal/config"
	"github.com/ScottDudley1/demo-dashboard/internal/daterange"
	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
	"github.com/ScottDudley1/demo-dashboard/internal/models"
	"github.com/ScottDudley1/demo-dashboard/internal/store"
	"github.com/ScottDudley1/demo-dashboard/internal/telemetry"
)

// Loader fetches, parses and normalizes a dataset, then hands the record set
// to the store.
type Loader struct {
	f     *Fetcher
	st    *store.MemoryStore
	log   *slog.Logger
	tm    *telemetry.Metrics
	cfg   config.Config
	clock daterange.Clock
}

func NewLoader(f *Fetcher, st *store.MemoryStore, log *slog.Logger, tm *telemetry.Metrics, cfg config.Config, clock daterange.Clock) *Loader {
	return &Loader{f: f, st: st, log: log, tm: tm, cfg: cfg, clock: clock}
}

type LoadResult struct {
	Dataset string
	Stats   Stats
	Err     error
}

// Datasets lists the configured datasets that have a source.
func (l *Loader) Datasets() []string {
	var out []string
	for _, name := range dataset.Names() {
		if l.cfg.Source(name) != "" {
			out = append(out, name)
		}
	}
	return out
}

func (l *Loader) Load(ctx context.Context, name string) (Stats, error) {
	sch, err := dataset.Lookup(name)
	if err != nil {
		return Stats{}, err
	}
	src := l.cfg.Source(sch.Name)
	start := time.Now()

	records, st, err := l.load(ctx, sch, src)
	l.tm.RecordIngest(sch.Name, len(records), st.Skipped+st.Blank, err)
	if err != nil {
		l.log.Error("ingest failed", slog.String("dataset", sch.Name), slog.String("source", src), slog.String("err", err.Error()))
		return st, err
	}

	l.st.Put(sch.Name, records, st.Skipped+st.Blank, l.clock.Now())
	if st.Dateless > 0 || st.Skipped > 0 {
		l.log.Debug("ingest absorbed rows",
			slog.String("dataset", sch.Name),
			slog.Int("dateless", st.Dateless),
			slog.Int("skipped", st.Skipped),
			slog.Int("blank", st.Blank))
	}
	l.log.Info("ingest complete",
		slog.String("dataset", sch.Name),
		slog.Int("records", len(records)),
		slog.Duration("took", time.Since(start)))
	return st, nil
}

func (l *Loader) load(ctx context.Context, sch dataset.Schema, src string) ([]models.Record, Stats, error) {
	body, err := l.f.Fetch(ctx, src)
	if err != nil {
		return nil, Stats{}, err
	}
	return Read(body, sch, ParseOptions{Source: src}, l.cfg.ShiftDates, l.clock.Now())
}

// Read parses an in-memory CSV document and, when shift is set, moves its
// dates into the window ending yesterday.
func Read(body []byte, sch dataset.Schema, opts ParseOptions, shift bool, now time.Time) ([]models.Record, Stats, error) {
	records, st, err := Parse(bytes.NewReader(body), sch, opts)
	if err != nil {
		return nil, st, err
	}
	if shift {
		records = ShiftToRecent(records, now)
	}
	return records, st, nil
}

// LoadAsync runs Load in the background. The channel is buffered, so a
// caller that stops listening does not leak the goroutine.
func (l *Loader) LoadAsync(ctx context.Context, name string) <-chan LoadResult {
	ch := make(chan LoadResult, 1)
	go func() {
		st, err := l.Load(ctx, name)
		ch <- LoadResult{Dataset: name, Stats: st, Err: err}
	}()
	return ch
}

// LoadAll loads every configured dataset concurrently and joins the errors.
func (l *Loader) LoadAll(ctx context.Context) error {
	names := l.Datasets()
	pending := make([]<-chan LoadResult, 0, len(names))
	for _, name := range names {
		pending = append(pending, l.LoadAsync(ctx, name))
	}
	var errs []error
	for _, ch := range pending {
		if res := <-ch; res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Dataset, res.Err))
		}
	}
	return errors.Join(errs...)
}
