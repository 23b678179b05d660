package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ScottDudley1/demo-dashboard/internal/daterange"
	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
	"github.com/ScottDudley1/demo-dashboard/internal/ingest"
	"github.com/ScottDudley1/demo-dashboard/internal/metrics"
	"github.com/ScottDudley1/demo-dashboard/internal/models"
	"github.com/ScottDudley1/demo-dashboard/internal/store"
)

// clock is swapped in tests.
var clock daterange.Clock = daterange.SystemClock{}

type summary struct {
	Dataset   string              `json:"dataset"`
	Stats     ingest.Stats        `json:"stats"`
	Selection metrics.View        `json:"selection"`
	Records   int                 `json:"records"`
	Cards     []metrics.Scorecard `json:"cards"`
	Metric    string              `json:"metric"`
	Series    []models.Point      `json:"series"`
	Options   map[string][]string `json:"options"`
}

func runSummarize(cmd *cobra.Command, opts summarizeOptions) error {
	sch, err := dataset.Lookup(opts.dataset)
	if err != nil {
		return err
	}
	body, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.file, err)
	}
	now := clock.Now()
	records, stats, err := ingest.Read(body, sch, ingest.ParseOptions{Source: opts.file}, opts.shiftDates, now)
	if err != nil {
		return err
	}

	q, err := buildQuery(sch, opts)
	if err != nil {
		return err
	}

	st := store.NewMemoryStore()
	st.Put(sch.Name, records, stats.Skipped+stats.Blank, now)
	svc := metrics.NewService(st, nil, clock, opts.days)

	cards, err := svc.Scorecards(sch.Name, q)
	if err != nil {
		return err
	}
	series, err := svc.Series(sch.Name, q)
	if err != nil {
		return err
	}
	options, err := svc.Options(sch.Name, q)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary{
		Dataset:   sch.Name,
		Stats:     stats,
		Selection: cards.Selection,
		Records:   cards.Records,
		Cards:     cards.Cards,
		Metric:    series.Metric,
		Series:    series.Points,
		Options:   options.Options,
	})
}

// buildQuery turns the flags into the query the HTTP API would receive.
func buildQuery(sch dataset.Schema, opts summarizeOptions) (url.Values, error) {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("from", opts.from)
	set("to", opts.to)
	set("preset", opts.preset)
	set("metric", opts.metric)
	for _, f := range opts.filters {
		key, vals, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("filter %q: want dim=a,b", f)
		}
		dim, ok := sch.Dimension(key)
		if !ok {
			return nil, fmt.Errorf("filter %q: %s has no dimension %q", f, sch.Name, key)
		}
		k := dataset.ParamKey(dim)
		if prev := q.Get(k); prev != "" {
			vals = prev + "," + vals
		}
		q.Set(k, vals)
	}
	return q, nil
}

func runPresets(cmd *cobra.Command, asJSON bool) error {
	presets := daterange.Presets(clock.Now())
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(presets)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tLABEL\tSTART\tEND")
	for _, p := range presets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Key, p.Label, p.Range.Start.Format(time.DateOnly), p.Range.End.Format(time.DateOnly))
	}
	return w.Flush()
}
