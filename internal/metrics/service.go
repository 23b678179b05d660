package metrics

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ScottDudley1/demo-dashboard/internal/daterange"
	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
	"github.com/ScottDudley1/demo-dashboard/internal/filter"
	"github.com/ScottDudley1/demo-dashboard/internal/models"
	"github.com/ScottDudley1/demo-dashboard/internal/store"
	"github.com/ScottDudley1/demo-dashboard/internal/telemetry"
)

var ErrBadQuery = errors.New("bad query")

// allTime as preset lifts the date range entirely.
const allTime = "all"

type Service struct {
	st          *store.MemoryStore
	tm          *telemetry.Metrics
	clock       daterange.Clock
	defaultDays int
}

func NewService(st *store.MemoryStore, tm *telemetry.Metrics, clock daterange.Clock, defaultDays int) *Service {
	return &Service{st: st, tm: tm, clock: clock, defaultDays: defaultDays}
}

// View is the selection a response was computed for, after pruning.
type View struct {
	Dimensions map[string][]string `json:"dimensions"`
	Range      *models.RangeLabel  `json:"range,omitempty"`
}

func newView(sel models.Selection) View {
	v := View{Dimensions: map[string][]string{}}
	for k, vals := range sel.Dimensions {
		if len(vals) > 0 {
			v.Dimensions[k] = vals
		}
	}
	if sel.Range != nil {
		l := sel.Range.Label()
		v.Range = &l
	}
	return v
}

type query struct {
	sch         dataset.Schema
	sel         models.Selection
	metric      string
	metrics     []string
	by          string
	keepUnknown bool
	sortValue   bool
	limit       int
	offset      int
}

func csvList(s string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (s *Service) parse(name string, v url.Values) (query, error) {
	sch, err := dataset.Lookup(name)
	if err != nil {
		return query{}, err
	}
	q := query{
		sch:         sch,
		sel:         models.Selection{Dimensions: map[string][]string{}},
		keepUnknown: parseBool(v.Get("keep_unknown")),
		sortValue:   v.Get("sort") == "value",
		limit:       atoiDef(v.Get("limit"), 0),
		offset:      atoiDef(v.Get("offset"), 0),
	}

	if !strings.EqualFold(strings.TrimSpace(v.Get("preset")), allTime) {
		rng, err := daterange.Parse(v.Get("from"), v.Get("to"), v.Get("preset"), s.clock.Now(), s.defaultDays)
		if err != nil {
			return query{}, fmt.Errorf("%w: %v", ErrBadQuery, err)
		}
		q.sel.Range = &rng
	}
	for _, dim := range sch.Dimensions {
		if vals := csvList(v.Get(dataset.ParamKey(dim))); len(vals) > 0 {
			q.sel.Dimensions[dim] = vals
		}
	}

	q.metric = strings.TrimSpace(v.Get("metric"))
	if q.metric == "" {
		q.metric = sch.Metrics[0]
	}
	q.metrics = csvList(v.Get("metrics"))
	if len(q.metrics) == 0 {
		q.metrics = sch.Keys()
	}
	for _, m := range append([]string{q.metric}, q.metrics...) {
		if !sch.IsKey(m) {
			return query{}, fmt.Errorf("%w: unknown metric %q for %s", ErrBadQuery, m, sch.Name)
		}
	}

	if by := strings.TrimSpace(v.Get("by")); by != "" {
		if by == GroupDay {
			q.by = GroupDay
		} else if dim, ok := sch.Dimension(by); ok {
			q.by = dim
		} else {
			return query{}, fmt.Errorf("%w: unknown dimension %q for %s", ErrBadQuery, by, sch.Name)
		}
	}
	return q, nil
}

// prepared runs the shared front of every query: reconcile, then filter.
type prepared struct {
	query
	options map[string][]string
	rows    []models.Record
}

func (s *Service) prepare(name string, v url.Values) (prepared, error) {
	q, err := s.parse(name, v)
	if err != nil {
		return prepared{}, err
	}
	records, err := s.st.Get(q.sch.Name)
	if err != nil {
		return prepared{}, err
	}

	start := time.Now()
	sel, opts := filter.Reconcile(records, q.sel, q.sch)
	s.tm.ObserveStage(q.sch.Name, "reconcile", start)

	start = time.Now()
	rows := filter.Apply(records, sel)
	s.tm.ObserveStage(q.sch.Name, "filter", start)

	q.sel = sel
	return prepared{query: q, options: opts, rows: rows}, nil
}

func (s *Service) observe(p prepared, start time.Time) {
	s.tm.ObserveStage(p.sch.Name, "aggregate", start)
}

type OptionsResult struct {
	Dataset   string              `json:"dataset"`
	Selection View                `json:"selection"`
	Options   map[string][]string `json:"options"`
	Labels    map[string]string   `json:"labels"`
}

// Options lists the cascaded option set of every dimension, keyed by column name.
func (s *Service) Options(name string, v url.Values) (OptionsResult, error) {
	p, err := s.prepare(name, v)
	if err != nil {
		return OptionsResult{}, err
	}
	labels := make(map[string]string, len(p.sch.Dimensions))
	for _, d := range p.sch.Dimensions {
		labels[dataset.ParamKey(d)] = dataset.Label(d)
	}
	return OptionsResult{Dataset: p.sch.Name, Selection: newView(p.sel), Options: p.options, Labels: labels}, nil
}

type ScorecardsResult struct {
	Dataset   string      `json:"dataset"`
	Selection View        `json:"selection"`
	Records   int         `json:"records"`
	Cards     []Scorecard `json:"cards"`
}

func (s *Service) Scorecards(name string, v url.Values) (ScorecardsResult, error) {
	p, err := s.prepare(name, v)
	if err != nil {
		return ScorecardsResult{}, err
	}
	defer s.observe(p, time.Now())
	return ScorecardsResult{
		Dataset:   p.sch.Name,
		Selection: newView(p.sel),
		Records:   len(p.rows),
		Cards:     Scorecards(p.rows, p.metrics, p.sel.Range),
	}, nil
}

type SeriesResult struct {
	Dataset   string         `json:"dataset"`
	Selection View           `json:"selection"`
	Metric    string         `json:"metric"`
	Points    []models.Point `json:"points"`
	Chart     models.Chart   `json:"chart"`
}

// Series returns the per-day points of metric and a line chart of metrics.
// Without an explicit metrics list the chart plots metric alone.
func (s *Service) Series(name string, v url.Values) (SeriesResult, error) {
	p, err := s.prepare(name, v)
	if err != nil {
		return SeriesResult{}, err
	}
	defer s.observe(p, time.Now())
	lines := []string{p.metric}
	if v.Get("metrics") != "" {
		lines = p.metrics
	}
	return SeriesResult{
		Dataset:   p.sch.Name,
		Selection: newView(p.sel),
		Metric:    p.metric,
		Points:    BuildSeries(p.rows, p.metric, p.sel.Range),
		Chart:     DailyChart(p.rows, p.sel.Range, lines...),
	}, nil
}

type BreakdownResult struct {
	Dataset   string          `json:"dataset"`
	Selection View            `json:"selection"`
	Metric    string          `json:"metric"`
	By        string          `json:"by"`
	Items     []BreakdownItem `json:"items"`
	Chart     models.Chart    `json:"chart"`
}

func (s *Service) Breakdown(name string, v url.Values) (BreakdownResult, error) {
	p, err := s.prepare(name, v)
	if err != nil {
		return BreakdownResult{}, err
	}
	by, err := p.dimension()
	if err != nil {
		return BreakdownResult{}, err
	}
	defer s.observe(p, time.Now())
	items := Breakdown(p.rows, p.metric, by, BreakdownOptions{KeepUnknown: p.keepUnknown, SortByValue: p.sortValue, Limit: p.limit})
	return BreakdownResult{
		Dataset:   p.sch.Name,
		Selection: newView(p.sel),
		Metric:    p.metric,
		By:        by,
		Items:     items,
		Chart:     BreakdownChart(FormulaFor(p.metric).Label, items),
	}, nil
}

// dimension is the grouping dimension of a query, the first one by default.
func (q query) dimension() (string, error) {
	switch q.by {
	case "":
		return q.sch.Dimensions[0], nil
	case GroupDay:
		return "", fmt.Errorf("%w: by=day is not a dimension, use series", ErrBadQuery)
	}
	return q.by, nil
}

type Page[T any] struct {
	Dataset   string `json:"dataset"`
	Selection View   `json:"selection"`
	Total     int    `json:"total"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	Rows      []T    `json:"rows"`
}

func newPage[T any](p prepared, rows []T) Page[T] {
	limit, offset := clampLimitOffset(p.limit, p.offset, len(rows))
	return Page[T]{
		Dataset:   p.sch.Name,
		Selection: newView(p.sel),
		Total:     len(rows),
		Limit:     limit,
		Offset:    offset,
		Rows:      paginate(rows, limit, offset),
	}
}

func (s *Service) Daily(name string, v url.Values) (Page[DailyRow], error) {
	p, err := s.prepare(name, v)
	if err != nil {
		return Page[DailyRow]{}, err
	}
	defer s.observe(p, time.Now())
	return newPage(p, DailyTable(p.rows, p.metrics)), nil
}

func (s *Service) Groups(name string, v url.Values) (Page[GroupRow], error) {
	p, err := s.prepare(name, v)
	if err != nil {
		return Page[GroupRow]{}, err
	}
	by, err := p.dimension()
	if err != nil {
		return Page[GroupRow]{}, err
	}
	defer s.observe(p, time.Now())
	return newPage(p, GroupTable(p.rows, by, p.metrics)), nil
}

func (s *Service) SourceMedium(name string, v url.Values) (Page[SourceMediumRow], error) {
	p, err := s.prepare(name, v)
	if err != nil {
		return Page[SourceMediumRow]{}, err
	}
	if !p.sch.IsDimension("Source") || !p.sch.IsDimension("Medium") {
		return Page[SourceMediumRow]{}, fmt.Errorf("%w: %s has no source/medium", ErrBadQuery, p.sch.Name)
	}
	defer s.observe(p, time.Now())
	return newPage(p, SourceMedium(p.rows)), nil
}

type GeoResult struct {
	Dataset   string `json:"dataset"`
	Selection View   `json:"selection"`
	GeoMap
}

func (s *Service) Geo(name string, v url.Values) (GeoResult, error) {
	p, err := s.prepare(name, v)
	if err != nil {
		return GeoResult{}, err
	}
	if !p.sch.IsDimension("Country") {
		return GeoResult{}, fmt.Errorf("%w: %s has no country", ErrBadQuery, p.sch.Name)
	}
	defer s.observe(p, time.Now())
	return GeoResult{Dataset: p.sch.Name, Selection: newView(p.sel), GeoMap: Geo(p.rows, p.metric)}, nil
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
