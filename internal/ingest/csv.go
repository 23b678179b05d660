package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
	"github.com/ScottDudley1/demo-dashboard/internal/models"
)

// ParseError reports a CSV document that could not be read as a table, or a
// source that could not be fetched.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errNoHeader = errors.New("missing header row")

type ParseOptions struct {
	Source      string
	RequireDate bool
}

type Stats struct {
	Rows     int `json:"rows"`
	Blank    int `json:"blank"`
	Skipped  int `json:"skipped"`
	Dateless int `json:"dateless"`
}

// Parse reads a CSV document whose first row names the fields. Every later
// row is normalized against sch into one record.
func Parse(r io.Reader, sch dataset.Schema, opts ParseOptions) ([]models.Record, Stats, error) {
	var st Stats
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, st, &ParseError{Source: opts.Source, Err: errNoHeader}
	}
	if err != nil {
		return nil, st, wrapCSV(opts.Source, err)
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = h
	}
	if blank(header) {
		return nil, st, &ParseError{Source: opts.Source, Line: 1, Err: errNoHeader}
	}

	var out []models.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, st, wrapCSV(opts.Source, err)
		}
		if blank(row) {
			st.Blank++
			continue
		}
		st.Rows++
		raw := make(map[string]string, len(header))
		for i, h := range header {
			if h == "" || i >= len(row) {
				continue
			}
			raw[h] = row[i]
		}
		rec, ok := Normalize(raw, sch, opts.RequireDate)
		if !ok {
			st.Skipped++
			continue
		}
		if !rec.HasDate() {
			st.Dateless++
		}
		out = append(out, rec)
	}
	return out, st, nil
}

func wrapCSV(source string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Source: source, Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Source: source, Err: err}
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
