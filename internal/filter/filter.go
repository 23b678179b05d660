// Package filter narrows record sets by a selection and derives the cascading
// option lists of the multi-select dimension filters.
package filter

import (
	"github.com/ScottDudley1/demo-dashboard/internal/models"
)

// Apply keeps the records matching every active dimension set and, when the
// selection carries a valid range, dated within it. Order is preserved. With
// nothing active the input slice itself is returned.
func Apply(records []models.Record, sel models.Selection) []models.Record {
	var rng *models.DateRange
	if sel.Range != nil && sel.Range.Valid() {
		rng = sel.Range
	}
	sets := activeSets(sel, selected(sel))
	if len(sets) == 0 && rng == nil {
		return records
	}
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if rng != nil && (!r.HasDate() || !rng.Contains(r.Date)) {
			continue
		}
		if match(r, sets) {
			out = append(out, r)
		}
	}
	return out
}

// ApplyDimensions filters by the active sets of the listed dimensions only.
// The range is ignored.
func ApplyDimensions(records []models.Record, sel models.Selection, only []string) []models.Record {
	sets := activeSets(sel, only)
	if len(sets) == 0 {
		return records
	}
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if match(r, sets) {
			out = append(out, r)
		}
	}
	return out
}

type valueSet map[string]struct{}

// activeSets indexes the non-empty selections of dims.
func activeSets(sel models.Selection, dims []string) map[string]valueSet {
	sets := map[string]valueSet{}
	for _, dim := range dims {
		if vals := sel.Values(dim); len(vals) > 0 {
			sets[dim] = toSet(vals)
		}
	}
	return sets
}

func selected(sel models.Selection) []string {
	out := make([]string, 0, len(sel.Dimensions))
	for dim := range sel.Dimensions {
		out = append(out, dim)
	}
	return out
}

func match(r models.Record, sets map[string]valueSet) bool {
	for dim, set := range sets {
		if _, ok := set[r.Dimension(dim)]; !ok {
			return false
		}
	}
	return true
}
