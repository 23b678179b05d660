package filter

import (
	"sort"

	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
	"github.com/ScottDudley1/demo-dashboard/internal/models"
)

// maxPasses bounds Reconcile. Every productive pass removes at least one
// selected value, so the bound is never reached on real input.
const maxPasses = 64

// OptionsFor lists the distinct values of dim among the records that match
// the selections of dim's constrainers, sorted. dim's own selection and the
// date range play no part.
func OptionsFor(dim string, records []models.Record, sel models.Selection, sch dataset.Schema) []string {
	return distinct(dim, ApplyDimensions(records, sel, sch.Constrainers(dim)))
}

// Options computes OptionsFor for every dimension of the schema.
func Options(records []models.Record, sel models.Selection, sch dataset.Schema) map[string][]string {
	out := make(map[string][]string, len(sch.Dimensions))
	for _, dim := range sch.Dimensions {
		out[dim] = OptionsFor(dim, records, sel, sch)
	}
	return out
}

// Reconcile drops selected values that are no longer reachable from the
// selections upstream of them, walking dimensions in dependency order and
// repeating until a pass removes nothing. It returns the pruned selection and
// the options derived from it. The input selection is not modified.
func Reconcile(records []models.Record, sel models.Selection, sch dataset.Schema) (models.Selection, map[string][]string) {
	cur := sel.Clone()
	order := sch.Order()
	for pass := 0; pass < maxPasses; pass++ {
		pruned := false
		for _, dim := range order {
			chosen := cur.Values(dim)
			if len(chosen) == 0 {
				continue
			}
			valid := toSet(distinct(dim, ApplyDimensions(records, cur, sch.Upstream(dim))))
			kept := chosen[:0:0]
			for _, v := range chosen {
				if _, ok := valid[v]; ok {
					kept = append(kept, v)
				}
			}
			if len(kept) != len(chosen) {
				cur.Dimensions[dim] = kept
				pruned = true
			}
		}
		if !pruned {
			break
		}
	}
	for dim, vals := range cur.Dimensions {
		if len(vals) == 0 {
			delete(cur.Dimensions, dim)
		}
	}
	return cur, Options(records, cur, sch)
}

func distinct(dim string, records []models.Record) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range records {
		v := r.Dimension(dim)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func toSet(vals []string) valueSet {
	s := make(valueSet, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}
