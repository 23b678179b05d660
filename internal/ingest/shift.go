package ingest

import (
	"time"

	"github.com/ScottDudley1/demo-dashboard/internal/models"
)

// ShiftToRecent remaps every record date from the observed [min, max] onto an
// equally long window ending the day before now, so demo data always looks
// current. Spacing between dates is preserved. Records without a date, and
// datasets spanning a single day, are returned unchanged.
func ShiftToRecent(records []models.Record, now time.Time) []models.Record {
	var lo, hi time.Time
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		if lo.IsZero() || r.Date.Before(lo) {
			lo = r.Date
		}
		if hi.IsZero() || r.Date.After(hi) {
			hi = r.Date
		}
	}
	if lo.IsZero() || !hi.After(lo) {
		return records
	}

	yesterday := models.DayUTC(now).AddDate(0, 0, -1)
	offset := daysBetween(hi, yesterday)
	if offset == 0 {
		return records
	}
	out := make([]models.Record, len(records))
	for i, r := range records {
		if r.HasDate() {
			r.Date = r.Date.AddDate(0, 0, offset)
		}
		out[i] = r
	}
	return out
}

func daysBetween(a, b time.Time) int {
	return int(models.DayUTC(b).Sub(models.DayUTC(a)).Hours() / 24)
}
