package merge

import (
	"strings"

	"portfolio_dashboard/pkg/core/normalize"
	"portfolio_dashboard/pkg/models"
)

// BackfillQuarterEnds fills quarter-end dates (and the calendar quarter
// derived from them) into an already-reconciled history from a legacy
// secondary document, matching on the fiscal quarter label. Values
// already present are never overwritten. Best effort: a nil or
// unusable secondary document is simply ignored.
func BackfillQuarterEnds(rec *models.CompanyRecord, secondary map[string]interface{}) {
	if rec == nil || len(rec.QuarterlyHistory) == 0 || secondary == nil {
		return
	}
	legacy := normalize.Normalize(secondary, rec.Ticker)
	if legacy == nil || len(legacy.QuarterlyHistory) == 0 {
		return
	}

	ends := make(map[string]string, len(legacy.QuarterlyHistory))
	for _, e := range legacy.QuarterlyHistory {
		if e.Quarter != "" && e.QuarterEnd != "" {
			ends[quarterKey(e.Quarter)] = e.QuarterEnd
		}
	}
	if len(ends) == 0 {
		return
	}

	for i := range rec.QuarterlyHistory {
		entry := &rec.QuarterlyHistory[i]
		if entry.QuarterEnd != "" {
			continue
		}
		end, ok := ends[quarterKey(entry.Quarter)]
		if !ok {
			continue
		}
		entry.QuarterEnd = end
		if entry.CalendarQuarter == "" {
			entry.CalendarQuarter = CalendarQuarterFromEnd(end)
		}
	}
}

// quarterKey normalizes a fiscal label for matching: case and interior
// whitespace are not significant, "Q3 FY2025" and "q3 2025" match.
func quarterKey(label string) string {
	s := strings.ToUpper(strings.Join(strings.Fields(label), ""))
	return strings.ReplaceAll(s, "FY", "")
}
