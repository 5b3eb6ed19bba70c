package merge

import (
	"fmt"
	"time"
)

// quarterMidpointOffset pulls a quarter-end date back toward the middle
// of the quarter before mapping it onto the calendar grid. A fiscal
// quarter ending in the first days of a month belongs to the quarter
// that contained most of its activity, not the one containing its
// end date.
const quarterMidpointOffset = 42 * 24 * time.Hour

// CalendarQuarterFromEnd maps a YYYY-MM-DD quarter-end date to a
// calendar quarter label like "Q3 2025". Returns "" for an unparsable
// date.
func CalendarQuarterFromEnd(quarterEnd string) string {
	t, err := time.Parse("2006-01-02", quarterEnd)
	if err != nil {
		return ""
	}
	mid := t.Add(-quarterMidpointOffset)
	q := (int(mid.Month())-1)/3 + 1
	return fmt.Sprintf("Q%d %d", q, mid.Year())
}
