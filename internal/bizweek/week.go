// Package bizweek computes Wednesday-to-Tuesday business weeks and their
// per-year index.
package bizweek

import (
	"fmt"
	"time"

	"github.com/javiermolinar/vendas/internal/dateutil"
)

// FirstDay is the weekday every business week starts on.
const FirstDay = time.Wednesday

// Week is one business week: Start is a Wednesday at 00:00:00.000 and End
// the following Tuesday at 23:59:59.999, both in the calendar's location.
// When a DST gap swallows midnight, Start is the first instant of that
// Wednesday instead.
type Week struct {
	Year   int
	Number int
	Start  time.Time
	End    time.Time
}

// Contains reports whether t falls within the week. Both Start and End
// are inclusive; instants between End and the next week's Start (sub-ms)
// also count so consecutive weeks leave no gap.
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.nextStart())
}

// Next returns the business week after w.
func (w Week) Next() Week {
	return weekAt(w.nextStart())
}

// Prev returns the business week before w.
func (w Week) Prev() Week {
	return weekAt(dateutil.AddDays(w.Start, -7))
}

// Equal reports whether both weeks cover the same window.
func (w Week) Equal(o Week) bool {
	return w.Year == o.Year && w.Number == o.Number && w.Start.Equal(o.Start) && w.End.Equal(o.End)
}

// String renders the week as "2025-W34".
func (w Week) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Number)
}

func (w Week) nextStart() time.Time {
	return dateutil.AddDays(w.Start, 7)
}

// weekAt builds the week starting at start using start's location.
func weekAt(start time.Time) Week {
	return New(start.Location()).Resolve(start)
}
