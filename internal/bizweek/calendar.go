package bizweek

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/vendas/internal/dateutil"
)

// ErrWeekOutOfRange is returned when a week number is outside the year's weeks.
var ErrWeekOutOfRange = errors.New("week number out of range")

// Calendar resolves business weeks in a fixed location.
type Calendar struct {
	loc *time.Location
}

// New creates a Calendar for loc. A nil loc means time.Local.
func New(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{loc: loc}
}

// Location returns the calendar's location.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Bounds returns the start and end of the business week containing ref.
func (c *Calendar) Bounds(ref time.Time) (start, end time.Time) {
	day := ref.In(c.loc)
	daysSinceWednesday := (int(day.Weekday()) - int(FirstDay) + 7) % 7
	start = dateutil.AddDays(day, -daysSinceWednesday)
	end = dateutil.EndOfDay(dateutil.AddDays(start, 6))
	return start, end
}

// Resolve returns the business week containing ref, including its index.
func (c *Calendar) Resolve(ref time.Time) Week {
	start, end := c.Bounds(ref)
	year, number := c.WeekNumberFor(start)
	return Week{Year: year, Number: number, Start: start, End: end}
}

// Anchor returns the Wednesday that starts week 1 of year.
func (c *Calendar) Anchor(year int) time.Time {
	// The weekday of a civil date does not depend on the location.
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	day := 1 + (int(FirstDay)-int(jan1.Weekday())+7)%7
	return dateutil.StartOfDay(year, time.January, day, c.loc)
}

// WeekNumberFor returns the index year and week number of t. Dates before
// the year's anchor belong to the previous year's last week.
func (c *Calendar) WeekNumberFor(t time.Time) (year, week int) {
	t = t.In(c.loc)
	year = t.Year()
	for {
		days := dateutil.DaysBetween(c.Anchor(year), t)
		week = dateutil.FloorDiv(days, 7) + 1
		if week >= 1 {
			return year, week
		}
		year--
	}
}

// WeeksInYear returns how many business weeks are indexed against year (52 or 53).
func (c *Calendar) WeeksInYear(year int) int {
	return dateutil.DaysBetween(c.Anchor(year), c.Anchor(year+1)) / 7
}

// WeekRangeFor returns week number of year. The number must be within
// [1, WeeksInYear(year)].
func (c *Calendar) WeekRangeFor(year, week int) (Week, error) {
	if n := c.WeeksInYear(year); week < 1 || week > n {
		return Week{}, fmt.Errorf("%w: week %d of %d (valid 1-%d)", ErrWeekOutOfRange, week, year, n)
	}
	start := dateutil.AddDays(c.Anchor(year), (week-1)*7)
	return Week{
		Year:   year,
		Number: week,
		Start:  start,
		End:    dateutil.EndOfDay(dateutil.AddDays(start, 6)),
	}, nil
}

// WeeksOverlapping returns every business week that shares at least one
// day with [from, to], in chronological order.
func (c *Calendar) WeeksOverlapping(from, to time.Time) []Week {
	if to.Before(from) {
		return nil
	}
	var weeks []Week
	for w := c.Resolve(from); !w.Start.After(to); w = w.Next() {
		weeks = append(weeks, w)
	}
	return weeks
}

// MonthWeeks returns the business weeks overlapping the given calendar month.
func (c *Calendar) MonthWeeks(year int, month time.Month) []Week {
	first := dateutil.StartOfDay(year, month, 1, c.loc)
	last := dateutil.EndOfDay(dateutil.StartOfDay(year, month+1, 0, c.loc))
	return c.WeeksOverlapping(first, last)
}
