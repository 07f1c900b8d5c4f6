// Package dateutil provides date parsing and calendar-day utilities.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidDateTime    = errors.New("time must be in YYYY-MM-DD or YYYY-MM-DDTHH:MM format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
	ErrInvalidMonth       = errors.New("month must be in YYYY-MM format")
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
	monthLayout    = "2006-01"
)

// DateRange represents a validated date range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange creates a new DateRange with validation.
// startDate can be empty (defaults to today) or in YYYY-MM-DD format.
// endDate can be empty (defaults to startDate) or in YYYY-MM-DD format.
// Returns an error if endDate is before startDate.
func NewDateRange(startDate, endDate string, loc *time.Location) (*DateRange, error) {
	start, err := ParseDate(startDate, loc)
	if err != nil {
		return nil, err
	}

	end := start
	if endDate != "" {
		end, err = ParseDate(endDate, loc)
		if err != nil {
			return nil, err
		}
	}

	if end.Before(start) {
		return nil, ErrEndDateBeforeStart
	}

	return &DateRange{Start: start, End: end}, nil
}

// ParseDate parses a date string in YYYY-MM-DD format in loc.
// If the string is empty, returns today's date in loc.
// A nil loc means time.Local.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return TruncateToDay(time.Now().In(loc)), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseDateTime parses "YYYY-MM-DDTHH:MM" or a bare date (midnight) in loc.
// An empty string returns the current instant.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().In(loc), nil
	}
	if t, err := time.ParseInLocation(dateTimeLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDateTime
}

// ParseMonth parses "YYYY-MM" and returns the year and month.
// An empty string returns the current month in loc.
func ParseMonth(s string, loc *time.Location) (int, time.Month, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		now := time.Now().In(loc)
		return now.Year(), now.Month(), nil
	}
	t, err := time.ParseInLocation(monthLayout, s, loc)
	if err != nil {
		return 0, 0, ErrInvalidMonth
	}
	return t.Year(), t.Month(), nil
}

// StartOfDay returns the first instant of the civil date year-month-day in
// loc. Out-of-range values are normalized as time.Date does. Where the day
// starts inside a DST gap, midnight does not exist and the result is the
// transition instant (01:00 for a one-hour gap).
func StartOfDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	civil := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	t := time.Date(civil.Year(), civil.Month(), civil.Day(), 0, 0, 0, 0, loc)
	if sameDate(t, civil) {
		return t
	}
	// time.Date moved the missing midnight back into the previous day.
	if _, end := t.ZoneBounds(); !end.IsZero() && sameDate(end, civil) {
		return end
	}
	return t.Add(time.Hour).Truncate(time.Hour)
}

// TruncateToDay returns the first instant of t's day.
func TruncateToDay(t time.Time) time.Time {
	return StartOfDay(t.Year(), t.Month(), t.Day(), t.Location())
}

// EndOfDay returns the last millisecond of t's day (23:59:59.999).
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t.Year(), t.Month(), t.Day()+1, t.Location()).Add(-time.Millisecond)
}

// AddDays returns the first instant of the day n civil days after t's day.
func AddDays(t time.Time, n int) time.Time {
	return StartOfDay(t.Year(), t.Month(), t.Day()+n, t.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween returns the number of calendar days from a to b, using the
// civil dates in each value's own location. It is negative when b is
// before a and is not affected by DST transitions.
func DaysBetween(a, b time.Time) int {
	ca := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	cb := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(cb.Sub(ca).Hours() / 24)
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
