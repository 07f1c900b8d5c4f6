// Package scheduler validates meeting slots against the configured workdays
// and work hours.
package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Slot errors.
var (
	ErrNotWorkday     = errors.New("meeting must be on a workday")
	ErrOutsideHours   = errors.New("meeting must fit within work hours")
	ErrInvalidMinutes = errors.New("meeting duration must be positive")
)

// Scheduler provides time-aware scheduling operations for meetings.
type Scheduler struct {
	workdays map[string]bool
	dayStart string // "HH:MM"
	dayEnd   string // "HH:MM"
}

// New creates a new Scheduler with the given configuration.
func New(workdays []string, dayStart, dayEnd string) *Scheduler {
	wd := make(map[string]bool)
	for _, d := range workdays {
		wd[strings.ToLower(d)] = true
	}
	return &Scheduler{
		workdays: wd,
		dayStart: dayStart,
		dayEnd:   dayEnd,
	}
}

// IsWorkday returns true if the given time falls on a configured workday.
func (s *Scheduler) IsWorkday(t time.Time) bool {
	weekday := strings.ToLower(t.Weekday().String())
	return s.workdays[weekday]
}

// ValidateSlot checks that a meeting starting at at and lasting d fits on
// a workday within work hours.
func (s *Scheduler) ValidateSlot(at time.Time, d time.Duration) error {
	if d <= 0 {
		return ErrInvalidMinutes
	}
	if !s.IsWorkday(at) {
		return fmt.Errorf("%w: %s is a %s", ErrNotWorkday, at.Format("2006-01-02"), at.Weekday())
	}

	start := at.Hour()*60 + at.Minute()
	end := start + int(d.Minutes())
	if start < parseTime(s.dayStart) || end > parseTime(s.dayEnd) {
		return fmt.Errorf("%w: %s-%s outside %s-%s", ErrOutsideHours,
			at.Format("15:04"), at.Add(d).Format("15:04"), s.dayStart, s.dayEnd)
	}
	return nil
}

// NextSlot returns the next bookable meeting start after now.
// If now is before dayStart on a workday, returns dayStart of today.
// If now is during work hours, returns now rounded up to the next 15 min.
// Otherwise returns dayStart of the next workday.
func (s *Scheduler) NextSlot(now time.Time) time.Time {
	if s.IsWorkday(now) {
		minutes := now.Hour()*60 + now.Minute()
		if minutes < parseTime(s.dayStart) {
			return s.atDayStart(now)
		}
		if next := roundUpTo15Min(now); next.Hour()*60+next.Minute() < parseTime(s.dayEnd) && next.Day() == now.Day() {
			return next
		}
	}
	return s.nextWorkday(now)
}

// nextWorkday finds dayStart of the next workday after the given time.
func (s *Scheduler) nextWorkday(from time.Time) time.Time {
	next := from.AddDate(0, 0, 1)
	for range 7 {
		if s.IsWorkday(next) {
			return s.atDayStart(next)
		}
		next = next.AddDate(0, 0, 1)
	}
	// Fallback: only reached when no workday is configured
	return s.atDayStart(from.AddDate(0, 0, 1))
}

func (s *Scheduler) atDayStart(day time.Time) time.Time {
	m := parseTime(s.dayStart)
	return time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, day.Location())
}

// DayStart returns the configured day start time.
func (s *Scheduler) DayStart() string {
	return s.dayStart
}

// DayEnd returns the configured day end time.
func (s *Scheduler) DayEnd() string {
	return s.dayEnd
}

// roundUpTo15Min rounds a time up to the next 15-minute boundary.
func roundUpTo15Min(t time.Time) time.Time {
	minute := t.Minute()
	remainder := minute % 15
	if remainder == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t
	}
	return t.Add(time.Duration(15-remainder) * time.Minute).Truncate(time.Minute)
}

// parseTime parses "HH:MM" to minutes since midnight.
func parseTime(s string) int {
	if len(s) < 5 {
		return 0
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h*60 + m
}
