// Package deadline turns the "day hour" shorthand users type into concrete
// deadlines. A bare day of month and hour is resolved against the current
// month in a reference timezone, rolled into the next month when it has
// already passed, and returned as a UTC instant.
package deadline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GraceWindow is how far in the past a deadline may fall before it is
// assumed to mean next month instead.
const GraceWindow = 24 * time.Hour

// DefaultTimezone is the reference zone used when none is configured.
const DefaultTimezone = "America/Los_Angeles"

// ValidationError reports day/hour text that is not two integers.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid deadline %q: %s", e.Input, e.Reason)
}

// InvalidDateError reports a day/hour pair that does not exist on the
// calendar for the month it was resolved in.
type InvalidDateError struct {
	Year  int
	Month time.Month
	Day   int
	Hour  int
}

func (e *InvalidDateError) Error() string {
	if e.Hour < 0 || e.Hour > 23 {
		return fmt.Sprintf("hour %d is out of range (0-23)", e.Hour)
	}
	return fmt.Sprintf("%s %d has no day %d (max %d)", e.Month, e.Year, e.Day, DaysIn(e.Year, e.Month))
}

// Resolver maps day/hour text to instants in a fixed reference location.
type Resolver struct {
	loc *time.Location
}

// NewResolver returns a resolver for loc. A nil loc means UTC.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc}
}

// LoadResolver looks up the named IANA zone and returns a resolver for it.
// An empty name selects DefaultTimezone.
func LoadResolver(name string) (*Resolver, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return NewResolver(loc), nil
}

// Location returns the reference location.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Parse splits text into a day and an hour. It does not check calendar
// ranges; that happens during resolution.
func Parse(text string) (day, hour int, err error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0, 0, &ValidationError{Input: text, Reason: "expected \"DD HH\""}
	}
	day, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, &ValidationError{Input: text, Reason: fmt.Sprintf("day %q is not a number", fields[0])}
	}
	hour, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, &ValidationError{Input: text, Reason: fmt.Sprintf("hour %q is not a number", fields[1])}
	}
	return day, hour, nil
}

// Validate reports whether text resolves to a deadline relative to now.
func (r *Resolver) Validate(text string, now time.Time) bool {
	_, err := r.Resolve(text, now)
	return err == nil
}

// Resolve converts day/hour text into a UTC deadline.
//
// The day and hour are first placed in now's month. If that moment is more
// than GraceWindow before now, the same day and hour in the following month
// is used instead. Either placement fails with *InvalidDateError when the
// day does not exist in that month.
func (r *Resolver) Resolve(text string, now time.Time) (time.Time, error) {
	day, hour, err := Parse(text)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(r.loc)
	year, month := local.Year(), local.Month()

	deadline, err := r.At(year, month, day, hour)
	if err != nil {
		return time.Time{}, err
	}

	if deadline.Before(now.Add(-GraceWindow)) {
		year, month = nextMonth(year, month)
		deadline, err = r.At(year, month, day, hour)
		if err != nil {
			return time.Time{}, err
		}
	}

	return deadline.UTC(), nil
}

// At returns the instant at which the reference clock reads
// year-month-day hour:00, applying the DST policy described on localize.
func (r *Resolver) At(year int, month time.Month, day, hour int) (time.Time, error) {
	if hour < 0 || hour > 23 || day < 1 || day > DaysIn(year, month) {
		return time.Time{}, &InvalidDateError{Year: year, Month: month, Day: day, Hour: hour}
	}
	return localize(year, month, day, hour, r.loc), nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// transitionProbe is far enough from a wall time to sample the UTC offsets
// in force on either side of any DST transition on that day.
const transitionProbe = 36 * time.Hour

// localize places a wall-clock hour in loc without leaving the choice to
// time.Date. A wall time skipped by a spring-forward gap is shifted forward
// by the length of the gap (02:00 becomes 03:00). A wall time repeated by a
// fall-back overlap resolves to its first occurrence.
func localize(year int, month time.Month, day, hour int, loc *time.Location) time.Time {
	wall := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)

	_, offBefore := wall.Add(-transitionProbe).In(loc).Zone()
	_, offAfter := wall.Add(transitionProbe).In(loc).Zone()

	var best time.Time
	found := false
	for _, off := range []int{offBefore, offAfter} {
		inst := wall.Add(-time.Duration(off) * time.Second)
		if !readsAs(inst.In(loc), year, month, day, hour) {
			continue
		}
		if !found || inst.Before(best) {
			best = inst
			found = true
		}
	}
	if found {
		return best.In(loc)
	}

	// Skipped wall time: interpret it with the offset in force before the
	// gap, which lands the same distance past the transition.
	return wall.Add(-time.Duration(offBefore) * time.Second).In(loc)
}

func readsAs(t time.Time, year int, month time.Month, day, hour int) bool {
	return t.Year() == year && t.Month() == month && t.Day() == day &&
		t.Hour() == hour && t.Minute() == 0
}
