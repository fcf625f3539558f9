package availability

import (
	"time"
	_ "time/tzdata"
)

// Location resolves the coach's time zone, falling back to UTC when the stored
// name cannot be loaded.
func (a *Availability) Location() *time.Location {
	if a.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Check evaluates t against the unavailable dates first and the weekly
// schedule second. It returns nil when the coach can take a session starting at t.
func (a *Availability) Check(t time.Time) error {
	local := t.In(a.Location())

	if a.IsUnavailableOn(local) {
		return ErrUnavailableDate
	}

	if len(a.WorkingHours) == 0 {
		return nil
	}

	day, ok := a.WorkingHours[WeekdayOf(local)]
	if !ok || !day.IsWorking {
		return ErrNotWorkingDay
	}

	// Zero-padded HH:MM strings order the same way as the times they encode.
	hhmm := local.Format("15:04")
	if hhmm < day.Start || hhmm > day.End {
		return ErrOutsideWorkingHours
	}

	return nil
}

// IsAvailable is the boolean form of Check.
func (a *Availability) IsAvailable(t time.Time) bool {
	return a.Check(t) == nil
}

// IsUnavailableOn reports whether the calendar date of local (in its own
// location) is one of the blocked dates.
func (a *Availability) IsUnavailableOn(local time.Time) bool {
	return containsDate(a.UnavailableDates, local)
}

// DateOf truncates t to its civil date in t's location, expressed at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func containsDate(dates []time.Time, t time.Time) bool {
	for _, d := range dates {
		if sameDate(d, t) {
			return true
		}
	}
	return false
}

// validHHMM accepts exactly "HH:MM" with HH in 00-23 and MM in 00-59.
func validHHMM(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// Validate checks the structure of a working-hours map. Bounds of days off
// are not checked.
func (wh WorkingHours) Validate() error {
	for day, sched := range wh {
		if !day.Valid() {
			return ErrInvalidWeekday
		}
		if !sched.IsWorking {
			continue
		}
		if !validHHMM(sched.Start) || !validHHMM(sched.End) {
			return ErrInvalidTime
		}
		if sched.Start > sched.End {
			return ErrInvalidRange
		}
	}
	return nil
}
