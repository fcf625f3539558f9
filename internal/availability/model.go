package availability

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.NotFound("availability not found for this coach")
	ErrCoachNotFound       = apperror.NotFound("coach not found")
	ErrNotACoach           = apperror.Validation("user is not a coach")
	ErrInvalidTime         = apperror.Validation("working hours must use HH:MM in 24h format")
	ErrInvalidRange        = apperror.Validation("working hours start must not be after end")
	ErrInvalidWeekday      = apperror.Validation("unknown weekday in working hours")
	ErrInvalidTimeZone     = apperror.Validation("unknown time zone")
	ErrPastDate            = apperror.Validation("cannot set unavailability for dates in the past")
	ErrDateRequired        = apperror.Validation("date to remove is required")
	ErrPermissionDenied    = apperror.New(http.StatusForbidden, "permission denied")
	ErrUnavailableDate     = apperror.Unavailable("coach is unavailable on this date")
	ErrNotWorkingDay       = apperror.Unavailable("coach does not work on this day")
	ErrOutsideWorkingHours = apperror.Unavailable("requested time is outside the coach's working hours")
)

// DefaultTimeZone is used when a coach has not declared one.
const DefaultTimeZone = "UTC"

// Weekday is the lowercase English day name used as the working-hours key.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var weekdays = [...]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// WeekdayOf returns the weekday of t in t's own location.
func WeekdayOf(t time.Time) Weekday {
	return weekdays[t.Weekday()]
}

// Valid reports whether d is one of the seven day names.
func (d Weekday) Valid() bool {
	for _, w := range weekdays {
		if w == d {
			return true
		}
	}
	return false
}

// DaySchedule is the working window of a single weekday. Start and End are
// "HH:MM" strings; both bounds are inclusive.
type DaySchedule struct {
	IsWorking bool   `json:"is_working"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// WorkingHours maps weekdays to their schedule. An empty map places no
// restriction on time of day.
type WorkingHours map[Weekday]DaySchedule

const (
	DefaultDayStart = "09:00"
	DefaultDayEnd   = "17:00"
)

// DefaultWorkingHours returns Monday to Friday 09:00-17:00 with weekends off.
func DefaultWorkingHours() WorkingHours {
	wh := WorkingHours{}
	for _, d := range weekdays {
		wh[d] = DaySchedule{IsWorking: d != Saturday && d != Sunday, Start: DefaultDayStart, End: DefaultDayEnd}
	}
	return wh
}

// WithDefaults returns a copy of wh where omitted bounds are 09:00 and 17:00.
func (wh WorkingHours) WithDefaults() WorkingHours {
	if wh == nil {
		return nil
	}
	out := make(WorkingHours, len(wh))
	for day, sched := range wh {
		if sched.Start == "" {
			sched.Start = DefaultDayStart
		}
		if sched.End == "" {
			sched.End = DefaultDayEnd
		}
		out[day] = sched
	}
	return out
}

// Availability is a coach's declared calendar. There is at most one per coach.
type Availability struct {
	ID      string
	CoachID string
	// UnavailableDates are civil dates stored at UTC midnight.
	UnavailableDates []time.Time
	WorkingHours     WorkingHours
	TimeZone         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
