package http

import (
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/availability"
)

const dateLayout = "2006-01-02"

// CoachIDRequest binds the :coachId path parameter.
type CoachIDRequest struct {
	CoachID string `uri:"coachId" binding:"required,uuid"`
}

// DayScheduleBody is the wire form of a single weekday's working window.
type DayScheduleBody struct {
	IsWorking bool   `json:"is_working"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// SetAvailabilityRequest creates or updates a coach's availability.
// Omitted fields keep their stored values.
type SetAvailabilityRequest struct {
	CoachID          string                     `json:"coach_id" binding:"required,uuid"`
	UnavailableDates []string                   `json:"unavailable_dates" binding:"omitempty,dive,datetime=2006-01-02"`
	WorkingHours     map[string]DayScheduleBody `json:"working_hours"`
	TimeZone         *string                    `json:"time_zone"`
	UseDefaultHours  bool                       `json:"use_default_hours"`
}

// AddDatesRequest appends unavailable dates without touching the schedule.
type AddDatesRequest struct {
	CoachID string   `json:"coach_id" binding:"required,uuid"`
	Dates   []string `json:"dates" binding:"required,min=1,dive,datetime=2006-01-02"`
}

// RemoveDateRequest removes one unavailable date.
type RemoveDateRequest struct {
	CoachID string `json:"coach_id" binding:"required,uuid"`
	Date    string `json:"date" binding:"required,datetime=2006-01-02"`
}

// AvailabilityResponse is the API shape of a coach's availability.
type AvailabilityResponse struct {
	ID               string                     `json:"id"`
	CoachID          string                     `json:"coach_id"`
	UnavailableDates []string                   `json:"unavailable_dates"`
	WorkingHours     map[string]DayScheduleBody `json:"working_hours"`
	TimeZone         string                     `json:"time_zone"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

func NewAvailabilityResponse(a *availability.Availability) AvailabilityResponse {
	dates := make([]string, len(a.UnavailableDates))
	for i, d := range a.UnavailableDates {
		dates[i] = d.Format(dateLayout)
	}

	hours := make(map[string]DayScheduleBody, len(a.WorkingHours))
	for day, s := range a.WorkingHours {
		hours[string(day)] = DayScheduleBody{IsWorking: s.IsWorking, Start: s.Start, End: s.End}
	}

	return AvailabilityResponse{
		ID:               a.ID,
		CoachID:          a.CoachID,
		UnavailableDates: dates,
		WorkingHours:     hours,
		TimeZone:         a.TimeZone,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// parseDates converts validated YYYY-MM-DD strings. A nil input stays nil so
// the service can tell "not sent" from "clear all".
func parseDates(values []string) ([]time.Time, error) {
	if values == nil {
		return nil, nil
	}
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func toWorkingHours(body map[string]DayScheduleBody) availability.WorkingHours {
	if body == nil {
		return nil
	}
	wh := make(availability.WorkingHours, len(body))
	for day, s := range body {
		wh[availability.Weekday(day)] = availability.DaySchedule{IsWorking: s.IsWorking, Start: s.Start, End: s.End}
	}
	return wh
}
