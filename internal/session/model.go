package session

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.NotFound("session not found")
	ErrCoachRequired     = apperror.Validation("coach id is required")
	ErrClientRequired    = apperror.Validation("client id is required")
	ErrDateRequired      = apperror.Validation("session date is required")
	ErrInvalidDuration   = apperror.Validation("session duration must be between 15 and 240 minutes")
	ErrNotesTooLong      = apperror.Validation("notes cannot exceed 1000 characters")
	ErrStartTimePast     = apperror.Validation("session date must be in the future")
	ErrInvalidStatus     = apperror.Validation("invalid session status")
	ErrCoachNotFound     = apperror.NotFound("coach not found")
	ErrClientNotFound    = apperror.NotFound("client not found")
	ErrCancelerNotFound  = apperror.NotFound("canceling user not found")
	ErrNotACoach         = apperror.Validation("user is not a coach")
	ErrSameParticipant   = apperror.Validation("coach and client must be different users")
	ErrTimeConflict      = apperror.Conflict("this time slot conflicts with another session")
	ErrInvalidTransition = apperror.Conflict("session can no longer be changed")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
)

const (
	MinDuration     = 15
	MaxDuration     = 240
	DefaultDuration = 60
	MaxNotesLength  = 1000
)

type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusCompleted   Status = "completed"
	StatusCanceled    Status = "canceled"
	StatusPending     Status = "pending"
	StatusRescheduled Status = "rescheduled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCanceled, StatusPending, StatusRescheduled:
		return true
	}
	return false
}

// Session is a booked block of a coach's time. Sessions are never deleted;
// cancellation is a status.
type Session struct {
	ID         string
	CoachID    string
	CoachName  string
	ClientID   string
	ClientName string
	Date       time.Time
	Duration   int // minutes
	Status     Status
	Notes      string

	CanceledBy    *string
	CancelReason  *string
	RescheduledAt *time.Time
	PreviousDate  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndTime is the exclusive end of the session.
func (s *Session) EndTime() time.Time {
	return s.Date.Add(time.Duration(s.Duration) * time.Minute)
}

// IsUpcoming reports whether the session starts after now.
func (s *Session) IsUpcoming(now time.Time) bool {
	return s.Date.After(now)
}

// CanBeCanceled reports whether the session is upcoming and still active.
func (s *Session) CanBeCanceled(now time.Time) bool {
	return s.IsUpcoming(now) && s.Status != StatusCanceled
}

// Active reports whether the session still occupies the coach's calendar.
func (s *Session) Active() bool {
	return s.Status != StatusCanceled
}

// HasParticipant reports whether userID is the coach or the client.
func (s *Session) HasParticipant(userID string) bool {
	return userID != "" && (s.CoachID == userID || s.ClientID == userID)
}

type Filter struct {
	CoachID   string
	ClientID  string
	Status    Status
	From      *time.Time // sessions starting at or after this instant
	To        *time.Time // sessions starting before this instant
	Page      int
	PageSize  int
	SortOrder string
}
