package http

import (
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/pkg/request"
	"github.com/nekogravitycat/coaching-backend/internal/session"
	userHttp "github.com/nekogravitycat/coaching-backend/internal/user/http"
)

type CoachURI struct {
	CoachID string `uri:"coachId" binding:"required,uuid"`
}

type ClientURI struct {
	ClientID string `uri:"clientId" binding:"required,uuid"`
}

// ListSessionsRequest defines query parameters for listing sessions.
type ListSessionsRequest struct {
	request.ListParams
	Status string     `form:"status" binding:"omitempty,oneof=scheduled completed canceled pending rescheduled"`
	From   *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To     *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Validate performs custom validation for ListSessionsRequest.
func (r *ListSessionsRequest) Validate() error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return errInvalidRange
	}
	return nil
}

type CreateSessionRequest struct {
	CoachID  string    `json:"coach_id" binding:"required,uuid"`
	ClientID string    `json:"client_id" binding:"omitempty,uuid"`
	Date     time.Time `json:"date" binding:"required"`
	Duration int       `json:"duration" binding:"omitempty,min=15,max=240"`
	Notes    string    `json:"notes" binding:"max=1000"`
}

type CancelSessionRequest struct {
	CanceledBy string `json:"canceled_by" binding:"omitempty,uuid"`
	Reason     string `json:"reason" binding:"max=1000"`
}

type RescheduleSessionRequest struct {
	Date time.Time `json:"date" binding:"required"`
}

// CheckSlotRequest asks whether a coach can take a session at a given start.
type CheckSlotRequest struct {
	At       time.Time `form:"at" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	Duration int       `form:"duration" binding:"omitempty,min=15,max=240"`
}

type SessionResponse struct {
	ID            string           `json:"id"`
	Coach         userHttp.UserTag `json:"coach"`
	Client        userHttp.UserTag `json:"client"`
	Date          time.Time        `json:"date"`
	Duration      int              `json:"duration"`
	EndTime       time.Time        `json:"end_time"`
	Status        string           `json:"status"`
	Notes         string           `json:"notes,omitempty"`
	CanceledBy    *string          `json:"canceled_by,omitempty"`
	CancelReason  *string          `json:"cancel_reason,omitempty"`
	RescheduledAt *time.Time       `json:"rescheduled_at,omitempty"`
	PreviousDate  *time.Time       `json:"previous_date,omitempty"`
	IsUpcoming    bool             `json:"is_upcoming"`
	CanBeCanceled bool             `json:"can_be_canceled"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func NewSessionResponse(s *session.Session, now time.Time) SessionResponse {
	return SessionResponse{
		ID:            s.ID,
		Coach:         userHttp.UserTag{ID: s.CoachID, Name: s.CoachName},
		Client:        userHttp.UserTag{ID: s.ClientID, Name: s.ClientName},
		Date:          s.Date,
		Duration:      s.Duration,
		EndTime:       s.EndTime(),
		Status:        string(s.Status),
		Notes:         s.Notes,
		CanceledBy:    s.CanceledBy,
		CancelReason:  s.CancelReason,
		RescheduledAt: s.RescheduledAt,
		PreviousDate:  s.PreviousDate,
		IsUpcoming:    s.IsUpcoming(now),
		CanBeCanceled: s.CanBeCanceled(now),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

type SlotCheckResponse struct {
	CoachID    string    `json:"coach_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Available  bool      `json:"available"`
	Reason     string    `json:"reason,omitempty"`
	ConflictID *string   `json:"conflict_session_id,omitempty"`
}
