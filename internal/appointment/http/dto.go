package http

import (
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/appointment"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/request"
	userHttp "github.com/nekogravitycat/coaching-backend/internal/user/http"
)

type ListAppointmentsRequest struct {
	request.ListParams
	UserID string     `form:"user_id" binding:"omitempty,uuid"`
	Status string     `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	From   *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To     *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

type CreateAppointmentRequest struct {
	OfferingID *string   `json:"service_id" binding:"omitempty,uuid"`
	Date       time.Time `json:"date" binding:"required"`
	Notes      *string   `json:"notes" binding:"omitempty,max=1000"`
}

type UpdateAppointmentRequest struct {
	OfferingID *string    `json:"service_id" binding:"omitempty,uuid"`
	Date       *time.Time `json:"date"`
	Status     *string    `json:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	Notes      *string    `json:"notes" binding:"omitempty,max=1000"`
}

type OfferingTag struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type AppointmentResponse struct {
	ID        string           `json:"id"`
	User      userHttp.UserTag `json:"user"`
	Service   *OfferingTag     `json:"service"`
	Date      time.Time        `json:"date"`
	Status    string           `json:"status"`
	Notes     *string          `json:"notes"`
	CreatedAt time.Time        `json:"created_at"`
}

func NewAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:        a.ID,
		User:      userHttp.UserTag{ID: a.UserID, Name: a.UserName},
		Date:      a.Date,
		Status:    string(a.Status),
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
	}
	if a.OfferingID != nil {
		tag := OfferingTag{ID: *a.OfferingID}
		if a.OfferingTitle != nil {
			tag.Title = *a.OfferingTitle
		}
		resp.Service = &tag
	}
	return resp
}
