package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/coaching-backend/internal/auth"
	"github.com/nekogravitycat/coaching-backend/internal/availability"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/response"
)

type Handler struct {
	service availability.Service
	users   availability.CoachDirectory
}

func NewHandler(service availability.Service, users availability.CoachDirectory) *Handler {
	return &Handler{
		service: service,
		users:   users,
	}
}

// authorize lets coaches manage their own calendar and system admins manage any.
func (h *Handler) authorize(c *gin.Context, coachID string) error {
	callerID := auth.GetUserID(c)
	if callerID == coachID {
		return nil
	}
	caller, err := h.users.GetByID(c.Request.Context(), callerID)
	if err != nil {
		return err
	}
	if !caller.IsSystemAdmin {
		return availability.ErrPermissionDenied
	}
	return nil
}

// Set creates or updates the availability of a coach.
func (h *Handler) Set(c *gin.Context) {
	var body SetAvailabilityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	if err := h.authorize(c, body.CoachID); err != nil {
		response.Error(c, err)
		return
	}

	dates, err := parseDates(body.UnavailableDates)
	if err != nil {
		response.BadRequest(c, "invalid unavailable date", err)
		return
	}

	a, created, err := h.service.Set(c.Request.Context(), availability.SetRequest{
		CoachID:          body.CoachID,
		UnavailableDates: dates,
		WorkingHours:     toWorkingHours(body.WorkingHours),
		TimeZone:         body.TimeZone,
		UseDefaultHours:  body.UseDefaultHours,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, NewAvailabilityResponse(a))
}

// Get returns the availability of a coach.
func (h *Handler) Get(c *gin.Context) {
	var uri CoachIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid coach id", err)
		return
	}

	a, err := h.service.Get(c.Request.Context(), uri.CoachID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(a))
}

// AddDates blocks additional dates.
func (h *Handler) AddDates(c *gin.Context) {
	var body AddDatesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	if err := h.authorize(c, body.CoachID); err != nil {
		response.Error(c, err)
		return
	}

	dates, err := parseDates(body.Dates)
	if err != nil {
		response.BadRequest(c, "invalid date", err)
		return
	}

	a, err := h.service.AddUnavailableDates(c.Request.Context(), body.CoachID, dates)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(a))
}

// RemoveDate unblocks a previously unavailable date.
func (h *Handler) RemoveDate(c *gin.Context) {
	var body RemoveDateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "coach id and date to remove are required", err)
		return
	}

	if err := h.authorize(c, body.CoachID); err != nil {
		response.Error(c, err)
		return
	}

	dates, err := parseDates([]string{body.Date})
	if err != nil {
		response.BadRequest(c, "invalid date", err)
		return
	}

	a, err := h.service.RemoveUnavailableDate(c.Request.Context(), body.CoachID, dates[0])
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(a))
}
