package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/coaching-backend/internal/appointment"
	"github.com/nekogravitycat/coaching-backend/internal/auth"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/request"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/response"
	"github.com/nekogravitycat/coaching-backend/internal/user"
)

var errInvalidRange = apperror.Validation("from must not be after to")

// UserDirectory resolves the caller for admin checks.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Handler struct {
	service appointment.Service
	users   UserDirectory
}

func NewHandler(service appointment.Service, users UserDirectory) *Handler {
	return &Handler{service: service, users: users}
}

func (h *Handler) checkIsSysAdmin(c *gin.Context) bool {
	u, err := h.users.GetByID(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		return false
	}
	return u.IsSystemAdmin
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateAppointmentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	a, err := h.service.Create(c.Request.Context(), appointment.CreateRequest{
		UserID:     auth.GetUserID(c),
		OfferingID: body.OfferingID,
		Date:       body.Date,
		Notes:      body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewAppointmentResponse(a))
}

// ListMine lists the caller's own appointments, soonest first.
func (h *Handler) ListMine(c *gin.Context) {
	h.list(c, auth.GetUserID(c))
}

// ListAll lists every appointment. Admin only; may narrow by user_id.
func (h *Handler) ListAll(c *gin.Context) {
	h.list(c, "")
}

func (h *Handler) list(c *gin.Context, ownerID string) {
	var req ListAppointmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if req.From != nil && req.To != nil && req.From.After(*req.To) {
		response.Error(c, errInvalidRange)
		return
	}

	userID := ownerID
	if userID == "" {
		userID = req.UserID
	}

	list, total, err := h.service.List(c.Request.Context(), appointment.Filter{
		UserID:    userID,
		Status:    req.Status,
		From:      req.From,
		To:        req.To,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]AppointmentResponse, len(list))
	for i, a := range list {
		items[i] = NewAppointmentResponse(a)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid appointment id", err)
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), uri.ID, auth.GetUserID(c), h.checkIsSysAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAppointmentResponse(a))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid appointment id", err)
		return
	}

	var body UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req := appointment.UpdateRequest{
		OfferingID: body.OfferingID,
		Date:       body.Date,
		Notes:      body.Notes,
	}
	if body.Status != nil {
		st := appointment.Status(*body.Status)
		req.Status = &st
	}

	a, err := h.service.Update(c.Request.Context(), uri.ID, req, auth.GetUserID(c), h.checkIsSysAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAppointmentResponse(a))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid appointment id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID, auth.GetUserID(c), h.checkIsSysAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
