package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/coaching-backend/internal/auth"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/clock"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/request"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/response"
	"github.com/nekogravitycat/coaching-backend/internal/session"
)

var errInvalidRange = apperror.Validation("from must not be after to")

type Handler struct {
	service session.Service
	users   session.UserDirectory
	clock   clock.Clock
}

func NewHandler(service session.Service, users session.UserDirectory, clk clock.Clock) *Handler {
	return &Handler{
		service: service,
		users:   users,
		clock:   clk,
	}
}

// checkIsSysAdmin reports whether the caller is a system admin.
func (h *Handler) checkIsSysAdmin(c *gin.Context) bool {
	u, err := h.users.GetByID(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		return false
	}
	return u.IsSystemAdmin
}

// bindOptionalJSON binds a JSON body if one was sent. Chunked requests report
// no length, so an empty body only shows up as io.EOF from the decoder.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateSessionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "coach id and date are required", err)
		return
	}

	callerID := auth.GetUserID(c)
	if body.ClientID == "" {
		body.ClientID = callerID
	}
	if callerID != body.ClientID && callerID != body.CoachID && !h.checkIsSysAdmin(c) {
		response.Error(c, session.ErrPermissionDenied)
		return
	}

	s, err := h.service.Create(c.Request.Context(), session.CreateRequest{
		CoachID:  body.CoachID,
		ClientID: body.ClientID,
		Date:     body.Date,
		Duration: body.Duration,
		Notes:    body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewSessionResponse(s, h.clock.Now()))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid session id", err)
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !s.HasParticipant(auth.GetUserID(c)) && !h.checkIsSysAdmin(c) {
		response.Error(c, session.ErrPermissionDenied)
		return
	}

	c.JSON(http.StatusOK, NewSessionResponse(s, h.clock.Now()))
}

func (h *Handler) list(c *gin.Context, filter session.Filter, ownerID string) {
	var req ListSessionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	if auth.GetUserID(c) != ownerID && !h.checkIsSysAdmin(c) {
		response.Error(c, session.ErrPermissionDenied)
		return
	}

	filter.Status = session.Status(req.Status)
	filter.From = req.From
	filter.To = req.To
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.SortOrder = strings.ToUpper(req.SortOrder)

	sessions, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	now := h.clock.Now()
	items := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		items[i] = NewSessionResponse(s, now)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// ListByCoach lists a coach's sessions (the coach themselves or an admin).
func (h *Handler) ListByCoach(c *gin.Context) {
	var uri CoachURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid coach id", err)
		return
	}
	h.list(c, session.Filter{CoachID: uri.CoachID}, uri.CoachID)
}

// ListByClient lists a client's sessions (the client themselves or an admin).
func (h *Handler) ListByClient(c *gin.Context) {
	var uri ClientURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid client id", err)
		return
	}
	h.list(c, session.Filter{ClientID: uri.ClientID}, uri.ClientID)
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid session id", err)
		return
	}

	var body CancelSessionRequest
	if err := bindOptionalJSON(c, &body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	s, err := h.service.Cancel(c.Request.Context(), uri.ID, session.CancelRequest{
		CanceledBy: body.CanceledBy,
		Reason:     body.Reason,
	}, auth.GetUserID(c), h.checkIsSysAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSessionResponse(s, h.clock.Now()))
}

func (h *Handler) Reschedule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid session id", err)
		return
	}

	var body RescheduleSessionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "new date is required", err)
		return
	}

	s, err := h.service.Reschedule(c.Request.Context(), uri.ID, session.RescheduleRequest{
		Date: body.Date,
	}, auth.GetUserID(c), h.checkIsSysAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSessionResponse(s, h.clock.Now()))
}

// CheckSlot reports whether a coach could take a session at the given start.
func (h *Handler) CheckSlot(c *gin.Context) {
	var uri CoachURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid coach id", err)
		return
	}

	var req CheckSlotRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "at must be an RFC3339 timestamp", err)
		return
	}

	verdict, err := h.service.CheckSlot(c.Request.Context(), uri.CoachID, req.At, req.Duration)
	if err != nil {
		response.Error(c, err)
		return
	}

	minutes := req.Duration
	if minutes == 0 {
		minutes = session.DefaultDuration
	}
	resp := SlotCheckResponse{
		CoachID:   uri.CoachID,
		Start:     req.At,
		End:       req.At.Add(time.Duration(minutes) * time.Minute),
		Available: verdict.Available,
		Reason:    verdict.Reason,
	}
	if verdict.Conflict != nil {
		resp.ConflictID = &verdict.Conflict.ID
	}

	c.JSON(http.StatusOK, resp)
}
