package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/coaching-backend/internal/file"
	fileHttp "github.com/nekogravitycat/coaching-backend/internal/file/http"
	"github.com/nekogravitycat/coaching-backend/internal/offering"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/request"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/response"
)

type Handler struct {
	service     offering.Service
	fileHandler *fileHttp.Handler
}

func NewHandler(service offering.Service, fileHandler *fileHttp.Handler) *Handler {
	return &Handler{service: service, fileHandler: fileHandler}
}

func (h *Handler) List(c *gin.Context) {
	var req ListOfferingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	list, total, err := h.service.List(c.Request.Context(), offering.Filter{
		Keyword:   req.Keyword,
		MaxPrice:  req.MaxPrice,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]OfferingResponse, len(list))
	for i, o := range list {
		items[i] = NewOfferingResponse(o)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOfferingResponse(o))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateOfferingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	o, err := h.service.Create(c.Request.Context(), offering.CreateRequest{
		Title:       body.Title,
		Description: body.Description,
		Duration:    body.Duration,
		Price:       body.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewOfferingResponse(o))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateOfferingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	o, err := h.service.Update(c.Request.Context(), uri.ID, offering.UpdateRequest{
		Title:       body.Title,
		Description: body.Description,
		Duration:    body.Duration,
		Price:       body.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOfferingResponse(o))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage stores a new cover image and attaches it to the offering.
func (h *Handler) UploadImage(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	// Fail before storing anything when the offering is gone.
	if _, err := h.service.GetByID(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	h.fileHandler.HandleFileUpload(c, fileHttp.FileUploadConfig{
		AllowedTypes: file.ImageTypes,
		AfterUpload: func(ctx context.Context, fileID string) error {
			_, err := h.service.SetImage(ctx, req.ID, fileID)
			return err
		},
	})
}
