package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/coaching-backend/internal/auth"
	"github.com/nekogravitycat/coaching-backend/internal/blog"
	"github.com/nekogravitycat/coaching-backend/internal/file"
	fileHttp "github.com/nekogravitycat/coaching-backend/internal/file/http"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/request"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/response"
)

type Handler struct {
	service     blog.Service
	fileHandler *fileHttp.Handler
}

func NewHandler(service blog.Service, fileHandler *fileHttp.Handler) *Handler {
	return &Handler{service: service, fileHandler: fileHandler}
}

func (h *Handler) List(c *gin.Context) {
	var req ListPostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	list, total, err := h.service.List(c.Request.Context(), blog.Filter{
		Keyword:  req.Keyword,
		Tag:      req.Tag,
		AuthorID: req.AuthorID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PostResponse, len(list))
	for i, p := range list {
		items[i] = NewPostResponse(p)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPostResponse(p))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreatePostRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), blog.CreateRequest{
		Title:    body.Title,
		Content:  body.Content,
		Tags:     body.Tags,
		AuthorID: auth.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// Reload so the author name is filled in.
	if full, err := h.service.GetByID(c.Request.Context(), p.ID); err == nil {
		p = full
	}
	c.JSON(http.StatusCreated, NewPostResponse(p))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdatePostRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), uri.ID, blog.UpdateRequest{
		Title:   body.Title,
		Content: body.Content,
		Tags:    body.Tags,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPostResponse(p))
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

func (h *Handler) UploadImage(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

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
