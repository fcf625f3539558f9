package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/coaching-backend/internal/auth"
	"github.com/nekogravitycat/coaching-backend/internal/file"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/response"
)

// FileUploadConfig configures HandleFileUpload for one owning entity.
type FileUploadConfig struct {
	FormFieldName string   // default: "file"
	MaxSizeBytes  int64    // 0 = service default
	AllowedTypes  []string // empty = any type
	// AfterUpload attaches the new file to its owner. On error the upload is rolled back.
	AfterUpload func(ctx context.Context, fileID string) error
}

// HandleFileUpload reads a multipart file, stores it, and runs the AfterUpload hook.
func (h *Handler) HandleFileUpload(c *gin.Context, cfg FileUploadConfig) {
	fieldName := cfg.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	header, err := c.FormFile(fieldName)
	if err != nil {
		response.BadRequest(c, fieldName+" is required", err)
		return
	}

	src, err := header.Open()
	if err != nil {
		response.BadRequest(c, "failed to open uploaded file", err)
		return
	}
	defer src.Close()

	ctx := c.Request.Context()
	f, err := h.fileService.Upload(ctx, file.UploadInput{
		Filename:     header.Filename,
		Content:      src,
		UserID:       auth.GetUserID(c),
		MaxSizeBytes: cfg.MaxSizeBytes,
		AllowedTypes: cfg.AllowedTypes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if cfg.AfterUpload != nil {
		if err := cfg.AfterUpload(ctx, f.ID); err != nil {
			_ = h.fileService.Delete(ctx, f.ID)
			response.Error(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, NewFileUploadResponse(f))
}

func NewFileUploadResponse(f *file.File) FileUploadResponse {
	resp := FileUploadResponse{
		FileID:      f.ID,
		URL:         file.FileURL(f.ID),
		ContentType: f.ContentType,
		Size:        f.Size,
	}
	if f.HasThumbnail() {
		t := file.ThumbnailURL(f.ID)
		resp.ThumbnailURL = &t
	}
	return resp
}
