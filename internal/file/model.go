package file

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.NotFound("file not found")
	ErrNoThumbnail     = apperror.NotFound("thumbnail not available for this file")
	ErrEmpty           = apperror.Validation("file is empty")
	ErrTooLarge        = apperror.NewKind(http.StatusRequestEntityTooLarge, apperror.KindValidation, "file exceeds the size limit")
	ErrUnsupportedType = apperror.NewKind(http.StatusUnsupportedMediaType, apperror.KindValidation, "file type is not allowed")
)

// File is the metadata row for one stored upload.
type File struct {
	ID            string
	UserID        string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

func (f *File) HasThumbnail() bool {
	return f.ThumbnailPath != nil
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for a file's thumbnail.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
