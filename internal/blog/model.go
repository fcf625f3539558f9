package blog

import (
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.NotFound("post not found")
	ErrTitleRequired   = apperror.Validation("title is required")
	ErrContentRequired = apperror.Validation("content is required")
	ErrTooManyTags     = apperror.Validation("a post can have at most 10 tags")
)

const MaxTags = 10

// Post is a blog article. Content is markdown; ContentHTML is derived from it
// on read and never stored.
type Post struct {
	ID          string
	Title       string
	Content     string
	ContentHTML string
	ImageFileID *string
	Tags        []string
	AuthorID    string
	AuthorName  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing posts, newest first.
type Filter struct {
	Keyword  string
	Tag      string
	AuthorID string
	Page     int
	PageSize int
}
