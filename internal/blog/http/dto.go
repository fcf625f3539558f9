package http

import (
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/blog"
	"github.com/nekogravitycat/coaching-backend/internal/file"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/request"
	userHttp "github.com/nekogravitycat/coaching-backend/internal/user/http"
)

type ListPostsRequest struct {
	request.ListParams
	Keyword  string `form:"q"`
	Tag      string `form:"tag"`
	AuthorID string `form:"author_id" binding:"omitempty,uuid"`
}

type CreatePostRequest struct {
	Title   string   `json:"title" binding:"required,max=200"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags" binding:"omitempty,max=10,dive,max=40"`
}

type UpdatePostRequest struct {
	Title   *string   `json:"title" binding:"omitempty,max=200"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags" binding:"omitempty,max=10,dive,max=40"`
}

type PostResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	ContentHTML string           `json:"content_html"`
	ImageURL    *string          `json:"image_url"`
	Tags        []string         `json:"tags"`
	Author      userHttp.UserTag `json:"author"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func NewPostResponse(p *blog.Post) PostResponse {
	resp := PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		ContentHTML: p.ContentHTML,
		Tags:        p.Tags,
		Author:      userHttp.UserTag{ID: p.AuthorID, Name: p.AuthorName},
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if p.ImageFileID != nil {
		url := file.FileURL(*p.ImageFileID)
		resp.ImageURL = &url
	}
	return resp
}
