package http

import (
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/file"
	"github.com/nekogravitycat/coaching-backend/internal/offering"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/request"
)

type ListOfferingsRequest struct {
	request.ListParams
	Keyword  string   `form:"q"`
	MaxPrice *float64 `form:"max_price" binding:"omitempty,min=0"`
}

type CreateOfferingRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"required"`
	Duration    int     `json:"duration" binding:"required,min=1,max=1440"`
	Price       float64 `json:"price" binding:"min=0"`
}

type UpdateOfferingRequest struct {
	Title       *string  `json:"title" binding:"omitempty,max=200"`
	Description *string  `json:"description"`
	Duration    *int     `json:"duration" binding:"omitempty,min=1,max=1440"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
}

type OfferingResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Duration          int       `json:"duration"`
	Price             float64   `json:"price"`
	ImageURL          *string   `json:"image_url"`
	ImageThumbnailURL *string   `json:"image_thumbnail_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func NewOfferingResponse(o *offering.Offering) OfferingResponse {
	resp := OfferingResponse{
		ID:          o.ID,
		Title:       o.Title,
		Description: o.Description,
		Duration:    o.Duration,
		Price:       o.Price,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.ImageFileID != nil {
		url, thumb := file.FileURL(*o.ImageFileID), file.ThumbnailURL(*o.ImageFileID)
		resp.ImageURL, resp.ImageThumbnailURL = &url, &thumb
	}
	return resp
}
