package offering

import (
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("service not found")
	ErrTitleRequired    = apperror.Validation("title is required")
	ErrDescriptionEmpty = apperror.Validation("description is required")
	ErrInvalidDuration  = apperror.Validation("duration must be a positive number of minutes")
	ErrInvalidPrice     = apperror.Validation("price must not be negative")
)

// Offering is a coaching service listed in the public catalogue.
type Offering struct {
	ID          string
	Title       string
	Description string
	Duration    int // minutes
	Price       float64
	ImageFileID *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing offerings. The catalogue is ordered
// by price, cheapest first, unless SortOrder says otherwise.
type Filter struct {
	Keyword   string
	MaxPrice  *float64
	Page      int
	PageSize  int
	SortOrder string
}
