package appointment

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("appointment not found")
	ErrOfferingNotFound = apperror.NotFound("service not found")
	ErrInvalidStatus    = apperror.Validation("invalid appointment status")
	ErrDateRequired     = apperror.Validation("date is required")
	ErrDatePast         = apperror.Validation("cannot request an appointment in the past")
	ErrNotesTooLong     = apperror.Validation("notes must be at most 1000 characters")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
)

const MaxNotesLength = 1000

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a free-form request for a service. Unlike sessions it holds
// no calendar and is never checked for overlaps.
type Appointment struct {
	ID            string
	UserID        string
	UserName      string
	OfferingID    *string
	OfferingTitle *string
	Date          time.Time
	Status        Status
	Notes         *string
	CreatedAt     time.Time
}

type Filter struct {
	UserID    string
	Status    string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
	SortOrder string
}
