package appointment

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nekogravitycat/coaching-backend/internal/offering"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/clock"
)

// OfferingLookup resolves the optional service an appointment refers to.
type OfferingLookup interface {
	GetByID(ctx context.Context, id string) (*offering.Offering, error)
}

type CreateRequest struct {
	UserID     string
	OfferingID *string
	Date       time.Time
	Notes      *string
}

type UpdateRequest struct {
	OfferingID *string
	Date       *time.Time
	Status     *Status
	Notes      *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Appointment, error)
	GetByID(ctx context.Context, id, actorID string, isSysAdmin bool) (*Appointment, error)
	List(ctx context.Context, filter Filter) ([]*Appointment, int, error)
	Update(ctx context.Context, id string, req UpdateRequest, actorID string, isSysAdmin bool) (*Appointment, error)
	Delete(ctx context.Context, id, actorID string, isSysAdmin bool) error
}

type service struct {
	repo      Repository
	offerings OfferingLookup
	clock     clock.Clock
}

func NewService(repo Repository, offerings OfferingLookup, clk clock.Clock) Service {
	return &service{repo: repo, offerings: offerings, clock: clk}
}

func (s *service) checkOffering(ctx context.Context, id *string) (*string, error) {
	if id == nil {
		return nil, nil
	}
	o, err := s.offerings.GetByID(ctx, *id)
	if err != nil {
		if errors.Is(err, offering.ErrNotFound) {
			return nil, ErrOfferingNotFound
		}
		return nil, err
	}
	return &o.Title, nil
}

func cleanNotes(notes *string) (*string, error) {
	if notes == nil {
		return nil, nil
	}
	n := strings.TrimSpace(*notes)
	if n == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(n) > MaxNotesLength {
		return nil, ErrNotesTooLong
	}
	return &n, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Appointment, error) {
	if req.Date.IsZero() {
		return nil, ErrDateRequired
	}
	if req.Date.Before(s.clock.Now()) {
		return nil, ErrDatePast
	}
	notes, err := cleanNotes(req.Notes)
	if err != nil {
		return nil, err
	}
	title, err := s.checkOffering(ctx, req.OfferingID)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		UserID:        req.UserID,
		OfferingID:    req.OfferingID,
		OfferingTitle: title,
		Date:          req.Date.UTC(),
		Status:        StatusPending,
		Notes:         notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// load fetches an appointment owned by the actor, or any one for an admin.
func (s *service) load(ctx context.Context, id, actorID string, isSysAdmin bool) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isSysAdmin && a.UserID != actorID {
		return nil, ErrPermissionDenied
	}
	return a, nil
}

func (s *service) GetByID(ctx context.Context, id, actorID string, isSysAdmin bool) (*Appointment, error) {
	return s.load(ctx, id, actorID, isSysAdmin)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Appointment, int, error) {
	if filter.Status != "" && !Status(filter.Status).Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actorID string, isSysAdmin bool) (*Appointment, error) {
	a, err := s.load(ctx, id, actorID, isSysAdmin)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		// Owners may only withdraw; confirming is up to an admin.
		if !isSysAdmin && *req.Status != StatusCancelled && *req.Status != a.Status {
			return nil, ErrPermissionDenied
		}
		a.Status = *req.Status
	}

	if req.Date != nil {
		if req.Date.Before(s.clock.Now()) {
			return nil, ErrDatePast
		}
		a.Date = req.Date.UTC()
	}

	if req.OfferingID != nil {
		title, err := s.checkOffering(ctx, req.OfferingID)
		if err != nil {
			return nil, err
		}
		a.OfferingID, a.OfferingTitle = req.OfferingID, title
	}

	if req.Notes != nil {
		if a.Notes, err = cleanNotes(req.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Delete(ctx context.Context, id, actorID string, isSysAdmin bool) error {
	if _, err := s.load(ctx, id, actorID, isSysAdmin); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
