package offering

import (
	"context"
	"log/slog"
	"strings"
)

// ImageRemover deletes a stored file. Implemented by the file service.
type ImageRemover interface {
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Title       string
	Description string
	Duration    int
	Price       float64
}

type UpdateRequest struct {
	Title       *string
	Description *string
	Duration    *int
	Price       *float64
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Offering, error)
	GetByID(ctx context.Context, id string) (*Offering, error)
	List(ctx context.Context, filter Filter) ([]*Offering, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Offering, error)
	Delete(ctx context.Context, id string) error
	// SetImage points the offering at fileID and removes the image it replaces.
	SetImage(ctx context.Context, id, fileID string) (*Offering, error)
}

type service struct {
	repo   Repository
	images ImageRemover
}

func NewService(repo Repository, images ImageRemover) Service {
	return &service{repo: repo, images: images}
}

func validateFields(title, description string, duration int, price float64) error {
	switch {
	case strings.TrimSpace(title) == "":
		return ErrTitleRequired
	case strings.TrimSpace(description) == "":
		return ErrDescriptionEmpty
	case duration <= 0:
		return ErrInvalidDuration
	case price < 0:
		return ErrInvalidPrice
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Offering, error) {
	o := &Offering{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Duration:    req.Duration,
		Price:       req.Price,
	}
	if err := validateFields(o.Title, o.Description, o.Duration, o.Price); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Offering, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Offering, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Offering, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		o.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		o.Description = strings.TrimSpace(*req.Description)
	}
	if req.Duration != nil {
		o.Duration = *req.Duration
	}
	if req.Price != nil {
		o.Price = *req.Price
	}
	if err := validateFields(o.Title, o.Description, o.Duration, o.Price); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if o.ImageFileID != nil {
		s.dropImage(ctx, *o.ImageFileID)
	}
	return nil
}

func (s *service) SetImage(ctx context.Context, id, fileID string) (*Offering, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := o.ImageFileID
	o.ImageFileID = &fileID
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if previous != nil && *previous != fileID {
		s.dropImage(ctx, *previous)
	}
	return o, nil
}

func (s *service) dropImage(ctx context.Context, fileID string) {
	if err := s.images.Delete(ctx, fileID); err != nil {
		slog.WarnContext(ctx, "failed to delete replaced offering image",
			slog.String("file_id", fileID), slog.Any("error", err))
	}
}
