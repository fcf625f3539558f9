package blog

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

// ImageRemover deletes a stored file. Implemented by the file service.
type ImageRemover interface {
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Title    string
	Content  string
	Tags     []string
	AuthorID string
}

type UpdateRequest struct {
	Title   *string
	Content *string
	Tags    *[]string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, filter Filter) ([]*Post, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Post, error)
	Delete(ctx context.Context, id string) error
	SetImage(ctx context.Context, id, fileID string) (*Post, error)
}

type service struct {
	repo   Repository
	images ImageRemover
}

func NewService(repo Repository, images ImageRemover) Service {
	return &service{repo: repo, images: images}
}

// normalizeTags lowercases, trims, and dedupes tags, keeping first-seen order.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	if len(out) > MaxTags {
		return nil, ErrTooManyTags
	}
	return out, nil
}

func rendered(p *Post) *Post {
	p.ContentHTML = RenderMarkdown(p.Content)
	return p
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Post, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrContentRequired
	}
	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	p := &Post{
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Tags:     tags,
		AuthorID: req.AuthorID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return rendered(p), nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rendered(p), nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Post, int, error) {
	filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))
	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for _, p := range posts {
		rendered(p)
	}
	return posts, total, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrTitleRequired
		}
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, ErrContentRequired
		}
		p.Content = *req.Content
	}
	if req.Tags != nil {
		if p.Tags, err = normalizeTags(*req.Tags); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return rendered(p), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if p.ImageFileID != nil {
		s.dropImage(ctx, *p.ImageFileID)
	}
	return nil
}

func (s *service) SetImage(ctx context.Context, id, fileID string) (*Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := p.ImageFileID
	p.ImageFileID = &fileID
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if previous != nil && *previous != fileID {
		s.dropImage(ctx, *previous)
	}
	return rendered(p), nil
}

func (s *service) dropImage(ctx context.Context, fileID string) {
	if err := s.images.Delete(ctx, fileID); err != nil {
		slog.WarnContext(ctx, "failed to delete replaced post image",
			slog.String("file_id", fileID), slog.Any("error", err))
	}
}
