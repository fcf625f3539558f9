package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"slices"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/clock"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/storage"
)

// ImageTypes are the content types accepted for offering and blog images.
var ImageTypes = []string{"image/jpeg", "image/png"}

// UploadInput describes one upload. The content type is sniffed from the
// bytes, never taken from the client.
type UploadInput struct {
	Filename string
	Content  io.Reader
	UserID   string
	// MaxSizeBytes of 0 falls back to the service default.
	MaxSizeBytes int64
	// AllowedTypes empty means any type.
	AllowedTypes []string
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*File, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
}

type service struct {
	repo        Repository
	storage     storage.Storage
	thumbnailer *storage.Thumbnailer
	clock       clock.Clock
	maxBytes    int64
}

func NewService(repo Repository, store storage.Storage, clk clock.Clock, maxBytes int64) Service {
	return &service{
		repo:        repo,
		storage:     store,
		thumbnailer: storage.NewThumbnailer(storage.ThumbnailWidth, storage.ThumbnailHeight),
		clock:       clk,
		maxBytes:    maxBytes,
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	limit := in.MaxSizeBytes
	if limit <= 0 {
		limit = s.maxBytes
	}

	content, err := io.ReadAll(io.LimitReader(in.Content, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if len(content) == 0 {
		return nil, ErrEmpty
	}
	if int64(len(content)) > limit {
		return nil, ErrTooLarge
	}

	mt := mimetype.Detect(content)
	contentType := mt.String()
	if len(in.AllowedTypes) > 0 && !slices.ContainsFunc(in.AllowedTypes, mt.Is) {
		return nil, ErrUnsupportedType
	}

	fileID := uuid.NewString()
	shard := fileID[:2]
	storagePath := path.Join("upload", shard, fileID+mt.Extension())

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	var thumbnailPath *string
	if slices.ContainsFunc(ImageTypes, mt.Is) {
		thumbnailPath = s.saveThumbnail(ctx, shard, fileID, content)
	}

	f := &File{
		ID:            fileID,
		UserID:        in.UserID,
		Filename:      path.Base(in.Filename),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(content)),
		CreatedAt:     s.clock.Now(),
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.removeBlobs(ctx, f)
		return nil, err
	}

	return f, nil
}

// saveThumbnail never fails the upload; a broken preview only loses the thumbnail.
func (s *service) saveThumbnail(ctx context.Context, shard, fileID string, content []byte) *string {
	thumb, err := s.thumbnailer.Generate(bytes.NewReader(content))
	if err != nil {
		slog.WarnContext(ctx, "thumbnail generation failed", slog.String("file_id", fileID), slog.Any("error", err))
		return nil
	}

	p := path.Join("upload", shard, fileID+"_thumb.jpg")
	if err := s.storage.Save(ctx, p, bytes.NewReader(thumb)); err != nil {
		slog.WarnContext(ctx, "thumbnail save failed", slog.String("file_id", fileID), slog.Any("error", err))
		return nil
	}
	return &p
}

func (s *service) removeBlobs(ctx context.Context, f *File) {
	if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
		slog.WarnContext(ctx, "failed to delete stored file", slog.String("file_id", f.ID), slog.Any("error", err))
	}
	if f.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *f.ThumbnailPath); err != nil {
			slog.WarnContext(ctx, "failed to delete stored thumbnail", slog.String("file_id", f.ID), slog.Any("error", err))
		}
	}
}

func (s *service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeBlobs(ctx, f)
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	stream, err := s.open(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !f.HasThumbnail() {
		return nil, nil, ErrNoThumbnail
	}
	stream, err := s.open(ctx, *f.ThumbnailPath)
	if err != nil {
		return nil, nil, err
	}
	return stream, f, nil
}

func (s *service) open(ctx context.Context, key string) (io.ReadCloser, error) {
	stream, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}
	return stream, nil
}
