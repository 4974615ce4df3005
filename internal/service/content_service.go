package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/observability"
	"fittlyfans/internal/repository"
	"fittlyfans/internal/storage"
	"fittlyfans/internal/validation"
)

type ContentService struct {
	repo   repository.ContentRepository
	media  *storage.MediaStore
	images *storage.ImageProcessor
	log    *observability.RepoLogger
}

type CreateContentInput struct {
	Description string             `json:"description"`
	Type        models.ContentType `json:"type"`
	MediaURL    string             `json:"media_url"`
}

func NewContentService(repo repository.ContentRepository, media *storage.MediaStore, images *storage.ImageProcessor) *ContentService {
	return &ContentService{
		repo:   repo,
		media:  media,
		images: images,
		log:    observability.NewRepoLogger("content"),
	}
}

// mediaError maps storage failures onto API errors.
func mediaError(err error) error {
	switch {
	case errors.Is(err, storage.ErrUnsupportedVideo),
		errors.Is(err, storage.ErrUnsupportedImage),
		errors.Is(err, storage.ErrEmptyFile),
		errors.Is(err, storage.ErrFileTooLarge):
		return models.NewValidationError(err.Error())
	default:
		return models.NewInternalError(fmt.Errorf("store media: %w", err))
	}
}

func (s *ContentService) Create(ctx context.Context, actor *middleware.Principal, in CreateContentInput) (*models.Content, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validation.OneOf("type", in.Type, models.ContentVideo, models.ContentImage, models.ContentText); err != nil {
		return nil, err
	}
	desc := strings.TrimSpace(in.Description)
	if in.Type == models.ContentText && desc == "" {
		return nil, models.NewValidationError("description is required for text content")
	}

	content := &models.Content{
		UserID:      actor.UserID,
		Description: desc,
		Type:        in.Type,
		MediaURL:    strings.TrimSpace(in.MediaURL),
	}
	if err := s.repo.Create(ctx, content); err != nil {
		return nil, err
	}
	s.log.LogCreate(ctx, slog.Uint64("content_id", uint64(content.ID)), slog.String("type", string(content.Type)))
	observability.RecordDomainEvent("content", "create")

	return s.repo.GetByID(ctx, content.ID)
}

func (s *ContentService) Get(ctx context.Context, id uint) (*models.Content, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ContentService) Update(ctx context.Context, actor *middleware.Principal, id uint, patch models.ContentPatch) (*models.Content, error) {
	content, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSelfOrAdmin(actor, content.UserID, "content"); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	s.log.LogUpdate(ctx, slog.Uint64("content_id", uint64(id)))
	return s.repo.GetByID(ctx, id)
}

// Delete removes the content, its comments and any stored image.
func (s *ContentService) Delete(ctx context.Context, actor *middleware.Principal, id uint) error {
	content, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireSelfOrAdmin(actor, content.UserID, "content"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeStoredImage(ctx, content.MediaURL)
	s.log.LogDelete(ctx, slog.Uint64("content_id", uint64(id)), slog.Uint64("by", uint64(actor.UserID)))
	observability.RecordDomainEvent("content", "delete")
	return nil
}

// AttachImage converts an uploaded image to WebP, stores it and points the
// content at it.
func (s *ContentService) AttachImage(ctx context.Context, actor *middleware.Principal, id uint, data []byte) (*models.Content, error) {
	content, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSelfOrAdmin(actor, content.UserID, "content"); err != nil {
		return nil, err
	}
	if err := s.media.CheckImageSize(len(data)); err != nil {
		return nil, mediaError(err)
	}

	webp, err := s.images.ToWebP(data)
	if err != nil {
		return nil, mediaError(err)
	}
	rel, err := s.media.SaveImage(webp)
	if err != nil {
		return nil, mediaError(err)
	}
	if err := s.repo.SetMedia(ctx, id, rel); err != nil {
		_ = s.media.Remove(rel)
		return nil, err
	}
	s.removeStoredImage(ctx, content.MediaURL)

	observability.MediaUploadBytes.WithLabelValues("image").Observe(float64(len(data)))
	s.log.LogUpdate(ctx, slog.Uint64("content_id", uint64(id)), slog.String("image", rel))
	return s.repo.GetByID(ctx, id)
}

func (s *ContentService) removeStoredImage(ctx context.Context, mediaURL string) {
	if !strings.HasPrefix(mediaURL, storage.ImageDir+"/") {
		return
	}
	if err := s.media.Remove(mediaURL); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove old image",
			slog.String("path", mediaURL), slog.String("error", err.Error()))
	}
}

func (s *ContentService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Content, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *ContentService) ListByType(ctx context.Context, t models.ContentType, limit, offset int) ([]models.Content, error) {
	if err := validation.OneOf("type", t, models.ContentVideo, models.ContentImage, models.ContentText); err != nil {
		return nil, err
	}
	return s.repo.ListByType(ctx, t, limit, offset)
}

// Search matches the description. An empty term lists.
func (s *ContentService) Search(ctx context.Context, term string, limit, offset int) ([]models.Content, error) {
	return s.repo.Search(ctx, term, limit, offset)
}
