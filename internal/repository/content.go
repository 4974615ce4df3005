package repository

import (
	"context"
	"time"

	"fittlyfans/internal/models"

	"gorm.io/gorm"
)

// ContentRepository defines persistence operations for published content.
type ContentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	GetByID(ctx context.Context, id uint) (*models.Content, error)
	Update(ctx context.Context, id uint, patch models.ContentPatch) error
	SetMedia(ctx context.Context, id uint, mediaURL string) error
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Content, error)
	ListByType(ctx context.Context, contentType models.ContentType, limit, offset int) ([]models.Content, error)
	Search(ctx context.Context, term string, limit, offset int) ([]models.Content, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository returns a new ContentRepository implementation.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func contentView(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Content{}).
		Select("contents.*, users.name AS author_name, users.role AS author_role, " +
			"(SELECT COUNT(*) FROM comments WHERE comments.content_id = contents.id) AS comment_count").
		Joins("LEFT JOIN users ON users.id = contents.user_id")
}

func (r *contentRepository) Create(ctx context.Context, content *models.Content) error {
	if content.PublishedAt.IsZero() {
		content.PublishedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(content).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository) GetByID(ctx context.Context, id uint) (*models.Content, error) {
	var content models.Content
	if err := r.db.WithContext(ctx).Scopes(contentView).Where("contents.id = ?", id).Take(&content).Error; err != nil {
		return nil, mapReadError(err, "Content", id)
	}
	return &content, nil
}

func (r *contentRepository) Update(ctx context.Context, id uint, patch models.ContentPatch) error {
	q := r.db.WithContext(ctx).Model(&models.Content{}).Where("id = ?", id)
	return applyPatch(q, patch, "Content", id, "")
}

func (r *contentRepository) SetMedia(ctx context.Context, id uint, mediaURL string) error {
	res := r.db.WithContext(ctx).Model(&models.Content{}).Where("id = ?", id).Update("media_url", mediaURL)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Content", id)
	}
	return nil
}

// Delete removes the content and its comments.
func (r *contentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("content_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.Content{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Content", id)
		}
		return nil
	})
}

func (r *contentRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Content, error) {
	return r.list(ctx, limit, offset, "contents.user_id = ?", userID)
}

func (r *contentRepository) ListByType(ctx context.Context, contentType models.ContentType, limit, offset int) ([]models.Content, error) {
	return r.list(ctx, limit, offset, "contents.type = ?", contentType)
}

func (r *contentRepository) Search(ctx context.Context, term string, limit, offset int) ([]models.Content, error) {
	var items []models.Content
	if err := r.db.WithContext(ctx).
		Scopes(contentView, search(term, "contents.description"), paginate(limit, offset)).
		Order("contents.published_at DESC, contents.id DESC").
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *contentRepository) list(ctx context.Context, limit, offset int, where string, args ...any) ([]models.Content, error) {
	var items []models.Content
	if err := r.db.WithContext(ctx).
		Scopes(contentView, paginate(limit, offset)).
		Where(where, args...).
		Order("contents.published_at DESC, contents.id DESC").
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}
