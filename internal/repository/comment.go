package repository

import (
	"context"

	"fittlyfans/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, id uint, patch models.CommentPatch) error
	Delete(ctx context.Context, id uint) error
	ListByContent(ctx context.Context, contentID uint, limit, offset int) ([]models.Comment, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func commentView(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Comment{}).
		Select("comments.*, users.name AS author_name").
		Joins("LEFT JOIN users ON users.id = comments.user_id")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Scopes(commentView).Where("comments.id = ?", id).Take(&comment).Error; err != nil {
		return nil, mapReadError(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, id uint, patch models.CommentPatch) error {
	q := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id)
	return applyPatch(q, patch, "Comment", id, "")
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) ListByContent(ctx context.Context, contentID uint, limit, offset int) ([]models.Comment, error) {
	return r.list(ctx, limit, offset, "comments.content_id = ?", contentID)
}

func (r *commentRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Comment, error) {
	return r.list(ctx, limit, offset, "comments.user_id = ?", userID)
}

func (r *commentRepository) list(ctx context.Context, limit, offset int, where string, args ...any) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Scopes(commentView, paginate(limit, offset)).
		Where(where, args...).
		Order("comments.created_at DESC, comments.id DESC").
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
