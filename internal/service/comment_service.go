package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/observability"
	"fittlyfans/internal/repository"
)

const maxCommentLen = 2000

type CommentService struct {
	commentRepo repository.CommentRepository
	contentRepo repository.ContentRepository
	log         *observability.RepoLogger
}

type CreateCommentInput struct {
	ContentID uint   `json:"content_id"`
	Text      string `json:"text"`
}

func NewCommentService(commentRepo repository.CommentRepository, contentRepo repository.ContentRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		contentRepo: contentRepo,
		log:         observability.NewRepoLogger("comment"),
	}
}

func validateCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", models.NewValidationError("text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return "", models.NewValidationError("comment too long (max 2000 characters)")
	}
	return text, nil
}

func (s *CommentService) CreateComment(ctx context.Context, actor *middleware.Principal, in CreateCommentInput) (*models.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	text, err := validateCommentText(in.Text)
	if err != nil {
		return nil, err
	}
	if in.ContentID == 0 {
		return nil, models.NewValidationError("content_id is required")
	}
	if _, err := s.contentRepo.GetByID(ctx, in.ContentID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:    actor.UserID,
		ContentID: in.ContentID,
		Text:      text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.log.LogCreate(ctx, slog.Uint64("comment_id", uint64(comment.ID)), slog.Uint64("content_id", uint64(in.ContentID)))
	observability.RecordDomainEvent("comment", "create")

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

func (s *CommentService) ListByContent(ctx context.Context, contentID uint, limit, offset int) ([]models.Comment, error) {
	if _, err := s.contentRepo.GetByID(ctx, contentID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByContent(ctx, contentID, limit, offset)
}

func (s *CommentService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Comment, error) {
	return s.commentRepo.ListByUser(ctx, userID, limit, offset)
}

// UpdateComment is restricted to the comment's author.
func (s *CommentService) UpdateComment(ctx context.Context, actor *middleware.Principal, id uint, text string) (*models.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actor.UserID {
		return nil, models.NewForbiddenError("only the author can edit this comment")
	}
	text, err = validateCommentText(text)
	if err != nil {
		return nil, err
	}
	if err := s.commentRepo.Update(ctx, id, models.CommentPatch{Text: &text}); err != nil {
		return nil, err
	}
	s.log.LogUpdate(ctx, slog.Uint64("comment_id", uint64(id)))
	return s.commentRepo.GetByID(ctx, id)
}

// DeleteComment is allowed for the comment's author, the author of the
// content it was left on, and admins.
func (s *CommentService) DeleteComment(ctx context.Context, actor *middleware.Principal, id uint) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	allowed := comment.UserID == actor.UserID || actor.IsAdmin()
	if !allowed {
		content, err := s.contentRepo.GetByID(ctx, comment.ContentID)
		if err != nil && !models.IsCode(err, models.CodeNotFound) {
			return err
		}
		allowed = content != nil && content.UserID == actor.UserID
	}
	if !allowed {
		return models.NewForbiddenError("not allowed to delete this comment")
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.LogDelete(ctx, slog.Uint64("comment_id", uint64(id)), slog.Uint64("by", uint64(actor.UserID)))
	observability.RecordDomainEvent("comment", "delete")
	return nil
}
