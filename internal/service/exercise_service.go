package service

import (
	"context"
	"log/slog"
	"strings"

	"fittlyfans/internal/cache"
	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/observability"
	"fittlyfans/internal/repository"
	"fittlyfans/internal/storage"
	"fittlyfans/internal/validation"
)

type ExerciseService struct {
	repo  repository.ExerciseRepository
	media *storage.MediaStore
	cache *cache.Store
	log   *observability.RepoLogger
}

type CreateExerciseInput struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	MuscleGroup string              `json:"muscle_group"`
	Type        models.ExerciseType `json:"type"`
	VideoURL    string              `json:"video_url"`
}

func NewExerciseService(repo repository.ExerciseRepository, media *storage.MediaStore, store *cache.Store) *ExerciseService {
	return &ExerciseService{
		repo:  repo,
		media: media,
		cache: store,
		log:   observability.NewRepoLogger("exercise"),
	}
}

func validateExerciseType(t models.ExerciseType) error {
	return validation.OneOf("type", t,
		models.ExerciseCardio, models.ExerciseStrength, models.ExerciseFlexibility, models.ExerciseBalance)
}

func (s *ExerciseService) Create(ctx context.Context, actor *middleware.Principal, in CreateExerciseInput) (*models.Exercise, error) {
	if err := requireRole(actor, models.RoleTrainer); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("name is required")
	}
	if in.Type == "" {
		in.Type = models.ExerciseStrength
	}
	if err := validateExerciseType(in.Type); err != nil {
		return nil, err
	}

	exercise := &models.Exercise{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		MuscleGroup: strings.TrimSpace(in.MuscleGroup),
		Type:        in.Type,
		VideoURL:    strings.TrimSpace(in.VideoURL),
	}
	if err := s.repo.Create(ctx, exercise); err != nil {
		return nil, err
	}
	s.log.LogCreate(ctx, slog.Uint64("exercise_id", uint64(exercise.ID)))
	observability.RecordDomainEvent("exercise", "create")
	return exercise, nil
}

// Get serves single exercises through the cache.
func (s *ExerciseService) Get(ctx context.Context, id uint) (*models.Exercise, error) {
	return cache.Aside(ctx, s.cache, cache.ExerciseKey(id), cache.ExerciseTTL, func() (*models.Exercise, error) {
		return s.repo.GetByID(ctx, id)
	})
}

func (s *ExerciseService) Update(ctx context.Context, actor *middleware.Principal, id uint, patch models.ExercisePatch) (*models.Exercise, error) {
	if err := requireRole(actor, models.RoleTrainer); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, models.NewValidationError("name cannot be empty")
		}
		patch.Name = &name
	}
	if patch.Type != nil {
		if err := validateExerciseType(*patch.Type); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.ExerciseKey(id))
	s.log.LogUpdate(ctx, slog.Uint64("exercise_id", uint64(id)))
	return s.repo.GetByID(ctx, id)
}

// Delete removes the exercise, its routine links and its stored video.
func (s *ExerciseService) Delete(ctx context.Context, actor *middleware.Principal, id uint) error {
	if err := requireRole(actor, models.RoleTrainer); err != nil {
		return err
	}
	exercise, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.ExerciseKey(id))
	s.removeStoredVideo(ctx, exercise.VideoURL)
	s.log.LogDelete(ctx, slog.Uint64("exercise_id", uint64(id)))
	observability.RecordDomainEvent("exercise", "delete")
	return nil
}

// AttachVideo stores an uploaded video and points the exercise at it. The
// previously stored file, if any, is removed.
func (s *ExerciseService) AttachVideo(ctx context.Context, actor *middleware.Principal, id uint, filename string, data []byte) (*models.Exercise, error) {
	if err := requireRole(actor, models.RoleTrainer); err != nil {
		return nil, err
	}
	exercise, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rel, err := s.media.SaveVideo(filename, data)
	if err != nil {
		return nil, mediaError(err)
	}
	if err := s.repo.Update(ctx, id, models.ExercisePatch{VideoURL: &rel}); err != nil {
		_ = s.media.Remove(rel)
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.ExerciseKey(id))
	s.removeStoredVideo(ctx, exercise.VideoURL)

	observability.MediaUploadBytes.WithLabelValues("video").Observe(float64(len(data)))
	s.log.LogUpdate(ctx, slog.Uint64("exercise_id", uint64(id)), slog.String("video", rel))

	exercise.VideoURL = rel
	return exercise, nil
}

// removeStoredVideo deletes a previously uploaded file. External links are
// left alone.
func (s *ExerciseService) removeStoredVideo(ctx context.Context, videoURL string) {
	if !strings.HasPrefix(videoURL, storage.VideoDir+"/") {
		return
	}
	if err := s.media.Remove(videoURL); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove old video",
			slog.String("path", videoURL), slog.String("error", err.Error()))
	}
}

func (s *ExerciseService) List(ctx context.Context, limit, offset int) ([]models.Exercise, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *ExerciseService) ListByMuscleGroup(ctx context.Context, group string, limit, offset int) ([]models.Exercise, error) {
	return s.repo.ListByMuscleGroup(ctx, strings.TrimSpace(group), limit, offset)
}

func (s *ExerciseService) ListByType(ctx context.Context, t models.ExerciseType, limit, offset int) ([]models.Exercise, error) {
	if err := validateExerciseType(t); err != nil {
		return nil, err
	}
	return s.repo.ListByType(ctx, t, limit, offset)
}

func (s *ExerciseService) Search(ctx context.Context, term string, limit, offset int) ([]models.Exercise, error) {
	if strings.TrimSpace(term) == "" {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.Search(ctx, term, limit, offset)
}
