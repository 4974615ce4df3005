package service

import (
	"context"
	"log/slog"
	"strings"

	"fittlyfans/internal/models"
	"fittlyfans/internal/observability"
	"fittlyfans/internal/repository"
)

type ExperienceService struct {
	repo repository.ExperienceRepository
	log  *observability.RepoLogger
}

type CreateExperienceInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func NewExperienceService(repo repository.ExperienceRepository) *ExperienceService {
	return &ExperienceService{repo: repo, log: observability.NewRepoLogger("experience")}
}

func (s *ExperienceService) Create(ctx context.Context, in CreateExperienceInput) (*models.Experience, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("name is required")
	}
	exp := &models.Experience{Name: name, Description: strings.TrimSpace(in.Description)}
	if err := s.repo.Create(ctx, exp); err != nil {
		return nil, err
	}
	s.log.LogCreate(ctx, slog.Uint64("experience_id", uint64(exp.ID)))
	return exp, nil
}

func (s *ExperienceService) Get(ctx context.Context, id uint) (*models.Experience, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ExperienceService) Update(ctx context.Context, id uint, patch models.ExperiencePatch) (*models.Experience, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, models.NewValidationError("name cannot be empty")
		}
		patch.Name = &name
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	s.log.LogUpdate(ctx, slog.Uint64("experience_id", uint64(id)))
	return s.repo.GetByID(ctx, id)
}

func (s *ExperienceService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.LogDelete(ctx, slog.Uint64("experience_id", uint64(id)))
	return nil
}

func (s *ExperienceService) List(ctx context.Context, limit, offset int) ([]models.Experience, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *ExperienceService) Search(ctx context.Context, term string, limit, offset int) ([]models.Experience, error) {
	if strings.TrimSpace(term) == "" {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.Search(ctx, term, limit, offset)
}
