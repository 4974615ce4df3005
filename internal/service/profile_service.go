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
)

// ProfileService manages the subscriber and trainer extensions of a user.
type ProfileService struct {
	subscribers repository.SubscriberRepository
	trainers    repository.TrainerRepository
	cache       *cache.Store
	log         *observability.RepoLogger
}

type CreateSubscriberInput struct {
	Goal         string `json:"goal"`
	FitnessLevel string `json:"fitness_level"`
}

type CreateTrainerInput struct {
	Specialty      string `json:"specialty"`
	Certifications string `json:"certifications"`
}

func NewProfileService(
	subscribers repository.SubscriberRepository,
	trainers repository.TrainerRepository,
	store *cache.Store,
) *ProfileService {
	return &ProfileService{
		subscribers: subscribers,
		trainers:    trainers,
		cache:       store,
		log:         observability.NewRepoLogger("profile"),
	}
}

// checkCanTakeProfile rejects admins and users already holding a profile of
// the other kind.
func (s *ProfileService) checkCanTakeProfile(ctx context.Context, actor *middleware.Principal, want models.Role) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.IsAdmin() {
		return models.NewConflictError("admin accounts cannot hold a profile")
	}

	var (
		other bool
		err   error
	)
	switch want {
	case models.RoleSubscriber:
		other, err = s.trainers.Exists(ctx, actor.UserID)
	case models.RoleTrainer:
		other, err = s.subscribers.Exists(ctx, actor.UserID)
	}
	if err != nil {
		return err
	}
	if other {
		return models.NewConflictError("user already holds a different profile")
	}
	return nil
}

func (s *ProfileService) CreateSubscriber(ctx context.Context, actor *middleware.Principal, in CreateSubscriberInput) (*models.Subscriber, error) {
	if err := s.checkCanTakeProfile(ctx, actor, models.RoleSubscriber); err != nil {
		return nil, err
	}

	sub := &models.Subscriber{
		ID:           actor.UserID,
		Goal:         strings.TrimSpace(in.Goal),
		FitnessLevel: strings.TrimSpace(in.FitnessLevel),
	}
	if err := s.subscribers.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.UserKey(actor.UserID))
	s.log.LogCreate(ctx, slog.String("kind", "subscriber"), slog.Uint64("user_id", uint64(actor.UserID)))
	observability.RecordDomainEvent("subscriber", "create")

	return s.subscribers.GetByID(ctx, actor.UserID)
}

func (s *ProfileService) GetSubscriber(ctx context.Context, id uint) (*models.Subscriber, error) {
	return s.subscribers.GetByID(ctx, id)
}

func (s *ProfileService) UpdateSubscriber(ctx context.Context, actor *middleware.Principal, id uint, patch models.SubscriberPatch) (*models.Subscriber, error) {
	if err := requireSelfOrAdmin(actor, id, "subscriber profile"); err != nil {
		return nil, err
	}
	if err := s.subscribers.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	s.log.LogUpdate(ctx, slog.String("kind", "subscriber"), slog.Uint64("user_id", uint64(id)))
	return s.subscribers.GetByID(ctx, id)
}

// ListSubscribers is restricted to trainers and admins. A non-empty level
// filters by fitness level.
func (s *ProfileService) ListSubscribers(ctx context.Context, actor *middleware.Principal, level string, limit, offset int) ([]models.Subscriber, error) {
	if err := requireRole(actor, models.RoleTrainer); err != nil {
		return nil, err
	}
	if level = strings.TrimSpace(level); level != "" {
		return s.subscribers.ListByLevel(ctx, level, limit, offset)
	}
	return s.subscribers.List(ctx, limit, offset)
}

func (s *ProfileService) CreateTrainer(ctx context.Context, actor *middleware.Principal, in CreateTrainerInput) (*models.Trainer, error) {
	if err := s.checkCanTakeProfile(ctx, actor, models.RoleTrainer); err != nil {
		return nil, err
	}

	trainer := &models.Trainer{
		ID:             actor.UserID,
		Specialty:      strings.TrimSpace(in.Specialty),
		Certifications: strings.TrimSpace(in.Certifications),
	}
	if err := s.trainers.Create(ctx, trainer); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.UserKey(actor.UserID))
	s.log.LogCreate(ctx, slog.String("kind", "trainer"), slog.Uint64("user_id", uint64(actor.UserID)))
	observability.RecordDomainEvent("trainer", "create")

	return s.trainers.GetByID(ctx, actor.UserID)
}

func (s *ProfileService) GetTrainer(ctx context.Context, id uint) (*models.Trainer, error) {
	return s.trainers.GetByID(ctx, id)
}

func (s *ProfileService) UpdateTrainer(ctx context.Context, actor *middleware.Principal, id uint, patch models.TrainerPatch) (*models.Trainer, error) {
	if err := requireSelfOrAdmin(actor, id, "trainer profile"); err != nil {
		return nil, err
	}
	if err := s.trainers.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	s.log.LogUpdate(ctx, slog.String("kind", "trainer"), slog.Uint64("user_id", uint64(id)))
	return s.trainers.GetByID(ctx, id)
}

func (s *ProfileService) ListTrainers(ctx context.Context, limit, offset int) ([]models.Trainer, error) {
	return s.trainers.List(ctx, limit, offset)
}

// SearchTrainers matches the specialty. An empty term lists.
func (s *ProfileService) SearchTrainers(ctx context.Context, specialty string, limit, offset int) ([]models.Trainer, error) {
	return s.trainers.SearchBySpecialty(ctx, specialty, limit, offset)
}
