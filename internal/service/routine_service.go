package service

import (
	"context"
	"log/slog"
	"strings"

	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/observability"
	"fittlyfans/internal/repository"
	"fittlyfans/internal/validation"
)

type RoutineService struct {
	routines  repository.RoutineRepository
	links     repository.RoutineExerciseRepository
	exercises repository.ExerciseRepository
	log       *observability.RepoLogger
}

type CreateRoutineInput struct {
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Difficulty        models.Difficulty `json:"difficulty"`
	EstimatedDuration int               `json:"estimated_duration"`
}

type AddRoutineExerciseInput struct {
	ExerciseID uint `json:"exercise_id"`
	Order      int  `json:"order"`
	Sets       int  `json:"sets"`
	Reps       int  `json:"reps"`
	Duration   int  `json:"duration"`
}

func NewRoutineService(
	routines repository.RoutineRepository,
	links repository.RoutineExerciseRepository,
	exercises repository.ExerciseRepository,
) *RoutineService {
	return &RoutineService{
		routines:  routines,
		links:     links,
		exercises: exercises,
		log:       observability.NewRepoLogger("routine"),
	}
}

func validateDifficulty(d models.Difficulty) error {
	return validation.OneOf("difficulty", d,
		models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced)
}

func nonNegative(field string, v int) error {
	if v < 0 {
		return models.NewValidationError(field + " cannot be negative")
	}
	return nil
}

func (s *RoutineService) Create(ctx context.Context, actor *middleware.Principal, in CreateRoutineInput) (*models.Routine, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if actor.Role != models.RoleTrainer {
		return nil, models.NewForbiddenError("only trainers can create routines")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("name is required")
	}
	if in.Difficulty == "" {
		in.Difficulty = models.DifficultyBeginner
	}
	if err := validateDifficulty(in.Difficulty); err != nil {
		return nil, err
	}
	if err := nonNegative("estimated_duration", in.EstimatedDuration); err != nil {
		return nil, err
	}

	routine := &models.Routine{
		TrainerID:         actor.UserID,
		Name:              name,
		Description:       strings.TrimSpace(in.Description),
		Difficulty:        in.Difficulty,
		EstimatedDuration: in.EstimatedDuration,
	}
	if err := s.routines.Create(ctx, routine); err != nil {
		return nil, err
	}
	s.log.LogCreate(ctx, slog.Uint64("routine_id", uint64(routine.ID)))
	observability.RecordDomainEvent("routine", "create")

	return s.routines.GetByID(ctx, routine.ID)
}

func (s *RoutineService) Get(ctx context.Context, id uint) (*models.Routine, error) {
	return s.routines.GetByID(ctx, id)
}

// owned loads the routine and checks the caller may change it.
func (s *RoutineService) owned(ctx context.Context, actor *middleware.Principal, id uint) (*models.Routine, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	routine, err := s.routines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(routine.TrainerID) {
		return nil, models.NewForbiddenError("not allowed to modify this routine")
	}
	return routine, nil
}

func (s *RoutineService) Update(ctx context.Context, actor *middleware.Principal, id uint, patch models.RoutinePatch) (*models.Routine, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, models.NewValidationError("name cannot be empty")
		}
		patch.Name = &name
	}
	if patch.Difficulty != nil {
		if err := validateDifficulty(*patch.Difficulty); err != nil {
			return nil, err
		}
	}
	if patch.EstimatedDuration != nil {
		if err := nonNegative("estimated_duration", *patch.EstimatedDuration); err != nil {
			return nil, err
		}
	}
	if err := s.routines.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	s.log.LogUpdate(ctx, slog.Uint64("routine_id", uint64(id)))
	return s.routines.GetByID(ctx, id)
}

// Delete removes the routine and its exercise links.
func (s *RoutineService) Delete(ctx context.Context, actor *middleware.Principal, id uint) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.routines.Delete(ctx, id); err != nil {
		return err
	}
	s.log.LogDelete(ctx, slog.Uint64("routine_id", uint64(id)), slog.Uint64("by", uint64(actor.UserID)))
	observability.RecordDomainEvent("routine", "delete")
	return nil
}

func (s *RoutineService) ListByTrainer(ctx context.Context, trainerID uint, limit, offset int) ([]models.Routine, error) {
	return s.routines.ListByTrainer(ctx, trainerID, limit, offset)
}

func (s *RoutineService) ListByDifficulty(ctx context.Context, level models.Difficulty, limit, offset int) ([]models.Routine, error) {
	if err := validateDifficulty(level); err != nil {
		return nil, err
	}
	return s.routines.ListByDifficulty(ctx, level, limit, offset)
}

// Search matches name and description. An empty term lists.
func (s *RoutineService) Search(ctx context.Context, term string, limit, offset int) ([]models.Routine, error) {
	return s.routines.Search(ctx, term, limit, offset)
}

// ListExercises returns the routine's exercises in order. A routine that
// does not exist, or no longer does, has an empty list.
func (s *RoutineService) ListExercises(ctx context.Context, routineID uint) ([]models.RoutineExercise, error) {
	return s.links.ListByRoutine(ctx, routineID)
}

func (s *RoutineService) AddExercise(ctx context.Context, actor *middleware.Principal, routineID uint, in AddRoutineExerciseInput) (*models.RoutineExercise, error) {
	if _, err := s.owned(ctx, actor, routineID); err != nil {
		return nil, err
	}
	if in.ExerciseID == 0 {
		return nil, models.NewValidationError("exercise_id is required")
	}
	for field, v := range map[string]int{"order": in.Order, "sets": in.Sets, "reps": in.Reps, "duration": in.Duration} {
		if err := nonNegative(field, v); err != nil {
			return nil, err
		}
	}
	if _, err := s.exercises.GetByID(ctx, in.ExerciseID); err != nil {
		return nil, err
	}

	link := &models.RoutineExercise{
		RoutineID:  routineID,
		ExerciseID: in.ExerciseID,
		Order:      in.Order,
		Sets:       in.Sets,
		Reps:       in.Reps,
		Duration:   in.Duration,
	}
	if err := s.links.Add(ctx, link); err != nil {
		return nil, err
	}
	s.log.LogCreate(ctx, slog.Uint64("routine_id", uint64(routineID)), slog.Uint64("exercise_id", uint64(in.ExerciseID)))
	return s.links.Get(ctx, routineID, in.ExerciseID)
}

func (s *RoutineService) UpdateExercise(ctx context.Context, actor *middleware.Principal, routineID, exerciseID uint, patch models.RoutineExercisePatch) (*models.RoutineExercise, error) {
	if _, err := s.owned(ctx, actor, routineID); err != nil {
		return nil, err
	}
	for field, v := range map[string]*int{"order": patch.Order, "sets": patch.Sets, "reps": patch.Reps, "duration": patch.Duration} {
		if v == nil {
			continue
		}
		if err := nonNegative(field, *v); err != nil {
			return nil, err
		}
	}
	if err := s.links.Update(ctx, routineID, exerciseID, patch); err != nil {
		return nil, err
	}
	return s.links.Get(ctx, routineID, exerciseID)
}

func (s *RoutineService) RemoveExercise(ctx context.Context, actor *middleware.Principal, routineID, exerciseID uint) error {
	if _, err := s.owned(ctx, actor, routineID); err != nil {
		return err
	}
	if err := s.links.Remove(ctx, routineID, exerciseID); err != nil {
		return err
	}
	s.log.LogDelete(ctx, slog.Uint64("routine_id", uint64(routineID)), slog.Uint64("exercise_id", uint64(exerciseID)))
	return nil
}

// ReorderExercises applies every position change or none.
func (s *RoutineService) ReorderExercises(ctx context.Context, actor *middleware.Principal, routineID uint, items []models.OrderItem) ([]models.RoutineExercise, error) {
	if _, err := s.owned(ctx, actor, routineID); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, models.NewValidationError("items is required")
	}
	seen := make(map[uint]struct{}, len(items))
	for _, it := range items {
		if it.ExerciseID == 0 {
			return nil, models.NewValidationError("exercise_id is required")
		}
		if _, dup := seen[it.ExerciseID]; dup {
			return nil, models.NewValidationError("duplicate exercise_id in items")
		}
		seen[it.ExerciseID] = struct{}{}
		if err := nonNegative("order", it.Order); err != nil {
			return nil, err
		}
	}
	if err := s.links.Reorder(ctx, routineID, items); err != nil {
		return nil, err
	}
	return s.links.ListByRoutine(ctx, routineID)
}
