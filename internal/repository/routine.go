package repository

import (
	"context"
	"fmt"

	"fittlyfans/internal/models"

	"gorm.io/gorm"
)

// RoutineRepository defines persistence operations for training routines.
type RoutineRepository interface {
	Create(ctx context.Context, routine *models.Routine) error
	GetByID(ctx context.Context, id uint) (*models.Routine, error)
	Update(ctx context.Context, id uint, patch models.RoutinePatch) error
	Delete(ctx context.Context, id uint) error
	ListByTrainer(ctx context.Context, trainerID uint, limit, offset int) ([]models.Routine, error)
	ListByDifficulty(ctx context.Context, level models.Difficulty, limit, offset int) ([]models.Routine, error)
	Search(ctx context.Context, term string, limit, offset int) ([]models.Routine, error)
}

// RoutineExerciseRepository manages the ordered exercise list of a routine.
type RoutineExerciseRepository interface {
	Add(ctx context.Context, link *models.RoutineExercise) error
	Get(ctx context.Context, routineID, exerciseID uint) (*models.RoutineExercise, error)
	Update(ctx context.Context, routineID, exerciseID uint, patch models.RoutineExercisePatch) error
	Remove(ctx context.Context, routineID, exerciseID uint) error
	ListByRoutine(ctx context.Context, routineID uint) ([]models.RoutineExercise, error)
	Reorder(ctx context.Context, routineID uint, items []models.OrderItem) error
}

type routineRepository struct {
	db *gorm.DB
}

// NewRoutineRepository returns a new RoutineRepository implementation.
func NewRoutineRepository(db *gorm.DB) RoutineRepository {
	return &routineRepository{db: db}
}

func routineView(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Routine{}).
		Select("routines.*, users.name AS trainer_name, " +
			"(SELECT COUNT(*) FROM routine_exercises WHERE routine_exercises.routine_id = routines.id) AS total_exercises").
		Joins("LEFT JOIN users ON users.id = routines.trainer_id")
}

func (r *routineRepository) Create(ctx context.Context, routine *models.Routine) error {
	if err := r.db.WithContext(ctx).Create(routine).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *routineRepository) GetByID(ctx context.Context, id uint) (*models.Routine, error) {
	var routine models.Routine
	if err := r.db.WithContext(ctx).Scopes(routineView).Where("routines.id = ?", id).Take(&routine).Error; err != nil {
		return nil, mapReadError(err, "Routine", id)
	}
	return &routine, nil
}

func (r *routineRepository) Update(ctx context.Context, id uint, patch models.RoutinePatch) error {
	q := r.db.WithContext(ctx).Model(&models.Routine{}).Where("id = ?", id)
	return applyPatch(q, patch, "Routine", id, "")
}

// Delete removes the routine together with its exercise list.
func (r *routineRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("routine_id = ?", id).Delete(&models.RoutineExercise{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.Routine{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Routine", id)
		}
		return nil
	})
}

func (r *routineRepository) ListByTrainer(ctx context.Context, trainerID uint, limit, offset int) ([]models.Routine, error) {
	return r.list(ctx, limit, offset, "routines.trainer_id = ?", trainerID)
}

func (r *routineRepository) ListByDifficulty(ctx context.Context, level models.Difficulty, limit, offset int) ([]models.Routine, error) {
	return r.list(ctx, limit, offset, "routines.difficulty = ?", level)
}

func (r *routineRepository) Search(ctx context.Context, term string, limit, offset int) ([]models.Routine, error) {
	var routines []models.Routine
	if err := r.db.WithContext(ctx).
		Scopes(routineView, search(term, "routines.name", "routines.description"), paginate(limit, offset)).
		Order("routines.id ASC").
		Find(&routines).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return routines, nil
}

func (r *routineRepository) list(ctx context.Context, limit, offset int, where string, args ...any) ([]models.Routine, error) {
	var routines []models.Routine
	if err := r.db.WithContext(ctx).
		Scopes(routineView, paginate(limit, offset)).
		Where(where, args...).
		Order("routines.id ASC").
		Find(&routines).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return routines, nil
}

type routineExerciseRepository struct {
	db *gorm.DB
}

// NewRoutineExerciseRepository returns a new RoutineExerciseRepository implementation.
func NewRoutineExerciseRepository(db *gorm.DB) RoutineExerciseRepository {
	return &routineExerciseRepository{db: db}
}

func linkID(routineID, exerciseID uint) string {
	return fmt.Sprintf("%d/%d", routineID, exerciseID)
}

func routineExerciseView(db *gorm.DB) *gorm.DB {
	return db.Model(&models.RoutineExercise{}).
		Select("routine_exercises.*, exercises.name AS exercise_name, exercises.muscle_group, " +
			"exercises.type AS exercise_type, exercises.video_url").
		Joins("JOIN exercises ON exercises.id = routine_exercises.exercise_id")
}

func (r *routineExerciseRepository) Add(ctx context.Context, link *models.RoutineExercise) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return mapWriteError(err, "exercise already in routine")
	}
	return nil
}

func (r *routineExerciseRepository) Get(ctx context.Context, routineID, exerciseID uint) (*models.RoutineExercise, error) {
	var link models.RoutineExercise
	if err := r.db.WithContext(ctx).
		Scopes(routineExerciseView).
		Where("routine_exercises.routine_id = ? AND routine_exercises.exercise_id = ?", routineID, exerciseID).
		Take(&link).Error; err != nil {
		return nil, mapReadError(err, "RoutineExercise", linkID(routineID, exerciseID))
	}
	return &link, nil
}

func (r *routineExerciseRepository) Update(ctx context.Context, routineID, exerciseID uint, patch models.RoutineExercisePatch) error {
	q := r.db.WithContext(ctx).Model(&models.RoutineExercise{}).
		Where("routine_id = ? AND exercise_id = ?", routineID, exerciseID)
	return applyPatch(q, patch, "RoutineExercise", linkID(routineID, exerciseID), "")
}

func (r *routineExerciseRepository) Remove(ctx context.Context, routineID, exerciseID uint) error {
	res := r.db.WithContext(ctx).
		Where("routine_id = ? AND exercise_id = ?", routineID, exerciseID).
		Delete(&models.RoutineExercise{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("RoutineExercise", linkID(routineID, exerciseID))
	}
	return nil
}

func (r *routineExerciseRepository) ListByRoutine(ctx context.Context, routineID uint) ([]models.RoutineExercise, error) {
	links := []models.RoutineExercise{}
	if err := r.db.WithContext(ctx).
		Scopes(routineExerciseView).
		Where("routine_exercises.routine_id = ?", routineID).
		Order("routine_exercises.position ASC, routine_exercises.exercise_id ASC").
		Find(&links).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return links, nil
}

// Reorder rewrites the position of each listed exercise. Either every item
// is applied or none is.
func (r *routineExerciseRepository) Reorder(ctx context.Context, routineID uint, items []models.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			res := tx.Model(&models.RoutineExercise{}).
				Where("routine_id = ? AND exercise_id = ?", routineID, item.ExerciseID).
				Update("position", item.Order)
			if res.Error != nil {
				return models.NewInternalError(res.Error)
			}
			if res.RowsAffected == 0 {
				return models.NewNotFoundError("RoutineExercise", linkID(routineID, item.ExerciseID))
			}
		}
		return nil
	})
}
