package repository

import (
	"context"

	"fittlyfans/internal/models"

	"gorm.io/gorm"
)

// ExperienceRepository defines persistence operations for experience entries.
type ExperienceRepository interface {
	Create(ctx context.Context, exp *models.Experience) error
	GetByID(ctx context.Context, id uint) (*models.Experience, error)
	Update(ctx context.Context, id uint, patch models.ExperiencePatch) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.Experience, error)
	Search(ctx context.Context, term string, limit, offset int) ([]models.Experience, error)
}

// ExerciseRepository defines persistence operations for the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *models.Exercise) error
	GetByID(ctx context.Context, id uint) (*models.Exercise, error)
	Update(ctx context.Context, id uint, patch models.ExercisePatch) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.Exercise, error)
	ListByMuscleGroup(ctx context.Context, group string, limit, offset int) ([]models.Exercise, error)
	ListByType(ctx context.Context, exType models.ExerciseType, limit, offset int) ([]models.Exercise, error)
	Search(ctx context.Context, term string, limit, offset int) ([]models.Exercise, error)
	Count(ctx context.Context) (int64, error)
}

type experienceRepository struct {
	db *gorm.DB
}

// NewExperienceRepository returns a new ExperienceRepository implementation.
func NewExperienceRepository(db *gorm.DB) ExperienceRepository {
	return &experienceRepository{db: db}
}

func (r *experienceRepository) Create(ctx context.Context, exp *models.Experience) error {
	if err := r.db.WithContext(ctx).Create(exp).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *experienceRepository) GetByID(ctx context.Context, id uint) (*models.Experience, error) {
	var exp models.Experience
	if err := r.db.WithContext(ctx).First(&exp, id).Error; err != nil {
		return nil, mapReadError(err, "Experience", id)
	}
	return &exp, nil
}

func (r *experienceRepository) Update(ctx context.Context, id uint, patch models.ExperiencePatch) error {
	q := r.db.WithContext(ctx).Model(&models.Experience{}).Where("id = ?", id)
	return applyPatch(q, patch, "Experience", id, "")
}

func (r *experienceRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Experience{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Experience", id)
	}
	return nil
}

func (r *experienceRepository) List(ctx context.Context, limit, offset int) ([]models.Experience, error) {
	var exps []models.Experience
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Scopes(paginate(limit, offset)).Find(&exps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return exps, nil
}

func (r *experienceRepository) Search(ctx context.Context, term string, limit, offset int) ([]models.Experience, error) {
	var exps []models.Experience
	if err := r.db.WithContext(ctx).
		Scopes(search(term, "name", "description"), paginate(limit, offset)).
		Order("name ASC, id ASC").
		Find(&exps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return exps, nil
}

type exerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository returns a new ExerciseRepository implementation.
func NewExerciseRepository(db *gorm.DB) ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) Create(ctx context.Context, exercise *models.Exercise) error {
	if err := r.db.WithContext(ctx).Create(exercise).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *exerciseRepository) GetByID(ctx context.Context, id uint) (*models.Exercise, error) {
	var exercise models.Exercise
	if err := r.db.WithContext(ctx).First(&exercise, id).Error; err != nil {
		return nil, mapReadError(err, "Exercise", id)
	}
	return &exercise, nil
}

func (r *exerciseRepository) Update(ctx context.Context, id uint, patch models.ExercisePatch) error {
	q := r.db.WithContext(ctx).Model(&models.Exercise{}).Where("id = ?", id)
	return applyPatch(q, patch, "Exercise", id, "")
}

// Delete removes the exercise and every routine entry that references it.
func (r *exerciseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exercise_id = ?", id).Delete(&models.RoutineExercise{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.Exercise{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Exercise", id)
		}
		return nil
	})
}

func (r *exerciseRepository) List(ctx context.Context, limit, offset int) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := r.db.WithContext(ctx).Order("id ASC").Scopes(paginate(limit, offset)).Find(&exercises).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return exercises, nil
}

func (r *exerciseRepository) ListByMuscleGroup(ctx context.Context, group string, limit, offset int) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := r.db.WithContext(ctx).
		Where("LOWER(muscle_group) = LOWER(?)", group).
		Order("name ASC, id ASC").
		Scopes(paginate(limit, offset)).
		Find(&exercises).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return exercises, nil
}

func (r *exerciseRepository) ListByType(ctx context.Context, exType models.ExerciseType, limit, offset int) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := r.db.WithContext(ctx).
		Where("type = ?", exType).
		Order("name ASC, id ASC").
		Scopes(paginate(limit, offset)).
		Find(&exercises).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return exercises, nil
}

func (r *exerciseRepository) Search(ctx context.Context, term string, limit, offset int) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := r.db.WithContext(ctx).
		Scopes(search(term, "name", "description", "muscle_group"), paginate(limit, offset)).
		Order("name ASC, id ASC").
		Find(&exercises).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return exercises, nil
}

func (r *exerciseRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Exercise{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
