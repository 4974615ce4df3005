package repository

import (
	"context"

	"fittlyfans/internal/models"

	"gorm.io/gorm"
)

// SubscriberRepository defines persistence operations for subscriber profiles.
type SubscriberRepository interface {
	Create(ctx context.Context, sub *models.Subscriber) error
	GetByID(ctx context.Context, id uint) (*models.Subscriber, error)
	Update(ctx context.Context, id uint, patch models.SubscriberPatch) error
	List(ctx context.Context, limit, offset int) ([]models.Subscriber, error)
	ListByLevel(ctx context.Context, level string, limit, offset int) ([]models.Subscriber, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// TrainerRepository defines persistence operations for trainer profiles.
type TrainerRepository interface {
	Create(ctx context.Context, trainer *models.Trainer) error
	GetByID(ctx context.Context, id uint) (*models.Trainer, error)
	Update(ctx context.Context, id uint, patch models.TrainerPatch) error
	List(ctx context.Context, limit, offset int) ([]models.Trainer, error)
	SearchBySpecialty(ctx context.Context, term string, limit, offset int) ([]models.Trainer, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type subscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository returns a new SubscriberRepository implementation.
func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

type trainerRepository struct {
	db *gorm.DB
}

// NewTrainerRepository returns a new TrainerRepository implementation.
func NewTrainerRepository(db *gorm.DB) TrainerRepository {
	return &trainerRepository{db: db}
}

// createProfile inserts a profile row and promotes the owning user's role
// in one transaction.
func createProfile(ctx context.Context, db *gorm.DB, userID uint, profile any, role models.Role) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			return mapWriteError(err, "profile already exists")
		}
		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("role", role)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", userID)
		}
		return nil
	})
}

func exists(ctx context.Context, db *gorm.DB, model any, where string, args ...any) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(model).Where(where, args...).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func subscriberView(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Subscriber{}).
		Select("subscribers.*, users.name, users.email, users.role").
		Joins("JOIN users ON users.id = subscribers.id")
}

func (r *subscriberRepository) Create(ctx context.Context, sub *models.Subscriber) error {
	return createProfile(ctx, r.db, sub.ID, sub, models.RoleSubscriber)
}

func (r *subscriberRepository) GetByID(ctx context.Context, id uint) (*models.Subscriber, error) {
	var sub models.Subscriber
	if err := r.db.WithContext(ctx).Scopes(subscriberView).Where("subscribers.id = ?", id).Take(&sub).Error; err != nil {
		return nil, mapReadError(err, "Subscriber", id)
	}
	return &sub, nil
}

func (r *subscriberRepository) Update(ctx context.Context, id uint, patch models.SubscriberPatch) error {
	q := r.db.WithContext(ctx).Model(&models.Subscriber{}).Where("id = ?", id)
	return applyPatch(q, patch, "Subscriber", id, "")
}

func (r *subscriberRepository) List(ctx context.Context, limit, offset int) ([]models.Subscriber, error) {
	var subs []models.Subscriber
	if err := r.db.WithContext(ctx).
		Scopes(subscriberView, paginate(limit, offset)).
		Order("subscribers.id ASC").
		Find(&subs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return subs, nil
}

func (r *subscriberRepository) ListByLevel(ctx context.Context, level string, limit, offset int) ([]models.Subscriber, error) {
	var subs []models.Subscriber
	if err := r.db.WithContext(ctx).
		Scopes(subscriberView, paginate(limit, offset)).
		Where("LOWER(subscribers.fitness_level) = LOWER(?)", level).
		Order("subscribers.id ASC").
		Find(&subs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return subs, nil
}

func (r *subscriberRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &models.Subscriber{}, "id = ?", id)
}

func trainerView(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Trainer{}).
		Select("trainers.*, users.name, users.email, users.role").
		Joins("JOIN users ON users.id = trainers.id")
}

func (r *trainerRepository) Create(ctx context.Context, trainer *models.Trainer) error {
	return createProfile(ctx, r.db, trainer.ID, trainer, models.RoleTrainer)
}

func (r *trainerRepository) GetByID(ctx context.Context, id uint) (*models.Trainer, error) {
	var trainer models.Trainer
	if err := r.db.WithContext(ctx).Scopes(trainerView).Where("trainers.id = ?", id).Take(&trainer).Error; err != nil {
		return nil, mapReadError(err, "Trainer", id)
	}
	return &trainer, nil
}

func (r *trainerRepository) Update(ctx context.Context, id uint, patch models.TrainerPatch) error {
	q := r.db.WithContext(ctx).Model(&models.Trainer{}).Where("id = ?", id)
	return applyPatch(q, patch, "Trainer", id, "")
}

func (r *trainerRepository) List(ctx context.Context, limit, offset int) ([]models.Trainer, error) {
	var trainers []models.Trainer
	if err := r.db.WithContext(ctx).
		Scopes(trainerView, paginate(limit, offset)).
		Order("trainers.id ASC").
		Find(&trainers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return trainers, nil
}

func (r *trainerRepository) SearchBySpecialty(ctx context.Context, term string, limit, offset int) ([]models.Trainer, error) {
	var trainers []models.Trainer
	if err := r.db.WithContext(ctx).
		Scopes(trainerView, search(term, "trainers.specialty"), paginate(limit, offset)).
		Order("trainers.id ASC").
		Find(&trainers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return trainers, nil
}

func (r *trainerRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &models.Trainer{}, "id = ?", id)
}
