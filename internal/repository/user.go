package repository

import (
	"context"
	"errors"

	"fittlyfans/internal/models"
	"fittlyfans/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, patch models.UserPatch) error
	SetRole(ctx context.Context, id uint, role models.Role) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Search(ctx context.Context, term string, limit, offset int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapReadError(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no user has the given email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return mapWriteError(err, "email already registered")
	}
	return nil
}

// Update writes the set fields of patch. A role change is checked against
// the user's profile rows in the same transaction; see reconcileRole.
func (r *userRepository) Update(ctx context.Context, id uint, patch models.UserPatch) error {
	if patch.Role == nil {
		q := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id)
		return applyPatch(q, patch, "User", id, "email already registered")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reconcileRole(tx, id, *patch.Role); err != nil {
			return err
		}
		q := tx.Model(&models.User{}).Where("id = ?", id)
		return applyPatch(q, patch, "User", id, "email already registered")
	})
}

func (r *userRepository) SetRole(ctx context.Context, id uint, role models.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reconcileRole(tx, id, role); err != nil {
			return err
		}
		res := tx.Model(&models.User{}).Where("id = ?", id).Update("role", role)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", id)
		}
		return nil
	})
}

// reconcileRole keeps profile rows in step with a new role. Admins hold no
// profile, so promotion drops both kinds. Any other role must match the
// profile the user already has.
func reconcileRole(tx *gorm.DB, id uint, role models.Role) error {
	if role == models.RoleAdmin {
		if err := tx.Where("id = ?", id).Delete(&models.Subscriber{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Trainer{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}

	var subscribers, trainers int64
	if err := tx.Model(&models.Subscriber{}).Where("id = ?", id).Count(&subscribers).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := tx.Model(&models.Trainer{}).Where("id = ?", id).Count(&trainers).Error; err != nil {
		return models.NewInternalError(err)
	}
	switch {
	case subscribers > 0 && role != models.RoleSubscriber:
		return models.NewConflictError("user holds a subscriber profile; role must stay subscriber")
	case trainers > 0 && role != models.RoleTrainer:
		return models.NewConflictError("user holds a trainer profile; role must stay trainer")
	}
	return nil
}

// Delete removes the user and everything that references them: profile
// rows, content with its comments, follow edges, routines with their
// exercise lists, conversations with their messages, and payments.
func (r *userRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "users", "Delete")
	defer func() { observability.EndSpan(span, err) }()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Content{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("user_id = ? OR content_id IN (?)", id, owned).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Content{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&models.Subscription{}).Error; err != nil {
			return models.NewInternalError(err)
		}

		routines := tx.Model(&models.Routine{}).Select("id").Where("trainer_id = ?", id)
		if err := tx.Where("routine_id IN (?)", routines).Delete(&models.RoutineExercise{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("trainer_id = ?", id).Delete(&models.Routine{}).Error; err != nil {
			return models.NewInternalError(err)
		}

		convs := tx.Model(&models.Conversation{}).Select("id").Where("subscriber_id = ? OR trainer_id = ?", id, id)
		if err := tx.Where("conversation_id IN (?) OR sender_id = ?", convs, id).Delete(&models.Message{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("subscriber_id = ? OR trainer_id = ?", id, id).Delete(&models.Conversation{}).Error; err != nil {
			return models.NewInternalError(err)
		}

		if err := tx.Where("subscriber_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Delete(&models.Subscriber{}, id).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Delete(&models.Trainer{}, id).Error; err != nil {
			return models.NewInternalError(err)
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", id)
		}
		return nil
	})
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Scopes(paginate(limit, offset)).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Search(ctx context.Context, term string, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Scopes(search(term, "name", "email"), paginate(limit, offset)).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
