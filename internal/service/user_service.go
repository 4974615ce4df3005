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
	"fittlyfans/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
	cache    *cache.Store
	log      *observability.RepoLogger
}

// UpdateUserInput holds the optional fields of a user update. Password is
// plain text and is hashed before storage.
type UpdateUserInput struct {
	Name     *string      `json:"name"`
	Email    *string      `json:"email"`
	Password *string      `json:"password"`
	Role     *models.Role `json:"role"`
}

func NewUserService(userRepo repository.UserRepository, store *cache.Store) *UserService {
	return &UserService{
		userRepo: userRepo,
		cache:    store,
		log:      observability.NewRepoLogger("user"),
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// SearchUsers matches term against name and email. An empty term lists.
func (s *UserService) SearchUsers(ctx context.Context, term string, limit, offset int) ([]models.User, error) {
	if strings.TrimSpace(term) == "" {
		return s.userRepo.List(ctx, limit, offset)
	}
	return s.userRepo.Search(ctx, term, limit, offset)
}

// ResolvePrincipal loads the caller for the auth middleware, going through
// the cache when Redis is available.
func (s *UserService) ResolvePrincipal(ctx context.Context, id uint) (*middleware.Principal, error) {
	return cache.Aside(ctx, s.cache, cache.UserKey(id), cache.UserTTL, func() (*middleware.Principal, error) {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &middleware.Principal{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   user.Role,
		}, nil
	})
}

func (s *UserService) UpdateUser(ctx context.Context, actor *middleware.Principal, id uint, in UpdateUserInput) (*models.User, error) {
	if err := requireSelfOrAdmin(actor, id, "user"); err != nil {
		return nil, err
	}

	var patch models.UserPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validation.ValidateName(name); err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, err
		}
		owner, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if owner != nil && owner.ID != id {
			return nil, models.NewConflictError("email already registered")
		}
		patch.Email = &email
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &hash
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, models.NewValidationError("role must be one of: generic, subscriber, trainer, admin")
		}
		if *in.Role == models.RoleAdmin && !actor.IsAdmin() {
			return nil, models.NewForbiddenError("only an admin can grant the admin role")
		}
		patch.Role = in.Role
	}

	if err := s.userRepo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.UserKey(id))
	s.log.LogUpdate(ctx, slog.Uint64("user_id", uint64(id)), slog.Bool("password_changed", patch.Password != nil))
	observability.RecordDomainEvent("user", "update")

	return s.userRepo.GetByID(ctx, id)
}

// DeleteUser removes the account and everything it owns.
func (s *UserService) DeleteUser(ctx context.Context, actor *middleware.Principal, id uint) error {
	if err := requireSelfOrAdmin(actor, id, "user"); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.UserKey(id))
	s.log.LogDelete(ctx, slog.Uint64("user_id", uint64(id)), slog.Uint64("by", uint64(actor.UserID)))
	observability.RecordDomainEvent("user", "delete")
	return nil
}
