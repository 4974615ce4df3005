package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"fittlyfans/internal/models"
	"fittlyfans/internal/observability"
	"fittlyfans/internal/repository"
	"fittlyfans/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for an unknown email and for a
// wrong password alike.
var ErrInvalidCredentials = models.NewUnauthorizedError("invalid credentials")

type AuthService struct {
	userRepo repository.UserRepository
	log      *observability.RepoLogger
}

type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		log:      observability.NewRepoLogger("user"),
	}
}

// normalizeEmail trims and lower-cases an address so lookups are
// case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}

// Register creates a new account and returns it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if err := validation.Required("name", in.Name, "email", in.Email, "password", in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleGeneric
	}
	if err := validation.OneOf("role", in.Role, models.RoleGeneric, models.RoleSubscriber, models.RoleTrainer); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("email already registered")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     in.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.LogCreate(ctx, slog.Uint64("user_id", uint64(user.ID)), slog.String("role", string(user.Role)))
	observability.RecordDomainEvent("user", "register")
	return user, nil
}

// Login checks the credentials and returns the matching user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := validation.Required("email", email, "password", password); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, models.NewInternalError(err)
		}
		return nil, ErrInvalidCredentials
	}

	observability.RecordDomainEvent("user", "login")
	return user, nil
}
