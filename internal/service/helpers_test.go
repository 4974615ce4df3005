package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fittlyfans/internal/config"
	"fittlyfans/internal/database"
	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type userRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
	updateFn     func(context.Context, uint, models.UserPatch) error
	setRoleFn    func(context.Context, uint, models.Role) error
	deleteFn     func(context.Context, uint) error
	listFn       func(context.Context, int, int) ([]models.User, error)
	searchFn     func(context.Context, string, int, int) ([]models.User, error)
	countFn      func(context.Context) (int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, id uint, patch models.UserPatch) error {
	return s.updateFn(ctx, id, patch)
}
func (s *userRepoStub) SetRole(ctx context.Context, id uint, role models.Role) error {
	return s.setRoleFn(ctx, id, role)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Search(ctx context.Context, term string, limit, offset int) ([]models.User, error) {
	return s.searchFn(ctx, term, limit, offset)
}
func (s *userRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByEmailFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		updateFn:     func(context.Context, uint, models.UserPatch) error { return nil },
		setRoleFn:    func(context.Context, uint, models.Role) error { return nil },
		deleteFn:     func(context.Context, uint) error { return nil },
		listFn:       func(context.Context, int, int) ([]models.User, error) { return []models.User{}, nil },
		searchFn:     func(context.Context, string, int, int) ([]models.User, error) { return []models.User{}, nil },
		countFn:      func(context.Context) (int64, error) { return 0, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Name: "user", Email: "user@example.com", Role: models.RoleGeneric}, nil
		},
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
	}
}

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, "message: %s", appErr.Message)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeUnauthorized)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeForbidden)
}

func principal(u *models.User) *middleware.Principal {
	return &middleware.Principal{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// setupDB opens a migrated sqlite database private to the test.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "service.db"),
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{Migrate: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Password: "hash", Role: role}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), u))
	return u
}
