package service

import (
	"context"
	"errors"
	"testing"

	"fittlyfans/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(noopUserRepo())
	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "secret123"}},
		{"blank name", RegisterInput{Name: "   ", Email: "a@example.com", Password: "secret123"}},
		{"missing email", RegisterInput{Name: "Ana", Password: "secret123"}},
		{"bad email", RegisterInput{Name: "Ana", Email: "not-an-email", Password: "secret123"}},
		{"missing password", RegisterInput{Name: "Ana", Email: "a@example.com"}},
		{"weak password", RegisterInput{Name: "Ana", Email: "a@example.com", Password: "short"}},
		{"admin role", RegisterInput{Name: "Ana", Email: "a@example.com", Password: "secret123", Role: models.RoleAdmin}},
		{"unknown role", RegisterInput{Name: "Ana", Email: "a@example.com", Password: "secret123", Role: "coach"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(context.Background(), tt.input)
			assertValidationError(t, err)
		})
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	var lookedUp string
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		lookedUp = email
		return nil, nil
	}
	var stored *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 7
		stored = u
		return nil
	}

	user, err := NewAuthService(repo).Register(context.Background(), RegisterInput{
		Name:     " Ana ",
		Email:    " Ana@Example.com ",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "ana@example.com", lookedUp)
	assert.Equal(t, models.RoleGeneric, user.Role, "role defaults to generic")

	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		return &models.User{ID: 1, Email: email}, nil
	}
	created := false
	repo.createFn = func(context.Context, *models.User) error {
		created = true
		return nil
	}

	_, err := NewAuthService(repo).Register(context.Background(), RegisterInput{
		Name: "Ana", Email: "ana@example.com", Password: "secret123", Role: models.RoleTrainer,
	})
	assertCode(t, err, models.CodeConflict)
	assert.False(t, created)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == "ana@example.com" {
			return &models.User{ID: 3, Email: email, Password: string(hash), Role: models.RoleSubscriber}, nil
		}
		return nil, nil
	}
	svc := NewAuthService(repo)
	ctx := context.Background()

	user, err := svc.Login(ctx, "ANA@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, uint(3), user.ID)

	_, err = svc.Login(ctx, "ana@example.com", "wrong-pass1")
	assertUnauthorizedError(t, err)
	assert.Equal(t, "invalid credentials", err.Error())

	_, err = svc.Login(ctx, "ghost@example.com", "secret123")
	assertUnauthorizedError(t, err)
	assert.Equal(t, "invalid credentials", err.Error())

	_, err = svc.Login(ctx, "", "secret123")
	assertValidationError(t, err)
	_, err = svc.Login(ctx, "ana@example.com", "")
	assertValidationError(t, err)
}

func TestAuthService_Login_RepoErrorPropagates(t *testing.T) {
	t.Parallel()

	repoErr := models.NewInternalError(errors.New("db down"))
	repo := noopUserRepo()
	repo.getByEmailFn = func(context.Context, string) (*models.User, error) { return nil, repoErr }

	_, err := NewAuthService(repo).Login(context.Background(), "ana@example.com", "secret123")
	assert.ErrorIs(t, err, repoErr)
}
