package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fittlyfans/internal/config"
	"fittlyfans/internal/database"
	"fittlyfans/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB opens a migrated sqlite database private to the test.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "repo.db"),
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

func createUser(t *testing.T, db *gorm.DB, name, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email, Password: "hash", Role: role}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func createExercise(t *testing.T, db *gorm.DB, name, group string) *models.Exercise {
	t.Helper()
	e := &models.Exercise{Name: name, MuscleGroup: group, Type: models.ExerciseStrength}
	require.NoError(t, NewExerciseRepository(db).Create(context.Background(), e))
	return e
}

func createRoutine(t *testing.T, db *gorm.DB, trainerID uint, name string) *models.Routine {
	t.Helper()
	r := &models.Routine{TrainerID: trainerID, Name: name, Difficulty: models.DifficultyBeginner}
	require.NoError(t, NewRoutineRepository(db).Create(context.Background(), r))
	return r
}

func createContent(t *testing.T, db *gorm.DB, userID uint, desc string, at time.Time) *models.Content {
	t.Helper()
	c := &models.Content{UserID: userID, Description: desc, Type: models.ContentText, PublishedAt: at}
	require.NoError(t, NewContentRepository(db).Create(context.Background(), c))
	return c
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }
