package repository

import (
	"context"
	"testing"

	"fittlyfans/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriberRepository_CreatePromotesRole(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	repo := NewSubscriberRepository(db)
	u := createUser(t, db, "Ana", "ana@example.com", models.RoleGeneric)

	require.NoError(t, repo.Create(ctx, &models.Subscriber{ID: u.ID, Goal: "lose weight", FitnessLevel: "beginner"}))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, models.RoleSubscriber, got.Role)
	assert.Equal(t, "lose weight", got.Goal)

	err = repo.Create(ctx, &models.Subscriber{ID: u.ID})
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)

	ok, err := repo.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSubscriberRepository_CreateForMissingUserRollsBack(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewSubscriberRepository(db)

	err := repo.Create(context.Background(), &models.Subscriber{ID: 77})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.EqualValues(t, 0, count(t, db, &models.Subscriber{}))
}

func TestSubscriberRepository_ListByLevelAndUpdate(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	repo := NewSubscriberRepository(db)
	for i, level := range []string{"beginner", "advanced", "Beginner"} {
		u := createUser(t, db, "sub", string(rune('a'+i))+"@example.com", models.RoleGeneric)
		require.NoError(t, repo.Create(ctx, &models.Subscriber{ID: u.ID, FitnessLevel: level}))
	}

	beginners, err := repo.ListByLevel(ctx, "BEGINNER", 10, 0)
	require.NoError(t, err)
	assert.Len(t, beginners, 2)

	all, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.NoError(t, repo.Update(ctx, all[1].ID, models.SubscriberPatch{Goal: strPtr("run 10k")}))
	got, err := repo.GetByID(ctx, all[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "run 10k", got.Goal)
	assert.Equal(t, "advanced", got.FitnessLevel)
}

func TestTrainerRepository_SearchBySpecialty(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	repo := NewTrainerRepository(db)

	yoga := createUser(t, db, "Yogi", "yogi@example.com", models.RoleGeneric)
	lift := createUser(t, db, "Lifter", "lift@example.com", models.RoleGeneric)
	require.NoError(t, repo.Create(ctx, &models.Trainer{ID: yoga.ID, Specialty: "Yoga y Pilates"}))
	require.NoError(t, repo.Create(ctx, &models.Trainer{ID: lift.ID, Specialty: "Powerlifting"}))

	found, err := repo.SearchBySpecialty(ctx, "pilates", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Yogi", found[0].Name)
	assert.Equal(t, models.RoleTrainer, found[0].Role)

	all, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Update(ctx, lift.ID, models.TrainerPatch{Certifications: strPtr("NSCA")}))
	got, err := repo.GetByID(ctx, lift.ID)
	require.NoError(t, err)
	assert.Equal(t, "NSCA", got.Certifications)
	assert.Equal(t, "Powerlifting", got.Specialty)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
