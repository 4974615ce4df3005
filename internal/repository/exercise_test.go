package repository

import (
	"context"
	"regexp"
	"testing"

	"fittlyfans/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExerciseRepository_SearchQueryShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewExerciseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "exercises" WHERE (LOWER(name) LIKE $1 OR LOWER(description) LIKE $2 OR LOWER(muscle_group) LIKE $3) ORDER BY name ASC, id ASC LIMIT $4`)).
		WithArgs("%sentad%", "%sentad%", "%sentad%", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Sentadilla"))

	found, err := repo.Search(context.Background(), " SENTAD ", 20, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Sentadilla", found[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExerciseRepository_Search(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewExerciseRepository(db)
	ctx := context.Background()
	createExercise(t, db, "Sentadilla", "piernas")
	createExercise(t, db, "Press banca", "pecho")

	found, err := repo.Search(ctx, "sentad", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Sentadilla", found[0].Name)

	found, err = repo.Search(ctx, "PECHO", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Press banca", found[0].Name)

	found, err = repo.Search(ctx, "xyz", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestExerciseRepository_Filters(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewExerciseRepository(db)
	ctx := context.Background()

	createExercise(t, db, "Zancada", "Legs")
	createExercise(t, db, "Peso muerto", "legs")
	run := &models.Exercise{Name: "Carrera", MuscleGroup: "full", Type: models.ExerciseCardio}
	require.NoError(t, repo.Create(ctx, run))

	legs, err := repo.ListByMuscleGroup(ctx, "LEGS", 10, 0)
	require.NoError(t, err)
	require.Len(t, legs, 2)
	assert.Equal(t, "Peso muerto", legs[0].Name, "ordered by name")

	cardio, err := repo.ListByType(ctx, models.ExerciseCardio, 10, 0)
	require.NoError(t, err)
	require.Len(t, cardio, 1)
	assert.Equal(t, run.ID, cardio[0].ID)
}

func TestExerciseRepository_DefaultType(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewExerciseRepository(db)
	ctx := context.Background()

	e := &models.Exercise{Name: "Remo"}
	require.NoError(t, repo.Create(ctx, e))
	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExerciseStrength, got.Type)
}

func TestExerciseRepository_DeleteRemovesRoutineLinks(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	ex := createExercise(t, db, "Burpee", "full")
	keep := createExercise(t, db, "Plancha", "core")
	routine := createRoutine(t, db, 1, "HIIT")
	links := NewRoutineExerciseRepository(db)
	require.NoError(t, links.Add(ctx, &models.RoutineExercise{RoutineID: routine.ID, ExerciseID: ex.ID, Order: 1}))
	require.NoError(t, links.Add(ctx, &models.RoutineExercise{RoutineID: routine.ID, ExerciseID: keep.ID, Order: 2}))

	require.NoError(t, NewExerciseRepository(db).Delete(ctx, ex.ID))

	listed, err := links.ListByRoutine(ctx, routine.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, keep.ID, listed[0].ExerciseID)
}

func TestExperienceRepository_CRUD(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewExperienceRepository(db)
	ctx := context.Background()

	exp := &models.Experience{Name: "Maratón", Description: "Finished a full marathon"}
	require.NoError(t, repo.Create(ctx, exp))
	require.NoError(t, repo.Create(ctx, &models.Experience{Name: "Aerobic", Description: "Group classes"}))

	all, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Aerobic", all[0].Name)

	found, err := repo.Search(ctx, "MARATHON", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, repo.Update(ctx, exp.ID, models.ExperiencePatch{Description: strPtr("Two marathons")}))
	got, err := repo.GetByID(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maratón", got.Name)
	assert.Equal(t, "Two marathons", got.Description)

	require.NoError(t, repo.Delete(ctx, exp.ID))
	assert.True(t, models.IsCode(repo.Delete(ctx, exp.ID), models.CodeNotFound))
}
