package repository

import (
	"context"
	"testing"

	"fittlyfans/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutineRepository_DetailView(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	trainer := createUser(t, db, "Coach", "coach@example.com", models.RoleTrainer)
	routine := createRoutine(t, db, trainer.ID, "Legs day")
	links := NewRoutineExerciseRepository(db)
	for i, name := range []string{"Sentadilla", "Zancada"} {
		ex := createExercise(t, db, name, "legs")
		require.NoError(t, links.Add(ctx, &models.RoutineExercise{RoutineID: routine.ID, ExerciseID: ex.ID, Order: i + 1, Sets: 3}))
	}

	got, err := NewRoutineRepository(db).GetByID(ctx, routine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coach", got.TrainerName)
	assert.EqualValues(t, 2, got.TotalExercises)
	assert.Equal(t, models.DifficultyBeginner, got.Difficulty)
}

func TestRoutineRepository_DeleteRemovesLinks(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	routines := NewRoutineRepository(db)
	links := NewRoutineExerciseRepository(db)

	routine := createRoutine(t, db, 1, "Push")
	other := createRoutine(t, db, 1, "Pull")
	ex := createExercise(t, db, "Press banca", "chest")
	require.NoError(t, links.Add(ctx, &models.RoutineExercise{RoutineID: routine.ID, ExerciseID: ex.ID, Order: 1}))
	require.NoError(t, links.Add(ctx, &models.RoutineExercise{RoutineID: other.ID, ExerciseID: ex.ID, Order: 1}))

	require.NoError(t, routines.Delete(ctx, routine.ID))

	listed, err := links.ListByRoutine(ctx, routine.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	kept, err := links.ListByRoutine(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	_, err = routines.GetByID(ctx, routine.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.True(t, models.IsCode(routines.Delete(ctx, routine.ID), models.CodeNotFound))
}

func TestRoutineExerciseRepository_AddDuplicateIsConflict(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	links := NewRoutineExerciseRepository(db)
	routine := createRoutine(t, db, 1, "Core")
	ex := createExercise(t, db, "Plancha", "core")

	require.NoError(t, links.Add(ctx, &models.RoutineExercise{RoutineID: routine.ID, ExerciseID: ex.ID, Order: 1}))
	err := links.Add(ctx, &models.RoutineExercise{RoutineID: routine.ID, ExerciseID: ex.ID, Order: 2})
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)
}

func TestRoutineExerciseRepository_ListOrderAndReorder(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	links := NewRoutineExerciseRepository(db)
	routine := createRoutine(t, db, 1, "Full body")

	a := createExercise(t, db, "Sentadilla", "legs")
	b := createExercise(t, db, "Dominadas", "back")
	c := createExercise(t, db, "Flexiones", "chest")
	require.NoError(t, links.Add(ctx, &models.RoutineExercise{RoutineID: routine.ID, ExerciseID: a.ID, Order: 3}))
	require.NoError(t, links.Add(ctx, &models.RoutineExercise{RoutineID: routine.ID, ExerciseID: b.ID, Order: 1}))
	require.NoError(t, links.Add(ctx, &models.RoutineExercise{RoutineID: routine.ID, ExerciseID: c.ID, Order: 2}))

	listed, err := links.ListByRoutine(ctx, routine.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, []string{"Dominadas", "Flexiones", "Sentadilla"},
		[]string{listed[0].ExerciseName, listed[1].ExerciseName, listed[2].ExerciseName})
	assert.Equal(t, "back", listed[0].MuscleGroup)

	require.NoError(t, links.Reorder(ctx, routine.ID, []models.OrderItem{
		{ExerciseID: a.ID, Order: 1},
		{ExerciseID: b.ID, Order: 2},
		{ExerciseID: c.ID, Order: 3},
	}))
	listed, err = links.ListByRoutine(ctx, routine.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, listed[0].ExerciseID)

	err = links.Reorder(ctx, routine.ID, []models.OrderItem{
		{ExerciseID: c.ID, Order: 1},
		{ExerciseID: 9999, Order: 2},
	})
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	got, err := links.Get(ctx, routine.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Order, "failed reorder must roll back")
}

func TestRoutineExerciseRepository_UpdateAndRemove(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	links := NewRoutineExerciseRepository(db)
	routine := createRoutine(t, db, 1, "Arms")
	ex := createExercise(t, db, "Curl", "arms")
	require.NoError(t, links.Add(ctx, &models.RoutineExercise{RoutineID: routine.ID, ExerciseID: ex.ID, Order: 1, Sets: 3, Reps: 10}))

	require.NoError(t, links.Update(ctx, routine.ID, ex.ID, models.RoutineExercisePatch{Reps: intPtr(12)}))
	got, err := links.Get(ctx, routine.ID, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Reps)
	assert.Equal(t, 3, got.Sets)

	err = links.Update(ctx, routine.ID, ex.ID, models.RoutineExercisePatch{})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	require.NoError(t, links.Remove(ctx, routine.ID, ex.ID))
	assert.True(t, models.IsCode(links.Remove(ctx, routine.ID, ex.ID), models.CodeNotFound))
}

func TestRoutineRepository_ListAndSearch(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	repo := NewRoutineRepository(db)

	createRoutine(t, db, 7, "Morning cardio")
	createRoutine(t, db, 7, "Evening stretch")
	hard := &models.Routine{TrainerID: 8, Name: "Hell week", Difficulty: models.DifficultyAdvanced}
	require.NoError(t, repo.Create(ctx, hard))

	byTrainer, err := repo.ListByTrainer(ctx, 7, 10, 0)
	require.NoError(t, err)
	assert.Len(t, byTrainer, 2)

	advanced, err := repo.ListByDifficulty(ctx, models.DifficultyAdvanced, 10, 0)
	require.NoError(t, err)
	require.Len(t, advanced, 1)
	assert.Equal(t, "Hell week", advanced[0].Name)

	found, err := repo.Search(ctx, "CARDIO", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Morning cardio", found[0].Name)

	require.NoError(t, repo.Update(ctx, hard.ID, models.RoutinePatch{EstimatedDuration: intPtr(90)}))
	got, err := repo.GetByID(ctx, hard.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, got.EstimatedDuration)
	assert.Equal(t, "Hell week", got.Name)
}
