package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository/memory"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExercise(t *testing.T) {
	repo := memory.NewExerciseRepository()
	seeded := seedLibrary(t, repo, 1)
	svc := NewExerciseService(repo, testPagination, nopLogger())

	ex, err := svc.GetExercise(context.Background(), seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "exercise-01", ex.Slug)

	_, err = svc.GetExercise(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestListExercises(t *testing.T) {
	repo := memory.NewExerciseRepository()
	seedLibrary(t, repo, 5)
	svc := NewExerciseService(repo, testPagination, nopLogger())

	page, err := svc.ListExercises(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Exercise 02", page.Items[0].Name)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 1, page.Offset)

	page, err = svc.ListExercises(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, page.Limit)
	assert.Len(t, page.Items, 5)

	_, err = svc.ListExercises(context.Background(), 500, -1)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Details, 2)
}

func TestSeedExercisesUpsertsBySlug(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewExerciseRepository()
	svc := NewExerciseService(repo, testPagination, nopLogger())

	result, err := svc.SeedExercises(ctx, []ExerciseSeed{
		{Name: "Back Squat", Description: "Barbell on the upper back"},
		{Name: "Bench Press", Slug: "bench"},
	})
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Created: 2}, result)

	squat, err := repo.GetBySlug(ctx, "back-squat")
	require.NoError(t, err)

	result, err = svc.SeedExercises(ctx, []ExerciseSeed{
		{Name: "Back Squat", Description: "High-bar back squat"},
		{Name: "Bench Press", Slug: "bench"},
		{Name: "Deadlift"},
	})
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Created: 1, Updated: 1, Unchanged: 1}, result)

	updated, err := repo.GetByID(ctx, squat.ID)
	require.NoError(t, err)
	assert.Equal(t, "High-bar back squat", updated.Description)
}

func TestSeedExercisesRejectsNamelessEntries(t *testing.T) {
	svc := NewExerciseService(memory.NewExerciseRepository(), testPagination, nopLogger())

	_, err := svc.SeedExercises(context.Background(), []ExerciseSeed{{Name: "  "}})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "exercises[0].name", vErr.Details[0].Field)
}

func TestLoadExerciseSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exercises.yaml")
	content := `
exercises:
  - name: Romanian Deadlift
    description: Hip hinge with soft knees
  - name: Pull-Up
    slug: pull-up
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	seeds, err := LoadExerciseSeeds(path)
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, "Romanian Deadlift", seeds[0].Name)
	assert.Equal(t, "romanian-deadlift", seeds[0].slug())
	assert.Equal(t, "pull-up", seeds[1].slug())

	_, err = LoadExerciseSeeds(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Back Squat":           "back-squat",
		"  Pull-Up  ":          "pull-up",
		"Dumbbell Row (1 arm)": "dumbbell-row-1-arm",
		"Farmer's   Walk":      "farmer-s-walk",
		"---":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
