package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository/memory"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testPagination = Pagination{DefaultLimit: 20, MaxLimit: 100}

// fakeStorage records uploads and hands out predictable URLs.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) PutObject(_ context.Context, key, _ string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
	return nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/" + key + "?signed", nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

// seedLibrary creates n exercises named "Exercise 01".. in the repository.
func seedLibrary(t *testing.T, repo *memory.ExerciseRepository, n int) []domain.Exercise {
	t.Helper()
	out := make([]domain.Exercise, 0, n)
	for i := 1; i <= n; i++ {
		ex, err := repo.Create(context.Background(), domain.ExerciseInsert{
			Name: fmt.Sprintf("Exercise %02d", i),
			Slug: fmt.Sprintf("exercise-%02d", i),
		})
		require.NoError(t, err)
		out = append(out, *ex)
	}
	return out
}

func newOwnerID() string { return uuid.NewString() }

func nopLogger() *zap.Logger { return zap.NewNop() }

func ptr[T any](v T) *T { return &v }

// validDays builds a one-day plan using the given exercise.
func validDays(exerciseID string) []domain.TrainingDay {
	return []domain.TrainingDay{{
		Label: "Day 1",
		Slots: []domain.TrainingSlot{{
			Exercises: []domain.TrainingExercise{{
				ExerciseID:  exerciseID,
				Sets:        3,
				Repetitions: 10,
				RestSeconds: 60,
				Tempo:       "3X12",
			}},
		}},
	}}
}
