package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository/memory"
	"alcyxob/training-planner/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planFixture struct {
	svc       PlanService
	plans     *memory.PlanRepository
	storage   *fakeStorage
	exercise  domain.Exercise
	exercises *memory.ExerciseRepository
}

func newPlanFixture(t *testing.T, maxPerUser int) planFixture {
	f := planFixture{
		plans:     memory.NewPlanRepository(),
		exercises: memory.NewExerciseRepository(),
		storage:   newFakeStorage(),
	}
	f.exercise = seedLibrary(t, f.exercises, 1)[0]
	f.svc = NewPlanService(f.plans, f.exercises, f.storage, maxPerUser, testPagination, nopLogger())
	return f
}

func TestCreateAndGetPlan(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t, 10)
	owner := newOwnerID()

	plan, err := f.svc.CreatePlan(ctx, domain.PlanInsert{OwnerID: owner, Title: ptr("Push day"), TrainingDays: validDays(f.exercise.ID)})
	require.NoError(t, err)
	assert.Equal(t, "Push day", *plan.Title)

	got, err := f.svc.GetPlan(ctx, owner, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.TrainingDays, got.TrainingDays)

	// Other users cannot see it
	_, err = f.svc.GetPlan(ctx, newOwnerID(), plan.ID)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestCreatePlanRejectsUnknownExercise(t *testing.T) {
	f := newPlanFixture(t, 10)
	days := validDays(f.exercise.ID)
	days[0].Slots[0].Exercises = append(days[0].Slots[0].Exercises, domain.TrainingExercise{
		ExerciseID: "missing", Sets: 1, Repetitions: 1, Tempo: "2121",
	})

	_, err := f.svc.CreatePlan(context.Background(), domain.PlanInsert{OwnerID: newOwnerID(), TrainingDays: days})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Details, 1)
	assert.Equal(t, "training_days[0].slots[0].exercises[1].exerciseId", vErr.Details[0].Field)
}

func TestCreatePlanValidatesStructure(t *testing.T) {
	f := newPlanFixture(t, 10)
	days := validDays(f.exercise.ID)
	days[0].Slots[0].Exercises[0].Tempo = "30X1"

	_, err := f.svc.CreatePlan(context.Background(), domain.PlanInsert{OwnerID: newOwnerID(), TrainingDays: days})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "training_days[0].slots[0].exercises[0].tempo", vErr.Details[0].Field)

	_, err = f.svc.CreatePlan(context.Background(), domain.PlanInsert{OwnerID: newOwnerID()})
	assert.ErrorAs(t, err, &vErr)
}

func TestCreatePlanLimit(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t, 2)
	owner := newOwnerID()

	first, err := f.svc.CreatePlan(ctx, domain.PlanInsert{OwnerID: owner, TrainingDays: validDays(f.exercise.ID)})
	require.NoError(t, err)
	_, err = f.svc.CreatePlan(ctx, domain.PlanInsert{OwnerID: owner, TrainingDays: validDays(f.exercise.ID)})
	require.NoError(t, err)
	_, err = f.svc.CreatePlan(ctx, domain.PlanInsert{OwnerID: owner, TrainingDays: validDays(f.exercise.ID)})
	assert.ErrorIs(t, err, ErrPlanLimitReached)

	// Deleted plans no longer count
	require.NoError(t, f.svc.DeletePlan(ctx, owner, first.ID))
	_, err = f.svc.CreatePlan(ctx, domain.PlanInsert{OwnerID: owner, TrainingDays: validDays(f.exercise.ID)})
	assert.NoError(t, err)
}

// slowPlanRepository adds latency in front of every create, like a remote database.
type slowPlanRepository struct {
	*memory.PlanRepository
}

func (r slowPlanRepository) Create(ctx context.Context, in domain.PlanInsert, maxActive int) (*domain.Plan, error) {
	time.Sleep(2 * time.Millisecond)
	return r.PlanRepository.Create(ctx, in, maxActive)
}

func TestCreatePlanLimitUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t, 10)
	svc := NewPlanService(slowPlanRepository{f.plans}, f.exercises, f.storage, 10, testPagination, nopLogger())
	owner := newOwnerID()

	var wg sync.WaitGroup
	var created, limited atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreatePlan(ctx, domain.PlanInsert{OwnerID: owner, TrainingDays: validDays(f.exercise.ID)})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, ErrPlanLimitReached):
				limited.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), created.Load())
	assert.Equal(t, int32(40), limited.Load())
	page, err := svc.ListPlans(ctx, owner, domain.PlanListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(10), page.Total)
}

func TestListPlans(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t, 10)
	owner := newOwnerID()
	for i := 0; i < 3; i++ {
		_, err := f.svc.CreatePlan(ctx, domain.PlanInsert{OwnerID: owner, TrainingDays: validDays(f.exercise.ID)})
		require.NoError(t, err)
	}
	_, err := f.svc.CreatePlan(ctx, domain.PlanInsert{OwnerID: newOwnerID(), TrainingDays: validDays(f.exercise.ID)})
	require.NoError(t, err)

	page, err := f.svc.ListPlans(ctx, owner, domain.PlanListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 0, page.Offset)

	page, err = f.svc.ListPlans(ctx, owner, domain.PlanListOptions{Sort: domain.PlanSortUpdatedAt, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 1)

	_, err = f.svc.ListPlans(ctx, owner, domain.PlanListOptions{Sort: "title", Limit: 101})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Details, 2)
}

func TestUpdatePlan(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t, 10)
	owner := newOwnerID()
	plan, err := f.svc.CreatePlan(ctx, domain.PlanInsert{OwnerID: owner, Title: ptr("Old"), TrainingDays: validDays(f.exercise.ID)})
	require.NoError(t, err)

	days := validDays(f.exercise.ID)
	days[0].Label = "Upper body"
	updated, err := f.svc.UpdatePlan(ctx, owner, plan.ID, domain.PlanUpdate{
		Title:        domain.Null[string](),
		TrainingDays: domain.Some(days),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Title)
	assert.Equal(t, "Upper body", updated.TrainingDays[0].Label)

	_, err = f.svc.UpdatePlan(ctx, owner, plan.ID, domain.PlanUpdate{TrainingDays: domain.Null[[]domain.TrainingDay]()})
	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = f.svc.UpdatePlan(ctx, newOwnerID(), plan.ID, domain.PlanUpdate{Title: domain.Some("Mine")})
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestDeletePlan(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t, 10)
	owner := newOwnerID()
	plan, err := f.svc.CreatePlan(ctx, domain.PlanInsert{OwnerID: owner, TrainingDays: validDays(f.exercise.ID)})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeletePlan(ctx, newOwnerID(), plan.ID), ErrPlanNotFound)
	require.NoError(t, f.svc.DeletePlan(ctx, owner, plan.ID))
	assert.Equal(t, []string{ExportKey(owner, plan.ID)}, f.storage.deleted)

	_, err = f.svc.GetPlan(ctx, owner, plan.ID)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.ErrorIs(t, f.svc.DeletePlan(ctx, owner, plan.ID), ErrPlanNotFound)
}

func TestExportPlan(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t, 10)
	owner := newOwnerID()
	plan, err := f.svc.CreatePlan(ctx, domain.PlanInsert{OwnerID: owner, Title: ptr("Legs"), TrainingDays: validDays(f.exercise.ID)})
	require.NoError(t, err)

	export, err := f.svc.ExportPlan(ctx, owner, plan.ID)
	require.NoError(t, err)
	key := ExportKey(owner, plan.ID)
	assert.Equal(t, "https://storage.test/"+key+"?signed", export.URL)
	assert.WithinDuration(t, time.Now().Add(storage.DefaultPresignedURLExpiry), export.ExpiresAt, time.Minute)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(f.storage.objects[key], &doc))
	assert.Equal(t, plan.ID, doc["id"])
	assert.Equal(t, "Legs", doc["title"])
	assert.NotContains(t, doc, "owner_id")

	_, err = f.svc.ExportPlan(ctx, newOwnerID(), plan.ID)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestExportPlanStorageDisabled(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t, 10)
	svc := NewPlanService(f.plans, f.exercises, storage.NewDisabledStorage(), 10, testPagination, nopLogger())
	owner := newOwnerID()
	plan, err := svc.CreatePlan(ctx, domain.PlanInsert{OwnerID: owner, TrainingDays: validDays(f.exercise.ID)})
	require.NoError(t, err)

	_, err = svc.ExportPlan(ctx, owner, plan.ID)
	assert.ErrorIs(t, err, ErrExportUnavailable)
	// Deleting still works without storage
	assert.NoError(t, svc.DeletePlan(ctx, owner, plan.ID))
}
