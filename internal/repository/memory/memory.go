// Package memory provides in-process repository implementations. They back the
// "memory" database driver for local development and the service and API tests.
package memory

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository"
	"alcyxob/training-planner/internal/schema"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// now is replaceable so tests can order rows deterministically.
var now = func() time.Time { return time.Now().UTC() }

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return append([]T{}, items[offset:end]...)
}

// --- users ---

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: map[string]domain.User{}, byEmail: map[string]string{}}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return "", repository.ErrConflict
	}
	user.ID = uuid.NewString()
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return user.ID, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

// --- exercises ---

type ExerciseRepository struct {
	mu   sync.RWMutex
	rows map[string]domain.Exercise
}

func NewExerciseRepository() *ExerciseRepository {
	return &ExerciseRepository{rows: map[string]domain.Exercise{}}
}

func (r *ExerciseRepository) Create(_ context.Context, in domain.ExerciseInsert) (*domain.Exercise, error) {
	ts := now()
	ex := domain.Exercise{ID: uuid.NewString(), Name: in.Name, Slug: in.Slug, Description: in.Description, CreatedAt: ts, UpdatedAt: ts}
	if err := schema.Exercises.ValidateInsert(in, map[string]any{"id": ex.ID, "created_at": ts, "updated_at": ts}); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Slug == ex.Slug {
			return nil, repository.ErrConflict
		}
	}
	r.rows[ex.ID] = ex
	return &ex, nil
}

func (r *ExerciseRepository) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ex, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ex, nil
}

func (r *ExerciseRepository) GetBySlug(_ context.Context, slug string) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ex := range r.rows {
		if ex.Slug == slug {
			return &ex, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ExerciseRepository) GetByIDs(_ context.Context, ids []string) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Exercise{}
	for _, id := range ids {
		if ex, ok := r.rows[id]; ok {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (r *ExerciseRepository) sorted() []domain.Exercise {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Exercise, 0, len(r.rows))
	for _, ex := range r.rows {
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *ExerciseRepository) ListAll(_ context.Context) ([]domain.Exercise, error) {
	return r.sorted(), nil
}

func (r *ExerciseRepository) List(_ context.Context, limit, offset int) (repository.Page[domain.Exercise], error) {
	all := r.sorted()
	return repository.Page[domain.Exercise]{Items: paginate(all, limit, offset), Total: int64(len(all))}, nil
}

func (r *ExerciseRepository) Update(_ context.Context, id string, upd domain.ExerciseUpdate) (*domain.Exercise, error) {
	cols, err := schema.Exercises.ValidateUpdate(upd)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	ex, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if len(cols) == 0 {
		return &ex, nil
	}
	if upd.Slug.HasValue() {
		for otherID, other := range r.rows {
			if otherID != id && other.Slug == upd.Slug.Value {
				return nil, repository.ErrConflict
			}
		}
		ex.Slug = upd.Slug.Value
	}
	if upd.Name.HasValue() {
		ex.Name = upd.Name.Value
	}
	if upd.Description.HasValue() {
		ex.Description = upd.Description.Value
	}
	ex.UpdatedAt = now()
	r.rows[id] = ex
	return &ex, nil
}

// --- profiles ---

type ProfileRepository struct {
	mu   sync.RWMutex
	rows []domain.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{}
}

// live returns the index of the owner's live profile or -1. Callers hold the lock.
func (r *ProfileRepository) live(ownerID string) int {
	for i := range r.rows {
		if r.rows[i].OwnerID == ownerID && r.rows[i].DeletedAt == nil {
			return i
		}
	}
	return -1
}

func (r *ProfileRepository) Create(_ context.Context, in domain.ProfileInsert) (*domain.Profile, error) {
	ts := now()
	p := domain.Profile{
		ID:                 uuid.NewString(),
		OwnerID:            in.OwnerID,
		Age:                in.Age,
		HeightCM:           in.HeightCM,
		WeightKG:           in.WeightKG,
		Sex:                in.Sex,
		ExperienceLevel:    in.ExperienceLevel,
		PrimaryGoal:        in.PrimaryGoal,
		SessionLength:      in.SessionLength,
		AvailableEquipment: in.AvailableEquipment,
		Limitations:        in.Limitations,
		GenerationParams:   in.GenerationParams,
		CreatedAt:          ts,
		UpdatedAt:          ts,
	}
	if err := schema.Profiles.ValidateInsert(in, map[string]any{"id": p.ID, "created_at": ts, "updated_at": ts}); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live(in.OwnerID) >= 0 {
		return nil, repository.ErrConflict
	}
	r.rows = append(r.rows, p)
	return &p, nil
}

func (r *ProfileRepository) GetByOwnerID(_ context.Context, ownerID string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.live(ownerID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	p := r.rows[i]
	return &p, nil
}

func (r *ProfileRepository) Update(_ context.Context, ownerID string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	cols, err := schema.Profiles.ValidateUpdate(upd)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.live(ownerID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	if len(cols) > 0 {
		upd.Apply(&r.rows[i])
		r.rows[i].UpdatedAt = now()
	}
	p := r.rows[i]
	return &p, nil
}

func (r *ProfileRepository) SoftDelete(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.live(ownerID)
	if i < 0 {
		return repository.ErrNotFound
	}
	ts := now()
	r.rows[i].DeletedAt = &ts
	r.rows[i].UpdatedAt = ts
	return nil
}

// --- plans ---

type PlanRepository struct {
	mu   sync.RWMutex
	rows map[string]domain.Plan
}

func NewPlanRepository() *PlanRepository {
	return &PlanRepository{rows: map[string]domain.Plan{}}
}

func (r *PlanRepository) Create(_ context.Context, in domain.PlanInsert, maxActive int) (*domain.Plan, error) {
	ts := now()
	p := domain.Plan{ID: uuid.NewString(), OwnerID: in.OwnerID, Title: in.Title, TrainingDays: in.TrainingDays, CreatedAt: ts, UpdatedAt: ts}
	if err := schema.Plans.ValidateInsert(in, map[string]any{"id": p.ID, "created_at": ts, "updated_at": ts}); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.live(in.OwnerID)) >= maxActive {
		return nil, repository.ErrLimitReached
	}
	r.rows[p.ID] = p
	return &p, nil
}

// get returns the owner's live plan. Callers hold the lock.
func (r *PlanRepository) get(ownerID, id string) (domain.Plan, bool) {
	p, ok := r.rows[id]
	if !ok || p.OwnerID != ownerID || p.DeletedAt != nil {
		return domain.Plan{}, false
	}
	return p, true
}

func (r *PlanRepository) GetByID(_ context.Context, ownerID, id string) (*domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.get(ownerID, id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *PlanRepository) live(ownerID string) []domain.Plan {
	var out []domain.Plan
	for _, p := range r.rows {
		if p.OwnerID == ownerID && p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	return out
}

func (r *PlanRepository) List(_ context.Context, ownerID string, opts domain.PlanListOptions) (repository.Page[domain.Plan], error) {
	r.mu.RLock()
	plans := r.live(ownerID)
	r.mu.RUnlock()

	key := func(p domain.Plan) time.Time { return p.CreatedAt }
	if opts.Sort == domain.PlanSortUpdatedAt {
		key = func(p domain.Plan) time.Time { return p.UpdatedAt }
	}
	sort.Slice(plans, func(i, j int) bool {
		ki, kj := key(plans[i]), key(plans[j])
		if !ki.Equal(kj) {
			return ki.After(kj)
		}
		return strings.Compare(plans[i].ID, plans[j].ID) < 0
	})
	return repository.Page[domain.Plan]{Items: paginate(plans, opts.Limit, opts.Offset), Total: int64(len(plans))}, nil
}

func (r *PlanRepository) Update(_ context.Context, ownerID, id string, upd domain.PlanUpdate) (*domain.Plan, error) {
	cols, err := schema.Plans.ValidateUpdate(upd)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.get(ownerID, id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	if len(cols) == 0 {
		return &p, nil
	}
	if upd.Title.Set {
		p.Title = upd.Title.Ptr()
	}
	if upd.TrainingDays.HasValue() {
		p.TrainingDays = upd.TrainingDays.Value
	}
	p.UpdatedAt = now()
	r.rows[id] = p
	return &p, nil
}

func (r *PlanRepository) SoftDelete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.get(ownerID, id)
	if !ok {
		return repository.ErrNotFound
	}
	ts := now()
	p.DeletedAt = &ts
	p.UpdatedAt = ts
	r.rows[id] = p
	return nil
}

// --- plan generations ---

type PlanGenerationRepository struct {
	mu   sync.Mutex
	rows []domain.PlanGeneration
}

func NewPlanGenerationRepository() *PlanGenerationRepository {
	return &PlanGenerationRepository{}
}

func (r *PlanGenerationRepository) pending(ownerID string) int {
	for i := range r.rows {
		if r.rows[i].OwnerID == ownerID && r.rows[i].Status == domain.GenerationPending {
			return i
		}
	}
	return -1
}

func (r *PlanGenerationRepository) ReplacePending(_ context.Context, gen *domain.PlanGeneration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.pending(gen.OwnerID); i >= 0 {
		r.rows = append(r.rows[:i], r.rows[i+1:]...)
	}
	ts := now()
	gen.Status = domain.GenerationPending
	gen.CreatedAt = ts
	gen.UpdatedAt = ts
	r.rows = append(r.rows, *gen)
	return nil
}

func (r *PlanGenerationRepository) GetPending(_ context.Context, ownerID string) (*domain.PlanGeneration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.pending(ownerID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	gen := r.rows[i]
	return &gen, nil
}

func (r *PlanGenerationRepository) Resolve(_ context.Context, ownerID string, status domain.GenerationStatus, reason *string) (*domain.PlanGeneration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.pending(ownerID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	r.rows[i].Status = status
	r.rows[i].RejectReason = reason
	r.rows[i].UpdatedAt = now()
	gen := r.rows[i]
	return &gen, nil
}

var (
	_ repository.UserRepository           = (*UserRepository)(nil)
	_ repository.ExerciseRepository       = (*ExerciseRepository)(nil)
	_ repository.ProfileRepository        = (*ProfileRepository)(nil)
	_ repository.PlanRepository           = (*PlanRepository)(nil)
	_ repository.PlanGenerationRepository = (*PlanGenerationRepository)(nil)
)
