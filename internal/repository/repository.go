package repository

import (
	"alcyxob/training-planner/internal/domain" // Import our defined domain models
	"context"                                  // Standard for request-scoped deadlines, cancellation signals, etc.
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("conflict")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrLimitReached = RepositoryError("limit reached")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Page is a slice of results plus the total number of matching rows.
type Page[T any] struct {
	Items []T
	Total int64
}

// UserRepository defines the interface for interacting with user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (string, error) // ErrConflict on duplicate email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// ExerciseRepository defines the interface for the shared exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, in domain.ExerciseInsert) (*domain.Exercise, error)
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Exercise, error)
	// GetByIDs returns the exercises that exist; missing ids are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Exercise, error)
	// ListAll returns the whole library ordered by name.
	ListAll(ctx context.Context) ([]domain.Exercise, error)
	List(ctx context.Context, limit, offset int) (Page[domain.Exercise], error)
	Update(ctx context.Context, id string, upd domain.ExerciseUpdate) (*domain.Exercise, error)
}

// ProfileRepository defines the interface for user profiles. Reads and
// updates only ever see profiles that are not soft-deleted.
type ProfileRepository interface {
	Create(ctx context.Context, in domain.ProfileInsert) (*domain.Profile, error) // ErrConflict if a live profile exists
	GetByOwnerID(ctx context.Context, ownerID string) (*domain.Profile, error)
	Update(ctx context.Context, ownerID string, upd domain.ProfileUpdate) (*domain.Profile, error)
	SoftDelete(ctx context.Context, ownerID string) error
}

// PlanRepository defines the interface for saved plans, scoped by owner.
type PlanRepository interface {
	// Create inserts the plan unless the owner already has maxActive live plans,
	// in which case it returns ErrLimitReached. The check and the insert are atomic.
	Create(ctx context.Context, in domain.PlanInsert, maxActive int) (*domain.Plan, error)
	GetByID(ctx context.Context, ownerID, id string) (*domain.Plan, error)
	List(ctx context.Context, ownerID string, opts domain.PlanListOptions) (Page[domain.Plan], error)
	Update(ctx context.Context, ownerID, id string, upd domain.PlanUpdate) (*domain.Plan, error)
	SoftDelete(ctx context.Context, ownerID, id string) error
}

// PlanGenerationRepository stores generated drafts.
type PlanGenerationRepository interface {
	// ReplacePending stores gen as the owner's pending draft, discarding any previous pending draft.
	ReplacePending(ctx context.Context, gen *domain.PlanGeneration) error
	GetPending(ctx context.Context, ownerID string) (*domain.PlanGeneration, error)
	// Resolve moves the owner's pending draft to status. ErrNotFound if nothing is pending.
	Resolve(ctx context.Context, ownerID string, status domain.GenerationStatus, reason *string) (*domain.PlanGeneration, error)
}
