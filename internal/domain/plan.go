// internal/domain/plan.go
package domain

import (
	"time"
)

// Plan is a saved training plan owned by a user (plan_management.plans).
type Plan struct {
	ID           string        `bson:"_id" json:"id"`
	OwnerID      string        `bson:"owner_id" json:"owner_id"`
	Title        *string       `bson:"title" json:"title"`
	TrainingDays []TrainingDay `bson:"training_days" json:"training_days"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time    `bson:"deleted_at" json:"deleted_at"` // soft-delete marker
}

// IsDeleted reports whether the plan was soft-deleted.
func (p *Plan) IsDeleted() bool {
	return p.DeletedAt != nil
}

// PlanInsert is the shape accepted when saving a new plan.
type PlanInsert struct {
	OwnerID      string
	Title        *string
	TrainingDays []TrainingDay
}

func (in PlanInsert) Columns() map[string]any {
	cols := map[string]any{
		"owner_id":      in.OwnerID,
		"training_days": in.TrainingDays,
	}
	if in.Title != nil {
		cols["title"] = *in.Title
	}
	return cols
}

// PlanUpdate is a partial update of a plan. A null Title clears it.
type PlanUpdate struct {
	Title        Optional[string]
	TrainingDays Optional[[]TrainingDay]
}

func (u PlanUpdate) Columns() map[string]any {
	cols := map[string]any{}
	u.Title.put(cols, "title")
	u.TrainingDays.put(cols, "training_days")
	return cols
}

// PlanSort is the ordering column for plan listings. Listings are always newest first.
type PlanSort string

const (
	PlanSortCreatedAt PlanSort = "created_at"
	PlanSortUpdatedAt PlanSort = "updated_at"
)

// Valid reports whether s is a supported sort column.
func (s PlanSort) Valid() bool {
	return s == PlanSortCreatedAt || s == PlanSortUpdatedAt
}

// PlanListOptions controls pagination of plan listings.
type PlanListOptions struct {
	Sort   PlanSort
	Limit  int
	Offset int
}
