package domain

import (
	"time"
)

// GenerationStatus tracks the lifecycle of a generated draft.
type GenerationStatus string

const (
	GenerationPending  GenerationStatus = "pending"
	GenerationAccepted GenerationStatus = "accepted"
	GenerationRejected GenerationStatus = "rejected"
)

// GenerationParams are the effective inputs a draft was generated from:
// the owner's profile with any per-request overrides applied.
type GenerationParams struct {
	Frequency       int             `bson:"frequency" json:"frequency"` // days per week
	SessionLength   SessionLength   `bson:"session_length" json:"session_length"`
	PrimaryGoal     PrimaryGoal     `bson:"primary_goal" json:"primary_goal"`
	ExperienceLevel ExperienceLevel `bson:"experience_level" json:"experience_level"`
}

// PlanGeneration is a draft plan awaiting the owner's decision.
// At most one draft per owner is pending at a time.
type PlanGeneration struct {
	ID           string           `bson:"_id" json:"id"`
	OwnerID      string           `bson:"owner_id" json:"owner_id"`
	Status       GenerationStatus `bson:"status" json:"status"`
	Params       GenerationParams `bson:"params" json:"params"`
	TrainingDays []TrainingDay    `bson:"training_days" json:"training_days"`
	RejectReason *string          `bson:"reject_reason,omitempty" json:"reject_reason,omitempty"`
	CreatedAt    time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `bson:"updated_at" json:"updated_at"`
}
