// internal/domain/training_plan.go
package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Limits applied to every training plan, whether generated or submitted by a user.
const (
	MaxTrainingDays = 100
	MaxLabelLength  = 150
	MaxNotesLength  = 500
	MaxPlansPerUser = 10
	TempoLength     = 4
)

// Tempo encodes the cadence of a repetition in four phases
// (eccentric, bottom pause, concentric, top pause). Each phase is a
// digit 1-9 (seconds) or X (explosive / no specific count), e.g. "3X12".
type Tempo string

// Valid reports whether t matches the tempo pattern.
func (t Tempo) Valid() bool {
	if len(t) != TempoLength {
		return false
	}
	for i := 0; i < len(t); i++ {
		c := t[i]
		if c != 'X' && (c < '1' || c > '9') {
			return false
		}
	}
	return true
}

// The binding tags mirror ValidateTrainingDays so malformed payloads are
// rejected while decoding; ValidateTrainingDays remains the authoritative check.

// TrainingExercise is a single prescribed exercise within a slot.
type TrainingExercise struct {
	ExerciseID    string `bson:"exerciseId" json:"exerciseId" binding:"required"`
	Sets          int    `bson:"sets" json:"sets" binding:"min=1"`
	Repetitions   int    `bson:"repetitions" json:"repetitions" binding:"min=1"`
	RestSeconds   int    `bson:"restSeconds" json:"restSeconds" binding:"gte=0"`
	Tempo         Tempo  `bson:"tempo" json:"tempo" binding:"tempo"`
	ExerciseNotes string `bson:"exerciseNotes" json:"exerciseNotes" binding:"max=500"`
}

// TrainingSlot groups exercises performed together (a superset, a main lift block, ...).
type TrainingSlot struct {
	SlotNotes string             `bson:"slotNotes" json:"slotNotes" binding:"max=500"`
	Exercises []TrainingExercise `bson:"exercises" json:"exercises" binding:"min=1,dive"`
}

// TrainingDay is one session of a plan.
type TrainingDay struct {
	Label string         `bson:"label" json:"label" binding:"required,max=150"`
	Notes string         `bson:"notes" json:"notes" binding:"max=500"`
	Slots []TrainingSlot `bson:"slots" json:"slots" binding:"dive"`
}

// TrainingPlan is the complete plan document, as produced by plan generation
// and stored in plan_management.plans.training_days.
type TrainingPlan struct {
	TrainingDays []TrainingDay `bson:"trainingDays" json:"trainingDays"`
}

// ExerciseIDs returns the distinct exercise ids referenced by days, in order of first use.
func ExerciseIDs(days []TrainingDay) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, day := range days {
		for _, slot := range day.Slots {
			for _, ex := range slot.Exercises {
				if _, ok := seen[ex.ExerciseID]; ok {
					continue
				}
				seen[ex.ExerciseID] = struct{}{}
				ids = append(ids, ex.ExerciseID)
			}
		}
	}
	return ids
}

// ValidateTrainingDays checks days against the plan limits. field is the
// path prefix used in the returned details (e.g. "training_days").
func ValidateTrainingDays(field string, days []TrainingDay) []FieldError {
	var errs []FieldError
	if len(days) == 0 {
		errs = append(errs, FieldError{Field: field, Message: "must contain at least one training day"})
	}
	if len(days) > MaxTrainingDays {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("must contain at most %d training days", MaxTrainingDays)})
	}
	for i, day := range days {
		dayField := fmt.Sprintf("%s[%d]", field, i)
		label := strings.TrimSpace(day.Label)
		if label == "" {
			errs = append(errs, FieldError{Field: dayField + ".label", Message: "is required"})
		} else if utf8.RuneCountInString(day.Label) > MaxLabelLength {
			errs = append(errs, FieldError{Field: dayField + ".label", Message: fmt.Sprintf("must be at most %d characters", MaxLabelLength)})
		}
		errs = appendNotesError(errs, dayField+".notes", day.Notes)
		for j, slot := range day.Slots {
			slotField := fmt.Sprintf("%s.slots[%d]", dayField, j)
			errs = appendNotesError(errs, slotField+".slotNotes", slot.SlotNotes)
			if len(slot.Exercises) == 0 {
				errs = append(errs, FieldError{Field: slotField + ".exercises", Message: "must contain at least one exercise"})
			}
			for k, ex := range slot.Exercises {
				errs = append(errs, validateTrainingExercise(fmt.Sprintf("%s.exercises[%d]", slotField, k), ex)...)
			}
		}
	}
	return errs
}

func validateTrainingExercise(field string, ex TrainingExercise) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(ex.ExerciseID) == "" {
		errs = append(errs, FieldError{Field: field + ".exerciseId", Message: "is required"})
	}
	if ex.Sets < 1 {
		errs = append(errs, FieldError{Field: field + ".sets", Message: "must be at least 1"})
	}
	if ex.Repetitions < 1 {
		errs = append(errs, FieldError{Field: field + ".repetitions", Message: "must be at least 1"})
	}
	if ex.RestSeconds < 0 {
		errs = append(errs, FieldError{Field: field + ".restSeconds", Message: "must not be negative"})
	}
	if !ex.Tempo.Valid() {
		errs = append(errs, FieldError{Field: field + ".tempo", Message: "must be 4 characters, each 1-9 or X"})
	}
	return appendNotesError(errs, field+".exerciseNotes", ex.ExerciseNotes)
}

func appendNotesError(errs []FieldError, field, notes string) []FieldError {
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return append(errs, FieldError{Field: field, Message: fmt.Sprintf("must be at most %d characters", MaxNotesLength)})
	}
	return errs
}
