// internal/domain/exercise.go
package domain

import (
	"time"
)

// Exercise represents a single exercise definition in the shared library
// (exercise_library.exercises).
type Exercise struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Slug        string    `bson:"slug" json:"slug"` // URL-safe, unique across the library
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// ExerciseInsert is the shape accepted when adding an exercise to the library.
// ID and timestamps are assigned by the repository.
type ExerciseInsert struct {
	Name        string
	Slug        string
	Description string
}

// Columns returns the insert payload keyed by column name.
func (in ExerciseInsert) Columns() map[string]any {
	return map[string]any{
		"name":        in.Name,
		"slug":        in.Slug,
		"description": in.Description,
	}
}

// ExerciseUpdate is a partial update of an exercise. Unset fields are left untouched.
type ExerciseUpdate struct {
	Name        Optional[string]
	Slug        Optional[string]
	Description Optional[string]
}

// Columns returns only the columns that were set.
func (u ExerciseUpdate) Columns() map[string]any {
	cols := map[string]any{}
	u.Name.put(cols, "name")
	u.Slug.put(cols, "slug")
	u.Description.put(cols, "description")
	return cols
}
