package schema

import (
	"testing"
	"time"

	"alcyxob/training-planner/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func TestTablesResolvesRowShapes(t *testing.T) {
	tests := []struct {
		schema, table string
		want          []string
	}{
		{ExerciseLibrary, ExercisesTable, []string{"id", "name", "slug", "description", "created_at", "updated_at"}},
		{PlanManagement, PlansTable, []string{"id", "owner_id", "title", "training_days", "created_at", "updated_at", "deleted_at"}},
	}
	for _, tt := range tests {
		t.Run(tt.schema+"."+tt.table, func(t *testing.T) {
			cols, err := Tables(tt.schema, tt.table)
			require.NoError(t, err)
			assert.Equal(t, tt.want, columnNames(cols))
		})
	}

	cols, err := Tables(ProfileSchema, ProfilesTable)
	require.NoError(t, err)
	assert.Len(t, cols, 15)
}

func TestLookupRejectsUnknownPairs(t *testing.T) {
	_, err := Tables("nope", ExercisesTable)
	assert.ErrorIs(t, err, ErrUnknownSchema)

	_, err = Tables(ExerciseLibrary, PlansTable)
	assert.ErrorIs(t, err, ErrUnknownTable)

	// public is the default schema and holds no tables.
	_, err = Tables("", ExercisesTable)
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = TablesInsert(ProfileSchema, "profile")
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = Enums(ProfileSchema, "sex")
	assert.ErrorIs(t, err, ErrUnknownEnum)

	_, err = CompositeTypes("", "address")
	assert.ErrorIs(t, err, ErrUnknownCompositeType)
}

func TestInsertShapeMarksRequiredColumns(t *testing.T) {
	fields, err := TablesInsert(PlanManagement, PlansTable)
	require.NoError(t, err)

	var required []string
	for _, f := range fields {
		if !f.Optional {
			required = append(required, f.Name)
		}
	}
	assert.Equal(t, []string{"owner_id", "training_days"}, required)

	fields, err = TablesUpdate(PlanManagement, PlansTable)
	require.NoError(t, err)
	for _, f := range fields {
		assert.True(t, f.Optional, f.Name)
	}
}

func TestValidateInsert(t *testing.T) {
	plans := Plans.Table()
	owner := uuid.NewString()

	assert.NoError(t, plans.ValidateInsert(map[string]any{
		"owner_id":      owner,
		"training_days": []domain.TrainingDay{},
		"created_at":    time.Now(),
	}))

	err := plans.ValidateInsert(map[string]any{
		"owner_id": "not-a-uuid",
		"title":    42,
		"color":    "red",
	})
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "plan_management.plans", shapeErr.Table)
	assert.Equal(t, []Problem{
		{Column: "color", Message: "unknown column"},
		{Column: "owner_id", Message: "expected uuid, got string"},
		{Column: "title", Message: "expected text, got int"},
		{Column: "training_days", Message: "is required"},
	}, shapeErr.Problems)
}

func TestValidateUpdateNulls(t *testing.T) {
	profiles := Profiles.Table()

	assert.NoError(t, profiles.ValidateUpdate(map[string]any{
		"age":                 nil,
		"height_cm":           180,
		"weight_kg":           81.5,
		"available_equipment": []string{"barbell"},
		"generation_params":   map[string]any{"seed": 1},
	}))

	err := profiles.ValidateUpdate(map[string]any{"owner_id": nil, "age": 30.5})
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, []Problem{
		{Column: "age", Message: "expected integer, got float64"},
		{Column: "owner_id", Message: "cannot be null"},
	}, shapeErr.Problems)
}

func TestRefValidatesTypedShapes(t *testing.T) {
	title := "Push/Pull"
	in := domain.PlanInsert{OwnerID: uuid.NewString(), Title: &title, TrainingDays: []domain.TrainingDay{}}
	assert.NoError(t, Plans.ValidateInsert(in, map[string]any{"id": uuid.NewString()}))

	cols, err := Exercises.ValidateUpdate(domain.ExerciseUpdate{Name: domain.Some("Squat")})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Squat"}, cols)

	_, err = Exercises.ValidateUpdate(domain.ExerciseUpdate{Slug: domain.Null[string]()})
	assert.Error(t, err)
}

func TestSchemaNames(t *testing.T) {
	assert.Equal(t, []string{"exercise_library", "plan_management", "profile", "public"}, Default.SchemaNames())
}
