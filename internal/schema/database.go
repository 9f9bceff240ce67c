package schema

import (
	"alcyxob/training-planner/internal/domain"
)

// Schema and table names as stored.
const (
	ExerciseLibrary = "exercise_library"
	PlanManagement  = "plan_management"
	ProfileSchema   = "profile"

	ExercisesTable = "exercises"
	PlansTable     = "plans"
	ProfilesTable  = "profiles"
)

func id() Column        { return Column{Name: "id", Kind: KindUUID, HasDefault: true} }
func createdAt() Column { return Column{Name: "created_at", Kind: KindTimestamp, HasDefault: true} }
func updatedAt() Column { return Column{Name: "updated_at", Kind: KindTimestamp, HasDefault: true} }
func deletedAt() Column { return Column{Name: "deleted_at", Kind: KindTimestamp, Nullable: true} }

func emptySchema(tables map[string]Table) Schema {
	if tables == nil {
		tables = map[string]Table{}
	}
	return Schema{
		Tables:         tables,
		Views:          map[string]Table{},
		Enums:          map[string][]string{},
		CompositeTypes: map[string][]Column{},
	}
}

// Default is the database the service runs against.
var Default = Database{
	ExerciseLibrary: emptySchema(map[string]Table{
		ExercisesTable: {
			Schema: ExerciseLibrary,
			Name:   ExercisesTable,
			Columns: []Column{
				id(),
				{Name: "name", Kind: KindText},
				{Name: "slug", Kind: KindText},
				{Name: "description", Kind: KindText},
				createdAt(),
				updatedAt(),
			},
		},
	}),
	PlanManagement: emptySchema(map[string]Table{
		PlansTable: {
			Schema: PlanManagement,
			Name:   PlansTable,
			Columns: []Column{
				id(),
				{Name: "owner_id", Kind: KindUUID},
				{Name: "title", Kind: KindText, Nullable: true},
				{Name: "training_days", Kind: KindJSON},
				createdAt(),
				updatedAt(),
				deletedAt(),
			},
		},
	}),
	ProfileSchema: emptySchema(map[string]Table{
		ProfilesTable: {
			Schema: ProfileSchema,
			Name:   ProfilesTable,
			Columns: []Column{
				id(),
				{Name: "owner_id", Kind: KindUUID},
				{Name: "age", Kind: KindInteger, Nullable: true},
				{Name: "height_cm", Kind: KindNumber, Nullable: true},
				{Name: "weight_kg", Kind: KindNumber, Nullable: true},
				{Name: "sex", Kind: KindText, Nullable: true},
				{Name: "experience_level", Kind: KindText, Nullable: true},
				{Name: "primary_goal", Kind: KindText, Nullable: true},
				{Name: "session_length", Kind: KindText, Nullable: true},
				{Name: "available_equipment", Kind: KindTextArray, Nullable: true},
				{Name: "limitations", Kind: KindText, Nullable: true},
				{Name: "generation_params", Kind: KindJSON, Nullable: true},
				createdAt(),
				updatedAt(),
				deletedAt(),
			},
		},
	}),
	DefaultSchema: emptySchema(nil),
}

// Tables returns the row shape of schema.table in the Default database.
func Tables(schemaName, table string) ([]Column, error) {
	return Default.Tables(schemaName, table)
}

// TablesInsert returns the insert shape of schema.table in the Default database.
func TablesInsert(schemaName, table string) ([]Field, error) {
	return Default.TablesInsert(schemaName, table)
}

// TablesUpdate returns the update shape of schema.table in the Default database.
func TablesUpdate(schemaName, table string) ([]Field, error) {
	return Default.TablesUpdate(schemaName, table)
}

// Enums returns the values of an enum in the Default database.
func Enums(schemaName, name string) ([]string, error) {
	return Default.Enums(schemaName, name)
}

// CompositeTypes returns a composite type of the Default database.
func CompositeTypes(schemaName, name string) ([]Column, error) {
	return Default.CompositeTypes(schemaName, name)
}

// Columner is implemented by insert and update shapes.
type Columner interface {
	Columns() map[string]any
}

// Ref ties a table to the Go types of its rows, inserts and updates, so code
// that names a table through a Ref cannot mix up shapes.
type Ref[Row any, Insert, Update Columner] struct {
	schema string
	table  string
}

var (
	Exercises = Ref[domain.Exercise, domain.ExerciseInsert, domain.ExerciseUpdate]{ExerciseLibrary, ExercisesTable}
	Plans     = Ref[domain.Plan, domain.PlanInsert, domain.PlanUpdate]{PlanManagement, PlansTable}
	Profiles  = Ref[domain.Profile, domain.ProfileInsert, domain.ProfileUpdate]{ProfileSchema, ProfilesTable}
)

// Table resolves the ref against the Default database.
// Refs are only declared for existing tables, so a failure is a programming error.
func (r Ref[Row, Insert, Update]) Table() Table {
	t, err := Default.table(r.schema, r.table)
	if err != nil {
		panic(err)
	}
	return t
}

// ValidateInsert checks in, merged with the server-assigned columns, against the insert shape.
func (r Ref[Row, Insert, Update]) ValidateInsert(in Insert, assigned map[string]any) error {
	cols := in.Columns()
	for k, v := range assigned {
		cols[k] = v
	}
	return r.Table().ValidateInsert(cols)
}

// ValidateUpdate checks upd against the update shape and returns the columns to set.
func (r Ref[Row, Insert, Update]) ValidateUpdate(upd Update) (map[string]any, error) {
	cols := upd.Columns()
	if err := r.Table().ValidateUpdate(cols); err != nil {
		return nil, err
	}
	return cols, nil
}
