// Package schema describes the persisted data model: which schemas exist, which
// tables they hold and the column shape of each table's rows, inserts and updates.
// Repositories check every write against it before touching the database.
package schema

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownSchema        = errors.New("unknown schema")
	ErrUnknownTable         = errors.New("unknown table")
	ErrUnknownEnum          = errors.New("unknown enum")
	ErrUnknownCompositeType = errors.New("unknown composite type")
)

// DefaultSchema is used when a lookup names no schema.
const DefaultSchema = "public"

// Kind is the storage type of a column.
type Kind int

const (
	KindUUID Kind = iota
	KindText
	KindInteger
	KindNumber
	KindTimestamp
	KindJSON
	KindTextArray
)

func (k Kind) String() string {
	switch k {
	case KindUUID:
		return "uuid"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindTimestamp:
		return "timestamp"
	case KindJSON:
		return "json"
	case KindTextArray:
		return "text[]"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Column is one column of a table row.
type Column struct {
	Name     string
	Kind     Kind
	Nullable bool
	// HasDefault marks columns the server fills in (ids, timestamps).
	HasDefault bool
}

// Field is a column as it appears in an insert or update shape.
type Field struct {
	Column
	Optional bool
}

// Table is a named set of columns within a schema.
type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

// Schema groups tables, views, enums and composite types.
type Schema struct {
	Tables         map[string]Table
	Views          map[string]Table
	Enums          map[string][]string
	CompositeTypes map[string][]Column
}

// Database is the full set of schemas.
type Database map[string]Schema

// QualifiedName returns "schema.table".
func (t Table) QualifiedName() string {
	return t.Schema + "." + t.Name
}

// Column looks up a column by name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Row returns the columns of a full row.
func (t Table) Row() []Column {
	out := make([]Column, len(t.Columns))
	copy(out, t.Columns)
	return out
}

// Insert returns the insert shape: a field may be omitted when the column is
// nullable or the server provides a default.
func (t Table) Insert() []Field {
	out := make([]Field, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = Field{Column: c, Optional: c.Nullable || c.HasDefault}
	}
	return out
}

// Update returns the update shape: every field may be omitted.
func (t Table) Update() []Field {
	out := make([]Field, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = Field{Column: c, Optional: true}
	}
	return out
}

func (db Database) schema(name string) (Schema, error) {
	if name == "" {
		name = DefaultSchema
	}
	s, ok := db[name]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
	return s, nil
}

// Lookup resolves a table or view by schema and name.
func (db Database) Lookup(schemaName, table string) (Table, error) {
	s, err := db.schema(schemaName)
	if err != nil {
		return Table{}, err
	}
	if t, ok := s.Tables[table]; ok {
		return t, nil
	}
	if v, ok := s.Views[table]; ok {
		return v, nil
	}
	if schemaName == "" {
		schemaName = DefaultSchema
	}
	return Table{}, fmt.Errorf("%w: %s.%s", ErrUnknownTable, schemaName, table)
}

// Tables returns the row shape of schema.table.
func (db Database) Tables(schemaName, table string) ([]Column, error) {
	t, err := db.Lookup(schemaName, table)
	if err != nil {
		return nil, err
	}
	return t.Row(), nil
}

// TablesInsert returns the insert shape of schema.table. Views cannot be inserted into.
func (db Database) TablesInsert(schemaName, table string) ([]Field, error) {
	t, err := db.table(schemaName, table)
	if err != nil {
		return nil, err
	}
	return t.Insert(), nil
}

// TablesUpdate returns the update shape of schema.table.
func (db Database) TablesUpdate(schemaName, table string) ([]Field, error) {
	t, err := db.table(schemaName, table)
	if err != nil {
		return nil, err
	}
	return t.Update(), nil
}

func (db Database) table(schemaName, table string) (Table, error) {
	s, err := db.schema(schemaName)
	if err != nil {
		return Table{}, err
	}
	t, ok := s.Tables[table]
	if !ok {
		if schemaName == "" {
			schemaName = DefaultSchema
		}
		return Table{}, fmt.Errorf("%w: %s.%s", ErrUnknownTable, schemaName, table)
	}
	return t, nil
}

// Enums returns the values of a named enum.
func (db Database) Enums(schemaName, name string) ([]string, error) {
	s, err := db.schema(schemaName)
	if err != nil {
		return nil, err
	}
	values, ok := s.Enums[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEnum, name)
	}
	return append([]string(nil), values...), nil
}

// CompositeTypes returns the attributes of a named composite type.
func (db Database) CompositeTypes(schemaName, name string) ([]Column, error) {
	s, err := db.schema(schemaName)
	if err != nil {
		return nil, err
	}
	cols, ok := s.CompositeTypes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompositeType, name)
	}
	return append([]Column(nil), cols...), nil
}

// SchemaNames returns the schema names in sorted order.
func (db Database) SchemaNames() []string {
	names := make([]string, 0, len(db))
	for name := range db {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
