package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Problem is a single mismatch between a payload and a table shape.
type Problem struct {
	Column  string
	Message string
}

// ShapeError reports every problem found in a payload for one table.
type ShapeError struct {
	Table    string
	Problems []Problem
}

func (e *ShapeError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Column + ": " + p.Message
	}
	return fmt.Sprintf("invalid payload for %s: %s", e.Table, strings.Join(parts, "; "))
}

// ValidateInsert checks an insert payload keyed by column name.
func (t Table) ValidateInsert(cols map[string]any) error {
	return t.validate(cols, t.Insert())
}

// ValidateUpdate checks a partial update payload keyed by column name.
func (t Table) ValidateUpdate(cols map[string]any) error {
	return t.validate(cols, t.Update())
}

func (t Table) validate(cols map[string]any, fields []Field) error {
	var problems []Problem
	known := make(map[string]Field, len(fields))
	for _, f := range fields {
		known[f.Name] = f
		if _, ok := cols[f.Name]; !ok && !f.Optional {
			problems = append(problems, Problem{Column: f.Name, Message: "is required"})
		}
	}
	for name, value := range cols {
		f, ok := known[name]
		if !ok {
			problems = append(problems, Problem{Column: name, Message: "unknown column"})
			continue
		}
		if isNil(value) {
			if !f.Nullable {
				problems = append(problems, Problem{Column: name, Message: "cannot be null"})
			}
			continue
		}
		if !matchesKind(f.Kind, value) {
			problems = append(problems, Problem{Column: name, Message: fmt.Sprintf("expected %s, got %T", f.Kind, value)})
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Slice(problems, func(i, j int) bool { return problems[i].Column < problems[j].Column })
	return &ShapeError{Table: t.QualifiedName(), Problems: problems}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func matchesKind(kind Kind, v any) bool {
	rv := reflect.Indirect(reflect.ValueOf(v))
	switch kind {
	case KindUUID:
		if rv.Kind() != reflect.String {
			return false
		}
		_, err := uuid.Parse(rv.String())
		return err == nil
	case KindText:
		return rv.Kind() == reflect.String
	case KindInteger:
		return isInteger(rv.Kind())
	case KindNumber:
		return isInteger(rv.Kind()) || rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64
	case KindTimestamp:
		_, ok := rv.Interface().(time.Time)
		return ok
	case KindJSON:
		return true
	case KindTextArray:
		return rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.String
	}
	return false
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
