package service

import (
	"alcyxob/training-planner/internal/domain"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// ExerciseSeed is one library entry in the seed file.
type ExerciseSeed struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"` // derived from Name when empty
	Description string `yaml:"description"`
}

type exerciseSeedFile struct {
	Exercises []ExerciseSeed `yaml:"exercises"`
}

// LoadExerciseSeeds reads a YAML seed file of the form
//
//	exercises:
//	  - name: Back Squat
//	    description: ...
func LoadExerciseSeeds(path string) ([]ExerciseSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var file exerciseSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return file.Exercises, nil
}

func (s ExerciseSeed) slug() string {
	if s.Slug != "" {
		return s.Slug
	}
	return Slugify(s.Name)
}

func (s ExerciseSeed) validate(field string) []domain.FieldError {
	var errs []domain.FieldError
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, domain.FieldError{Field: field + ".name", Message: "is required"})
	} else if s.slug() == "" {
		errs = append(errs, domain.FieldError{Field: field + ".slug", Message: "cannot be derived from name"})
	}
	return errs
}

// Slugify lowercases name and joins its letter and digit runs with hyphens.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
