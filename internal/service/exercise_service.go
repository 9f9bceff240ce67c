package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
)

// SeedResult counts what a seeding run changed.
type SeedResult struct {
	Created   int
	Updated   int
	Unchanged int
}

// ExerciseService exposes the shared exercise library.
type ExerciseService interface {
	GetExercise(ctx context.Context, id string) (*domain.Exercise, error)
	ListExercises(ctx context.Context, limit, offset int) (PageResult[domain.Exercise], error)
	// SeedExercises upserts seeds by slug.
	SeedExercises(ctx context.Context, seeds []ExerciseSeed) (SeedResult, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	pagination   Pagination
	logger       *zap.Logger
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, pagination Pagination, logger *zap.Logger) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		pagination:   pagination,
		logger:       logger,
	}
}

// GetExercise retrieves a single exercise by id.
func (s *exerciseService) GetExercise(ctx context.Context, id string) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("getting exercise %s: %w", id, err)
	}
	return exercise, nil
}

// ListExercises returns one page of the library ordered by name.
func (s *exerciseService) ListExercises(ctx context.Context, limit, offset int) (PageResult[domain.Exercise], error) {
	limit, offset, err := s.pagination.window(limit, offset)
	if err != nil {
		return PageResult[domain.Exercise]{}, err
	}

	page, err := s.exerciseRepo.List(ctx, limit, offset)
	if err != nil {
		return PageResult[domain.Exercise]{}, fmt.Errorf("listing exercises: %w", err)
	}
	return PageResult[domain.Exercise]{Items: page.Items, Total: page.Total, Limit: limit, Offset: offset}, nil
}

func (s *exerciseService) SeedExercises(ctx context.Context, seeds []ExerciseSeed) (SeedResult, error) {
	var result SeedResult
	for i, seed := range seeds {
		if problems := seed.validate(fmt.Sprintf("exercises[%d]", i)); len(problems) > 0 {
			return result, domain.NewValidationError(problems)
		}
		slug := seed.slug()

		existing, err := s.exerciseRepo.GetBySlug(ctx, slug)
		if errors.Is(err, repository.ErrNotFound) {
			if _, err := s.exerciseRepo.Create(ctx, domain.ExerciseInsert{Name: seed.Name, Slug: slug, Description: seed.Description}); err != nil {
				return result, fmt.Errorf("creating exercise %q: %w", slug, err)
			}
			result.Created++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("looking up exercise %q: %w", slug, err)
		}

		var upd domain.ExerciseUpdate
		if existing.Name != seed.Name {
			upd.Name = domain.Some(seed.Name)
		}
		if existing.Description != seed.Description {
			upd.Description = domain.Some(seed.Description)
		}
		if len(upd.Columns()) == 0 {
			result.Unchanged++
			continue
		}
		if _, err := s.exerciseRepo.Update(ctx, existing.ID, upd); err != nil {
			return result, fmt.Errorf("updating exercise %q: %w", slug, err)
		}
		result.Updated++
	}

	s.logger.Info("exercise library seeded",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
	)
	return result, nil
}
