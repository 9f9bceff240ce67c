package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository"
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrNoPendingGeneration = errors.New("no pending plan generation")
	ErrNoExercises         = errors.New("no exercises available")
)

// GenerationOverrides replace profile values for a single generation. Nil keeps the profile value.
type GenerationOverrides struct {
	Frequency     *int
	SessionLength *domain.SessionLength
	PrimaryGoal   *domain.PrimaryGoal
}

// PlanGenerationService builds draft plans and records the owner's decision on them.
type PlanGenerationService interface {
	Generate(ctx context.Context, ownerID string, overrides GenerationOverrides) (*domain.PlanGeneration, error)
	Accept(ctx context.Context, ownerID string) (*domain.PlanGeneration, error)
	Reject(ctx context.Context, ownerID string, reason *string) error
}

type planGenerationService struct {
	generationRepo repository.PlanGenerationRepository
	profileRepo    repository.ProfileRepository
	exerciseRepo   repository.ExerciseRepository
	logger         *zap.Logger
}

func NewPlanGenerationService(
	generationRepo repository.PlanGenerationRepository,
	profileRepo repository.ProfileRepository,
	exerciseRepo repository.ExerciseRepository,
	logger *zap.Logger,
) PlanGenerationService {
	return &planGenerationService{
		generationRepo: generationRepo,
		profileRepo:    profileRepo,
		exerciseRepo:   exerciseRepo,
		logger:         logger,
	}
}

func validateOverrides(o GenerationOverrides) []domain.FieldError {
	var errs []domain.FieldError
	if o.Frequency != nil && (*o.Frequency < MinFrequency || *o.Frequency > MaxFrequency) {
		errs = append(errs, domain.FieldError{Field: "override_frequency", Message: fmt.Sprintf("must be between %d and %d", MinFrequency, MaxFrequency)})
	}
	if o.SessionLength != nil && !o.SessionLength.Valid() {
		errs = append(errs, oneOf("override_session_length", domain.SessionLengths))
	}
	if o.PrimaryGoal != nil && !o.PrimaryGoal.Valid() {
		errs = append(errs, oneOf("override_primary_goal", domain.PrimaryGoals))
	}
	return errs
}

// effectiveParams merges the profile with the request overrides.
func effectiveParams(profile *domain.Profile, o GenerationOverrides) domain.GenerationParams {
	var params domain.GenerationParams
	if profile.ExperienceLevel != nil {
		params.ExperienceLevel = *profile.ExperienceLevel
	}
	if profile.SessionLength != nil {
		params.SessionLength = *profile.SessionLength
	}
	if profile.PrimaryGoal != nil {
		params.PrimaryGoal = *profile.PrimaryGoal
	}
	params.Frequency = frequencyFor(params.ExperienceLevel)

	if o.Frequency != nil {
		params.Frequency = *o.Frequency
	}
	if o.SessionLength != nil {
		params.SessionLength = *o.SessionLength
	}
	if o.PrimaryGoal != nil {
		params.PrimaryGoal = *o.PrimaryGoal
	}
	return params
}

// Generate builds a new pending draft from the owner's profile, replacing any
// draft still pending. The effective parameters are remembered on the profile.
func (s *planGenerationService) Generate(ctx context.Context, ownerID string, overrides GenerationOverrides) (*domain.PlanGeneration, error) {
	if err := domain.NewValidationError(validateOverrides(overrides)); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	library, err := s.exerciseRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading exercise library: %w", err)
	}
	if len(library) == 0 {
		return nil, ErrNoExercises
	}

	params := effectiveParams(profile, overrides)
	gen := &domain.PlanGeneration{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Params:       params,
		TrainingDays: buildTrainingDays(params, library),
	}
	if err := s.generationRepo.ReplacePending(ctx, gen); err != nil {
		return nil, fmt.Errorf("storing plan generation: %w", err)
	}

	if _, err := s.profileRepo.Update(ctx, ownerID, domain.ProfileUpdate{
		GenerationParams: domain.Some[any](params),
	}); err != nil {
		// The draft is already stored; failing to remember params only affects the profile view
		s.logger.Warn("failed to record generation params on profile", zap.String("owner_id", ownerID), zap.Error(err))
	}

	s.logger.Info("plan generated",
		zap.String("owner_id", ownerID),
		zap.String("generation_id", gen.ID),
		zap.Int("days", len(gen.TrainingDays)),
	)
	return gen, nil
}

// Accept marks the pending draft as accepted and returns it.
func (s *planGenerationService) Accept(ctx context.Context, ownerID string) (*domain.PlanGeneration, error) {
	gen, err := s.generationRepo.Resolve(ctx, ownerID, domain.GenerationAccepted, nil)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoPendingGeneration
		}
		return nil, fmt.Errorf("accepting plan generation: %w", err)
	}
	return gen, nil
}

// Reject discards the pending draft, keeping the optional reason.
func (s *planGenerationService) Reject(ctx context.Context, ownerID string, reason *string) error {
	if reason != nil && utf8.RuneCountInString(*reason) > domain.MaxNotesLength {
		return domain.NewValidationError([]domain.FieldError{{Field: "reason", Message: fmt.Sprintf("must be at most %d characters", domain.MaxNotesLength)}})
	}

	if _, err := s.generationRepo.Resolve(ctx, ownerID, domain.GenerationRejected, reason); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoPendingGeneration
		}
		return fmt.Errorf("rejecting plan generation: %w", err)
	}
	return nil
}
