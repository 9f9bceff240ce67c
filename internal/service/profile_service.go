package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// --- Error Definitions ---
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
)

// Accepted ranges for profile measurements.
const (
	MinAge      = 13
	MaxAge      = 100
	MinHeightCM = 100
	MaxHeightCM = 250
	MinWeightKG = 30
	MaxWeightKG = 300
)

// ProfileService manages the single live profile of each user.
type ProfileService interface {
	CreateProfile(ctx context.Context, in domain.ProfileInsert) (*domain.Profile, error)
	GetProfile(ctx context.Context, ownerID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, ownerID string, upd domain.ProfileUpdate) (*domain.Profile, error)
	DeleteProfile(ctx context.Context, ownerID string) error
}

type profileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

func (s *profileService) CreateProfile(ctx context.Context, in domain.ProfileInsert) (*domain.Profile, error) {
	if err := domain.NewValidationError(validateProfileFields(profileFields{
		age:         in.Age,
		heightCM:    in.HeightCM,
		weightKG:    in.WeightKG,
		sex:         in.Sex,
		experience:  in.ExperienceLevel,
		goal:        in.PrimaryGoal,
		session:     in.SessionLength,
		equipment:   in.AvailableEquipment,
		limitations: in.Limitations,
	})); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.Create(ctx, in)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) GetProfile(ctx context.Context, ownerID string) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile applies a partial update. Fields set to null are cleared.
func (s *profileService) UpdateProfile(ctx context.Context, ownerID string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	if err := domain.NewValidationError(validateProfileFields(profileFields{
		age:         upd.Age.Ptr(),
		heightCM:    upd.HeightCM.Ptr(),
		weightKG:    upd.WeightKG.Ptr(),
		sex:         upd.Sex.Ptr(),
		experience:  upd.ExperienceLevel.Ptr(),
		goal:        upd.PrimaryGoal.Ptr(),
		session:     upd.SessionLength.Ptr(),
		equipment:   upd.AvailableEquipment.Value,
		limitations: upd.Limitations.Ptr(),
	})); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.Update(ctx, ownerID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return profile, nil
}

// DeleteProfile soft-deletes the live profile; a new one may be created afterwards.
func (s *profileService) DeleteProfile(ctx context.Context, ownerID string) error {
	if err := s.profileRepo.SoftDelete(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("deleting profile: %w", err)
	}
	return nil
}

// profileFields is the common view of insert and update payloads. Nil means "not checked".
type profileFields struct {
	age         *int
	heightCM    *float64
	weightKG    *float64
	sex         *domain.Sex
	experience  *domain.ExperienceLevel
	goal        *domain.PrimaryGoal
	session     *domain.SessionLength
	equipment   []string
	limitations *string
}

func validateProfileFields(f profileFields) []domain.FieldError {
	var errs []domain.FieldError
	if f.age != nil && (*f.age < MinAge || *f.age > MaxAge) {
		errs = append(errs, domain.FieldError{Field: "age", Message: fmt.Sprintf("must be between %d and %d", MinAge, MaxAge)})
	}
	if f.heightCM != nil && (*f.heightCM < MinHeightCM || *f.heightCM > MaxHeightCM) {
		errs = append(errs, domain.FieldError{Field: "height_cm", Message: fmt.Sprintf("must be between %d and %d", MinHeightCM, MaxHeightCM)})
	}
	if f.weightKG != nil && (*f.weightKG < MinWeightKG || *f.weightKG > MaxWeightKG) {
		errs = append(errs, domain.FieldError{Field: "weight_kg", Message: fmt.Sprintf("must be between %d and %d", MinWeightKG, MaxWeightKG)})
	}
	if f.sex != nil && !f.sex.Valid() {
		errs = append(errs, oneOf("sex", domain.Sexes))
	}
	if f.experience != nil && !f.experience.Valid() {
		errs = append(errs, oneOf("experience_level", domain.ExperienceLevels))
	}
	if f.goal != nil && !f.goal.Valid() {
		errs = append(errs, oneOf("primary_goal", domain.PrimaryGoals))
	}
	if f.session != nil && !f.session.Valid() {
		errs = append(errs, oneOf("session_length", domain.SessionLengths))
	}
	for i, item := range f.equipment {
		if strings.TrimSpace(item) == "" {
			errs = append(errs, domain.FieldError{Field: fmt.Sprintf("available_equipment[%d]", i), Message: "must not be empty"})
		}
	}
	if f.limitations != nil && utf8.RuneCountInString(*f.limitations) > domain.MaxNotesLength {
		errs = append(errs, domain.FieldError{Field: "limitations", Message: fmt.Sprintf("must be at most %d characters", domain.MaxNotesLength)})
	}
	return errs
}

func oneOf[T ~string](field string, values []T) domain.FieldError {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return domain.FieldError{Field: field, Message: "must be one of: " + strings.Join(names, ", ")}
}
