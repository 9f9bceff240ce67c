package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository"
	"alcyxob/training-planner/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound      = errors.New("plan not found")
	ErrPlanLimitReached  = errors.New("plan limit reached")
	ErrExportUnavailable = errors.New("plan export is not available")
)

// PlanExport locates an exported plan document.
type PlanExport struct {
	URL       string
	ExpiresAt time.Time
}

// PlanService manages saved plans. Every operation is scoped to the owner.
type PlanService interface {
	CreatePlan(ctx context.Context, in domain.PlanInsert) (*domain.Plan, error)
	ListPlans(ctx context.Context, ownerID string, opts domain.PlanListOptions) (PageResult[domain.Plan], error)
	GetPlan(ctx context.Context, ownerID, planID string) (*domain.Plan, error)
	UpdatePlan(ctx context.Context, ownerID, planID string, upd domain.PlanUpdate) (*domain.Plan, error)
	DeletePlan(ctx context.Context, ownerID, planID string) error
	ExportPlan(ctx context.Context, ownerID, planID string) (*PlanExport, error)
}

type planService struct {
	planRepo     repository.PlanRepository
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
	maxPerUser   int
	pagination   Pagination
	logger       *zap.Logger
}

func NewPlanService(
	planRepo repository.PlanRepository,
	exerciseRepo repository.ExerciseRepository,
	fileStorage storage.FileStorage,
	maxPerUser int,
	pagination Pagination,
	logger *zap.Logger,
) PlanService {
	if maxPerUser <= 0 {
		maxPerUser = domain.MaxPlansPerUser
	}
	return &planService{
		planRepo:     planRepo,
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
		maxPerUser:   maxPerUser,
		pagination:   pagination,
		logger:       logger,
	}
}

// validateDays checks the plan limits and that every exercise exists.
func (s *planService) validateDays(ctx context.Context, days []domain.TrainingDay) error {
	if errs := domain.ValidateTrainingDays("training_days", days); len(errs) > 0 {
		return domain.NewValidationError(errs)
	}

	ids := domain.ExerciseIDs(days)
	found, err := s.exerciseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("checking exercises: %w", err)
	}
	if len(found) == len(ids) {
		return nil
	}

	known := make(map[string]struct{}, len(found))
	for _, ex := range found {
		known[ex.ID] = struct{}{}
	}
	var errs []domain.FieldError
	for i, day := range days {
		for j, slot := range day.Slots {
			for k, ex := range slot.Exercises {
				if _, ok := known[ex.ExerciseID]; !ok {
					errs = append(errs, domain.FieldError{
						Field:   fmt.Sprintf("training_days[%d].slots[%d].exercises[%d].exerciseId", i, j, k),
						Message: "references an unknown exercise",
					})
				}
			}
		}
	}
	return domain.NewValidationError(errs)
}

func (s *planService) CreatePlan(ctx context.Context, in domain.PlanInsert) (*domain.Plan, error) {
	if err := s.validateDays(ctx, in.TrainingDays); err != nil {
		return nil, err
	}
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.Create(ctx, in, s.maxPerUser)
	if err != nil {
		if errors.Is(err, repository.ErrLimitReached) {
			return nil, fmt.Errorf("%w: at most %d plans are allowed", ErrPlanLimitReached, s.maxPerUser)
		}
		return nil, fmt.Errorf("creating plan: %w", err)
	}
	return plan, nil
}

func validateTitle(title *string) error {
	if title != nil && utf8.RuneCountInString(*title) > domain.MaxLabelLength {
		return domain.NewValidationError([]domain.FieldError{{Field: "title", Message: fmt.Sprintf("must be at most %d characters", domain.MaxLabelLength)}})
	}
	return nil
}

func (s *planService) ListPlans(ctx context.Context, ownerID string, opts domain.PlanListOptions) (PageResult[domain.Plan], error) {
	if opts.Sort == "" {
		opts.Sort = domain.PlanSortCreatedAt
	}
	limit, offset, err := s.pagination.window(opts.Limit, opts.Offset)
	if !opts.Sort.Valid() {
		details := []domain.FieldError{{Field: "sort", Message: "must be one of: created_at, updated_at"}}
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			details = append(details, vErr.Details...)
		}
		err = domain.NewValidationError(details)
	}
	if err != nil {
		return PageResult[domain.Plan]{}, err
	}
	opts.Limit, opts.Offset = limit, offset

	page, err := s.planRepo.List(ctx, ownerID, opts)
	if err != nil {
		return PageResult[domain.Plan]{}, fmt.Errorf("listing plans: %w", err)
	}
	return PageResult[domain.Plan]{Items: page.Items, Total: page.Total, Limit: limit, Offset: offset}, nil
}

func (s *planService) GetPlan(ctx context.Context, ownerID, planID string) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, ownerID, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("getting plan: %w", err)
	}
	return plan, nil
}

// UpdatePlan replaces the fields present in upd. A null title clears it; training
// days cannot be cleared.
func (s *planService) UpdatePlan(ctx context.Context, ownerID, planID string, upd domain.PlanUpdate) (*domain.Plan, error) {
	if upd.TrainingDays.Set {
		if upd.TrainingDays.Null {
			return nil, domain.NewValidationError([]domain.FieldError{{Field: "training_days", Message: "cannot be null"}})
		}
		if err := s.validateDays(ctx, upd.TrainingDays.Value); err != nil {
			return nil, err
		}
	}
	if err := validateTitle(upd.Title.Ptr()); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.Update(ctx, ownerID, planID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("updating plan: %w", err)
	}
	return plan, nil
}

// DeletePlan soft-deletes the plan and drops its export, if any.
func (s *planService) DeletePlan(ctx context.Context, ownerID, planID string) error {
	if err := s.planRepo.SoftDelete(ctx, ownerID, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("deleting plan: %w", err)
	}

	if err := s.fileStorage.DeleteObject(ctx, ExportKey(ownerID, planID)); err != nil && !errors.Is(err, storage.ErrDisabled) {
		s.logger.Warn("failed to remove plan export", zap.String("plan_id", planID), zap.Error(err))
	}
	return nil
}

// ExportKey is the object key a plan is exported under.
func ExportKey(ownerID, planID string) string {
	return fmt.Sprintf("exports/%s/%s.json", ownerID, planID)
}

// planDocument is the exported representation of a plan.
type planDocument struct {
	ID           string               `json:"id"`
	Title        *string              `json:"title"`
	TrainingDays []domain.TrainingDay `json:"training_days"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ExportPlan uploads the plan as JSON and returns a short-lived download URL.
func (s *planService) ExportPlan(ctx context.Context, ownerID, planID string) (*PlanExport, error) {
	plan, err := s.GetPlan(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(planDocument{
		ID:           plan.ID,
		Title:        plan.Title,
		TrainingDays: plan.TrainingDays,
		CreatedAt:    plan.CreatedAt,
		UpdatedAt:    plan.UpdatedAt,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding plan: %w", err)
	}

	key := ExportKey(ownerID, planID)
	if err := s.fileStorage.PutObject(ctx, key, "application/json", body); err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return nil, ErrExportUnavailable
		}
		return nil, fmt.Errorf("uploading plan export: %w", err)
	}

	expires := storage.DefaultPresignedURLExpiry
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, expires)
	if err != nil {
		return nil, fmt.Errorf("presigning plan export: %w", err)
	}
	return &PlanExport{URL: url, ExpiresAt: time.Now().UTC().Add(expires)}, nil
}
