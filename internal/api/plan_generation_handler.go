package api

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/service"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PlanGenerationHandler struct {
	generationService service.PlanGenerationService
	logger            *zap.Logger
}

func NewPlanGenerationHandler(generationService service.PlanGenerationService, logger *zap.Logger) *PlanGenerationHandler {
	return &PlanGenerationHandler{generationService: generationService, logger: logger}
}

// --- DTOs ---

// PlanGenerationCommand overrides profile values for one generation.
type PlanGenerationCommand struct {
	OverrideFrequency     *int                  `json:"override_frequency" binding:"omitempty,min=1,max=7"` // days per week
	OverrideSessionLength *domain.SessionLength `json:"override_session_length" binding:"omitempty,oneof=30min 45min 60min 90min 120min"`
	OverridePrimaryGoal   *domain.PrimaryGoal   `json:"override_primary_goal" binding:"omitempty,oneof=strength muscle_building endurance weight_loss general_fitness"`
}

// PlanGenerationDto is the generated draft.
type PlanGenerationDto = domain.TrainingPlan

// PlanGenerationAcceptResponse confirms an accepted draft.
type PlanGenerationAcceptResponse struct {
	Status       domain.GenerationStatus `json:"status"`
	TrainingDays []domain.TrainingDay    `json:"trainingDays"`
}

// PlanGenerationRejectCommand optionally explains a rejection.
type PlanGenerationRejectCommand struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// --- Handler Methods ---

// Generate godoc
// @Summary Generate a draft training plan
// @Description Builds a draft from the user's profile. A new draft replaces any pending one.
// @Tags Plan Generations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param overrides body PlanGenerationCommand false "Profile overrides"
// @Success 201 {object} PlanGenerationDto
// @Failure 400 {object} ApiError "Invalid overrides"
// @Failure 404 {object} ApiError "Profile not found"
// @Failure 409 {object} ApiError "Exercise library is empty"
// @Router /plan-generations [post]
func (h *PlanGenerationHandler) Generate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var cmd PlanGenerationCommand
	// The body is optional: no overrides means "use the profile as is"
	if err := c.ShouldBindJSON(&cmd); err != nil && !errors.Is(err, io.EOF) {
		abortWithBindingError(c, err)
		return
	}

	gen, err := h.generationService.Generate(c.Request.Context(), userID, service.GenerationOverrides{
		Frequency:     cmd.OverrideFrequency,
		SessionLength: cmd.OverrideSessionLength,
		PrimaryGoal:   cmd.OverridePrimaryGoal,
	})
	if err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, PlanGenerationDto{TrainingDays: gen.TrainingDays})
}

// Accept godoc
// @Summary Accept the pending draft
// @Tags Plan Generations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PlanGenerationAcceptResponse
// @Failure 404 {object} ApiError "No pending draft"
// @Router /plan-generations/accept [patch]
func (h *PlanGenerationHandler) Accept(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	gen, err := h.generationService.Accept(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, PlanGenerationAcceptResponse{
		Status:       domain.GenerationAccepted,
		TrainingDays: gen.TrainingDays,
	})
}

// Reject godoc
// @Summary Reject the pending draft
// @Tags Plan Generations
// @Accept json
// @Security BearerAuth
// @Param reason body PlanGenerationRejectCommand false "Optional reason"
// @Success 204
// @Failure 400 {object} ApiError "Reason too long"
// @Failure 404 {object} ApiError "No pending draft"
// @Router /plan-generations [delete]
func (h *PlanGenerationHandler) Reject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var cmd PlanGenerationRejectCommand
	if err := c.ShouldBindJSON(&cmd); err != nil && !errors.Is(err, io.EOF) {
		abortWithBindingError(c, err)
		return
	}

	if err := h.generationService.Reject(c.Request.Context(), userID, cmd.Reason); err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
