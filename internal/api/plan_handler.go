package api

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PlanHandler struct {
	planService service.PlanService
	logger      *zap.Logger
}

func NewPlanHandler(planService service.PlanService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{planService: planService, logger: logger}
}

// --- DTOs ---

// PlanDto is a saved plan without its owner and soft-delete marker.
type PlanDto struct {
	ID           string               `json:"id"`
	Title        *string              `json:"title"`
	TrainingDays []domain.TrainingDay `json:"training_days"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// PlansListDto is one page of the user's plans.
type PlansListDto struct {
	Data   []PlanDto `json:"data"`
	Total  int64     `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// PlansQueryParams controls GET /plans. Results are always newest first.
type PlansQueryParams struct {
	Sort   domain.PlanSort `form:"sort" json:"sort" binding:"omitempty,oneof=created_at updated_at"`
	Limit  int             `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
	Offset int             `form:"offset" json:"offset" binding:"omitempty,min=0"`
}

type PlanCreateCommand struct {
	Title        *string              `json:"title" binding:"omitempty,max=150"`
	TrainingDays []domain.TrainingDay `json:"training_days" binding:"required,min=1,max=100,dive"`
}

// PlanUpdateCommand replaces the fields present in the body. A null title clears it.
type PlanUpdateCommand struct {
	Title        domain.Optional[string]               `json:"title"`
	TrainingDays domain.Optional[[]domain.TrainingDay] `json:"training_days"`
}

// PlanExportResponse points at a downloadable JSON copy of a plan.
type PlanExportResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MapPlanToDto converts a domain.Plan to PlanDto.
func MapPlanToDto(p *domain.Plan) PlanDto {
	if p == nil {
		return PlanDto{}
	}
	return PlanDto{
		ID:           p.ID,
		Title:        p.Title,
		TrainingDays: p.TrainingDays,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func MapPlansToDto(plans []domain.Plan) []PlanDto {
	dtos := make([]PlanDto, len(plans))
	for i := range plans {
		dtos[i] = MapPlanToDto(&plans[i])
	}
	return dtos
}

// --- Handler Methods ---

// ListPlans godoc
// @Summary List the user's plans
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param sort query string false "created_at (default) or updated_at, newest first"
// @Param limit query int false "Page size (1-100, default 20)"
// @Param offset query int false "Number of plans to skip"
// @Success 200 {object} PlansListDto
// @Failure 400 {object} ApiError "Invalid query parameters"
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var query PlansQueryParams
	if err := c.ShouldBindQuery(&query); err != nil {
		abortWithBindingError(c, err)
		return
	}

	page, err := h.planService.ListPlans(c.Request.Context(), userID, domain.PlanListOptions{
		Sort:   query.Sort,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, PlansListDto{
		Data:   MapPlansToDto(page.Items),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// CreatePlan godoc
// @Summary Save a training plan
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body PlanCreateCommand true "Plan"
// @Success 201 {object} PlanDto
// @Failure 400 {object} ApiError "Invalid plan"
// @Failure 422 {object} ApiError "Plan limit reached"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var cmd PlanCreateCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		abortWithBindingError(c, err)
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), domain.PlanInsert{
		OwnerID:      userID,
		Title:        cmd.Title,
		TrainingDays: cmd.TrainingDays,
	})
	if err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MapPlanToDto(plan))
}

// GetPlan godoc
// @Summary Get one of the user's plans
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} PlanDto
// @Failure 404 {object} ApiError "Plan not found"
// @Router /plans/{id} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToDto(plan))
}

// UpdatePlan godoc
// @Summary Update one of the user's plans
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param plan body PlanUpdateCommand true "Fields to replace"
// @Success 200 {object} PlanDto
// @Failure 400 {object} ApiError "Invalid plan"
// @Failure 404 {object} ApiError "Plan not found"
// @Router /plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var cmd PlanUpdateCommand
	if !bindPartialJSON(c, &cmd) {
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), userID, c.Param("id"), domain.PlanUpdate{
		Title:        cmd.Title,
		TrainingDays: cmd.TrainingDays,
	})
	if err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToDto(plan))
}

// DeletePlan godoc
// @Summary Soft-delete one of the user's plans
// @Tags Plans
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 204
// @Failure 404 {object} ApiError "Plan not found"
// @Router /plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), userID, c.Param("id")); err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportPlan godoc
// @Summary Export a plan as a downloadable JSON document
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} PlanExportResponse
// @Failure 404 {object} ApiError "Plan not found"
// @Failure 503 {object} ApiError "Object storage is not configured"
// @Router /plans/{id}/export [get]
func (h *PlanHandler) ExportPlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	export, err := h.planService.ExportPlan(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, PlanExportResponse{URL: export.URL, ExpiresAt: export.ExpiresAt})
}
