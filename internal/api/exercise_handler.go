package api

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	logger          *zap.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, logger *zap.Logger) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, logger: logger}
}

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseDto is the public view of a library exercise.
type ExerciseDto struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ExercisesListDto is one page of the library.
type ExercisesListDto struct {
	Data   []ExerciseDto `json:"data"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// PageQueryParams selects a window of a listing.
type PageQueryParams struct {
	Limit  int `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" json:"offset" binding:"omitempty,min=0"`
}

// MapExerciseToDto converts a domain.Exercise to ExerciseDto.
func MapExerciseToDto(ex *domain.Exercise) ExerciseDto {
	if ex == nil {
		return ExerciseDto{}
	}
	return ExerciseDto{ID: ex.ID, Name: ex.Name, Slug: ex.Slug}
}

// MapExercisesToDto converts a slice of domain.Exercise to a slice of ExerciseDto.
func MapExercisesToDto(exercises []domain.Exercise) []ExerciseDto {
	dtos := make([]ExerciseDto, len(exercises))
	for i := range exercises {
		dtos[i] = MapExerciseToDto(&exercises[i])
	}
	return dtos
}

// --- Handler Methods ---

// GetExercise godoc
// @Summary Get an exercise from the library
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} ExerciseDto
// @Failure 404 {object} ApiError "Exercise not found"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToDto(exercise))
}

// ListExercises godoc
// @Summary List the exercise library
// @Description Exercises are ordered by name.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (1-100, default 20)"
// @Param offset query int false "Number of exercises to skip"
// @Success 200 {object} ExercisesListDto
// @Failure 400 {object} ApiError "Invalid query parameters"
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	var query PageQueryParams
	if err := c.ShouldBindQuery(&query); err != nil {
		abortWithBindingError(c, err)
		return
	}

	page, err := h.exerciseService.ListExercises(c.Request.Context(), query.Limit, query.Offset)
	if err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ExercisesListDto{
		Data:   MapExercisesToDto(page.Items),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}
