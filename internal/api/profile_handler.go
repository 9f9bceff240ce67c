package api

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profileService service.ProfileService
	logger         *zap.Logger
}

func NewProfileHandler(profileService service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, logger: logger}
}

// --- DTOs ---

// ProfileDto is the complete profile row of the authenticated user.
type ProfileDto struct {
	ID                 string                  `json:"id"`
	OwnerID            string                  `json:"owner_id"`
	Age                *int                    `json:"age"`
	HeightCM           *float64                `json:"height_cm"`
	WeightKG           *float64                `json:"weight_kg"`
	Sex                *domain.Sex             `json:"sex"`
	ExperienceLevel    *domain.ExperienceLevel `json:"experience_level"`
	PrimaryGoal        *domain.PrimaryGoal     `json:"primary_goal"`
	SessionLength      *domain.SessionLength   `json:"session_length"`
	AvailableEquipment []string                `json:"available_equipment"`
	Limitations        *string                 `json:"limitations"`
	GenerationParams   any                     `json:"generation_params"`
	DeletedAt          *time.Time              `json:"deleted_at"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

// ProfileCreateCommand carries every profile column the caller may set.
type ProfileCreateCommand struct {
	Age                *int                    `json:"age" binding:"omitempty,min=13,max=100"`
	HeightCM           *float64                `json:"height_cm" binding:"omitempty,min=100,max=250"`
	WeightKG           *float64                `json:"weight_kg" binding:"omitempty,min=30,max=300"`
	Sex                *domain.Sex             `json:"sex" binding:"omitempty,oneof=male female other"`
	ExperienceLevel    *domain.ExperienceLevel `json:"experience_level" binding:"omitempty,oneof=beginner intermediate advanced"`
	PrimaryGoal        *domain.PrimaryGoal     `json:"primary_goal" binding:"omitempty,oneof=strength muscle_building endurance weight_loss general_fitness"`
	SessionLength      *domain.SessionLength   `json:"session_length" binding:"omitempty,oneof=30min 45min 60min 90min 120min"`
	AvailableEquipment []string                `json:"available_equipment" binding:"omitempty,dive,required"`
	Limitations        *string                 `json:"limitations" binding:"omitempty,max=500"`
	GenerationParams   any                     `json:"generation_params"`
}

// ProfileUpdateCommand is a partial update: absent fields are kept, null clears.
type ProfileUpdateCommand struct {
	Age                domain.Optional[int]                    `json:"age"`
	HeightCM           domain.Optional[float64]                `json:"height_cm"`
	WeightKG           domain.Optional[float64]                `json:"weight_kg"`
	Sex                domain.Optional[domain.Sex]             `json:"sex"`
	ExperienceLevel    domain.Optional[domain.ExperienceLevel] `json:"experience_level"`
	PrimaryGoal        domain.Optional[domain.PrimaryGoal]     `json:"primary_goal"`
	SessionLength      domain.Optional[domain.SessionLength]   `json:"session_length"`
	AvailableEquipment domain.Optional[[]string]               `json:"available_equipment"`
	Limitations        domain.Optional[string]                 `json:"limitations"`
	GenerationParams   domain.Optional[any]                    `json:"generation_params"`
}

func (cmd ProfileCreateCommand) toInsert(ownerID string) domain.ProfileInsert {
	return domain.ProfileInsert{
		OwnerID:            ownerID,
		Age:                cmd.Age,
		HeightCM:           cmd.HeightCM,
		WeightKG:           cmd.WeightKG,
		Sex:                cmd.Sex,
		ExperienceLevel:    cmd.ExperienceLevel,
		PrimaryGoal:        cmd.PrimaryGoal,
		SessionLength:      cmd.SessionLength,
		AvailableEquipment: cmd.AvailableEquipment,
		Limitations:        cmd.Limitations,
		GenerationParams:   cmd.GenerationParams,
	}
}

func (cmd ProfileUpdateCommand) toUpdate() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Age:                cmd.Age,
		HeightCM:           cmd.HeightCM,
		WeightKG:           cmd.WeightKG,
		Sex:                cmd.Sex,
		ExperienceLevel:    cmd.ExperienceLevel,
		PrimaryGoal:        cmd.PrimaryGoal,
		SessionLength:      cmd.SessionLength,
		AvailableEquipment: cmd.AvailableEquipment,
		Limitations:        cmd.Limitations,
		GenerationParams:   cmd.GenerationParams,
	}
}

// MapProfileToDto converts a domain.Profile to ProfileDto.
func MapProfileToDto(p *domain.Profile) ProfileDto {
	if p == nil {
		return ProfileDto{}
	}
	return ProfileDto{
		ID:                 p.ID,
		OwnerID:            p.OwnerID,
		Age:                p.Age,
		HeightCM:           p.HeightCM,
		WeightKG:           p.WeightKG,
		Sex:                p.Sex,
		ExperienceLevel:    p.ExperienceLevel,
		PrimaryGoal:        p.PrimaryGoal,
		SessionLength:      p.SessionLength,
		AvailableEquipment: p.AvailableEquipment,
		Limitations:        p.Limitations,
		GenerationParams:   p.GenerationParams,
		DeletedAt:          p.DeletedAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// --- Handler Methods ---

// GetMyProfile godoc
// @Summary Get the authenticated user's profile
// @Tags Profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileDto
// @Failure 401 {object} ApiError "Unauthorized"
// @Failure 404 {object} ApiError "Profile not found"
// @Router /profiles/me [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToDto(profile))
}

// CreateProfile godoc
// @Summary Create the authenticated user's profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body ProfileCreateCommand true "Profile details"
// @Success 201 {object} ProfileDto
// @Failure 400 {object} ApiError "Invalid input (validation error)"
// @Failure 409 {object} ApiError "Profile already exists"
// @Router /profiles [post]
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var cmd ProfileCreateCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		abortWithBindingError(c, err)
		return
	}

	profile, err := h.profileService.CreateProfile(c.Request.Context(), cmd.toInsert(userID))
	if err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MapProfileToDto(profile))
}

// UpdateMyProfile godoc
// @Summary Partially update the authenticated user's profile
// @Description Fields absent from the body are left unchanged; null clears a field.
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body ProfileUpdateCommand true "Fields to change"
// @Success 200 {object} ProfileDto
// @Failure 400 {object} ApiError "Invalid input (validation error)"
// @Failure 404 {object} ApiError "Profile not found"
// @Router /profiles/me [patch]
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var cmd ProfileUpdateCommand
	if !bindPartialJSON(c, &cmd) {
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, cmd.toUpdate())
	if err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToDto(profile))
}

// DeleteMyProfile godoc
// @Summary Soft-delete the authenticated user's profile
// @Tags Profiles
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} ApiError "Profile not found"
// @Router /profiles/me [delete]
func (h *ProfileHandler) DeleteMyProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.profileService.DeleteProfile(c.Request.Context(), userID); err != nil {
		abortWithServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
