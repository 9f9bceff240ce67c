package api

import (
	"alcyxob/training-planner/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles the service layer the HTTP handlers depend on.
type Services struct {
	Auth           service.AuthService
	Profiles       service.ProfileService
	Exercises      service.ExerciseService
	PlanGeneration service.PlanGenerationService
	Plans          service.PlanService
}

func SetupRoutes(router *gin.Engine, services Services, logger *zap.Logger) {
	registerValidators()

	authHandler := NewAuthHandler(services.Auth, logger)
	profileHandler := NewProfileHandler(services.Profiles, logger)
	exerciseHandler := NewExerciseHandler(services.Exercises, logger)
	generationHandler := NewPlanGenerationHandler(services.PlanGeneration, logger)
	planHandler := NewPlanHandler(services.Plans, logger)

	authMiddleware := AuthMiddleware(services.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		profileGroup := protected.Group("/profiles")
		{
			profileGroup.POST("", profileHandler.CreateProfile)
			profileGroup.GET("/me", profileHandler.GetMyProfile)
			profileGroup.PATCH("/me", profileHandler.UpdateMyProfile)
			profileGroup.DELETE("/me", profileHandler.DeleteMyProfile)
		}

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
		}

		generationGroup := protected.Group("/plan-generations")
		{
			generationGroup.POST("", generationHandler.Generate)
			generationGroup.PATCH("/accept", generationHandler.Accept)
			generationGroup.DELETE("", generationHandler.Reject)
		}

		planGroup := protected.Group("/plans")
		{
			planGroup.GET("", planHandler.ListPlans)
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("/:id", planHandler.GetPlan)
			planGroup.PUT("/:id", planHandler.UpdatePlan)
			planGroup.DELETE("/:id", planHandler.DeletePlan)
			planGroup.GET("/:id/export", planHandler.ExportPlan)
		}
	}
}
