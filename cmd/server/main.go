package main

import (
	"alcyxob/training-planner/internal/api"
	"alcyxob/training-planner/internal/config"
	"alcyxob/training-planner/internal/logger"
	"alcyxob/training-planner/internal/repository"
	"alcyxob/training-planner/internal/repository/memory"
	"alcyxob/training-planner/internal/repository/mongo"
	"alcyxob/training-planner/internal/service"
	"alcyxob/training-planner/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// repositories groups the storage backends selected by database.driver.
type repositories struct {
	users       repository.UserRepository
	exercises   repository.ExerciseRepository
	profiles    repository.ProfileRepository
	plans       repository.PlanRepository
	generations repository.PlanGenerationRepository
}

// @title Training Planner API
// @version 1.0
// @description API for user profiles, the exercise library, plan generation and saved training plans.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: could not load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting training planner server",
		zap.String("address", cfg.Server.Address),
		zap.String("database_driver", cfg.Database.Driver),
		zap.Bool("s3_enabled", cfg.S3.Enabled),
	)

	// --- Repositories ---
	repos, closeDB, err := openRepositories(cfg.Database, log)
	if err != nil {
		log.Fatal("could not open database", zap.Error(err))
	}
	defer closeDB()

	// --- Storage ---
	fileStorage := storage.NewDisabledStorage()
	if cfg.S3.Enabled {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3, log)
		if err != nil {
			log.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
	} else {
		log.Info("object storage disabled, plan export is unavailable")
	}

	// --- Services ---
	pagination := service.Pagination{DefaultLimit: cfg.Plans.DefaultPageSize, MaxLimit: cfg.Plans.MaxPageSize}
	services := api.Services{
		Auth:           service.NewAuthService(repos.users, cfg.JWT.Secret, cfg.JWT.Expiration),
		Profiles:       service.NewProfileService(repos.profiles),
		Exercises:      service.NewExerciseService(repos.exercises, pagination, log),
		PlanGeneration: service.NewPlanGenerationService(repos.generations, repos.profiles, repos.exercises, log),
		Plans:          service.NewPlanService(repos.plans, repos.exercises, fileStorage, cfg.Plans.MaxPerUser, pagination, log),
	}

	if cfg.Exercises.SeedFile != "" {
		if err := seedExercises(services.Exercises, cfg.Exercises.SeedFile); err != nil {
			log.Fatal("failed to seed exercises", zap.String("file", cfg.Exercises.SeedFile), zap.Error(err))
		}
	}

	// --- HTTP ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(api.RequestLogger(log), gin.Recovery())
	api.SetupRoutes(router, services, log)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()
	log.Info("server listening", zap.String("address", cfg.Server.Address))

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}

// openRepositories connects the configured backend. The returned func releases it.
func openRepositories(cfg config.DatabaseConfig, log *zap.Logger) (repositories, func(), error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		return repositories{
			users:       memory.NewUserRepository(),
			exercises:   memory.NewExerciseRepository(),
			profiles:    memory.NewProfileRepository(),
			plans:       memory.NewPlanRepository(),
			generations: memory.NewPlanGenerationRepository(),
		}, func() {}, nil
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return repositories{}, nil, err
	}
	db := client.Database(cfg.Name)
	log.Info("database connection established", zap.String("database", cfg.Name))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, db, log)
		log.Info("index creation completed")
	}()

	closeDB := func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(client); err != nil {
			log.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}
	return repositories{
		users:       mongo.NewMongoUserRepository(db),
		exercises:   mongo.NewMongoExerciseRepository(db),
		profiles:    mongo.NewMongoProfileRepository(db),
		plans:       mongo.NewMongoPlanRepository(db),
		generations: mongo.NewMongoPlanGenerationRepository(db),
	}, closeDB, nil
}

func seedExercises(exercises service.ExerciseService, path string) error {
	seeds, err := service.LoadExerciseSeeds(path)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	_, err = exercises.SeedExercises(ctx, seeds)
	return err
}
