package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidaleve/coaching-app/internal/api"
	"vidaleve/coaching-app/internal/config"
	"vidaleve/coaching-app/internal/progress"
	"vidaleve/coaching-app/internal/repository/mongo"
	"vidaleve/coaching-app/internal/service"
	"vidaleve/coaching-app/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Vida Leve Coaching API
// @version 1.0
// @description API for the coaching dashboard: client rosters, weigh-in tracking, session assignments, courses, and reports.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Coaching App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("profiles"))
		mongo.EnsureWeighInIndexes(ctx, appDB.Collection("pesagens"))
		mongo.EnsureDailyIndexes(ctx, appDB.Collection("daily_missions"), appDB.Collection("daily_scores"))
		mongo.EnsureGoalIndexes(ctx, appDB.Collection("goals"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("sessions"))
		mongo.EnsureSaboteurIndexes(ctx, appDB.Collection("custom_saboteurs"))
		mongo.EnsureAIConfigIndexes(ctx, appDB.Collection("ai_configurations"))
		mongo.EnsureCourseIndexes(ctx, appDB.Collection("courses"))
		mongo.EnsureMediaIndexes(ctx, appDB.Collection("media_uploads"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing media storage service...")
	mediaStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	log.Println("Initializing course progress store...")
	progressStore, err := progress.NewFileStore(cfg.Progress.Dir)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize progress store: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	weighInRepo := mongo.NewMongoWeighInRepository(appDB)
	dailyRepo := mongo.NewMongoDailyRepository(appDB)
	goalRepo := mongo.NewMongoGoalRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	saboteurRepo := mongo.NewMongoSaboteurRepository(appDB)
	aiConfigRepo := mongo.NewMongoAIConfigRepository(appDB)
	courseRepo := mongo.NewMongoCourseRepository(appDB)
	mediaRepo := mongo.NewMongoMediaRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	adminService := service.NewAdminService(userRepo, weighInRepo, dailyRepo, goalRepo, cfg.Server.FanoutLimit)
	contentService := service.NewContentService(userRepo, sessionRepo, saboteurRepo, aiConfigRepo, courseRepo, mediaRepo, mediaStorage, cfg.Server.FanoutLimit)
	clientService := service.NewClientService(userRepo, weighInRepo, dailyRepo, goalRepo, sessionRepo, courseRepo, mediaStorage, progressStore)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, adminService, contentService, clientService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
