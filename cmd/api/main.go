package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bodhium/workflow/internal/api"
	"github.com/bodhium/workflow/internal/config"
	"github.com/bodhium/workflow/internal/logger"
	"github.com/bodhium/workflow/internal/repository"
	"github.com/bodhium/workflow/internal/service"
	"github.com/bodhium/workflow/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize repositories
	jobRepo := repository.NewJobRepository(db)
	productRepo := repository.NewProductRepository(db)
	queryRepo := repository.NewQueryRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Initialize result bucket storage
	objectStorage, err := storage.NewStorage(&storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
	})
	if err != nil {
		appLogger.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize services
	dispatcher := service.NewLambdaDispatcher(&cfg.Lambda)
	scrapeService := service.NewScrapeService(jobRepo, productRepo, dispatcher, appLogger)
	curationService := service.NewCurationService(queryRepo, productRepo, dispatcher, appLogger)
	taskService := service.NewTaskService(taskRepo, queryRepo, productRepo, dispatcher, appLogger)
	aggregationService := service.NewAggregationService(objectStorage, jobRepo, productRepo, appLogger, nil)
	archiveService := service.NewArchiveService(objectStorage, appLogger)

	// Setup router
	router := api.SetupRouter(
		scrapeService,
		curationService,
		taskService,
		aggregationService,
		archiveService,
		productRepo,
		cfg,
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.Infof("Starting API server on port %d (mode=%s)", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exited")
}
