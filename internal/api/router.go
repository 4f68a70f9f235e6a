package api

import (
	"github.com/bodhium/workflow/internal/api/handler"
	"github.com/bodhium/workflow/internal/api/middleware"
	"github.com/bodhium/workflow/internal/config"
	"github.com/bodhium/workflow/internal/repository"
	"github.com/bodhium/workflow/internal/service"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	scrapeService *service.ScrapeService,
	curationService *service.CurationService,
	taskService *service.TaskService,
	aggregationService *service.AggregationService,
	archiveService *service.ArchiveService,
	products *repository.ProductRepository,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	jobHandler := handler.NewJobHandler(scrapeService)
	productHandler := handler.NewProductHandler(products)
	queryHandler := handler.NewQueryHandler(curationService)
	taskHandler := handler.NewTaskHandler(taskService)
	resultHandler := handler.NewResultHandler(aggregationService, archiveService)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Scrape jobs
		v1.POST("/scrape", jobHandler.SubmitScrape)
		v1.GET("/jobs", jobHandler.ListJobs)
		v1.GET("/jobs/:id", jobHandler.GetJob)

		// Products
		v1.GET("/products", productHandler.ListProducts)
		v1.GET("/products/:id", productHandler.GetProduct)

		// Query curation
		v1.GET("/queries", queryHandler.ListQueries)
		v1.POST("/queries", queryHandler.CreateQuery)
		v1.DELETE("/queries/:id", queryHandler.DeleteQuery)
		v1.POST("/queries/generate", queryHandler.GenerateQueries)

		// Worker tasks
		v1.POST("/tasks", taskHandler.DispatchTasks)
		v1.GET("/tasks", taskHandler.ListTasks)

		// Results
		v1.GET("/results", resultHandler.Aggregate)
		v1.GET("/results/download", resultHandler.Download)
	}

	return r
}
