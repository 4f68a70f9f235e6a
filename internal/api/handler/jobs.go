package handler

import (
	"net/http"
	"strconv"

	"github.com/bodhium/workflow/internal/service"
	"github.com/gin-gonic/gin"
)

// JobHandler handles scrape job endpoints.
type JobHandler struct {
	scrapeService *service.ScrapeService
}

// NewJobHandler creates a new job handler.
// Parameters:
//   - scrapeService: scrape service instance.
// Returns:
//   - *JobHandler: initialized handler.
func NewJobHandler(scrapeService *service.ScrapeService) *JobHandler {
	return &JobHandler{
		scrapeService: scrapeService,
	}
}

// ScrapeRequest is the body for POST /api/v1/scrape.
type ScrapeRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// SubmitScrape handles POST /api/v1/scrape.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *JobHandler) SubmitScrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	job, err := h.scrapeService.Submit(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to submit scrape: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// ListJobs handles GET /api/v1/jobs.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *JobHandler) ListJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	jobs, err := h.scrapeService.ListJobs(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs: " + err.Error(),
		})
		return
	}

	stats, err := h.scrapeService.JobStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count jobs: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":          jobs,
		"total":         len(jobs),
		"status_counts": stats,
	})
}

// GetJob handles GET /api/v1/jobs/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *JobHandler) GetJob(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Job ID is required",
		})
		return
	}

	job, err := h.scrapeService.GetJob(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Job not found",
		})
		return
	}

	c.JSON(http.StatusOK, job)
}
