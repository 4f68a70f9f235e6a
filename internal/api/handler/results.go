package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bodhium/workflow/internal/service"
	"github.com/gin-gonic/gin"
)

// ResultHandler handles result aggregation and download endpoints.
type ResultHandler struct {
	aggregationService *service.AggregationService
	archiveService     *service.ArchiveService
}

// NewResultHandler creates a new result handler.
// Parameters:
//   - aggregationService: aggregation service instance.
//   - archiveService: archive service instance.
// Returns:
//   - *ResultHandler: initialized handler.
func NewResultHandler(aggregationService *service.AggregationService, archiveService *service.ArchiveService) *ResultHandler {
	return &ResultHandler{
		aggregationService: aggregationService,
		archiveService:     archiveService,
	}
}

// Aggregate handles GET /api/v1/results. An optional job_id query parameter
// scopes aggregation to one job; without it the whole result bucket is
// aggregated.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ResultHandler) Aggregate(c *gin.Context) {
	jobID := c.Query("job_id")

	response, err := h.aggregationService.Aggregate(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to aggregate results: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Download handles GET /api/v1/results/download, streaming a zip of the raw
// artifacts under a job (optionally narrowed to one product).
// Parameters:
//   - c: Gin request context.
// Returns: none (streams zip response).
func (h *ResultHandler) Download(c *gin.Context) {
	jobID := c.Query("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'job_id' is required",
		})
		return
	}
	productID := c.Query("product_id")

	filename := fmt.Sprintf("results_%s_%s.zip", jobID, time.Now().Format("20060102150405"))
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := h.archiveService.WriteArchive(c.Request.Context(), jobID, productID, c.Writer); err != nil {
		if !c.Writer.Written() {
			c.Header("Content-Type", "application/json; charset=utf-8")
			c.Header("Content-Disposition", "")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to build archive: " + err.Error(),
			})
			return
		}
		// Mid-stream failure: the zip is already partially written, so the
		// only option left is to cut the connection.
		c.Abort()
		return
	}
}
