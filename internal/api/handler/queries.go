package handler

import (
	"net/http"
	"strconv"

	"github.com/bodhium/workflow/internal/service"
	"github.com/gin-gonic/gin"
)

// QueryHandler handles query curation endpoints.
type QueryHandler struct {
	curationService *service.CurationService
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(curationService *service.CurationService) *QueryHandler {
	return &QueryHandler{
		curationService: curationService,
	}
}

// ListQueries handles GET /api/v1/queries.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *QueryHandler) ListQueries(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'product_id' is required",
		})
		return
	}

	queries, err := h.curationService.ListQueries(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list queries: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queries": queries,
		"total":   len(queries),
	})
}

// CreateQueryRequest is the body for POST /api/v1/queries.
type CreateQueryRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	QueryText string `json:"query_text" binding:"required"`
}

// CreateQuery handles POST /api/v1/queries.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *QueryHandler) CreateQuery(c *gin.Context) {
	var req CreateQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	query, err := h.curationService.CreateQuery(c.Request.Context(), req.ProductID, req.QueryText)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create query: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, query)
}

// DeleteQuery handles DELETE /api/v1/queries/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *QueryHandler) DeleteQuery(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query ID",
		})
		return
	}

	if err := h.curationService.RemoveQuery(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete query: " + err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// GenerateQueriesRequest is the body for POST /api/v1/queries/generate.
type GenerateQueriesRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required,min=1"`
}

// GenerateQueries handles POST /api/v1/queries/generate.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *QueryHandler) GenerateQueries(c *gin.Context) {
	var req GenerateQueriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	dispatched, err := h.curationService.GenerateQueries(c.Request.Context(), req.ProductIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to dispatch query generation: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"dispatched": dispatched,
		"requested":  len(req.ProductIDs),
	})
}
