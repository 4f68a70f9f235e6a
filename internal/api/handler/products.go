package handler

import (
	"net/http"
	"strconv"

	"github.com/bodhium/workflow/internal/repository"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles product browsing endpoints.
type ProductHandler struct {
	products *repository.ProductRepository
}

// NewProductHandler creates a new product handler.
func NewProductHandler(products *repository.ProductRepository) *ProductHandler {
	return &ProductHandler{
		products: products,
	}
}

// ListProducts handles GET /api/v1/products.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ProductHandler) ListProducts(c *gin.Context) {
	jobID := c.Query("job_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	products, err := h.products.ListByJob(c.Request.Context(), jobID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list products: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

// GetProduct handles GET /api/v1/products/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Product ID is required",
		})
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}

	c.JSON(http.StatusOK, product)
}
