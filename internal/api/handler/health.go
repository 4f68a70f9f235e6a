package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler answers the load balancer's liveness probe. It deliberately
// checks nothing downstream: a database or bucket outage surfaces as request
// errors, not as a dead instance.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "bodhium-workflow",
	})
}
