package handler

import (
	"net/http"
	"strconv"

	"github.com/bodhium/workflow/internal/domain"
	"github.com/bodhium/workflow/internal/service"
	"github.com/gin-gonic/gin"
)

// TaskHandler handles worker task endpoints.
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// DispatchRequest is the body for POST /api/v1/tasks.
type DispatchRequest struct {
	ProductID string              `json:"product_id" binding:"required"`
	QueryIDs  []uint              `json:"query_ids" binding:"required,min=1"`
	Workers   []domain.WorkerType `json:"workers" binding:"required,min=1"`
}

// DispatchTasks handles POST /api/v1/tasks.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *TaskHandler) DispatchTasks(c *gin.Context) {
	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	tasks, err := h.taskService.Dispatch(c.Request.Context(), req.ProductID, req.QueryIDs, req.Workers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to dispatch tasks: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// ListTasks handles GET /api/v1/tasks.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *TaskHandler) ListTasks(c *gin.Context) {
	jobID := c.Query("job_id")
	productID := c.Query("product_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tasks, err := h.taskService.ListTasks(c.Request.Context(), jobID, productID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list tasks: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}
