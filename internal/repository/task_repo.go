package repository

import (
	"context"

	"github.com/bodhium/workflow/internal/domain"
	"gorm.io/gorm"
)

// TaskRepository handles worker task data operations.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateBatch inserts a batch of worker tasks in one statement.
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []domain.WorkerTask) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&tasks).Error
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.WorkerTask, error) {
	var task domain.WorkerTask
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListFiltered retrieves tasks scoped by job and/or product. Empty filters
// are ignored.
func (r *TaskRepository) ListFiltered(ctx context.Context, jobID, productID string, limit, offset int) ([]domain.WorkerTask, error) {
	var tasks []domain.WorkerTask
	query := r.db.WithContext(ctx)
	if jobID != "" {
		query = query.Where("job_id = ?", jobID)
	}
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateStatus updates the status of a task, recording an error message for
// failed tasks.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus, errMsg string) error {
	updates := map[string]interface{}{"status": status}
	if errMsg != "" {
		updates["error_message"] = errMsg
	}
	return r.db.WithContext(ctx).Model(&domain.WorkerTask{}).Where("id = ?", id).Updates(updates).Error
}
