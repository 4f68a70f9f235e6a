package domain

import "time"

// WorkerType identifies one of the four fixed answer producers.
// The set is closed: result objects whose filename does not map to one of
// these are ignored by the aggregator.
type WorkerType string

const (
	WorkerAIO        WorkerType = "aio"
	WorkerAIM        WorkerType = "aim"
	WorkerPerplexity WorkerType = "perplexity"
	WorkerChatGPT    WorkerType = "chatgpt"
)

// AllWorkerTypes lists the known workers in their canonical display order.
var AllWorkerTypes = []WorkerType{WorkerAIO, WorkerAIM, WorkerPerplexity, WorkerChatGPT}

// Valid reports whether w is one of the known worker types.
func (w WorkerType) Valid() bool {
	switch w {
	case WorkerAIO, WorkerAIM, WorkerPerplexity, WorkerChatGPT:
		return true
	}
	return false
}

// TaskStatus represents the status of a dispatched worker task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// WorkerTask represents one (query, worker) dispatch. The worker Lambda
// updates the status and writes its result artifact to object storage under
// {job_id}/{product_id}/.
type WorkerTask struct {
	ID           string     `gorm:"type:text;primaryKey" json:"task_id"`
	JobID        string     `gorm:"type:text;not null;index:idx_tasks_job" json:"job_id"`
	ProductID    string     `gorm:"type:text;not null;index:idx_tasks_product" json:"product_id"`
	QueryID      uint       `gorm:"not null" json:"query_id"`
	WorkerType   WorkerType `gorm:"type:text;not null" json:"worker_type"`
	Status       TaskStatus `gorm:"type:text;index:idx_tasks_status;default:pending" json:"status"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName returns the database table name for WorkerTask.
func (WorkerTask) TableName() string {
	return "worker_tasks"
}
