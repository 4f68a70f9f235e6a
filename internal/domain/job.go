package domain

import "time"

// JobStatus represents the status of a scrape job.
// Values include JobStatusPending, JobStatusRunning, JobStatusCompleted, and JobStatusFailed.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ScrapeJob represents one brand-scraping run. A job is created when an analyst
// submits a brand URL; the scraper Lambda updates its status and product counts
// as it progresses.
type ScrapeJob struct {
	ID           string    `gorm:"type:text;primaryKey" json:"job_id"`
	SourceURL    string    `gorm:"type:text;not null" json:"source_url"`
	BrandName    string    `gorm:"type:text;index:idx_jobs_brand" json:"brand_name"`
	Status       JobStatus `gorm:"type:text;index:idx_jobs_status;default:pending" json:"status"`
	ProductCount int       `gorm:"default:0" json:"product_count"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for ScrapeJob.
func (ScrapeJob) TableName() string {
	return "scrape_jobs"
}
