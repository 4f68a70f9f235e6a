package repository

import (
	"context"
	"fmt"

	"github.com/bodhium/workflow/internal/domain"
	"gorm.io/gorm"
)

// JobRepository handles scrape job data operations.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new scrape job record.
func (r *JobRepository) Create(ctx context.Context, job *domain.ScrapeJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its ID.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.ScrapeJob, error) {
	var job domain.ScrapeJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetByIDs retrieves jobs by a list of IDs.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ids: list of job IDs.
// Returns:
//   - []domain.ScrapeJob: matching job records.
//   - error: non-nil if the query fails.
func (r *JobRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.ScrapeJob, error) {
	if len(ids) == 0 {
		return []domain.ScrapeJob{}, nil
	}
	var jobs []domain.ScrapeJob
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to get jobs by IDs: %w", err)
	}
	return jobs, nil
}

// List retrieves jobs ordered by recency with pagination.
func (r *JobRepository) List(ctx context.Context, limit, offset int) ([]domain.ScrapeJob, error) {
	var jobs []domain.ScrapeJob
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateStatus updates the status of a job, recording an error message for
// failed jobs.
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status domain.JobStatus, errMsg string) error {
	updates := map[string]interface{}{"status": status}
	if errMsg != "" {
		updates["error_message"] = errMsg
	}
	return r.db.WithContext(ctx).Model(&domain.ScrapeJob{}).Where("id = ?", id).Updates(updates).Error
}

// CountByStatus counts jobs by status.
func (r *JobRepository) CountByStatus(ctx context.Context, status domain.JobStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.ScrapeJob{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
