package service

import (
	"context"
	"fmt"

	"github.com/bodhium/workflow/internal/domain"
	"github.com/bodhium/workflow/internal/logger"
	"github.com/google/uuid"
)

// JobStore is the job persistence surface the scrape service depends on.
type JobStore interface {
	Create(ctx context.Context, job *domain.ScrapeJob) error
	GetByID(ctx context.Context, id string) (*domain.ScrapeJob, error)
	List(ctx context.Context, limit, offset int) ([]domain.ScrapeJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus, errMsg string) error
	CountByStatus(ctx context.Context, status domain.JobStatus) (int64, error)
}

// ProductCounter counts the products the scraper has written for a job.
type ProductCounter interface {
	CountByJob(ctx context.Context, jobID string) (int64, error)
}

// ScrapeService handles scrape job submission and browsing.
type ScrapeService struct {
	jobs       JobStore
	products   ProductCounter
	dispatcher Dispatcher
	logger     *logger.Logger
}

// NewScrapeService creates a new scrape service.
// Parameters:
//   - jobs: job store.
//   - products: product counter for live per-job counts.
//   - dispatcher: dispatcher for the scraper function.
//   - log: logger instance.
// Returns:
//   - *ScrapeService: initialized scrape service.
func NewScrapeService(jobs JobStore, products ProductCounter, dispatcher Dispatcher, log *logger.Logger) *ScrapeService {
	return &ScrapeService{
		jobs:       jobs,
		products:   products,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Submit creates a pending scrape job and invokes the scraper Lambda for it.
// An invocation failure marks the job failed; the row is kept so the
// dashboard can show what happened.
func (s *ScrapeService) Submit(ctx context.Context, url string) (*domain.ScrapeJob, error) {
	job := &domain.ScrapeJob{
		ID:        uuid.New().String(),
		SourceURL: url,
		Status:    domain.JobStatusPending,
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	ctx = logger.SetJobID(ctx, job.ID)
	logger.CtxInfo(ctx, "Submitting scrape job for %s", url)

	if err := s.dispatcher.InvokeScraper(ctx, &ScrapeRequest{JobID: job.ID, URL: url}); err != nil {
		logger.CtxError(ctx, "Scraper invocation failed: %v", err)
		if updateErr := s.jobs.UpdateStatus(ctx, job.ID, domain.JobStatusFailed, err.Error()); updateErr != nil {
			logger.CtxError(ctx, "Failed to mark job failed: %v", updateErr)
		}
		return nil, fmt.Errorf("failed to start scrape: %w", err)
	}

	return job, nil
}

// GetJob retrieves one job by ID. The stored product count can lag behind a
// running scraper, so it is replaced with a live count.
func (s *ScrapeService) GetJob(ctx context.Context, id string) (*domain.ScrapeJob, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.products.CountByJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	job.ProductCount = int(count)
	return job, nil
}

// ListJobs retrieves recent jobs with pagination.
func (s *ScrapeService) ListJobs(ctx context.Context, limit, offset int) ([]domain.ScrapeJob, error) {
	return s.jobs.List(ctx, limit, offset)
}

// JobStats counts jobs per status for the dashboard summary.
func (s *ScrapeService) JobStats(ctx context.Context) (map[string]int64, error) {
	statuses := []domain.JobStatus{
		domain.JobStatusPending,
		domain.JobStatusRunning,
		domain.JobStatusCompleted,
		domain.JobStatusFailed,
	}
	stats := make(map[string]int64, len(statuses))
	for _, status := range statuses {
		count, err := s.jobs.CountByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s jobs: %w", status, err)
		}
		stats[string(status)] = count
	}
	return stats, nil
}
