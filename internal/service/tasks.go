package service

import (
	"context"
	"fmt"

	"github.com/bodhium/workflow/internal/domain"
	"github.com/bodhium/workflow/internal/logger"
	"github.com/google/uuid"
)

// TaskStore is the task persistence surface the task service depends on.
type TaskStore interface {
	CreateBatch(ctx context.Context, tasks []domain.WorkerTask) error
	ListFiltered(ctx context.Context, jobID, productID string, limit, offset int) ([]domain.WorkerTask, error)
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus, errMsg string) error
}

// QueryLookup provides batched access to active query rows.
type QueryLookup interface {
	GetByIDs(ctx context.Context, ids []uint) ([]domain.Query, error)
}

// TaskService creates worker tasks and dispatches them to the answer workers.
type TaskService struct {
	tasks      TaskStore
	queries    QueryLookup
	products   ProductStore
	dispatcher Dispatcher
	logger     *logger.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(
	tasks TaskStore,
	queries QueryLookup,
	products ProductStore,
	dispatcher Dispatcher,
	log *logger.Logger,
) *TaskService {
	return &TaskService{
		tasks:      tasks,
		queries:    queries,
		products:   products,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Dispatch creates one task per (query, worker) pair and invokes the
// corresponding worker Lambda for each. A failed invocation marks only that
// task failed; the rest proceed. There is no retry and no exactly-once
// guarantee: a worker that was invoked but never reports simply stays
// pending until the analyst resubmits.
func (s *TaskService) Dispatch(ctx context.Context, productID string, queryIDs []uint, workers []domain.WorkerType) ([]domain.WorkerTask, error) {
	for _, w := range workers {
		if !w.Valid() {
			return nil, fmt.Errorf("unknown worker type: %s", w)
		}
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product %s not found: %w", productID, err)
	}

	queries, err := s.queries.GetByIDs(ctx, queryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no active queries found for ids %v", queryIDs)
	}

	tasks := make([]domain.WorkerTask, 0, len(queries)*len(workers))
	for _, q := range queries {
		for _, w := range workers {
			tasks = append(tasks, domain.WorkerTask{
				ID:         uuid.New().String(),
				JobID:      product.JobID,
				ProductID:  product.ID,
				QueryID:    q.ID,
				WorkerType: w,
				Status:     domain.TaskStatusPending,
			})
		}
	}

	if err := s.tasks.CreateBatch(ctx, tasks); err != nil {
		return nil, fmt.Errorf("failed to create tasks: %w", err)
	}

	queryText := make(map[uint]string, len(queries))
	for _, q := range queries {
		queryText[q.ID] = q.QueryText
	}

	dispatched := 0
	for i := range tasks {
		t := &tasks[i]
		req := &WorkerRequest{
			TaskID:    t.ID,
			JobID:     t.JobID,
			ProductID: t.ProductID,
			QueryID:   t.QueryID,
			QueryText: queryText[t.QueryID],
		}
		if err := s.dispatcher.InvokeWorker(ctx, t.WorkerType, req); err != nil {
			logger.CtxWarn(ctx, "Worker dispatch failed: task=%s worker=%s: %v", t.ID, t.WorkerType, err)
			t.Status = domain.TaskStatusFailed
			t.ErrorMessage = err.Error()
			if updateErr := s.tasks.UpdateStatus(ctx, t.ID, domain.TaskStatusFailed, err.Error()); updateErr != nil {
				logger.CtxError(ctx, "Failed to mark task failed: %v", updateErr)
			}
			continue
		}
		dispatched++
	}

	logger.With(logger.Fields{logger.FieldCount: dispatched}).
		Info(ctx, "Dispatched %d/%d worker tasks for product %s", dispatched, len(tasks), productID)

	return tasks, nil
}

// ListTasks retrieves tasks scoped by job and/or product for status polling.
func (s *TaskService) ListTasks(ctx context.Context, jobID, productID string, limit, offset int) ([]domain.WorkerTask, error) {
	return s.tasks.ListFiltered(ctx, jobID, productID, limit, offset)
}
