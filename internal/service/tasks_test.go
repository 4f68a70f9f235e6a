package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bodhium/workflow/internal/domain"
)

type taskStatusUpdate struct {
	id     string
	status domain.TaskStatus
	errMsg string
}

type fakeTaskStore struct {
	created       []domain.WorkerTask
	statusUpdates []taskStatusUpdate
	batchErr      error
}

func (f *fakeTaskStore) CreateBatch(ctx context.Context, tasks []domain.WorkerTask) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	f.created = append(f.created, tasks...)
	return nil
}

func (f *fakeTaskStore) ListFiltered(ctx context.Context, jobID, productID string, limit, offset int) ([]domain.WorkerTask, error) {
	return f.created, nil
}

func (f *fakeTaskStore) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus, errMsg string) error {
	f.statusUpdates = append(f.statusUpdates, taskStatusUpdate{id: id, status: status, errMsg: errMsg})
	return nil
}

type fakeQueryLookup struct {
	rows []domain.Query
	err  error
}

func (f *fakeQueryLookup) GetByIDs(ctx context.Context, ids []uint) ([]domain.Query, error) {
	return f.rows, f.err
}

func newDispatchFixture(workerErr map[domain.WorkerType]error) (*TaskService, *fakeTaskStore, *fakeDispatcher) {
	store := &fakeTaskStore{}
	queries := &fakeQueryLookup{rows: []domain.Query{
		{ID: 1, ProductID: "prodA", QueryText: "what is it"},
		{ID: 2, ProductID: "prodA", QueryText: "is it good"},
	}}
	products := newFakeProductStore(&domain.Product{ID: "prodA", JobID: "job1"})
	dispatcher := &fakeDispatcher{workerErr: workerErr}
	svc := NewTaskService(store, queries, products, dispatcher, nil)
	return svc, store, dispatcher
}

func TestDispatch_CreatesQueryWorkerMatrix(t *testing.T) {
	svc, store, dispatcher := newDispatchFixture(nil)

	workers := []domain.WorkerType{domain.WorkerAIO, domain.WorkerPerplexity}
	tasks, err := svc.Dispatch(context.Background(), "prodA", []uint{1, 2}, workers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tasks) != 4 {
		t.Fatalf("expected 2 queries x 2 workers = 4 tasks, got %d", len(tasks))
	}
	if len(store.created) != 4 {
		t.Errorf("expected 4 persisted tasks, got %d", len(store.created))
	}
	if len(dispatcher.workerReqs) != 4 {
		t.Errorf("expected 4 worker invocations, got %d", len(dispatcher.workerReqs))
	}
	for _, task := range tasks {
		if task.Status != domain.TaskStatusPending {
			t.Errorf("task %s: expected pending, got %s", task.ID, task.Status)
		}
		if task.JobID != "job1" || task.ProductID != "prodA" {
			t.Errorf("task %s: wrong job/product: %s/%s", task.ID, task.JobID, task.ProductID)
		}
	}
}

func TestDispatch_WorkerFailureIsIsolated(t *testing.T) {
	svc, store, dispatcher := newDispatchFixture(map[domain.WorkerType]error{
		domain.WorkerPerplexity: errors.New("function URL unreachable"),
	})

	workers := []domain.WorkerType{domain.WorkerAIO, domain.WorkerPerplexity}
	tasks, err := svc.Dispatch(context.Background(), "prodA", []uint{1, 2}, workers)
	if err != nil {
		t.Fatalf("a single worker failure must not fail the dispatch: %v", err)
	}

	var failed, pending int
	for _, task := range tasks {
		switch task.Status {
		case domain.TaskStatusFailed:
			failed++
			if task.WorkerType != domain.WorkerPerplexity {
				t.Errorf("unexpected failed worker: %s", task.WorkerType)
			}
			if task.ErrorMessage == "" {
				t.Errorf("task %s: expected the invocation error to be recorded", task.ID)
			}
		case domain.TaskStatusPending:
			pending++
		default:
			t.Errorf("task %s: unexpected status %s", task.ID, task.Status)
		}
	}
	if failed != 2 || pending != 2 {
		t.Errorf("expected 2 failed and 2 pending tasks, got %d failed, %d pending", failed, pending)
	}

	// every combination is still attempted
	if len(dispatcher.workerReqs) != 4 {
		t.Errorf("expected all 4 invocations to be attempted, got %d", len(dispatcher.workerReqs))
	}
	// only the failed tasks get a status write
	if len(store.statusUpdates) != 2 {
		t.Fatalf("expected 2 status updates, got %d", len(store.statusUpdates))
	}
	for _, update := range store.statusUpdates {
		if update.status != domain.TaskStatusFailed || update.errMsg == "" {
			t.Errorf("unexpected status update: %+v", update)
		}
	}
}

func TestDispatch_RejectsUnknownWorker(t *testing.T) {
	svc, store, _ := newDispatchFixture(nil)

	_, err := svc.Dispatch(context.Background(), "prodA", []uint{1}, []domain.WorkerType{"gemini"})
	if err == nil {
		t.Fatal("expected error for unknown worker type")
	}
	if len(store.created) != 0 {
		t.Errorf("expected no tasks created, got %d", len(store.created))
	}
}

func TestDispatch_RequiresActiveQueries(t *testing.T) {
	store := &fakeTaskStore{}
	products := newFakeProductStore(&domain.Product{ID: "prodA", JobID: "job1"})
	svc := NewTaskService(store, &fakeQueryLookup{}, products, &fakeDispatcher{}, nil)

	_, err := svc.Dispatch(context.Background(), "prodA", []uint{99}, []domain.WorkerType{domain.WorkerAIO})
	if err == nil {
		t.Fatal("expected error when no active queries match")
	}
	if len(store.created) != 0 {
		t.Errorf("expected no tasks created, got %d", len(store.created))
	}
}
