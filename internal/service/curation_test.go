package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bodhium/workflow/internal/domain"
)

type fakeProductStore struct {
	rows map[string]*domain.Product
}

func newFakeProductStore(products ...*domain.Product) *fakeProductStore {
	rows := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		rows[p.ID] = p
	}
	return &fakeProductStore{rows: rows}
}

func (f *fakeProductStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, errors.New("product not found")
	}
	return p, nil
}

func (f *fakeProductStore) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := f.rows[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeQueryStore struct {
	created     []*domain.Query
	deactivated []uint
	byProduct   map[string][]domain.Query
	createErr   error
}

func (f *fakeQueryStore) Create(ctx context.Context, query *domain.Query) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, query)
	return nil
}

func (f *fakeQueryStore) ListByProduct(ctx context.Context, productID string) ([]domain.Query, error) {
	return f.byProduct[productID], nil
}

func (f *fakeQueryStore) Deactivate(ctx context.Context, id uint) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

func TestCreateQuery_Custom(t *testing.T) {
	queries := &fakeQueryStore{}
	products := newFakeProductStore(&domain.Product{ID: "prodA", JobID: "job1"})
	svc := NewCurationService(queries, products, &fakeDispatcher{}, nil)

	query, err := svc.CreateQuery(context.Background(), "prodA", "is it waterproof")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query.QueryType != domain.QueryTypeCustom {
		t.Errorf("expected custom query type, got %s", query.QueryType)
	}
	if !query.IsActive {
		t.Error("expected a custom query to be active immediately")
	}
	if len(queries.created) != 1 {
		t.Errorf("expected 1 persisted query, got %d", len(queries.created))
	}
}

func TestCreateQuery_RequiresExistingProduct(t *testing.T) {
	queries := &fakeQueryStore{}
	svc := NewCurationService(queries, newFakeProductStore(), &fakeDispatcher{}, nil)

	if _, err := svc.CreateQuery(context.Background(), "ghost", "anything"); err == nil {
		t.Fatal("expected error for unknown product")
	}
	if len(queries.created) != 0 {
		t.Errorf("expected no queries created, got %d", len(queries.created))
	}
}

func TestRemoveQuery_Deactivates(t *testing.T) {
	queries := &fakeQueryStore{}
	svc := NewCurationService(queries, newFakeProductStore(), &fakeDispatcher{}, nil)

	if err := svc.RemoveQuery(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries.deactivated) != 1 || queries.deactivated[0] != 42 {
		t.Errorf("expected query 42 deactivated, got %v", queries.deactivated)
	}
}

func TestGenerateQueries_ContinuesPastFailures(t *testing.T) {
	products := newFakeProductStore(
		&domain.Product{ID: "prodA", JobID: "job1"},
		&domain.Product{ID: "prodB", JobID: "job1"},
		&domain.Product{ID: "prodC", JobID: "job2"},
	)
	dispatcher := &fakeDispatcher{queryGenErr: map[string]error{
		"prodB": errors.New("function URL unreachable"),
	}}
	svc := NewCurationService(&fakeQueryStore{}, products, dispatcher, nil)

	dispatched, err := svc.GenerateQueries(context.Background(), []string{"prodA", "prodB", "prodC"})
	if err != nil {
		t.Fatalf("a single product failure must not fail the batch: %v", err)
	}
	if dispatched != 2 {
		t.Errorf("expected 2 dispatched, got %d", dispatched)
	}
	if len(dispatcher.queryGenReqs) != 3 {
		t.Errorf("expected all 3 products to be attempted, got %d", len(dispatcher.queryGenReqs))
	}
}

func TestGenerateQueries_SkipsMissingProducts(t *testing.T) {
	products := newFakeProductStore(&domain.Product{ID: "prodA", JobID: "job1"})
	dispatcher := &fakeDispatcher{}
	svc := NewCurationService(&fakeQueryStore{}, products, dispatcher, nil)

	dispatched, err := svc.GenerateQueries(context.Background(), []string{"prodA", "gone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dispatched != 1 {
		t.Errorf("expected 1 dispatched, got %d", dispatched)
	}
	if len(dispatcher.queryGenReqs) != 1 {
		t.Errorf("expected only the existing product to be invoked, got %d", len(dispatcher.queryGenReqs))
	}
}
