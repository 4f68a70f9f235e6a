package service

import (
	"context"
	"fmt"

	"github.com/bodhium/workflow/internal/domain"
	"github.com/bodhium/workflow/internal/logger"
)

// QueryStore is the query persistence surface the curation service depends on.
type QueryStore interface {
	Create(ctx context.Context, query *domain.Query) error
	ListByProduct(ctx context.Context, productID string) ([]domain.Query, error)
	Deactivate(ctx context.Context, id uint) error
}

// ProductStore provides single and batched product access.
type ProductStore interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

// CurationService handles per-product query browsing and editing, plus
// dispatch of AI query generation.
type CurationService struct {
	queries    QueryStore
	products   ProductStore
	dispatcher Dispatcher
	logger     *logger.Logger
}

// NewCurationService creates a new curation service.
func NewCurationService(
	queries QueryStore,
	products ProductStore,
	dispatcher Dispatcher,
	log *logger.Logger,
) *CurationService {
	return &CurationService{
		queries:    queries,
		products:   products,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// ListQueries retrieves the active queries for a product.
func (s *CurationService) ListQueries(ctx context.Context, productID string) ([]domain.Query, error) {
	return s.queries.ListByProduct(ctx, productID)
}

// CreateQuery adds an analyst-written query to a product. The product must
// exist; custom queries are active immediately.
func (s *CurationService) CreateQuery(ctx context.Context, productID, text string) (*domain.Query, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("product %s not found: %w", productID, err)
	}

	query := &domain.Query{
		ProductID: productID,
		QueryText: text,
		QueryType: domain.QueryTypeCustom,
		IsActive:  true,
	}
	if err := s.queries.Create(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}
	return query, nil
}

// RemoveQuery deactivates a query.
func (s *CurationService) RemoveQuery(ctx context.Context, id uint) error {
	return s.queries.Deactivate(ctx, id)
}

// GenerateQueries invokes the query generator Lambda for each of the given
// products. Products that no longer exist are skipped; an invocation failure
// for one product does not stop the rest. Returns the number of products
// actually dispatched.
func (s *CurationService) GenerateQueries(ctx context.Context, productIDs []string) (int, error) {
	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load products: %w", err)
	}

	dispatched := 0
	for _, p := range products {
		req := &QueryGenRequest{JobID: p.JobID, ProductID: p.ID}
		if err := s.dispatcher.InvokeQueryGenerator(ctx, req); err != nil {
			logger.CtxWarn(ctx, "Query generation dispatch failed for product %s: %v", p.ID, err)
			continue
		}
		dispatched++
	}

	logger.With(logger.Fields{logger.FieldCount: dispatched}).
		Info(ctx, "Dispatched query generation for %d/%d products", dispatched, len(productIDs))
	return dispatched, nil
}
