package repository

import (
	"context"
	"fmt"

	"github.com/bodhium/workflow/internal/domain"
	"gorm.io/gorm"
)

// QueryRepository handles query data operations.
type QueryRepository struct {
	db *gorm.DB
}

// NewQueryRepository creates a new QueryRepository.
func NewQueryRepository(db *gorm.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

// Create inserts a new query record.
func (r *QueryRepository) Create(ctx context.Context, query *domain.Query) error {
	return r.db.WithContext(ctx).Create(query).Error
}

// GetByID retrieves a query by its ID.
func (r *QueryRepository) GetByID(ctx context.Context, id uint) (*domain.Query, error) {
	var query domain.Query
	if err := r.db.WithContext(ctx).First(&query, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &query, nil
}

// GetByIDs retrieves active queries by a list of IDs.
func (r *QueryRepository) GetByIDs(ctx context.Context, ids []uint) ([]domain.Query, error) {
	if len(ids) == 0 {
		return []domain.Query{}, nil
	}
	var queries []domain.Query
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&queries).Error; err != nil {
		return nil, fmt.Errorf("failed to get queries by IDs: %w", err)
	}
	return queries, nil
}

// ListByProduct retrieves active queries for a product.
func (r *QueryRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Query, error) {
	var queries []domain.Query
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("id ASC").
		Find(&queries).Error; err != nil {
		return nil, err
	}
	return queries, nil
}

// Deactivate soft-deletes a query by clearing its active flag. Dispatched
// tasks keep referencing the row, so rows are never hard-deleted.
func (r *QueryRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&domain.Query{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
