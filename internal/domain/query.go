package domain

import "time"

// QueryType indicates how a query was created.
type QueryType string

const (
	QueryTypeGenerated QueryType = "ai-generated"
	QueryTypeCustom    QueryType = "custom"
)

// Query represents one natural-language prompt attached to a product.
// Queries are dispatched to one or more answer workers as tasks.
type Query struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"query_id"`
	ProductID string    `gorm:"type:text;not null;index:idx_queries_product" json:"product_id"`
	QueryText string    `gorm:"type:text;not null" json:"query_text"`
	QueryType QueryType `gorm:"type:text;default:custom" json:"query_type"`
	IsActive  bool      `gorm:"default:true;index:idx_queries_active" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Query.
func (Query) TableName() string {
	return "queries"
}
