package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONMap is a custom type for storing free-form JSON objects as text in the
// database. The scraper Lambda writes whatever fields it extracted from the
// product page, so the shape is not fixed.
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the map.
//   - error: non-nil if marshaling fails.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JSONMap")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// Product represents one scraped catalog item belonging to a job.
// ProductData holds the raw scraper output; consumers resolve a display name
// from it via a fallback chain rather than relying on a fixed field.
type Product struct {
	ID          string    `gorm:"type:text;primaryKey" json:"product_id"`
	JobID       string    `gorm:"type:text;not null;index:idx_products_job" json:"job_id"`
	BrandName   string    `gorm:"type:text" json:"brand_name"`
	ProductData JSONMap   `gorm:"type:text" json:"product_data"`
	SourceURL   string    `gorm:"type:text" json:"source_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string {
	return "products"
}
