package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// productNameFields is the ordered list of candidate fields tried when
// resolving a display name from scraper output. The scrapers are not
// consistent about what they call the product title, so the chain is long.
var productNameFields = []string{
	"productname",
	"name",
	"title",
	"product_name",
	"productName",
	"product_title",
	"display_name",
	"model",
	"variant",
}

// ResolveProductName derives a display name from raw product data. The data
// may arrive as an already-parsed object or as a JSON-encoded string; either
// way the first non-empty candidate field wins. Malformed input degrades to
// the synthesized fallback label, never an error.
func ResolveProductName(productData interface{}, productID string) string {
	data := coerceObject(productData)

	for _, field := range productNameFields {
		if v, ok := data[field]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}

	return fmt.Sprintf("Product %s", productID)
}

// ResolveBrand picks the brand name for a product result. The job-level brand
// wins because products can be shared across brand re-scrapes.
func ResolveBrand(jobBrand, productBrand string) string {
	if jobBrand != "" {
		return jobBrand
	}
	return productBrand
}

// coerceObject turns productData into a map, parsing JSON strings and
// treating anything unparseable as an empty object.
func coerceObject(productData interface{}) map[string]interface{} {
	switch v := productData.(type) {
	case map[string]interface{}:
		return v
	case string:
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return map[string]interface{}{}
		}
		return parsed
	case []byte:
		var parsed map[string]interface{}
		if err := json.Unmarshal(v, &parsed); err != nil {
			return map[string]interface{}{}
		}
		return parsed
	case nil:
		return map[string]interface{}{}
	default:
		return map[string]interface{}{}
	}
}
