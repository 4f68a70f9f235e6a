package domain

import (
	"encoding/json"
	"time"
)

// ResultObject is one object-store entry under the result prefix. Keys follow
// the convention {job_id}/{product_id}/{filename}; anything else is discarded
// before a ResultObject is built.
type ResultObject struct {
	Key          string
	JobID        string
	ProductID    string
	FileName     string
	LastModified time.Time
	Size         int64
}

// ChatResult is the record synthesized from a chatgpt markdown artifact.
// Content holds the extracted response body; FormattedMarkdown holds the
// entire original document, not just the excerpt.
type ChatResult struct {
	JobID             string `json:"job_id"`
	ProductID         string `json:"product_id"`
	QueryID           int    `json:"query_id"`
	Query             string `json:"query"`
	Timestamp         string `json:"timestamp"`
	Model             string `json:"model"`
	Content           string `json:"content"`
	FormattedMarkdown string `json:"formatted_markdown"`
	Status            string `json:"status"`
}

// ResultRecord is one producer's normalized answer to one query. It is a
// tagged union: the three JSON producers (aio, aim, perplexity) pass their
// payload through unvalidated, while chatgpt records are parsed from markdown.
// Exactly one of Passthrough and Chat is set.
type ResultRecord struct {
	Passthrough map[string]interface{}
	Chat        *ChatResult
}

// QueryID returns the record's query identifier, used for the per-worker
// ascending sort. Passthrough records carry it as a JSON number; absent or
// non-numeric values sort first.
func (r ResultRecord) QueryID() int {
	if r.Chat != nil {
		return r.Chat.QueryID
	}
	if r.Passthrough == nil {
		return 0
	}
	switch v := r.Passthrough["query_id"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

// MarshalJSON emits whichever variant is set, so the wire shape matches what
// the producer wrote (or what the markdown parser synthesized).
func (r ResultRecord) MarshalJSON() ([]byte, error) {
	if r.Chat != nil {
		return json.Marshal(r.Chat)
	}
	return json.Marshal(r.Passthrough)
}

// WorkerResults groups one worker's records for a product, sorted ascending
// by query id.
type WorkerResults struct {
	WorkerType WorkerType     `json:"worker_type"`
	Results    []ResultRecord `json:"results"`
}

// ProductResult is one product's aggregated results within one job. Workers
// contains at most one entry per worker type; a worker with no matching
// objects produces no entry.
type ProductResult struct {
	ProductID   string          `json:"product_id"`
	JobID       string          `json:"job_id"`
	BrandName   string          `json:"brand_name"`
	ProductName string          `json:"product_name"`
	Workers     []WorkerResults `json:"workers"`
}

// AggregateResponse is the top-level aggregation output. TotalResults counts
// ProductResult entries, not individual records; callers rely on it only as
// an item count for the returned list.
type AggregateResponse struct {
	Products     []ProductResult `json:"products"`
	TotalResults int             `json:"total_results"`
}
