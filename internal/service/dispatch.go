package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bodhium/workflow/internal/config"
	"github.com/bodhium/workflow/internal/domain"
	"github.com/go-resty/resty/v2"
)

// Dispatcher is the invocation surface the orchestration services depend on.
// LambdaDispatcher is the production implementation.
type Dispatcher interface {
	InvokeScraper(ctx context.Context, req *ScrapeRequest) error
	InvokeQueryGenerator(ctx context.Context, req *QueryGenRequest) error
	InvokeWorker(ctx context.Context, worker domain.WorkerType, req *WorkerRequest) error
}

// LambdaDispatcher invokes the external compute pipeline through Lambda
// function URLs. Invocations are fire-and-forget: the functions acknowledge
// immediately and report progress by writing to the database and the result
// bucket. There is no retry and no exactly-once guarantee here.
type LambdaDispatcher struct {
	client *resty.Client
	cfg    *config.LambdaConfig
}

// NewLambdaDispatcher creates a new Lambda dispatcher.
// Parameters:
//   - cfg: Lambda configuration with per-function URLs and timeout.
// Returns:
//   - *LambdaDispatcher: initialized dispatcher.
func NewLambdaDispatcher(cfg *config.LambdaConfig) *LambdaDispatcher {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	return &LambdaDispatcher{
		client: client,
		cfg:    cfg,
	}
}

// ScrapeRequest is the payload sent to the scraper Lambda.
type ScrapeRequest struct {
	JobID string `json:"job_id"`
	URL   string `json:"url"`
}

// QueryGenRequest is the payload sent to the query generator Lambda.
type QueryGenRequest struct {
	JobID     string `json:"job_id"`
	ProductID string `json:"product_id"`
}

// WorkerRequest is the payload sent to an answer worker Lambda.
type WorkerRequest struct {
	TaskID    string `json:"task_id"`
	JobID     string `json:"job_id"`
	ProductID string `json:"product_id"`
	QueryID   uint   `json:"query_id"`
	QueryText string `json:"query_text"`
}

// InvokeScraper triggers the brand scraper for a job.
func (d *LambdaDispatcher) InvokeScraper(ctx context.Context, req *ScrapeRequest) error {
	return d.invoke(ctx, d.cfg.ScraperURL, "scraper", req)
}

// InvokeQueryGenerator triggers AI query generation for a product.
func (d *LambdaDispatcher) InvokeQueryGenerator(ctx context.Context, req *QueryGenRequest) error {
	return d.invoke(ctx, d.cfg.QueryGenURL, "query generator", req)
}

// InvokeWorker triggers one answer worker for one query.
func (d *LambdaDispatcher) InvokeWorker(ctx context.Context, worker domain.WorkerType, req *WorkerRequest) error {
	url, err := d.workerURL(worker)
	if err != nil {
		return err
	}
	return d.invoke(ctx, url, string(worker), req)
}

func (d *LambdaDispatcher) workerURL(worker domain.WorkerType) (string, error) {
	switch worker {
	case domain.WorkerAIO:
		return d.cfg.AIOURL, nil
	case domain.WorkerAIM:
		return d.cfg.AIMURL, nil
	case domain.WorkerPerplexity:
		return d.cfg.PerplexityURL, nil
	case domain.WorkerChatGPT:
		return d.cfg.ChatGPTURL, nil
	}
	return "", fmt.Errorf("unknown worker type: %s", worker)
}

func (d *LambdaDispatcher) invoke(ctx context.Context, url, name string, payload interface{}) error {
	if url == "" {
		return fmt.Errorf("no function URL configured for %s", name)
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(url)
	if err != nil {
		return fmt.Errorf("failed to invoke %s: %w", name, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s invocation returned status %d: %s", name, resp.StatusCode(), resp.String())
	}
	return nil
}
