package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bodhium/workflow/internal/domain"
	"github.com/bodhium/workflow/internal/logger"
	"github.com/bodhium/workflow/internal/storage"
)

// JobLookup provides batched access to job rows for name resolution.
type JobLookup interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.ScrapeJob, error)
}

// ProductLookup provides batched access to product rows for name resolution.
type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

// AggregationConfig holds configuration for the aggregation service.
type AggregationConfig struct {
	FetchWorkers int
}

// AggregationService rebuilds the job -> product -> worker -> results view
// from the result bucket on every request. It holds no state between
// requests: the bucket and the database are the only sources of truth.
type AggregationService struct {
	storage      storage.ObjectStorage
	jobs         JobLookup
	products     ProductLookup
	logger       *logger.Logger
	fetchWorkers int
}

// NewAggregationService creates a new aggregation service.
// Parameters:
//   - objectStorage: result bucket client.
//   - jobs: job lookup for brand resolution.
//   - products: product lookup for name resolution.
//   - log: logger instance.
//   - cfg: aggregation configuration settings.
// Returns:
//   - *AggregationService: initialized aggregation service.
func NewAggregationService(
	objectStorage storage.ObjectStorage,
	jobs JobLookup,
	products ProductLookup,
	log *logger.Logger,
	cfg *AggregationConfig,
) *AggregationService {
	workers := 8
	if cfg != nil && cfg.FetchWorkers > 0 {
		workers = cfg.FetchWorkers
	}
	return &AggregationService{
		storage:      objectStorage,
		jobs:         jobs,
		products:     products,
		logger:       log,
		fetchWorkers: workers,
	}
}

// workerRecord pairs a classified record with the worker that produced it.
type workerRecord struct {
	worker domain.WorkerType
	record domain.ResultRecord
}

// productGroup accumulates one product's records keyed by worker type.
type productGroup struct {
	jobID     string
	productID string
	byWorker  map[domain.WorkerType][]domain.ResultRecord
}

// Aggregate lists the result bucket (scoped to jobID when non-empty), groups
// objects by job and product, normalizes each artifact, and resolves display
// names. A listing or database failure fails the whole request; a single
// object's fetch or parse failure only drops that object.
func (s *AggregationService) Aggregate(ctx context.Context, jobID string) (*domain.AggregateResponse, error) {
	start := time.Now()

	prefix := ""
	if jobID != "" {
		prefix = jobID + "/"
	}

	infos, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list result objects: %w", err)
	}

	// Discard keys that do not follow {job_id}/{product_id}/{filename}.
	var objects []domain.ResultObject
	for _, info := range infos {
		obj, ok := parseResultKey(info)
		if !ok {
			continue
		}
		objects = append(objects, obj)
	}

	contents := s.fetchAll(ctx, objects)

	// Group surviving records by (job, product), preserving encounter order
	// within each worker so the final sort is stable against it.
	groups := make(map[string]*productGroup)
	var groupOrder []string
	for i, obj := range objects {
		if contents[i] == nil {
			continue
		}
		rec, ok := normalizeArtifact(obj, contents[i])
		if !ok {
			continue
		}
		gk := obj.JobID + "/" + obj.ProductID
		g, exists := groups[gk]
		if !exists {
			g = &productGroup{
				jobID:     obj.JobID,
				productID: obj.ProductID,
				byWorker:  make(map[domain.WorkerType][]domain.ResultRecord),
			}
			groups[gk] = g
			groupOrder = append(groupOrder, gk)
		}
		g.byWorker[rec.worker] = append(g.byWorker[rec.worker], rec.record)
	}

	jobRows, productRows, err := s.lookupMetadata(ctx, groups)
	if err != nil {
		return nil, err
	}

	sort.Strings(groupOrder)

	products := make([]domain.ProductResult, 0, len(groupOrder))
	for _, gk := range groupOrder {
		g := groups[gk]

		var jobBrand, productBrand string
		var productData interface{}
		if job, ok := jobRows[g.jobID]; ok {
			jobBrand = job.BrandName
		}
		if p, ok := productRows[g.productID]; ok {
			productBrand = p.BrandName
			productData = map[string]interface{}(p.ProductData)
		}

		pr := domain.ProductResult{
			ProductID:   g.productID,
			JobID:       g.jobID,
			BrandName:   ResolveBrand(jobBrand, productBrand),
			ProductName: ResolveProductName(productData, g.productID),
		}

		for _, worker := range domain.AllWorkerTypes {
			records, ok := g.byWorker[worker]
			if !ok {
				continue
			}
			sort.SliceStable(records, func(i, j int) bool {
				return records[i].QueryID() < records[j].QueryID()
			})
			pr.Workers = append(pr.Workers, domain.WorkerResults{
				WorkerType: worker,
				Results:    records,
			})
		}

		products = append(products, pr)
	}

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      len(products),
	}).Info(ctx, "Aggregated results: objects=%d, products=%d", len(objects), len(products))

	return &domain.AggregateResponse{
		Products:     products,
		TotalResults: len(products),
	}, nil
}

// fetchAll downloads object contents on a bounded worker pool. The returned
// slice is positionally aligned with objects; a nil entry marks a failed
// fetch, which is logged and skipped rather than failing the batch.
func (s *AggregationService) fetchAll(ctx context.Context, objects []domain.ResultObject) [][]byte {
	contents := make([][]byte, len(objects))
	if len(objects) == 0 {
		return contents
	}

	indexes := make(chan int, len(objects))
	for i := range objects {
		indexes <- i
	}
	close(indexes)

	workers := s.fetchWorkers
	if workers > len(objects) {
		workers = len(objects)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				raw, err := s.fetchObject(ctx, objects[i].Key)
				if err != nil {
					logger.CtxWarn(ctx, "Skipping result object %s: %v", objects[i].Key, err)
					continue
				}
				contents[i] = raw
			}
		}()
	}
	wg.Wait()

	return contents
}

func (s *AggregationService) fetchObject(ctx context.Context, key string) ([]byte, error) {
	body, err := s.storage.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// lookupMetadata fetches job and product rows for every group. The two
// lookups run concurrently and both must succeed: name resolution needs the
// union of their results. Missing rows are fine, failed queries are not.
func (s *AggregationService) lookupMetadata(ctx context.Context, groups map[string]*productGroup) (map[string]domain.ScrapeJob, map[string]domain.Product, error) {
	jobIDs := make([]string, 0, len(groups))
	productIDs := make([]string, 0, len(groups))
	seenJobs := make(map[string]bool)
	for _, g := range groups {
		if !seenJobs[g.jobID] {
			seenJobs[g.jobID] = true
			jobIDs = append(jobIDs, g.jobID)
		}
		productIDs = append(productIDs, g.productID)
	}

	var (
		wg       sync.WaitGroup
		jobs     []domain.ScrapeJob
		products []domain.Product
		jobErr   error
		prodErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		jobs, jobErr = s.jobs.GetByIDs(ctx, jobIDs)
	}()
	go func() {
		defer wg.Done()
		products, prodErr = s.products.GetByIDs(ctx, productIDs)
	}()
	wg.Wait()

	if jobErr != nil {
		return nil, nil, fmt.Errorf("failed to load jobs: %w", jobErr)
	}
	if prodErr != nil {
		return nil, nil, fmt.Errorf("failed to load products: %w", prodErr)
	}

	jobRows := make(map[string]domain.ScrapeJob, len(jobs))
	for _, j := range jobs {
		jobRows[j.ID] = j
	}
	productRows := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productRows[p.ID] = p
	}
	return jobRows, productRows, nil
}

// parseResultKey validates the {job_id}/{product_id}/{filename} convention.
// Keys with any other segment count are discarded.
func parseResultKey(info storage.ObjectInfo) (domain.ResultObject, bool) {
	parts := strings.Split(info.Key, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return domain.ResultObject{}, false
	}
	return domain.ResultObject{
		Key:          info.Key,
		JobID:        parts[0],
		ProductID:    parts[1],
		FileName:     parts[2],
		LastModified: info.LastModified,
		Size:         info.Size,
	}, true
}

// normalizeArtifact classifies an object by its filename prefix and builds
// the normalized record. The three JSON workers pass through unvalidated;
// chatgpt artifacts are parsed from markdown. Unknown prefixes and malformed
// JSON drop the object silently.
func normalizeArtifact(obj domain.ResultObject, raw []byte) (workerRecord, bool) {
	switch {
	case strings.HasPrefix(obj.FileName, "aio_query_"):
		return passthroughRecord(domain.WorkerAIO, obj, raw)
	case strings.HasPrefix(obj.FileName, "aim_query_"):
		return passthroughRecord(domain.WorkerAIM, obj, raw)
	case strings.HasPrefix(obj.FileName, "perplexity_query_"):
		return passthroughRecord(domain.WorkerPerplexity, obj, raw)
	case strings.HasPrefix(obj.FileName, "chatgpt_query_"):
		chat := parseChatMarkdown(obj.JobID, obj.ProductID, obj.FileName, string(raw))
		return workerRecord{
			worker: domain.WorkerChatGPT,
			record: domain.ResultRecord{Chat: chat},
		}, true
	}
	return workerRecord{}, false
}

// passthroughRecord deserializes a JSON artifact as-is. The payload is
// trusted to already match the record shape; missing fields surface only when
// a consumer dereferences them.
func passthroughRecord(worker domain.WorkerType, obj domain.ResultObject, raw []byte) (workerRecord, bool) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		logger.GetDefault().Warnf("Skipping malformed JSON artifact %s: %v", obj.Key, err)
		return workerRecord{}, false
	}
	return workerRecord{
		worker: worker,
		record: domain.ResultRecord{Passthrough: payload},
	}, true
}
