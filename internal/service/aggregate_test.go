package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/bodhium/workflow/internal/domain"
	"github.com/bodhium/workflow/internal/storage"
)

// fakeStorage serves objects from memory. failKeys simulates per-object
// download failures; listErr simulates a bucket outage.
type fakeStorage struct {
	objects  []storage.ObjectInfo
	contents map[string]string
	failKeys map[string]bool
	listErr  error
}

func (f *fakeStorage) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []storage.ObjectInfo
	for _, obj := range f.objects {
		if strings.HasPrefix(obj.Key, prefix) {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (f *fakeStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if f.failKeys[key] {
		return nil, errors.New("simulated fetch failure")
	}
	content, ok := f.contents[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader([]byte(content))), nil
}

func (f *fakeStorage) add(key, content string) {
	f.objects = append(f.objects, storage.ObjectInfo{Key: key, Size: int64(len(content))})
	f.contents[key] = content
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		contents: map[string]string{},
		failKeys: map[string]bool{},
	}
}

type fakeJobs struct {
	rows []domain.ScrapeJob
	err  error
}

func (f *fakeJobs) GetByIDs(ctx context.Context, ids []string) ([]domain.ScrapeJob, error) {
	return f.rows, f.err
}

type fakeProducts struct {
	rows []domain.Product
	err  error
}

func (f *fakeProducts) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	return f.rows, f.err
}

func newService(store *fakeStorage, jobs *fakeJobs, products *fakeProducts) *AggregationService {
	return NewAggregationService(store, jobs, products, nil, &AggregationConfig{FetchWorkers: 2})
}

func perplexityPayload(queryID int, marker string) string {
	return fmt.Sprintf(`{"query_id": %d, "query": "q", "content": "answer", "status": "success", "marker": %q}`, queryID, marker)
}

func TestAggregate_GroupsByJobAndProduct(t *testing.T) {
	store := newFakeStorage()
	store.add("job1/prodA/aio_query_1.json", `{"query_id": 1}`)
	store.add("job1/prodA/perplexity_query_2.json", `{"query_id": 2}`)
	store.add("job1/prodB/aio_query_1.json", `{"query_id": 1}`)
	store.add("job2/prodC/aim_query_5.json", `{"query_id": 5}`)
	// keys with the wrong segment count must be excluded from every group
	store.add("orphan.json", `{"query_id": 9}`)
	store.add("job1/prodA/extra/aio_query_3.json", `{"query_id": 3}`)

	svc := newService(store, &fakeJobs{}, &fakeProducts{})
	resp, err := svc.Aggregate(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Products) != 3 {
		t.Fatalf("expected 3 product groups, got %d", len(resp.Products))
	}

	seen := map[string]domain.ProductResult{}
	for _, p := range resp.Products {
		seen[p.JobID+"/"+p.ProductID] = p
	}
	for _, key := range []string{"job1/prodA", "job1/prodB", "job2/prodC"} {
		if _, ok := seen[key]; !ok {
			t.Errorf("missing product group %s", key)
		}
	}

	prodA := seen["job1/prodA"]
	if len(prodA.Workers) != 2 {
		t.Errorf("expected 2 workers for job1/prodA, got %d", len(prodA.Workers))
	}
}

func TestAggregate_JobFilterScopesListing(t *testing.T) {
	store := newFakeStorage()
	store.add("job1/prodA/aio_query_1.json", `{"query_id": 1}`)
	store.add("job2/prodB/aio_query_1.json", `{"query_id": 1}`)

	svc := newService(store, &fakeJobs{}, &fakeProducts{})
	resp, err := svc.Aggregate(context.Background(), "job1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(resp.Products))
	}
	if resp.Products[0].JobID != "job1" {
		t.Errorf("expected job1, got %s", resp.Products[0].JobID)
	}
}

func TestAggregate_UnknownProducerSkipped(t *testing.T) {
	store := newFakeStorage()
	store.add("job1/prodA/aio_query_1.json", `{"query_id": 1}`)
	store.add("job1/prodA/gemini_query_2.json", `{"query_id": 2}`)
	store.add("job1/prodA/readme.txt", "not a result")

	svc := newService(store, &fakeJobs{}, &fakeProducts{})
	resp, err := svc.Aggregate(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(resp.Products))
	}
	workers := resp.Products[0].Workers
	if len(workers) != 1 || workers[0].WorkerType != domain.WorkerAIO {
		t.Errorf("expected only the aio worker, got %+v", workers)
	}
	if len(workers[0].Results) != 1 {
		t.Errorf("expected 1 result, got %d", len(workers[0].Results))
	}
}

func TestAggregate_MalformedJSONSkipped(t *testing.T) {
	store := newFakeStorage()
	store.add("job1/prodA/aio_query_1.json", `{"query_id": 1}`)
	store.add("job1/prodA/aio_query_2.json", `{not valid json`)

	svc := newService(store, &fakeJobs{}, &fakeProducts{})
	resp, err := svc.Aggregate(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(resp.Products[0].Workers[0].Results); got != 1 {
		t.Errorf("expected malformed object to be dropped, got %d results", got)
	}
}

func TestAggregate_SortedByQueryID(t *testing.T) {
	store := newFakeStorage()
	store.add("job1/prodA/perplexity_query_9.json", perplexityPayload(9, "a"))
	store.add("job1/prodA/perplexity_query_1.json", perplexityPayload(1, "b"))
	store.add("job1/prodA/perplexity_query_4.json", perplexityPayload(4, "c"))

	svc := newService(store, &fakeJobs{}, &fakeProducts{})
	resp, err := svc.Aggregate(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results := resp.Products[0].Workers[0].Results
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []int{1, 4, 9} {
		if got := results[i].QueryID(); got != want {
			t.Errorf("result %d: expected query id %d, got %d", i, want, got)
		}
	}
}

func TestAggregate_SortIsStableForTies(t *testing.T) {
	store := newFakeStorage()
	// same query id; marker distinguishes encounter order
	store.add("job1/prodA/perplexity_query_2.json", perplexityPayload(2, "first"))
	store.add("job1/prodA/perplexity_query_1.json", perplexityPayload(1, "x"))
	store.add("job1/prodA/perplexity_query_02.json", perplexityPayload(2, "second"))

	svc := newService(store, &fakeJobs{}, &fakeProducts{})
	resp, err := svc.Aggregate(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results := resp.Products[0].Workers[0].Results
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].QueryID() != 1 {
		t.Errorf("expected query id 1 first, got %d", results[0].QueryID())
	}
	if marker(results[1]) != "first" || marker(results[2]) != "second" {
		t.Errorf("tied records reordered: got %q then %q", marker(results[1]), marker(results[2]))
	}
}

func marker(r domain.ResultRecord) string {
	s, _ := r.Passthrough["marker"].(string)
	return s
}

func TestAggregate_PartialFetchFailure(t *testing.T) {
	store := newFakeStorage()
	store.add("job1/prodA/aio_query_1.json", `{"query_id": 1}`)
	store.add("job1/prodA/aio_query_2.json", `{"query_id": 2}`)
	store.add("job1/prodA/aio_query_3.json", `{"query_id": 3}`)
	store.failKeys["job1/prodA/aio_query_2.json"] = true

	svc := newService(store, &fakeJobs{}, &fakeProducts{})
	resp, err := svc.Aggregate(context.Background(), "")
	if err != nil {
		t.Fatalf("expected request to succeed despite one fetch failure, got %v", err)
	}

	results := resp.Products[0].Workers[0].Results
	if len(results) != 2 {
		t.Fatalf("expected 2 surviving results, got %d", len(results))
	}
	if results[0].QueryID() != 1 || results[1].QueryID() != 3 {
		t.Errorf("unexpected surviving query ids: %d, %d", results[0].QueryID(), results[1].QueryID())
	}
}

func TestAggregate_ListFailureIsFatal(t *testing.T) {
	store := newFakeStorage()
	store.listErr = errors.New("bucket unavailable")

	svc := newService(store, &fakeJobs{}, &fakeProducts{})
	if _, err := svc.Aggregate(context.Background(), ""); err == nil {
		t.Fatal("expected error when listing fails")
	}
}

func TestAggregate_LookupFailureIsFatal(t *testing.T) {
	store := newFakeStorage()
	store.add("job1/prodA/aio_query_1.json", `{"query_id": 1}`)

	svc := newService(store, &fakeJobs{err: errors.New("db down")}, &fakeProducts{})
	if _, err := svc.Aggregate(context.Background(), ""); err == nil {
		t.Fatal("expected error when job lookup fails")
	}
}

func TestAggregate_TotalResultsCountsProducts(t *testing.T) {
	store := newFakeStorage()
	// one product with many records across two workers
	store.add("job1/prodA/aio_query_1.json", `{"query_id": 1}`)
	store.add("job1/prodA/aio_query_2.json", `{"query_id": 2}`)
	store.add("job1/prodA/perplexity_query_1.json", `{"query_id": 1}`)
	// a second product
	store.add("job1/prodB/aim_query_1.json", `{"query_id": 1}`)

	svc := newService(store, &fakeJobs{}, &fakeProducts{})
	resp, err := svc.Aggregate(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// total_results counts product entries, not individual records
	if resp.TotalResults != len(resp.Products) {
		t.Errorf("expected total_results == len(products), got %d vs %d", resp.TotalResults, len(resp.Products))
	}
	if resp.TotalResults != 2 {
		t.Errorf("expected total_results 2, got %d", resp.TotalResults)
	}
}

func TestAggregate_ResolvesNamesAndBrands(t *testing.T) {
	store := newFakeStorage()
	store.add("job1/prodA/aio_query_1.json", `{"query_id": 1}`)
	store.add("job1/prodB/aio_query_1.json", `{"query_id": 1}`)

	jobs := &fakeJobs{rows: []domain.ScrapeJob{
		{ID: "job1", BrandName: "Acme"},
	}}
	products := &fakeProducts{rows: []domain.Product{
		{ID: "prodA", JobID: "job1", BrandName: "ProductBrand", ProductData: domain.JSONMap{"title": "Super Widget"}},
		// prodB has no row at all
	}}

	svc := newService(store, jobs, products)
	resp, err := svc.Aggregate(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := map[string]domain.ProductResult{}
	for _, p := range resp.Products {
		byID[p.ProductID] = p
	}

	if got := byID["prodA"].ProductName; got != "Super Widget" {
		t.Errorf("expected resolved product name, got %q", got)
	}
	if got := byID["prodA"].BrandName; got != "Acme" {
		t.Errorf("expected job-level brand to win, got %q", got)
	}
	if got := byID["prodB"].ProductName; got != "Product prodB" {
		t.Errorf("expected synthesized fallback name, got %q", got)
	}
	if got := byID["prodB"].BrandName; got != "Acme" {
		t.Errorf("expected job-level brand for product without a row, got %q", got)
	}
}

func TestAggregate_ChatMarkdownNormalized(t *testing.T) {
	doc := "**Query:** best widget?\n" +
		"**Timestamp:** 2024-06-01T12:00:00Z\n" +
		"## Response Content\n" +
		"\n" +
		"The best widget is the Super Widget.\n" +
		"---\n"
	store := newFakeStorage()
	store.add("job1/prodA/chatgpt_query_5.md", doc)

	svc := newService(store, &fakeJobs{}, &fakeProducts{})
	resp, err := svc.Aggregate(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	workers := resp.Products[0].Workers
	if len(workers) != 1 || workers[0].WorkerType != domain.WorkerChatGPT {
		t.Fatalf("expected a chatgpt worker entry, got %+v", workers)
	}
	rec := workers[0].Results[0]
	if rec.Chat == nil {
		t.Fatal("expected a parsed chat record")
	}
	if rec.Chat.QueryID != 5 {
		t.Errorf("expected query id 5 from filename, got %d", rec.Chat.QueryID)
	}
	if rec.Chat.Content != "The best widget is the Super Widget." {
		t.Errorf("unexpected content: %q", rec.Chat.Content)
	}
	if rec.Chat.FormattedMarkdown != doc {
		t.Errorf("expected formatted markdown to keep the whole document")
	}
}
