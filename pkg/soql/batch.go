package soql

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fivetwenty-io/soql/internal/constants"
	"gopkg.in/yaml.v3"
)

// BatchQuery represents a single query in a batch.
type BatchQuery struct {
	ID         string `json:"id"                    yaml:"id"`
	Query      string `json:"query"                 yaml:"query"`
	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty"`
	Tooling    bool   `json:"tooling,omitempty"     yaml:"tooling,omitempty"`
	AllPages   bool   `json:"all_pages,omitempty"   yaml:"all_pages,omitempty"`
	MaxPages   int    `json:"max_pages,omitempty"   yaml:"max_pages,omitempty"`

	// Callback is invoked with the result once the query finishes.
	Callback func(result *BatchResult) `json:"-" yaml:"-"`
}

// Options converts the per-query settings into query options.
func (q *BatchQuery) Options() *QueryOptions {
	opts := NewQueryOptions()

	if q.APIVersion != "" {
		opts = opts.WithAPIVersion(q.APIVersion)
	}

	if q.Tooling {
		opts = opts.WithTooling()
	}

	if q.AllPages {
		opts = opts.WithAllPages()
	}

	if q.MaxPages > 0 {
		opts = opts.WithMaxPages(q.MaxPages)
	}

	return opts
}

// BatchResult represents the result of one batch query.
type BatchResult struct {
	ID       string
	Success  bool
	Result   *AggregatedResult
	Error    error
	Duration time.Duration
}

// BatchExecutor runs several independent queries against one client. Queries
// run concurrently up to the limit; the pages of any single query are still
// fetched sequentially.
type BatchExecutor struct {
	client      Client
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(client Client, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	return &BatchExecutor{
		client:      client,
		concurrency: concurrency,
		timeout:     constants.DefaultBatchTimeout,
	}
}

// SetTimeout sets the per-query timeout.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs the batch and returns results in input order. A failing query
// lands in its own result and does not abort the rest of the batch.
func (b *BatchExecutor) Execute(ctx context.Context, queries []BatchQuery) ([]BatchResult, error) {
	results := make([]BatchResult, len(queries))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, query := range queries {
		waitGroup.Add(1)

		go func(index int, query BatchQuery) {
			defer waitGroup.Done()

			// Acquire semaphore
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			// Execute query with timeout
			queryCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeQuery(queryCtx, query)
			result.Duration = time.Since(start)
			results[index] = *result

			// Call callback if provided
			if query.Callback != nil {
				query.Callback(result)
			}
		}(index, query)
	}

	waitGroup.Wait()

	return results, nil
}

// executeQuery runs a single query.
func (b *BatchExecutor) executeQuery(ctx context.Context, query BatchQuery) *BatchResult {
	result := &BatchResult{ID: query.ID}

	aggregate, err := b.client.Query(ctx, query.Query, query.Options())
	result.Success = err == nil
	result.Result = aggregate
	result.Error = err

	return result
}

// BatchBuilder helps build batches of queries.
type BatchBuilder struct {
	queries []BatchQuery
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		queries: make([]BatchQuery, 0),
	}
}

// AddQuery adds a query with default options.
func (b *BatchBuilder) AddQuery(id, query string) *BatchBuilder {
	b.queries = append(b.queries, BatchQuery{
		ID:    id,
		Query: query,
	})

	return b
}

// AddQueryAllPages adds a query that follows pagination to the end.
func (b *BatchBuilder) AddQueryAllPages(id, query string) *BatchBuilder {
	b.queries = append(b.queries, BatchQuery{
		ID:       id,
		Query:    query,
		AllPages: true,
	})

	return b
}

// AddBatchQuery adds a fully specified query.
func (b *BatchBuilder) AddBatchQuery(query BatchQuery) *BatchBuilder {
	b.queries = append(b.queries, query)

	return b
}

// Build returns the built queries.
func (b *BatchBuilder) Build() []BatchQuery {
	return b.queries
}

// BatchFile is the on-disk description of a batch.
type BatchFile struct {
	Queries []BatchQuery `json:"queries" yaml:"queries"`
}

// LoadBatchFile reads a YAML batch description from disk.
func LoadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var file BatchFile

	err = yaml.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}

	if len(file.Queries) == 0 {
		return nil, constants.ErrNoQueriesInBatchFile
	}

	for index, query := range file.Queries {
		if query.Query == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrQueryRequired, index)
		}
	}

	return &file, nil
}
