package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/soql/internal/http"
	"github.com/fivetwenty-io/soql/pkg/soql"
)

// QueryClient implements the soql.Client interface against a single org. It
// also implements soql.Pager, which the pagination helpers use to walk
// nextRecordsUrl chains.
type QueryClient struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	logger     soql.Logger
}

var (
	_ soql.Client = (*QueryClient)(nil)
	_ soql.Pager  = (*QueryClient)(nil)
)

// BaseURL implements soql.Client.BaseURL.
func (c *QueryClient) BaseURL() string {
	return c.baseURL
}

// APIVersion implements soql.Client.APIVersion.
func (c *QueryClient) APIVersion() string {
	return c.apiVersion
}

// Query implements soql.Client.Query. Single-page mode issues exactly one
// request; all-pages mode follows continuation references sequentially until
// the server stops or the page cap is hit.
func (c *QueryClient) Query(ctx context.Context, query string, opts *soql.QueryOptions) (*soql.AggregatedResult, error) {
	opts = c.effectiveOptions(opts)

	initialURL, err := soql.BuildQueryURL(c.baseURL, query, opts)
	if err != nil {
		return nil, err
	}

	paginationOpts := &soql.PaginationOptions{MaxPages: opts.MaxPages}
	if !opts.AllPages {
		paginationOpts.MaxPages = 1
	}

	aggregate, err := soql.FetchAllPages(ctx, c, initialURL, c.baseURL, paginationOpts)
	if err != nil {
		return nil, err
	}

	c.logOutcome(query, opts, aggregate)

	return aggregate, nil
}

// FetchPage implements soql.Pager and soql.Client.FetchPage.
func (c *QueryClient) FetchPage(ctx context.Context, pageURL string) (*soql.QueryResult, error) {
	resp, err := c.httpClient.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	var page soql.QueryResult

	err = json.Unmarshal(resp.Body, &page)
	if err != nil {
		return nil, fmt.Errorf("parsing query response: %w", err)
	}

	return &page, nil
}

// Iterate implements soql.Client.Iterate.
func (c *QueryClient) Iterate(ctx context.Context, query string, opts *soql.QueryOptions) (*soql.QueryIterator, error) {
	opts = c.effectiveOptions(opts)

	initialURL, err := soql.BuildQueryURL(c.baseURL, query, opts)
	if err != nil {
		return nil, err
	}

	return soql.NewQueryIterator(ctx, c, initialURL, c.baseURL), nil
}

// effectiveOptions merges client defaults into the caller's options without
// mutating them.
func (c *QueryClient) effectiveOptions(opts *soql.QueryOptions) *soql.QueryOptions {
	merged := soql.NewQueryOptions()
	if opts != nil {
		*merged = *opts
	}

	if merged.APIVersion == "" {
		merged.APIVersion = c.apiVersion
	}

	return merged
}

func (c *QueryClient) logOutcome(query string, opts *soql.QueryOptions, aggregate *soql.AggregatedResult) {
	if c.logger == nil {
		return
	}

	if aggregate.Empty() {
		c.logger.Info("query returned no records", map[string]interface{}{
			"query": query,
		})

		return
	}

	truncated := opts.AllPages && opts.MaxPages > 0 &&
		aggregate.Pages >= opts.MaxPages &&
		aggregate.LastPage != nil && aggregate.LastPage.HasMore()
	if truncated {
		c.logger.Warn("stopped following continuation pages at the configured cap", map[string]interface{}{
			"pages":   aggregate.Pages,
			"records": aggregate.Len(),
		})
	}
}
