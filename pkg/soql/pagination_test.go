package soql_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/soql/pkg/soql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePager serves scripted pages keyed by URL and records every fetch.
type fakePager struct {
	pages   map[string]*soql.QueryResult
	errs    map[string]error
	fetched []string
}

func (p *fakePager) FetchPage(ctx context.Context, pageURL string) (*soql.QueryResult, error) {
	p.fetched = append(p.fetched, pageURL)

	if err, ok := p.errs[pageURL]; ok {
		return nil, err
	}

	page, ok := p.pages[pageURL]
	if !ok {
		return nil, &soql.FetchError{StatusCode: http.StatusNotFound, Body: "no such page: " + pageURL}
	}

	return page, nil
}

const (
	testInstanceURL = "https://my-org.my.salesforce.com"
	testInitialURL  = testInstanceURL + "/services/data/v60.0/query?q=SELECT+Id+FROM+Account"
	testSecondURL   = testInstanceURL + "/services/data/v60.0/query/01g-2000"
)

func twoPagePager() *fakePager {
	return &fakePager{
		pages: map[string]*soql.QueryResult{
			testInitialURL: {
				TotalSize:      3,
				Done:           false,
				Records:        []soql.Record{{"Id": "001"}, {"Id": "002"}},
				NextRecordsURL: "/services/data/v60.0/query/01g-2000",
			},
			testSecondURL: {
				TotalSize: 3,
				Done:      true,
				Records:   []soql.Record{{"Id": "003"}},
			},
		},
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestFetchAllPages(t *testing.T) {
	t.Parallel()
	t.Run("aggregates pages in order", func(t *testing.T) {
		t.Parallel()

		pager := twoPagePager()

		aggregate, err := soql.FetchAllPages(context.Background(), pager, testInitialURL, testInstanceURL, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{testInitialURL, testSecondURL}, pager.fetched)
		assert.Equal(t, 2, aggregate.Pages)
		require.Equal(t, 3, aggregate.Len())
		assert.Equal(t, "001", aggregate.Records[0].StringValue("Id"))
		assert.Equal(t, "002", aggregate.Records[1].StringValue("Id"))
		assert.Equal(t, "003", aggregate.Records[2].StringValue("Id"))
		assert.Equal(t, 3, aggregate.TotalSize())
	})

	t.Run("stops when the server omits the continuation", func(t *testing.T) {
		t.Parallel()

		pager := &fakePager{
			pages: map[string]*soql.QueryResult{
				testInitialURL: {
					TotalSize: 1,
					Done:      true,
					Records:   []soql.Record{{"Id": "001"}},
				},
			},
		}

		aggregate, err := soql.FetchAllPages(context.Background(), pager, testInitialURL, testInstanceURL, nil)
		require.NoError(t, err)
		assert.Len(t, pager.fetched, 1)
		assert.Equal(t, 1, aggregate.Pages)
	})

	t.Run("requires a pager", func(t *testing.T) {
		t.Parallel()

		_, err := soql.FetchAllPages(context.Background(), nil, testInitialURL, testInstanceURL, nil)
		require.ErrorIs(t, err, soql.ErrPagerRequired)
	})

	t.Run("a failing page returns the error alone", func(t *testing.T) {
		t.Parallel()

		pager := twoPagePager()
		pager.errs = map[string]error{
			testSecondURL: &soql.FetchError{StatusCode: http.StatusBadRequest, Body: "locator expired"},
		}

		aggregate, err := soql.FetchAllPages(context.Background(), pager, testInitialURL, testInstanceURL, nil)
		require.Error(t, err)
		assert.Nil(t, aggregate)

		var fetchErr *soql.FetchError

		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusBadRequest, fetchErr.StatusCode)
	})

	t.Run("honors the page cap", func(t *testing.T) {
		t.Parallel()

		// Every page points back at itself; only the cap stops the loop.
		looping := &soql.QueryResult{
			TotalSize:      100,
			Done:           false,
			Records:        []soql.Record{{"Id": "001"}},
			NextRecordsURL: testSecondURL,
		}

		pager := &fakePager{
			pages: map[string]*soql.QueryResult{
				testInitialURL: looping,
				testSecondURL:  looping,
			},
		}

		aggregate, err := soql.FetchAllPages(context.Background(), pager, testInitialURL, testInstanceURL,
			&soql.PaginationOptions{MaxPages: 3})
		require.NoError(t, err)
		assert.Len(t, pager.fetched, 3)
		assert.Equal(t, 3, aggregate.Pages)
		assert.Equal(t, 3, aggregate.Len())
	})

	t.Run("resolves relative continuations against the instance URL", func(t *testing.T) {
		t.Parallel()

		pager := twoPagePager()

		_, err := soql.FetchAllPages(context.Background(), pager, testInitialURL, testInstanceURL, nil)
		require.NoError(t, err)
		assert.Equal(t, testSecondURL, pager.fetched[1])
	})

	t.Run("merges field order across pages first-seen", func(t *testing.T) {
		t.Parallel()

		pager := twoPagePager()
		pager.pages[testInitialURL].FieldOrder = []string{"attributes", "Id", "Name"}
		pager.pages[testSecondURL].FieldOrder = []string{"attributes", "Id", "Industry"}

		aggregate, err := soql.FetchAllPages(context.Background(), pager, testInitialURL, testInstanceURL, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"attributes", "Id", "Name", "Industry"}, aggregate.FieldOrder)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		pager := twoPagePager()

		_, err := soql.FetchAllPages(ctx, pager, testInitialURL, testInstanceURL, nil)
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, pager.fetched)
	})
}

func TestQueryIterator(t *testing.T) {
	t.Parallel()
	t.Run("iterates across pages", func(t *testing.T) {
		t.Parallel()

		pager := twoPagePager()
		iterator := soql.NewQueryIterator(context.Background(), pager, testInitialURL, testInstanceURL)

		var ids []string

		for iterator.HasNext() {
			record, err := iterator.Next()
			require.NoError(t, err)

			ids = append(ids, record.StringValue("Id"))
		}

		assert.Equal(t, []string{"001", "002", "003"}, ids)
		assert.Len(t, pager.fetched, 2)
	})

	t.Run("next after exhaustion", func(t *testing.T) {
		t.Parallel()

		pager := &fakePager{
			pages: map[string]*soql.QueryResult{
				testInitialURL: {Done: true, Records: []soql.Record{{"Id": "001"}}},
			},
		}

		iterator := soql.NewQueryIterator(context.Background(), pager, testInitialURL, testInstanceURL)

		_, err := iterator.Next()
		require.NoError(t, err)

		_, err = iterator.Next()
		require.ErrorIs(t, err, soql.ErrNoMoreRecords)
	})

	t.Run("all drains the result set", func(t *testing.T) {
		t.Parallel()

		iterator := soql.NewQueryIterator(context.Background(), twoPagePager(), testInitialURL, testInstanceURL)

		records, err := iterator.All()
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("for each visits every record", func(t *testing.T) {
		t.Parallel()

		iterator := soql.NewQueryIterator(context.Background(), twoPagePager(), testInitialURL, testInstanceURL)

		var count int

		err := iterator.ForEach(func(record soql.Record) error {
			count++

			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("for each stops on a callback error", func(t *testing.T) {
		t.Parallel()

		iterator := soql.NewQueryIterator(context.Background(), twoPagePager(), testInitialURL, testInstanceURL)
		boom := errors.New("boom")

		err := iterator.ForEach(func(record soql.Record) error {
			return boom
		})
		require.ErrorIs(t, err, boom)
	})

	t.Run("propagates fetch errors", func(t *testing.T) {
		t.Parallel()

		pager := twoPagePager()
		pager.errs = map[string]error{
			testSecondURL: &soql.FetchError{StatusCode: http.StatusUnauthorized, Body: "session expired"},
		}

		iterator := soql.NewQueryIterator(context.Background(), pager, testInitialURL, testInstanceURL)

		_, err := iterator.All()
		require.Error(t, err)
		assert.True(t, soql.IsUnauthorized(err))
	})

	t.Run("empty result set", func(t *testing.T) {
		t.Parallel()

		pager := &fakePager{
			pages: map[string]*soql.QueryResult{
				testInitialURL: {TotalSize: 0, Done: true},
			},
		}

		iterator := soql.NewQueryIterator(context.Background(), pager, testInitialURL, testInstanceURL)

		records, err := iterator.All()
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestStreamPages(t *testing.T) {
	t.Parallel()
	t.Run("streams every page", func(t *testing.T) {
		t.Parallel()

		results := soql.StreamPages(context.Background(), twoPagePager(), testInitialURL, testInstanceURL, nil)

		var pages []*soql.QueryResult

		for result := range results {
			require.NoError(t, result.Err)

			pages = append(pages, result.Page)
		}

		require.Len(t, pages, 2)
		assert.Len(t, pages[0].Records, 2)
		assert.Len(t, pages[1].Records, 1)
	})

	t.Run("delivers the error last", func(t *testing.T) {
		t.Parallel()

		pager := twoPagePager()
		pager.errs = map[string]error{
			testSecondURL: &soql.FetchError{StatusCode: http.StatusInternalServerError, Body: "boom"},
		}

		results := soql.StreamPages(context.Background(), pager, testInitialURL, testInstanceURL, nil)

		var (
			pageCount int
			streamErr error
		)

		for result := range results {
			if result.Err != nil {
				streamErr = result.Err

				continue
			}

			pageCount++
		}

		assert.Equal(t, 1, pageCount)
		require.Error(t, streamErr)
	})
}
