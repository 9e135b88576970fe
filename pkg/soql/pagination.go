package soql

import (
	"context"
	"errors"

	"github.com/fivetwenty-io/soql/internal/constants"
)

// Pager issues a single page request against a fully-qualified URL. It is
// implemented by the query client; tests substitute fakes.
type Pager interface {
	FetchPage(ctx context.Context, pageURL string) (*QueryResult, error)
}

// PaginationOptions configures the continuation-following loop.
type PaginationOptions struct {
	// MaxPages caps the number of pages fetched. Zero follows nextRecordsUrl
	// until the server omits it. The loop performs no cycle detection; a
	// server returning a repeating reference is only bounded by this cap.
	MaxPages int
}

// DefaultPaginationOptions returns the default pagination configuration.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		MaxPages: constants.UnlimitedPages,
	}
}

// FetchAllPages drives the continuation loop: fetch the page at initialURL,
// then follow nextRecordsUrl (resolved against instanceURL) until the server
// omits it, the page cap is reached, or the context is cancelled. Pages are
// fetched strictly sequentially; each target depends on the prior response.
//
// Any page failure aborts the loop and returns the error alone; no partial
// aggregate escapes.
func FetchAllPages(ctx context.Context, pager Pager, initialURL, instanceURL string, opts *PaginationOptions) (*AggregatedResult, error) {
	if pager == nil {
		return nil, ErrPagerRequired
	}

	if opts == nil {
		opts = DefaultPaginationOptions()
	}

	aggregate := &AggregatedResult{}
	seenFields := make(map[string]bool)
	nextURL := initialURL

	for nextURL != "" {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}

		page, err := pager.FetchPage(ctx, nextURL)
		if err != nil {
			return nil, err
		}

		aggregate.Records = append(aggregate.Records, page.Records...)
		aggregate.LastPage = page
		aggregate.Pages++

		for _, field := range page.FieldOrder {
			if !seenFields[field] {
				seenFields[field] = true

				aggregate.FieldOrder = append(aggregate.FieldOrder, field)
			}
		}

		if !page.HasMore() {
			break
		}

		if opts.MaxPages > 0 && aggregate.Pages >= opts.MaxPages {
			break
		}

		nextURL, err = ResolveContinuationURL(instanceURL, page.NextRecordsURL)
		if err != nil {
			return nil, err
		}
	}

	return aggregate, nil
}

// QueryIterator iterates over records lazily, fetching continuation pages on
// demand.
type QueryIterator struct {
	ctx          context.Context
	pager        Pager
	instanceURL  string
	nextURL      string
	buffer       []Record
	index        int
	started      bool
	continuation string
}

// NewQueryIterator creates an iterator over the result set starting at
// initialURL.
func NewQueryIterator(ctx context.Context, pager Pager, initialURL, instanceURL string) *QueryIterator {
	return &QueryIterator{
		ctx:         ctx,
		pager:       pager,
		instanceURL: instanceURL,
		nextURL:     initialURL,
	}
}

// HasNext reports whether another record may be available. It is true before
// the first fetch and while either buffered records or a continuation
// reference remain.
func (it *QueryIterator) HasNext() bool {
	if it.index < len(it.buffer) {
		return true
	}

	if !it.started {
		return true
	}

	return it.continuation != ""
}

// Next returns the next record, fetching the next page when the buffer is
// exhausted. Returns ErrNoMoreRecords once the result set is drained.
func (it *QueryIterator) Next() (Record, error) {
	for it.index >= len(it.buffer) {
		if it.started && it.continuation == "" {
			return nil, ErrNoMoreRecords
		}

		err := it.fetchNextPage()
		if err != nil {
			return nil, err
		}
	}

	record := it.buffer[it.index]
	it.index++

	return record, nil
}

// All drains the iterator and returns the remaining records.
func (it *QueryIterator) All() ([]Record, error) {
	var records []Record

	for it.HasNext() {
		record, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoMoreRecords) {
				break
			}

			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

// ForEach applies fn to each remaining record, stopping on the first error.
func (it *QueryIterator) ForEach(fn func(Record) error) error {
	for it.HasNext() {
		record, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoMoreRecords) {
				return nil
			}

			return err
		}

		err = fn(record)
		if err != nil {
			return err
		}
	}

	return nil
}

func (it *QueryIterator) fetchNextPage() error {
	err := it.ctx.Err()
	if err != nil {
		return err
	}

	target := it.nextURL
	if it.started {
		target, err = ResolveContinuationURL(it.instanceURL, it.continuation)
		if err != nil {
			return err
		}
	}

	page, err := it.pager.FetchPage(it.ctx, target)
	if err != nil {
		return err
	}

	it.started = true
	it.buffer = page.Records
	it.index = 0
	it.continuation = page.NextRecordsURL

	return nil
}

// PageStreamResult is one streamed page or a terminal error.
type PageStreamResult struct {
	Page *QueryResult
	Err  error
}

// StreamPages fetches pages sequentially and delivers each one on the
// returned channel. The channel closes after the final page or the first
// error; an error is always the last value sent.
func StreamPages(ctx context.Context, pager Pager, initialURL, instanceURL string, opts *PaginationOptions) <-chan PageStreamResult {
	if opts == nil {
		opts = DefaultPaginationOptions()
	}

	results := make(chan PageStreamResult, constants.PageBufferSize)

	go func() {
		defer close(results)

		nextURL := initialURL
		pages := 0

		for nextURL != "" {
			page, err := pager.FetchPage(ctx, nextURL)
			if err != nil {
				results <- PageStreamResult{Err: err}

				return
			}

			select {
			case results <- PageStreamResult{Page: page}:
			case <-ctx.Done():
				return
			}

			pages++

			if !page.HasMore() {
				return
			}

			if opts.MaxPages > 0 && pages >= opts.MaxPages {
				return
			}

			nextURL, err = ResolveContinuationURL(instanceURL, page.NextRecordsURL)
			if err != nil {
				results <- PageStreamResult{Err: err}

				return
			}
		}
	}()

	return results
}
