package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
)

// Requester is the fetcher a PageIterator pulls pages through.
type Requester interface {
	Request(ctx context.Context, method, path string, params url.Values, form url.Values) (json.RawMessage, error)
}

const (
	TraceAttributeURL       = "zhihu.url"
	TraceAttributeItemCount = "zhihu.items"
)

var tracer = otel.Tracer("zhihu-client")

// PageIterator walks a paginated endpoint one page at a time, yielding raw items.
// Only the current page is held in memory; the next page is requested when the
// buffer runs dry. It is not safe for concurrent use.
type PageIterator struct {
	ctx       context.Context
	requester Requester
	parser    *Parser
	logger    *slog.Logger
	path      string
	itemsKey  string
	limit     int
	buffer    []json.RawMessage
	bufferIdx int
	next      string
	started   bool
	hasMore   bool
	pages     int
	err       error
}

// NewPageIterator creates an iterator positioned before the first page of path.
func NewPageIterator(ctx context.Context, requester Requester, path, itemsKey string, limit int, logger *slog.Logger) *PageIterator {
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if limit < minPageSize {
		limit = minPageSize
	}
	if itemsKey == "" {
		itemsKey = DefaultItemsKey
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PageIterator{
		ctx:       ctx,
		requester: requester,
		parser:    NewParser(),
		logger:    logger,
		path:      path,
		itemsKey:  itemsKey,
		limit:     limit,
		hasMore:   true,
	}
}

// HasNext returns true if there are buffered items or another page may exist.
func (it *PageIterator) HasNext() bool {
	if it.err != nil {
		return false
	}
	return it.bufferIdx < len(it.buffer) || it.hasMore
}

// Next returns the next raw item. It returns pkgerrs.ErrNoMoreItems once the
// listing is exhausted, and the fetch error if advancing to a new page failed.
func (it *PageIterator) Next() (json.RawMessage, error) {
	for {
		if it.err != nil {
			return nil, it.err
		}

		if it.bufferIdx >= len(it.buffer) {
			if !it.hasMore {
				return nil, pkgerrs.ErrNoMoreItems
			}
			if err := it.fetch(); err != nil {
				it.err = err
				return nil, err
			}
			continue
		}

		item := it.buffer[it.bufferIdx]
		it.bufferIdx++

		// Skip null items
		if len(item) == 0 || bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}

		return item, nil
	}
}

// Err returns the error that stopped the iteration, if any.
func (it *PageIterator) Err() error {
	return it.err
}

// Pages returns how many pages have been fetched since the last reset.
func (it *PageIterator) Pages() int {
	return it.pages
}

// Reset rewinds the iterator to the first page and clears any error.
func (it *PageIterator) Reset() {
	it.buffer = nil
	it.bufferIdx = 0
	it.next = ""
	it.started = false
	it.hasMore = true
	it.pages = 0
	it.err = nil
}

func (it *PageIterator) fetch() (err error) {
	path := it.next
	var params url.Values
	if !it.started {
		path = it.path
		params = url.Values{}
		params.Set("limit", strconv.Itoa(it.limit))
		params.Set("offset", "0")
	}

	ctx, span := tracer.Start(it.ctx, "fetch-page",
		trace.WithAttributes(attribute.String(TraceAttributeURL, path)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, err := it.requester.Request(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}

	page, err := it.parser.ParsePage(path, body, it.itemsKey)
	if err != nil {
		return err
	}

	it.started = true
	it.pages++
	it.buffer = page.Items
	it.bufferIdx = 0
	it.next = page.Paging.Next

	// Any one of the three end signals is enough.
	if len(page.Items) == 0 || page.Paging.Ended() || page.Paging.Next == "" {
		it.hasMore = false
	}

	span.SetAttributes(attribute.Int(TraceAttributeItemCount, len(page.Items)))
	it.logger.Debug("fetched listing page", "url", path, "page", it.pages,
		"items", len(page.Items), "is_end", page.Paging.Ended(), "has_more", it.hasMore)

	return nil
}
