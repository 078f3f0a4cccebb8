package zhihu

import (
	"context"
	"encoding/json"
	"errors"
	"iter"

	"github.com/jamesprial/go-zhihu-oauth/internal"
	"github.com/jamesprial/go-zhihu-oauth/pkg/entity"
	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

// Listing is a one-to-many relation served by a paginated endpoint, such as
// an answer's voters. A Listing holds no cursor; every call to Iter starts
// from the first page.
type Listing[T any] struct {
	session   *entity.Session
	path      string
	itemsKey  string
	pageSize  int
	transform func(json.RawMessage) (T, error)
}

func newListing[T any](s *entity.Session, path string, transform func(json.RawMessage) (T, error)) *Listing[T] {
	return &Listing[T]{
		session:   s,
		path:      path,
		itemsKey:  internal.DefaultItemsKey,
		pageSize:  s.PageSize,
		transform: transform,
	}
}

// listingOf builds the listing at template, expanded with the owner's id.
func listingOf[T entity.Entity](owner entity.Entity, template, kind string) *Listing[T] {
	s := entity.BaseOf(owner).Session()
	return newListing(s, entity.ExpandPath(template, owner.EntityID()), entity.As[T](kind, s))
}

// Path returns the endpoint of the first page.
func (l *Listing[T]) Path() string {
	return l.path
}

// WithPageSize returns a copy of the listing that requests n items per page.
// Values are clamped to the range the API accepts.
func (l *Listing[T]) WithPageSize(n int) *Listing[T] {
	cp := *l
	cp.pageSize = n
	return &cp
}

// Iter starts a new iteration from the first page.
func (l *Listing[T]) Iter(ctx context.Context) *Iterator[T] {
	return &Iterator[T]{
		pages:     internal.NewPageIterator(ctx, l.session.Fetcher, l.path, l.itemsKey, l.pageSize, l.session.Logger),
		transform: l.transform,
	}
}

// Iterator yields the items of a Listing in server order. Pages are fetched
// only when the previous page has been consumed. It is not safe for concurrent use.
type Iterator[T any] struct {
	pages     *internal.PageIterator
	transform func(json.RawMessage) (T, error)
}

// HasNext returns true if there may be more items to iterate through. The
// final page can turn out to be empty, so Next may still return ErrNoMoreItems.
func (it *Iterator[T]) HasNext() bool {
	return it.pages.HasNext()
}

// Next returns the next item. It returns pkgerrs.ErrNoMoreItems once the
// listing is exhausted. A page fetch failure stops the iteration and is also
// reported by Err; an item that cannot be transformed is reported but the
// iteration may continue.
func (it *Iterator[T]) Next() (T, error) {
	var zero T
	raw, err := it.pages.Next()
	if err != nil {
		return zero, err
	}
	return it.transform(raw)
}

// Err returns the page fetch error that stopped the iteration, if any.
func (it *Iterator[T]) Err() error {
	return it.pages.Err()
}

// Reset rewinds the iterator to the first page.
func (it *Iterator[T]) Reset() {
	it.pages.Reset()
}

// Collect fetches all remaining items up to maxItems. Zero or less collects everything.
func (it *Iterator[T]) Collect(maxItems int) ([]T, error) {
	var items []T
	for it.HasNext() && (maxItems <= 0 || len(items) < maxItems) {
		item, err := it.Next()
		if errors.Is(err, pkgerrs.ErrNoMoreItems) {
			break
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

// All returns the remaining items as a range-over-func sequence. A page fetch
// error is yielded once and ends the sequence.
//
//	for voter, err := range answer.Voters().Iter(ctx).All() {
//		if err != nil {
//			return err
//		}
//		...
//	}
func (it *Iterator[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, err := it.Next()
			if errors.Is(err, pkgerrs.ErrNoMoreItems) {
				return
			}
			if !yield(item, err) {
				return
			}
			if err != nil && it.Err() != nil {
				return
			}
		}
	}
}

// Activity is one entry of a user's or topic's activity feed. Its target may
// be any registered kind.
type Activity struct {
	ID          types.ID
	Verb        string
	ActionText  string
	CreatedTime int64
	Target      entity.Entity
}

type activityItem struct {
	ID          types.ID        `json:"id"`
	Verb        string          `json:"verb"`
	ActionText  string          `json:"action_text"`
	CreatedTime int64           `json:"created_time"`
	Target      json.RawMessage `json:"target"`
}

func activities(s *entity.Session, path string) *Listing[*Activity] {
	return newListing(s, path, func(raw json.RawMessage) (*Activity, error) {
		var item activityItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, &pkgerrs.MalformedResponseError{URL: path, Expected: "an activity object", Err: err}
		}
		if len(item.Target) == 0 {
			return nil, &pkgerrs.MalformedResponseError{URL: path, Expected: "an activity with a target"}
		}

		target, err := s.Registry.FromTypedItem(item.Target, s)
		if err != nil {
			return nil, err
		}

		return &Activity{
			ID:          item.ID,
			Verb:        item.Verb,
			ActionText:  item.ActionText,
			CreatedTime: item.CreatedTime,
			Target:      target,
		}, nil
	})
}
