package zhihu

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
	"github.com/jamesprial/go-zhihu-oauth/test_helpers"
)

func peopleItem(i int) string {
	return fmt.Sprintf(`{"id":"hash-%d","name":"User %d","type":"people"}`, i, i)
}

func TestListing_PaginatesAllPages(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetupListing(test_helpers.ListingSpec{
		Path:      "answers/1/voters",
		PageSizes: []int{20, 20, 5},
		Item:      peopleItem,
	})

	answer, err := client.Answer(1)
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}

	ctx := context.Background()
	voters, err := answer.Voters().Iter(ctx).Collect(0)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(voters) != 45 {
		t.Fatalf("expected 45 voters, got %d", len(voters))
	}
	if got := server.CallCount("answers/1/voters"); got != 3 {
		t.Fatalf("expected exactly 3 page fetches, got %d", got)
	}

	// Order holds across page seams.
	for i, v := range voters {
		if want := fmt.Sprintf("hash-%d", i); v.ID() != want {
			t.Fatalf("voter %d: expected %s, got %s", i, want, v.ID())
		}
	}

	// Listing items are snapshots: their fields resolve without a detail fetch.
	name, err := voters[21].Name(ctx)
	if err != nil || name != "User 21" {
		t.Fatalf("Name() = (%q, %v)", name, err)
	}
	if server.CallCount("people/hash-21") != 0 {
		t.Error("a field present in the listing item should not trigger a detail fetch")
	}

	reqs := server.Requests()
	first := reqs[0]
	if first.Query.Get("limit") != "20" || first.Query.Get("offset") != "0" {
		t.Errorf("unexpected first page query %v", first.Query)
	}
	if reqs[1].Query.Get("offset") != "20" || reqs[2].Query.Get("offset") != "40" {
		t.Errorf("later pages should follow paging.next, got %v and %v", reqs[1].Query, reqs[2].Query)
	}
}

func TestListing_EndsOnMissingNext(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetupListing(test_helpers.ListingSpec{
		Path:      "questions/9/followers",
		PageSizes: []int{3, 2},
		Item:      peopleItem,
		OmitIsEnd: true,
	})

	q, _ := client.Question(9)
	followers, err := q.Followers().Iter(context.Background()).Collect(0)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(followers) != 5 {
		t.Fatalf("expected 5 followers, got %d", len(followers))
	}
	if got := server.CallCount("questions/9/followers"); got != 2 {
		t.Fatalf("expected 2 page fetches, got %d", got)
	}
}

func TestListing_EmptyListing(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetJSON("topics/5/followers", `{"data":[],"paging":{"is_end":true,"next":""}}`)

	topic, _ := client.Topic(5)
	it := topic.Followers().Iter(context.Background())

	_, err := it.Next()
	if !errors.Is(err, pkgerrs.ErrNoMoreItems) {
		t.Fatalf("expected ErrNoMoreItems, got %v", err)
	}
	if it.HasNext() {
		t.Error("HasNext should be false for an empty listing")
	}
}

func TestListing_ResetAndRestart(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetupListing(test_helpers.ListingSpec{
		Path:      "people/hash-1/followers",
		PageSizes: []int{2, 2},
		Item:      peopleItem,
	})

	p, _ := client.People("hash-1")
	listing := p.Followers()
	ctx := context.Background()

	it := listing.Iter(ctx)
	first, err := it.Collect(3)
	if err != nil || len(first) != 3 {
		t.Fatalf("Collect(3) = (%d items, %v)", len(first), err)
	}

	it.Reset()
	again, err := it.Collect(0)
	if err != nil || len(again) != 4 {
		t.Fatalf("Collect after Reset = (%d items, %v)", len(again), err)
	}
	if again[0].ID() != "hash-0" {
		t.Errorf("Reset should restart from the first item, got %s", again[0].ID())
	}

	// A second Iter on the same listing starts independently.
	fresh, err := listing.Iter(ctx).Collect(1)
	if err != nil || len(fresh) != 1 || fresh[0].ID() != "hash-0" {
		t.Fatalf("fresh iteration = (%v, %v)", fresh, err)
	}
}

func TestListing_PageFailure(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetupListing(test_helpers.ListingSpec{
		Path:       "answers/2/voters",
		PageSizes:  []int{20, 20, 5},
		Item:       peopleItem,
		FailOnPage: 2,
	})

	answer, _ := client.Answer(2)
	it := answer.Voters().Iter(context.Background())

	items, err := it.Collect(0)
	if len(items) != 20 {
		t.Fatalf("expected the 20 items before the failure, got %d", len(items))
	}
	var apiErr *pkgerrs.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected a 500 APIError, got %v", err)
	}
	if it.Err() == nil {
		t.Error("Err should report the page failure")
	}
	if it.HasNext() {
		t.Error("HasNext should be false after a page failure")
	}
}

func TestListing_AllYieldsPageErrorOnce(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetupListing(test_helpers.ListingSpec{
		Path:       "collections/3/answers",
		PageSizes:  []int{2, 2},
		Item:       func(i int) string { return fmt.Sprintf(`{"id":%d,"type":"answer"}`, i+100) },
		FailOnPage: 2,
	})

	c, _ := client.Collection(3)
	var ids []int64
	var errs []error
	for a, err := range c.Answers().Iter(context.Background()).All() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids = append(ids, a.ID())
	}

	if len(ids) != 2 || ids[0] != 100 || ids[1] != 101 {
		t.Errorf("unexpected ids %v", ids)
	}
	if len(errs) != 1 {
		t.Fatalf("expected the page error once, got %v", errs)
	}
}

func TestListing_BadItemDoesNotStopIteration(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetJSON("questions/7/answers", `{"data":[{"id":1},{"excerpt":"no id"},{"id":3}],"paging":{"is_end":true}}`)

	q, _ := client.Question(7)
	var ids []int64
	var invalid int
	for a, err := range q.Answers().Iter(context.Background()).All() {
		var refErr *pkgerrs.InvalidReferenceError
		if errors.As(err, &refErr) {
			invalid++
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, a.ID())
	}

	if invalid != 1 {
		t.Errorf("expected one invalid item, got %d", invalid)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("expected ids [1 3], got %v", ids)
	}
}

func TestListing_WithPageSize(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetJSON("columns/zhihuadmin/articles", `{"data":[{"id":1}],"paging":{"is_end":true}}`)

	col, _ := client.Column("zhihuadmin")
	listing := col.Articles()
	if listing.Path() != "columns/zhihuadmin/articles" {
		t.Fatalf("unexpected path %q", listing.Path())
	}

	if _, err := listing.WithPageSize(50).Iter(context.Background()).Collect(0); err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if got := server.Requests()[0].Query.Get("limit"); got != "50" {
		t.Errorf("expected limit 50, got %s", got)
	}

	server.ClearLog()
	if _, err := listing.Iter(context.Background()).Collect(0); err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if got := server.Requests()[0].Query.Get("limit"); got != "20" {
		t.Errorf("WithPageSize should not change the original listing, got limit %s", got)
	}
}

func TestListing_Activities(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetJSON("people/hash-1/activities", `{"data":[
		{"id":"a1","verb":"ANSWER_VOTE_UP","action_text":"voted up","created_time":1500000000,"target":{"type":"answer","id":11,"excerpt":"x"}},
		null,
		{"id":"a2","verb":"MEMBER_FOLLOW_QUESTION","created_time":1500000001,"target":{"type":"question","id":22,"title":"Q"}},
		{"id":"a3","verb":"MEMBER_CREATE_ARTICLE","created_time":1500000002,"target":{"type":"article","id":33}},
		{"id":"a4","verb":"MEMBER_FOLLOW_COLUMN","created_time":1500000003,"target":{"type":"column","id":"slug"}},
		{"id":"a5","verb":"UNKNOWN","created_time":1500000004,"target":{"type":"pin","id":1}}
	],"paging":{"is_end":true}}`)

	p, _ := client.People("hash-1")
	ctx := context.Background()

	var acts []*Activity
	var bad int
	for act, err := range p.Activities().Iter(ctx).All() {
		if err != nil {
			bad++
			continue
		}
		acts = append(acts, act)
	}

	if bad != 1 {
		t.Errorf("expected the unknown target kind to be reported once, got %d", bad)
	}
	if len(acts) != 4 {
		t.Fatalf("expected 4 activities, got %d", len(acts))
	}

	answer, ok := acts[0].Target.(*Answer)
	if !ok || answer.ID() != 11 || acts[0].Verb != "ANSWER_VOTE_UP" || acts[0].ActionText != "voted up" {
		t.Errorf("unexpected first activity %+v", acts[0])
	}
	if excerpt, err := answer.Excerpt(ctx); err != nil || excerpt != "x" {
		t.Errorf("Excerpt() = (%q, %v)", excerpt, err)
	}
	if q, ok := acts[1].Target.(*Question); !ok || q.ID() != 22 {
		t.Errorf("expected question target, got %T", acts[1].Target)
	}
	if _, ok := acts[2].Target.(*Article); !ok {
		t.Errorf("expected article target, got %T", acts[2].Target)
	}
	if c, ok := acts[3].Target.(*Column); !ok || c.ID() != "slug" {
		t.Errorf("expected column target, got %T", acts[3].Target)
	}
	if acts[3].CreatedTime != 1500000003 {
		t.Errorf("unexpected created time %d", acts[3].CreatedTime)
	}
}
