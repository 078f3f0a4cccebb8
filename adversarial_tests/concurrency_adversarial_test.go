package adversarial_tests

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	zhihu "github.com/jamesprial/go-zhihu-oauth"
	"github.com/jamesprial/go-zhihu-oauth/adversarial_tests/helpers"
	"github.com/jamesprial/go-zhihu-oauth/internal"
	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
	"github.com/jamesprial/go-zhihu-oauth/test_helpers"
)

// TestConcurrentEntitiesShareClient checks that one Client serves many
// goroutines as long as each owns its entities.
func TestConcurrentEntitiesShareClient(t *testing.T) {
	const n = 50

	server := newServer(t)
	for i := 1; i <= n; i++ {
		server.SetJSON(fmt.Sprintf("answers/%d", i), fmt.Sprintf(`{"id":%d,"voteup_count":%d}`, i, i*10))
	}
	client := newClient(t, server.URL(), nil)

	errs := helpers.CoordinatedStart(n, func(id int) error {
		answer, err := client.Answer(int64(id + 1))
		if err != nil {
			return err
		}
		votes, err := answer.VoteupCount(context.Background())
		if err != nil {
			return err
		}
		if votes != int64((id+1)*10) {
			return fmt.Errorf("answer %d: got %d votes", id+1, votes)
		}
		// A second read must come from the instance cache.
		if _, err := answer.VoteupCount(context.Background()); err != nil {
			return err
		}
		return nil
	})
	for _, err := range errs {
		t.Error(err)
	}

	for i := 1; i <= n; i++ {
		if calls := server.CallCount(fmt.Sprintf("answers/%d", i)); calls != 1 {
			t.Errorf("answers/%d fetched %d times, want 1", i, calls)
		}
	}
}

// TestConcurrentIteratorsOverOneListing checks that iterators started from
// the same Listing keep independent cursors.
func TestConcurrentIteratorsOverOneListing(t *testing.T) {
	server := newServer(t)
	server.SetupListing(test_helpers.ListingSpec{
		Path:      "questions/7/followers",
		PageSizes: []int{20, 20, 5},
		Item: func(i int) string {
			return fmt.Sprintf(`{"id":"user-%d","name":"User %d"}`, i, i)
		},
	})
	client := newClient(t, server.URL(), nil)

	question, _ := client.Question(7)
	listing := question.Followers()

	errs := helpers.CoordinatedStart(10, func(int) error {
		followers, err := listing.Iter(context.Background()).Collect(0)
		if err != nil {
			return err
		}
		if len(followers) != 45 {
			return fmt.Errorf("got %d followers, want 45", len(followers))
		}
		for i, f := range followers {
			if want := fmt.Sprintf("user-%d", i); f.ID() != want {
				return fmt.Errorf("position %d: got %s, want %s", i, f.ID(), want)
			}
		}
		return nil
	})
	for _, err := range errs {
		t.Error(err)
	}

	if calls := server.CallCount("questions/7/followers"); calls != 30 {
		t.Errorf("expected 30 page fetches, got %d", calls)
	}
}

// TestNoGoroutineLeak checks that detail fetches and iterations leave no
// goroutines behind once the connections are closed.
func TestNoGoroutineLeak(t *testing.T) {
	before := helpers.TakeGoroutineSnapshot()

	server := test_helpers.NewZhihuMockServer()
	server.SetJSON("topics/1", `{"id":1,"name":"Go"}`)
	server.SetupListing(test_helpers.ListingSpec{
		Path:      "topics/1/followers",
		PageSizes: []int{10, 10},
		Item:      func(i int) string { return fmt.Sprintf(`{"id":"u%d"}`, i) },
	})

	httpClient := &http.Client{}
	client := newClient(t, server.URL(), httpClient)

	errs := helpers.CoordinatedStart(20, func(int) error {
		topic, err := client.Topic(1)
		if err != nil {
			return err
		}
		if _, err := topic.Name(context.Background()); err != nil {
			return err
		}
		_, err = topic.Followers().Iter(context.Background()).Collect(0)
		return err
	})
	for _, err := range errs {
		t.Error(err)
	}

	httpClient.CloseIdleConnections()
	server.Close()

	if err := helpers.WaitForGoroutineCleanup(before, 2*time.Second, 3); err != nil {
		t.Error(err)
	}
}

// TestRateLimitUnderContention checks that concurrent callers share one limiter.
func TestRateLimitUnderContention(t *testing.T) {
	server := newServer(t)
	server.SetJSON("people/self", `{"id":"me"}`)

	client, err := zhihu.NewClient(&zhihu.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      server.URL(),
		HTTPClient:   &http.Client{},
		RateLimit:    &internal.RateLimitConfig{RequestsPerMinute: 600, Burst: 1},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := client.SetToken(&types.Token{AccessToken: "a", UserID: "1"}); err != nil {
		t.Fatalf("SetToken returned error: %v", err)
	}

	start := time.Now()
	errs := helpers.CoordinatedStart(5, func(int) error {
		_, err := client.TestAPI(context.Background(), http.MethodGet, "people/self", nil, nil)
		return err
	})
	elapsed := time.Since(start)

	for _, err := range errs {
		t.Error(err)
	}
	// 10 requests per second with no burst headroom: the fifth waits ~400ms.
	if elapsed < 350*time.Millisecond {
		t.Errorf("expected the limiter to spread 5 requests over ~400ms, took %v", elapsed)
	}
}

// TestRetryAfterDefersEveryCaller checks that a Retry-After answer holds
// back requests from all goroutines.
func TestRetryAfterDefersEveryCaller(t *testing.T) {
	var throttled atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if throttled.CompareAndSwap(false, true) {
			w.Header().Set("Retry-After", "0.3")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"name":"ERR_TOO_MANY","message":"slow down"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"me"}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL+"/", nil)
	ctx := context.Background()

	_, err := client.TestAPI(ctx, http.MethodGet, "people/self", nil, nil)
	var apiErr *pkgerrs.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected a 429 APIError, got %v", err)
	}

	start := time.Now()
	errs := helpers.CoordinatedStart(5, func(int) error {
		_, err := client.TestAPI(ctx, http.MethodGet, "people/self", nil, nil)
		return err
	})
	for _, err := range errs {
		t.Error(err)
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("expected callers to wait out Retry-After, took %v", elapsed)
	}
}

// TestCanceledWaitersReturnPromptly checks that a caller queued behind the
// limiter gives up when its context ends.
func TestCanceledWaitersReturnPromptly(t *testing.T) {
	server := newServer(t)
	server.SetJSON("people/self", `{"id":"me"}`)

	client, err := zhihu.NewClient(&zhihu.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      server.URL(),
		HTTPClient:   &http.Client{},
		RateLimit:    &internal.RateLimitConfig{RequestsPerMinute: 1, Burst: 1},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_ = client.SetToken(&types.Token{AccessToken: "a", UserID: "1"})

	if _, err := client.TestAPI(context.Background(), http.MethodGet, "people/self", nil, nil); err != nil {
		t.Fatalf("first request returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = client.TestAPI(ctx, http.MethodGet, "people/self", nil, nil)
	var transportErr *pkgerrs.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected the waiter to give up quickly, took %v", elapsed)
	}
	if calls := server.CallCount("people/self"); calls != 1 {
		t.Errorf("expected the second request to stay unsent, got %d calls", calls)
	}
}
