package adversarial_tests

import (
	"net/http"
	"testing"

	zhihu "github.com/jamesprial/go-zhihu-oauth"
	"github.com/jamesprial/go-zhihu-oauth/internal"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
	"github.com/jamesprial/go-zhihu-oauth/test_helpers"
)

var unlimited = &internal.RateLimitConfig{RequestsPerMinute: 600000, Burst: 1000}

// newServer starts a mock API server that is closed with the test.
func newServer(t *testing.T) *test_helpers.ZhihuMockServer {
	t.Helper()
	server := test_helpers.NewZhihuMockServer()
	t.Cleanup(server.Close)
	return server
}

// newClient returns a logged-in client for baseURL. A nil httpClient uses a
// plain http.Client.
func newClient(t *testing.T, baseURL string, httpClient *http.Client) *zhihu.Client {
	t.Helper()

	client := newLoggedOutClient(t, baseURL, httpClient)
	if err := client.SetToken(&types.Token{AccessToken: "mock_access_token", UserID: "123456"}); err != nil {
		t.Fatalf("SetToken returned error: %v", err)
	}
	return client
}

func newLoggedOutClient(t *testing.T, baseURL string, httpClient *http.Client) *zhihu.Client {
	t.Helper()

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	client, err := zhihu.NewClient(&zhihu.Config{
		ClientID:     "adversarial-id",
		ClientSecret: "adversarial-secret",
		BaseURL:      baseURL,
		HTTPClient:   httpClient,
		RateLimit:    unlimited,
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}
