package test_helpers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockServer provides a configurable mock Zhihu API server for testing
type MockServer struct {
	server     *httptest.Server
	mu         sync.RWMutex
	responses  map[string]*MockResponse
	defaultRsp *MockResponse
	requestLog []RequestEntry
	callCount  map[string]int
}

// RequestEntry logs incoming requests for assertions
type RequestEntry struct {
	Method    string
	Path      string
	Query     url.Values
	Headers   http.Header
	Form      url.Values
	Timestamp time.Time
}

// MockResponse defines a mock API response. When Handler is set it computes
// the response from the request and Status/Body are ignored.
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
	Handler func(r *http.Request) (int, string)
}

// NewMockServer creates a new mock server instance. Unconfigured paths answer
// 404 with a Zhihu error document.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]*MockResponse),
		callCount: make(map[string]int),
		defaultRsp: &MockResponse{
			Status: http.StatusNotFound,
			Body:   `{"error":{"code":404,"name":"NotFoundError","message":"resource not found"}}`,
		},
	}
	ms.server = httptest.NewServer(ms)
	return ms
}

// URL returns the base URL of the mock server, with a trailing slash.
func (ms *MockServer) URL() string {
	return ms.server.URL + "/"
}

// Close shuts down the mock server
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse configures the response for a path (without leading slash) and any method.
func (ms *MockServer) SetResponse(path string, response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[key("", path)] = response
}

// SetMethodResponse configures the response for one method on a path.
func (ms *MockServer) SetMethodResponse(method, path string, response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[key(method, path)] = response
}

// SetJSON is shorthand for a 200 response with a JSON body.
func (ms *MockServer) SetJSON(path, body string) {
	ms.SetResponse(path, &MockResponse{Status: http.StatusOK, Body: body})
}

// CallCount returns how many requests hit path (without leading slash).
func (ms *MockServer) CallCount(path string) int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.callCount[path]
}

// TotalCalls returns the number of requests served.
func (ms *MockServer) TotalCalls() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.requestLog)
}

// Requests returns a copy of the request log.
func (ms *MockServer) Requests() []RequestEntry {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return append([]RequestEntry{}, ms.requestLog...)
}

// ClearLog clears the request log and call counts.
func (ms *MockServer) ClearLog() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requestLog = ms.requestLog[:0]
	ms.callCount = make(map[string]int)
}

// ServeHTTP implements http.Handler
func (ms *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	entry := RequestEntry{
		Method:    r.Method,
		Path:      path,
		Query:     r.URL.Query(),
		Headers:   r.Header.Clone(),
		Timestamp: time.Now(),
	}
	if r.Body != nil {
		body, _ := io.ReadAll(r.Body)
		entry.Form, _ = url.ParseQuery(string(body))
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	ms.mu.Lock()
	ms.callCount[path]++
	ms.requestLog = append(ms.requestLog, entry)
	response, ok := ms.responses[key(r.Method, path)]
	if !ok {
		response, ok = ms.responses[key("", path)]
	}
	if !ok {
		response = ms.defaultRsp
	}
	ms.mu.Unlock()

	status, body := response.Status, response.Body
	if response.Handler != nil {
		status, body = response.Handler(r)
	}
	if status == 0 {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	for k, v := range response.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func key(method, path string) string {
	return method + " " + path
}

// ListingSpec describes a paginated endpoint served by SetupListing.
type ListingSpec struct {
	// Path is the listing path without leading slash.
	Path string
	// PageSizes lists how many items each page carries.
	PageSizes []int
	// Item renders the item at a zero-based position in the whole listing.
	Item func(i int) string
	// FailOnPage makes the given one-based page answer 500.
	FailOnPage int
	// OmitIsEnd leaves is_end out of every page, so only the missing next
	// cursor ends the listing.
	OmitIsEnd bool
}

// SetupListing serves listing.Path as an offset-paginated listing. Every page
// but the last carries an absolute paging.next; the last sets is_end.
func (ms *MockServer) SetupListing(listing ListingSpec) {
	ms.SetResponse(listing.Path, &MockResponse{Handler: func(r *http.Request) (int, string) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		page, start := 0, 0
		for page < len(listing.PageSizes) && start < offset {
			start += listing.PageSizes[page]
			page++
		}
		if page >= len(listing.PageSizes) {
			return http.StatusOK, `{"data":[],"paging":{"is_end":true,"next":""}}`
		}
		if listing.FailOnPage == page+1 {
			return http.StatusInternalServerError, `{"error":{"code":500,"name":"InternalError","message":"page unavailable"}}`
		}

		items := make([]string, listing.PageSizes[page])
		for i := range items {
			items[i] = listing.Item(start + i)
		}

		last := page == len(listing.PageSizes)-1
		next := ""
		if !last {
			next = fmt.Sprintf("%s%s?limit=%d&offset=%d", ms.URL(), listing.Path, listing.PageSizes[page], start+listing.PageSizes[page])
		}

		paging := fmt.Sprintf(`{"is_end":%t,"next":%q}`, last, next)
		if listing.OmitIsEnd {
			paging = fmt.Sprintf(`{"next":%q}`, next)
		}
		return http.StatusOK, fmt.Sprintf(`{"data":[%s],"paging":%s}`, strings.Join(items, ","), paging)
	}})
}

// ZhihuMockServer is a MockServer with the login endpoints configured.
type ZhihuMockServer struct {
	*MockServer
}

// MockToken is the sign-in response served by NewZhihuMockServer.
const MockToken = `{"access_token":"mock_access_token","cookie":{"z_c0":"mock"},"expires_in":7776000,"lock_in":1800,"refresh_token":"mock_refresh","token_type":"bearer","uid":"mock_uid","user_id":123456}`

// NewZhihuMockServer creates a mock server answering captcha and sign_in.
// Captcha is not required by default; see RequireCaptcha.
func NewZhihuMockServer() *ZhihuMockServer {
	zs := &ZhihuMockServer{MockServer: NewMockServer()}
	zs.SetMethodResponse(http.MethodGet, "captcha", &MockResponse{Status: http.StatusOK, Body: `{"show_captcha":false}`})
	zs.SetMethodResponse(http.MethodPost, "sign_in", &MockResponse{Status: http.StatusOK, Body: MockToken})
	return zs
}

// RequireCaptcha makes the captcha endpoints demand and accept a captcha.
// The PUT returns imgBase64 and the POST accepts only answer.
func (zs *ZhihuMockServer) RequireCaptcha(imgBase64, answer string) {
	zs.SetMethodResponse(http.MethodGet, "captcha", &MockResponse{Status: http.StatusOK, Body: `{"show_captcha":true}`})
	zs.SetMethodResponse(http.MethodPut, "captcha", &MockResponse{Status: http.StatusAccepted, Body: fmt.Sprintf(`{"img_base64":%q}`, imgBase64)})
	zs.SetMethodResponse(http.MethodPost, "captcha", &MockResponse{Handler: func(r *http.Request) (int, string) {
		if r.PostFormValue("input_text") != answer {
			return http.StatusOK, `{"error":"captcha mismatch"}`
		}
		return http.StatusCreated, `{"success":true}`
	}})
}
