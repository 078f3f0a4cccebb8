package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
)

// Credentials supplies the Authorization header attached to every request.
type Credentials interface {
	Authorization(ctx context.Context) (string, error)
}

// Client manages communication with the Zhihu API. It is the authenticated
// fetcher behind every entity and listing: one call, one parsed JSON document.
type Client struct {
	client    *http.Client
	BaseURL   *url.URL
	UserAgent string
	creds     Credentials
	logger    *slog.Logger
	parser    *Parser

	limiter        *rate.Limiter
	mu             sync.Mutex
	forceWaitUntil time.Time
}

// RateLimitConfig controls how requests are throttled before reaching Zhihu.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

const (
	DefaultRequestsPerMinute = 60
	DefaultRateLimitBurst    = 10
	SecondsPerMinute         = 60.0
	ParseFloatBitSize        = 64

	// RequestIDHeader carries a per-request id so client logs can be matched with server logs.
	RequestIDHeader = "X-Request-Id"
)

// NewClient returns a new Zhihu API client.
// If a nil httpClient is provided, http.DefaultClient will be used. A nil creds
// sends requests without an Authorization header.
func NewClient(httpClient *http.Client, creds Credentials, baseURL string, userAgent string, rateCfg *RateLimitConfig, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	if rateCfg == nil {
		rateCfg = &RateLimitConfig{}
	}

	c := &Client{
		client:    httpClient,
		BaseURL:   parsedURL,
		UserAgent: userAgent,
		creds:     creds,
		logger:    logger,
		parser:    NewParser(),
		limiter:   buildLimiter(*rateCfg),
	}

	return c, nil
}

// NewRequest creates an API request. A relative URL can be provided in path,
// in which case it is resolved relative to the BaseURL of the Client; absolute
// URLs (such as a listing's next-page cursor) are used as given. params are
// merged into the query string and a non-nil form is sent url-encoded.
func (c *Client) NewRequest(ctx context.Context, method, path string, params url.Values, form url.Values) (*http.Request, error) {
	u, err := c.BaseURL.Parse(path)
	if err != nil {
		return nil, &pkgerrs.TransportError{Method: method, URL: path, Err: err}
	}

	if len(params) > 0 {
		q := u.Query()
		for key, values := range params {
			q.Del(key)
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &pkgerrs.TransportError{Method: method, URL: u.String(), Err: err}
	}

	if c.creds != nil {
		authorization, err := c.creds.Authorization(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", authorization)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return req, nil
}

// Do sends an API request and returns the raw JSON body. A non-2xx status
// is returned as a TransportError wrapping the APIError decoded from the body;
// a body that is not valid JSON is returned as a MalformedResponseError.
func (c *Client) Do(req *http.Request) (json.RawMessage, error) {
	target := req.URL.String()

	if err := c.waitForRateLimit(req.Context()); err != nil {
		return nil, &pkgerrs.TransportError{Method: req.Method, URL: target, Err: err}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("zhihu api request failed", "method", req.Method, "url", target,
			"request_id", req.Header.Get(RequestIDHeader), "error", err)
		return nil, &pkgerrs.TransportError{Method: req.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	c.applyRateHeaders(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.TransportError{Method: req.Method, URL: target, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug("zhihu api request", "method", req.Method, "url", target,
		"request_id", req.Header.Get(RequestIDHeader), "status", resp.StatusCode,
		"bytes", len(body), "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &pkgerrs.TransportError{
			Method:     req.Method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        c.parser.ParseAPIError(resp.StatusCode, body),
		}
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, &pkgerrs.MalformedResponseError{URL: target, Expected: "a JSON document"}
	}

	return json.RawMessage(body), nil
}

// Request builds and sends a request in one step.
func (c *Client) Request(ctx context.Context, method, path string, params url.Values, form url.Values) (json.RawMessage, error) {
	req, err := c.NewRequest(ctx, method, path, params, form)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / SecondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	if err := c.waitForForcedDelay(ctx); err != nil {
		return err
	}

	if c.limiter == nil {
		return nil
	}

	return c.limiter.Wait(ctx)
}

func (c *Client) waitForForcedDelay(ctx context.Context) error {
	for {
		c.mu.Lock()
		waitUntil := c.forceWaitUntil
		c.mu.Unlock()

		if waitUntil.IsZero() {
			return nil
		}

		now := time.Now()
		if !now.Before(waitUntil) {
			c.clearForcedDelay(waitUntil)
			return nil
		}

		timer := time.NewTimer(waitUntil.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			c.clearForcedDelay(waitUntil)
		}
	}
}

func (c *Client) clearForcedDelay(previous time.Time) {
	c.mu.Lock()
	if previous.Equal(c.forceWaitUntil) {
		c.forceWaitUntil = time.Time{}
	}
	c.mu.Unlock()
}

func (c *Client) applyRateHeaders(resp *http.Response) {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return
	}
	if seconds, err := strconv.ParseFloat(retryAfter, ParseFloatBitSize); err == nil && seconds > 0 {
		c.deferRequests(time.Duration(seconds * float64(time.Second)))
	}
}

func (c *Client) deferRequests(d time.Duration) {
	if d <= 0 {
		return
	}

	until := time.Now().Add(d)

	c.mu.Lock()
	if until.After(c.forceWaitUntil) {
		c.forceWaitUntil = until
	}
	c.mu.Unlock()
}
