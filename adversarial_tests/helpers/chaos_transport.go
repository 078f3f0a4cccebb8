package helpers

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosMode defines the type of chaos to inject
type ChaosMode int

const (
	// ChaosNone passes requests through untouched
	ChaosNone ChaosMode = iota

	// ChaosConnectionReset fails the round trip with ECONNRESET
	ChaosConnectionReset

	// ChaosPartialRead returns a body that fails after a few bytes
	ChaosPartialRead

	// ChaosEmptyBody returns 200 with no body
	ChaosEmptyBody

	// ChaosInvalidJSON returns 200 with a body that is not JSON
	ChaosInvalidJSON

	// ChaosHTMLError returns a 502 HTML page, as a proxy would
	ChaosHTMLError

	// ChaosIntermittent applies one of the failure modes at FailureRate
	ChaosIntermittent
)

// ErrPartialRead is returned by bodies cut short by ChaosPartialRead.
var ErrPartialRead = errors.New("chaos: connection closed mid-body")

// ChaosConfig configures the chaos transport
type ChaosConfig struct {
	Mode ChaosMode

	// FailureRate is the probability of failure in ChaosIntermittent mode.
	FailureRate float64

	// PartialReadBytes is how much of the real body ChaosPartialRead lets through.
	PartialReadBytes int

	// Seed makes ChaosIntermittent reproducible.
	Seed int64
}

// ChaosTransport is an http.RoundTripper that injects failures in front of
// a real transport.
type ChaosTransport struct {
	next   http.RoundTripper
	config ChaosConfig

	mu  sync.Mutex
	rnd *rand.Rand

	requests atomic.Int64
	injected atomic.Int64
}

// NewChaosTransport wraps next, or http.DefaultTransport when nil.
func NewChaosTransport(next http.RoundTripper, config ChaosConfig) *ChaosTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &ChaosTransport{
		next:   next,
		config: config,
		rnd:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Client returns an http.Client using the transport.
func (c *ChaosTransport) Client() *http.Client {
	return &http.Client{Transport: c}
}

// Requests returns the number of round trips attempted.
func (c *ChaosTransport) Requests() int64 { return c.requests.Load() }

// Injected returns the number of round trips that were sabotaged.
func (c *ChaosTransport) Injected() int64 { return c.injected.Load() }

func (c *ChaosTransport) pick() ChaosMode {
	if c.config.Mode != ChaosIntermittent {
		return c.config.Mode
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rnd.Float64() >= c.config.FailureRate {
		return ChaosNone
	}
	modes := []ChaosMode{ChaosConnectionReset, ChaosPartialRead, ChaosEmptyBody, ChaosInvalidJSON, ChaosHTMLError}
	return modes[c.rnd.Intn(len(modes))]
}

// RoundTrip implements http.RoundTripper
func (c *ChaosTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.requests.Add(1)

	mode := c.pick()
	if mode != ChaosNone {
		c.injected.Add(1)
	}

	switch mode {
	case ChaosConnectionReset:
		return nil, syscall.ECONNRESET

	case ChaosEmptyBody:
		return synthetic(req, http.StatusOK, "application/json", ""), nil

	case ChaosInvalidJSON:
		return synthetic(req, http.StatusOK, "application/json", `{"id": 1, "title": "unterminated`), nil

	case ChaosHTMLError:
		return synthetic(req, http.StatusBadGateway, "text/html", "<html><body>502 Bad Gateway</body></html>"), nil

	case ChaosPartialRead:
		resp, err := c.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		resp.Body = &partialReadCloser{r: resp.Body, remaining: c.config.PartialReadBytes}
		return resp, nil

	default:
		return c.next.RoundTrip(req)
	}
}

func synthetic(req *http.Request, status int, contentType, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Header:        http.Header{"Content-Type": []string{contentType}},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
	}
}

type partialReadCloser struct {
	r         io.ReadCloser
	remaining int
}

func (p *partialReadCloser) Read(buf []byte) (int, error) {
	if p.remaining <= 0 {
		return 0, ErrPartialRead
	}
	if len(buf) > p.remaining {
		buf = buf[:p.remaining]
	}
	n, err := p.r.Read(buf)
	p.remaining -= n
	if err == io.EOF {
		return n, ErrPartialRead
	}
	return n, err
}

func (p *partialReadCloser) Close() error {
	return p.r.Close()
}

// StaticResponse is a RoundTripper that always answers with the same body.
type StaticResponse struct {
	Status int
	Body   []byte
}

// RoundTrip implements http.RoundTripper
func (s StaticResponse) RoundTrip(req *http.Request) (*http.Response, error) {
	status := s.Status
	if status == 0 {
		status = http.StatusOK
	}
	resp := synthetic(req, status, "application/json", "")
	resp.Body = io.NopCloser(bytes.NewReader(s.Body))
	resp.ContentLength = int64(len(s.Body))
	return resp, nil
}
