package internal

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
)

// NewHTTPClient builds the default HTTP client: HTTP/2 enabled on a clone of
// the default transport, instrumented with OpenTelemetry.
func NewHTTPClient(timeout time.Duration) *http.Client {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	transport := base.Clone()
	// Only fails when h2 is already registered on the transport.
	_ = http2.ConfigureTransport(transport)

	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(transport),
	}
}
