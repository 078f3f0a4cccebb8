// Package errors defines common error types used throughout the Zhihu API client.
package errors

import (
	"fmt"
	"strings"
)

// joinParts joins error message parts with the specified separator.
func joinParts(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// ErrNoMoreItems is returned by listing iterators once the final page has been consumed.
var ErrNoMoreItems = &StateError{Operation: "iterate", Message: "no more items available"}

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// AuthError indicates an authentication failure.
type AuthError struct {
	// StatusCode is the HTTP status code (if from an HTTP response)
	StatusCode int
	// Message contains the detailed error message
	Message string
	// Body contains the raw response body (if available)
	Body string
	// Err contains the underlying error if available
	Err error
}

func (e *AuthError) Error() string {
	var parts []string
	parts = append(parts, "auth error")

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status code %d", e.StatusCode))
	}

	if e.Body != "" {
		parts = append(parts, fmt.Sprintf("body: %q", e.Body))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("err: %v", e.Err))
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + ": " + joinParts(parts[1:], ", ")
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NeedCaptchaError is returned by Login when the service demands a captcha
// and none was supplied. Fetch the image with Client.Captcha and retry.
type NeedCaptchaError struct{}

func (e *NeedCaptchaError) Error() string {
	return "auth error: captcha required, call Captcha() and login again with the solved text"
}

// StateError indicates an operation was attempted when the client is not ready.
type StateError struct {
	// Operation is the name of the operation that was attempted
	Operation string
	// Message contains the detailed error message
	Message string
}

func (e *StateError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("state error during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("state error: %s", e.Message)
}

// APIError represents an error document returned by the Zhihu API.
type APIError struct {
	// StatusCode is the HTTP status code
	StatusCode int
	// Code is the numeric error code from the error document (if available)
	Code int
	// Name is the symbolic error name, e.g. "ERR_CONTENT_NOT_FOUND"
	Name string
	// Message is the human-readable error message
	Message string
}

func (e *APIError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("zhihu API error (status %d, code %d, %s): %s", e.StatusCode, e.Code, e.Name, e.Message)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
}

// TransportError indicates the HTTP exchange itself failed: the request could not
// be sent, or the server answered with a non-2xx status.
type TransportError struct {
	// Method is the HTTP method of the failed request
	Method string
	// URL is the URL that was being accessed
	URL string
	// StatusCode is the HTTP status code, zero if no response was received
	StatusCode int
	// Err contains the underlying error
	Err error
}

func (e *TransportError) Error() string {
	msg := "request failed"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: %s %s (status %d): %s", e.Method, e.URL, e.StatusCode, msg)
	}
	return fmt.Sprintf("transport error: %s %s: %s", e.Method, e.URL, msg)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates a response could not be decoded, or lacked a
// marker the caller depends on (pagination metadata, the item array, a JSON object).
type MalformedResponseError struct {
	// URL is the URL whose response was malformed, if known
	URL string
	// Expected describes the shape that was expected
	Expected string
	// Err contains the underlying decode error if available
	Err error
}

func (e *MalformedResponseError) Error() string {
	var sb strings.Builder
	sb.WriteString("malformed response")
	if e.URL != "" {
		fmt.Fprintf(&sb, " from %s", e.URL)
	}
	if e.Expected != "" {
		fmt.Fprintf(&sb, ": expected %s", e.Expected)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// MissingFieldError indicates a detail document was fetched successfully but
// does not carry the requested field. This usually means the library and the
// remote API disagree about an entity's schema.
type MissingFieldError struct {
	Kind  string
	ID    string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q on %s %s", e.Field, e.Kind, e.ID)
}

// InvalidReferenceError indicates a reference value could not be matched to a
// registered entity kind, or carried no usable id.
type InvalidReferenceError struct {
	// Field is the field or listing the reference was read from
	Field string
	// Kind is the kind tag that was found (may be empty)
	Kind string
	// Message contains the detailed error message
	Message string
}

func (e *InvalidReferenceError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("invalid reference in %s (kind %q): %s", e.Field, e.Kind, e.Message)
	}
	return fmt.Sprintf("invalid reference in %s: %s", e.Field, e.Message)
}
