package internal

import (
	"fmt"
	"net/http"
	"strings"
	"unicode"

	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
)

const (
	// String id (url token) constraints
	maxTokenIDLength = 128

	// Page size constraints
	minPageSize = 1
	maxPageSize = 100

	// User agent constraints
	maxUserAgentLength = 256
)

// Validator provides validation operations for Zhihu API parameters.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateNumericID checks an id for kinds keyed by integer (answers, questions, ...).
func (v *Validator) ValidateNumericID(kind string, id int64) error {
	if id <= 0 {
		return &pkgerrs.ConfigError{Field: kind + " id", Message: fmt.Sprintf("id must be positive, got %d", id)}
	}
	return nil
}

// ValidateTokenID checks a string id (a person's url token or a column slug).
// Only characters that are safe inside a single URL path segment are allowed.
func (v *Validator) ValidateTokenID(kind string, id string) error {
	if id == "" {
		return &pkgerrs.ConfigError{Field: kind + " id", Message: "id cannot be empty"}
	}
	if len(id) > maxTokenIDLength {
		return &pkgerrs.ConfigError{Field: kind + " id", Message: fmt.Sprintf("id cannot exceed %d characters", maxTokenIDLength)}
	}
	for i, ch := range id {
		if !(ch >= 'a' && ch <= 'z') && !(ch >= 'A' && ch <= 'Z') && !(ch >= '0' && ch <= '9') && ch != '_' && ch != '-' && ch != '.' {
			return &pkgerrs.ConfigError{Field: kind + " id", Message: fmt.Sprintf("id contains invalid character '%c' at position %d", ch, i)}
		}
	}
	if id == "." || id == ".." {
		return &pkgerrs.ConfigError{Field: kind + " id", Message: "id cannot be a relative path segment"}
	}
	return nil
}

// ValidatePageSize checks the listing page size.
func (v *Validator) ValidatePageSize(size int) error {
	if size < minPageSize || size > maxPageSize {
		return &pkgerrs.ConfigError{Field: "PageSize", Message: fmt.Sprintf("page size must be between %d and %d, got %d", minPageSize, maxPageSize, size)}
	}
	return nil
}

// ValidateLogin checks login credentials before any request is made.
func (v *Validator) ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return &pkgerrs.ConfigError{Field: "email", Message: "email cannot be empty"}
	}
	if password == "" {
		return &pkgerrs.ConfigError{Field: "password", Message: "password cannot be empty"}
	}
	return nil
}

// ValidateMethod restricts raw API calls to the methods the service uses.
func (v *Validator) ValidateMethod(method string) error {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return nil
	default:
		return &pkgerrs.ConfigError{Field: "method", Message: fmt.Sprintf("unsupported HTTP method %q", method)}
	}
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func (v *Validator) ValidateUserAgent(ua string) error {
	// User-Agent cannot be empty (should have been set to default before this check)
	if len(ua) == 0 {
		return fmt.Errorf("user agent cannot be empty")
	}

	// Check for newline characters that could be used for header injection
	if strings.ContainsAny(ua, "\r\n") {
		return fmt.Errorf("user agent cannot contain newline characters")
	}
	if strings.ContainsFunc(ua, unicode.IsControl) {
		return fmt.Errorf("user agent cannot contain control characters")
	}

	if len(ua) > maxUserAgentLength {
		return fmt.Errorf("user agent too long (max %d characters)", maxUserAgentLength)
	}

	return nil
}
