package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/marmos91/binlayout/pkg/codec"
	"github.com/marmos91/binlayout/pkg/registry"
)

// APIError is an error response from the API, decoded from its
// application/problem+json body when there is one.
type APIError struct {
	StatusCode int    `json:"status"`
	Type       string `json:"type,omitempty"`
	Title      string `json:"title"`
	Detail     string `json:"detail,omitempty"`

	// Field and Offset locate codec failures.
	Field  string `json:"field,omitempty"`
	Offset *int   `json:"offset,omitempty"`
}

func newAPIError(status int, body []byte) *APIError {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Title != "" {
		apiErr.StatusCode = status
		return &apiErr
	}
	return &APIError{
		StatusCode: status,
		Title:      http.StatusText(status),
		Detail:     strings.TrimSpace(string(body)),
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Title
	if e.Detail != "" {
		msg = e.Detail
	}
	if e.Field != "" && !strings.Contains(msg, e.Field) {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	return fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
}

// Is maps statuses onto the sentinel errors of the local packages, so
// errors.Is(err, registry.ErrNotFound) holds for a 404.
func (e *APIError) Is(target error) bool {
	switch target {
	case registry.ErrNotFound:
		return e.IsNotFound()
	case codec.ErrInputTooLarge:
		return e.StatusCode == http.StatusRequestEntityTooLarge
	}
	return false
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFound returns true if this is a not found error.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsValidationError returns true if the request was rejected as malformed.
func (e *APIError) IsValidationError() bool {
	return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
}
