package core

import (
	"errors"
	"fmt"

	"github.com/aretw0/mdninja/pkg/validate"
)

// Common errors.
var (
	ErrLoginFailed      = errors.New("login failed")
	ErrNotAuthenticated = errors.New("not signed in")
	ErrDomainTaken      = errors.New("that domain is taken")
	ErrClosed           = errors.New("service is closed")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrUnknownResult    = errors.New("unexpected response from server")
)

// APIError is returned for every non-200 reply. Response holds the parsed
// error body; Raw keeps the body verbatim when it was not JSON.
type APIError struct {
	Path       string
	StatusCode int
	Response   Response
	Raw        string
}

func (e *APIError) Error() string {
	detail := e.Response.Message
	if detail == "" {
		detail = e.Response.Result
	}
	if detail == "" {
		detail = e.Raw
	}
	if detail == "" {
		return fmt.Sprintf("%s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Path, e.StatusCode, detail)
}

// ValidationError is a client-side form check failure. Message is meant to
// be shown next to the offending field.
type ValidationError = validate.Error

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StatusCode returns the HTTP status of an *APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
