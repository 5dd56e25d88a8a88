package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error categories for failed runs. Every failure surfaced to the CI log
// wraps exactly one of these so callers can tell a bad token from a bad
// project key without parsing messages.
var (
	ErrConfig   = errors.New("configuration error")
	ErrAuth     = errors.New("authentication rejected")
	ErrNotFound = errors.New("not found")
	ErrService  = errors.New("service error")
)

// FromStatus maps a non-success HTTP status to the error taxonomy.
func FromStatus(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("status %d: %w", code, ErrAuth)
	case http.StatusNotFound:
		return fmt.Errorf("status %d: %w", code, ErrNotFound)
	default:
		return fmt.Errorf("status %d: %w", code, ErrService)
	}
}
