package overseerr

import (
	"errors"
	"fmt"
	"net/http"

	"mediabot/internal/errs"
)

// HTTPError is a non-success reply from the backend. Message carries the
// backend's own error text when the body had one.
type HTTPError struct {
	Operation string
	Status    int
	Message   string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: backend returned %d", e.Operation, e.Status)
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Operation, e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return errs.ErrBackendUnavailable
}

// IsUnauthorized reports whether err is a 401/403 reply.
func IsUnauthorized(err error) bool {
	var he *HTTPError
	if !errors.As(err, &he) {
		return false
	}
	return he.Status == http.StatusUnauthorized || he.Status == http.StatusForbidden
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

// UpstreamMessage returns the backend's message for err, falling back to err.Error().
func UpstreamMessage(err error) string {
	var he *HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}
	return err.Error()
}

func transportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", errs.ErrBackendUnavailable, op, err)
}

func malformedError(op string, err error) error {
	return fmt.Errorf("%w: %s: malformed response: %v", errs.ErrBackendUnavailable, op, err)
}
