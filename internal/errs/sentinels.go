// Package errs contains sentinel errors shared by the storage, service and
// controller layers so that failures can be classified with errors.Is.
package errs

import "errors"

var (
	// ErrAuthorizationDenied means the chat user has not passed the password gate.
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrForbidden means the action needs admin rights the caller does not have.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials is returned by the backend login for a wrong email/password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotLoggedIn means no session record exists for the caller.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSessionExpired means the probe failed and the single re-login attempt failed too.
	ErrSessionExpired = errors.New("session expired")

	// ErrBackendUnavailable covers network errors, timeouts, malformed bodies and non-2xx replies.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrNotFound indicates the requested record or item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput covers malformed callback payloads and out-of-range indexes.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflictingState means the action is not allowed in the active mode.
	ErrConflictingState = errors.New("conflicting state")

	// ErrNoIdentity means key mode is active but the user has not picked a backend identity.
	ErrNoIdentity = errors.New("no identity selected")
)
