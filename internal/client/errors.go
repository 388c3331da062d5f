package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// NetworkError is a transport failure or a non-2xx response.
type NetworkError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Message != "" && e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": network error"
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ErrUnauthorized is the cause of an AuthError built from a 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// AuthError is an identity or session lookup failure. It carries 401 semantics
// and never wraps a NetworkError, so the two kinds stay distinct.
type AuthError struct {
	Message string
	Err     error
}

const StatusUnauthenticated = 401

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "auth: could not fetch user data"
	}
	return "auth: " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) StatusCode() int { return StatusUnauthenticated }

// AsAuthError reports err as an AuthError. A NetworkError cause is reduced to
// its message.
func AsAuthError(err error) *AuthError {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	if IsNetworkError(err) {
		return &AuthError{Message: err.Error()}
	}
	return &AuthError{Message: err.Error(), Err: err}
}

// ValidationError maps field names to the reason they were rejected.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func IsNetworkError(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

func IsAuthError(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
