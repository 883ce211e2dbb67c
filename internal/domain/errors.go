package domain

import (
	"errors"
	"fmt"
	"time"
)

// Provider adapters wrap these so callers can tell a slow provider from a
// missing one without parsing messages.
var (
	ErrProviderTimeout     = errors.New("provider timed out")
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// ValidationError reports malformed caller input. It is always returned
// before any network activity.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// NotFoundError is a definitive "does not exist" answer from a reachable
// service for a well-formed request.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Query)
}

// ServiceError covers an unreachable, timed out, or otherwise failing remote
// service. Timeout is the client's configured timeout, zero when unknown.
type ServiceError struct {
	Op      string
	Timeout time.Duration
	Err     error
}

func (e *ServiceError) Error() string {
	if errors.Is(e.Err, ErrProviderTimeout) && e.Timeout > 0 {
		return fmt.Sprintf("%s: timed out after %s: %v", e.Op, e.Timeout, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ConnectivityError means no connection to the simulation engine could be
// established.
type ConnectivityError struct {
	Endpoint string
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot connect to simulation engine at %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// RemoteError is a non-success response from a reachable simulation engine.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("simulation engine error: status %d: %s", e.StatusCode, e.Body)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
