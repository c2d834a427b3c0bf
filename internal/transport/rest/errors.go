package rest

import (
	"errors"
	"fmt"
)

// ErrForbidden indicates the session lacks permission for the operation
// (e.g. a non-admin touching cookie or weight surfaces). Unlike a 401 it
// does not clear the session.
var ErrForbidden = errors.New("rest: operation forbidden")

// APIError is a non-2xx response from the admin API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rest: api returned %d: %s", e.Status, e.Message)
}

// StatusError is a 2xx response whose status body reports ok=false.
type StatusError struct {
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rest: operation rejected: %s", e.Message)
}
