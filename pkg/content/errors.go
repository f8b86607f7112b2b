package content

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched by APIError through errors.Is
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalid      = errors.New("invalid request")
	ErrTimeout      = errors.New("request timed out")
)

// APIError is a non-2xx response from the content service
type APIError struct {
	StatusCode int
	Detail     string
	Op         string
}

func (e *APIError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = http.StatusText(e.StatusCode)
	}
	if e.Op == "" {
		return fmt.Sprintf("%s (status %d)", detail, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Op, detail, e.StatusCode)
}

// Is maps status codes onto the package sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrInvalid:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}
