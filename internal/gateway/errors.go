// internal/gateway/errors.go
package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrConflict     = errors.New("store rejected a stale version")
	ErrUnauthorized = errors.New("not authenticated")
	ErrNotFound     = errors.New("resource not found")
)

// Error is a non-success envelope returned by the store API.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store error: HTTP %d", e.Status)
	}
	return fmt.Sprintf("store error: %s (HTTP %d)", e.Message, e.Status)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}
