// internal/ledger/errors.go
package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrTransport              = errors.New("store request failed")
	ErrConcurrentModification = errors.New("collection was modified concurrently")
)

// ValidationError rejects user input before anything is fetched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// TransportError wraps a failed store call. Conflicts reported by the store
// additionally match ErrConcurrentModification.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
