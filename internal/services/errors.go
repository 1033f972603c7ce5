// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/javajoker/sales-ledger/internal/models"
	"github.com/javajoker/sales-ledger/internal/utils"
)

var (
	ErrUnknownCollection  = errors.New("unknown collection")
	ErrVersionConflict    = errors.New("collection version conflict")
	ErrInvalidPayload     = errors.New("invalid collection payload")
	ErrCorruptCollection  = errors.New("stored collection failed integrity check")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrWrongPassword      = errors.New("current password does not match")
	ErrSelfSuspension     = errors.New("cannot change the status of your own account")
)

// VersionConflictError reports a replace that carried a stale version.
type VersionConflictError struct {
	Collection models.CollectionName
	Expected   models.Version
	Current    models.Version
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("collection %s: expected version %d, current is %d", e.Collection, e.Expected, e.Current)
}

func (e *VersionConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

// PayloadError carries per-field validation failures of a replace body.
type PayloadError struct {
	Collection models.CollectionName
	Fields     []utils.ValidationError
	Err        error
}

func (e *PayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("collection %s: %v", e.Collection, e.Err)
	}
	return fmt.Sprintf("collection %s: %d invalid field(s)", e.Collection, len(e.Fields))
}

func (e *PayloadError) Is(target error) bool {
	return target == ErrInvalidPayload
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}
