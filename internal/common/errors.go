// Package common defines shared constants and sentinel errors used across
// the newsnow server layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal        = errors.New("internal error")
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrorForbidden       = errors.New("forbidden")
	ErrorValidation      = errors.New("validation error")
	ErrorTooManyRequests = errors.New("too many requests")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired         = errors.New("token expired")
	ErrRefreshTokenMissing  = errors.New("refresh token not found")
	ErrRefreshTokenMismatch = errors.New("refresh token mismatch")

	// Referential integrity.
	ErrBlockedByDependents = errors.New("blocked by dependent records")
)

// BlockedError reports a refused delete together with the number of records
// still referencing the target. It matches ErrBlockedByDependents.
type BlockedError struct {
	Kind     string
	ID       string
	Articles int
	Comments int
}

// Count is the total number of blocking dependents.
func (e *BlockedError) Count() int {
	return e.Articles + e.Comments
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("cannot delete %s %s: %d dependent record(s)", e.Kind, e.ID, e.Count())
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrBlockedByDependents
}
