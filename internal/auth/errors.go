package auth

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the Store when no record exists for a
// user. First-time use is an expected case, not a failure.
var ErrNotFound = errors.New("credential record not found")

// ErrNoCredential is returned by the Manager when no usable
// credential can be produced for a user: never authorized, the grant
// was revoked, or the refresh failed. The caller should direct the
// user through the authorization flow.
var ErrNoCredential = errors.New("no usable credential")

// CorruptRecordError indicates the persisted credential data for a
// user could not be parsed. This is a data integrity problem that
// needs operator intervention (delete and re-authorize), so it is
// deliberately distinct from ErrNotFound.
type CorruptRecordError struct {
	UserID string
	Path   string
	Err    error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt credential record for %s at %s: %v", e.UserID, e.Path, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }

// ExchangeError indicates an authorization-code exchange failed.
// Codes are single-use, so the exchange is never retried: a failed
// code is burned and the user must authorize again.
type ExchangeError struct {
	UserID string
	Err    error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("authorization code exchange failed for %s: %v", e.UserID, e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }
