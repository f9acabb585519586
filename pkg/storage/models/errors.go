package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors into the four recoverable conditions
// the storage layer can produce. Everything else (store unavailable, I/O
// faults) is passed through untagged and treated as fatal to the request.
type ErrorKind string

const (
	// KindValidation marks malformed or out-of-range input: empty names,
	// non-positive quotas or sizes.
	KindValidation ErrorKind = "validation"

	// KindAlreadyExists marks a name collision within the relevant
	// uniqueness scope (login globally, directory per account, file per
	// directory).
	KindAlreadyExists ErrorKind = "already_exists"

	// KindNotFound marks an absent entity, or one present under a
	// different account than claimed. Ownership failures are deliberately
	// indistinguishable from absence.
	KindNotFound ErrorKind = "not_found"

	// KindQuotaExceeded marks a payload larger than the account's
	// remaining quota.
	KindQuotaExceeded ErrorKind = "quota_exceeded"
)

// Error is the single tagged domain error type. All expected failures from
// the registry, coordinator, and metadata store carry one of the four kinds
// and a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so callers can test kinds with
// errors.Is(err, models.ErrNotFound) regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for use with errors.Is.
var (
	ErrValidation    = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists, Message: "already exists"}
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "not found"}
	ErrQuotaExceeded = &Error{Kind: KindQuotaExceeded, Message: "quota exceeded"}
)

// NewValidation creates a validation error with a formatted message.
func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewAlreadyExists creates an already-exists error with a formatted message.
func NewAlreadyExists(format string, args ...any) *Error {
	return &Error{Kind: KindAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound creates a not-found error with a formatted message.
func NewNotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewQuotaExceeded creates a quota-exceeded error with a formatted message.
func NewQuotaExceeded(format string, args ...any) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries the validation kind.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsAlreadyExists reports whether err carries the already-exists kind.
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }

// IsNotFound reports whether err carries the not-found kind.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsQuotaExceeded reports whether err carries the quota-exceeded kind.
func IsQuotaExceeded(err error) bool { return errors.Is(err, ErrQuotaExceeded) }

// IsDomain reports whether err is one of the four expected kinds.
func IsDomain(err error) bool {
	var de *Error
	return errors.As(err, &de)
}
