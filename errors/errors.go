// Package errors provides error handling for palette.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := store.FindByID(ctx, q); err != nil {
//	    return errors.Wrap(err, "find ticket by id")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "check the tenant id")
//
//	// Check errors
//	if errors.Is(err, errors.ErrCacheUnavailable) {
//	    // degrade to direct computation
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack is an alias for GetReportableStackTrace for convenience.
var GetStack = crdb.GetReportableStackTrace

// Common sentinel errors for use across palette.
// Use these with errors.Is() and wrap them with errors.Wrap() to add context.
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrServiceUnavailable indicates a required backend is not available
	ErrServiceUnavailable = New("service unavailable")

	// ErrUnsupportedEntityType is returned internally for tags outside the
	// closed entity set. Public resolver calls translate it into a nil result.
	ErrUnsupportedEntityType = New("unsupported entity type")

	// ErrCacheUnavailable marks cache backend failures. Callers degrade to
	// direct computation and never surface it to the user.
	ErrCacheUnavailable = New("cache unavailable")

	// ErrNoIdentity indicates the call carried no tenant or user id
	ErrNoIdentity = New("no authenticated identity")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsCacheUnavailable checks if an error is or wraps ErrCacheUnavailable
func IsCacheUnavailable(err error) bool {
	return err != nil && Is(err, ErrCacheUnavailable)
}

// WrapCacheUnavailable marks err as a cache backend failure for the given operation
func WrapCacheUnavailable(err error, op string) error {
	if err == nil {
		return nil
	}
	return Mark(Wrap(err, op), ErrCacheUnavailable)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}
