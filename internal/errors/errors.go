// Package errors provides the domain error taxonomy shared by every authorization model.
// Use cases wrap these sentinels with context; handlers map them to HTTP status codes.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors used across all bounded contexts.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the operation lost a race or targets an entity in a terminal state
	// (already decided request, exhausted sharing link, duplicate pending request).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates a malformed request (unknown security level, bad CIDR,
	// unknown operator, permission outside the allowed set).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the caller identity could not be established.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authorization denial. The wrapping message carries the reason.
	ErrForbidden = errors.New("forbidden")

	// ErrIntegrity indicates a transient storage or atomic update failure.
	// Callers may retry; decisions affected by it are always denials.
	ErrIntegrity = errors.New("integrity fault")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
