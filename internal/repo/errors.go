package repo

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/mvasquez/invctl/internal/store"
)

// Error represents a domain-rule violation detected by a repository.
//
// Domain errors include:
//   - Invalid input: validation rejected a field before any write
//   - Not found: the requested user or invoice does not exist
//   - Duplicate email: the email uniqueness invariant would break
//   - User not found: an invoice references a missing user
//
// Error carries structured fields so the CLI can report the specific rule
// that was violated.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Entity names the affected entity ("user" or "invoice"), when known.
	Entity string

	// ID identifies the affected row, when known.
	ID int64
}

// ErrorCode categorizes domain errors. The codes double as the machine-
// readable error codes in JSON output.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates validation rejected an input field.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeNotFound indicates the requested entity does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeDuplicateEmail indicates an email collision with another user.
	ErrCodeDuplicateEmail ErrorCode = "DUPLICATE_EMAIL"

	// ErrCodeUserNotFound indicates an invoice operation referenced a
	// missing user.
	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"

	// ErrCodeStorageUnavailable indicates the storage engine is unreachable
	// or failed mid-operation.
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"

	// ErrCodeNotInitialized indicates the schema has not been created yet.
	ErrCodeNotInitialized ErrorCode = "NOT_INITIALIZED"

	// ErrCodeAlreadyInitialized indicates init ran on an initialized
	// database. Benign: nothing was touched.
	ErrCodeAlreadyInitialized ErrorCode = "ALREADY_INITIALIZED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Entity != "" && e.ID != 0 {
		return fmt.Sprintf("%s: %s (%s id=%d)", e.Code, e.Message, e.Entity, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidInput creates a domain error for a validation rejection.
// The message names the violated rule.
func NewInvalidInput(reason string) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: reason}
}

// NewNotFound creates a domain error for a missing entity.
func NewNotFound(entity string, id int64) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: entity + " not found",
		Entity:  entity,
		ID:      id,
	}
}

// NewDuplicateEmail creates a domain error for an email collision.
func NewDuplicateEmail(email string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateEmail,
		Message: fmt.Sprintf("email %q already exists", email),
		Entity:  "user",
	}
}

// NewUserNotFound creates a domain error for an invoice referencing a
// missing user.
func NewUserNotFound(userID int64) *Error {
	return &Error{
		Code:    ErrCodeUserNotFound,
		Message: "user not found",
		Entity:  "user",
		ID:      userID,
	}
}

// CodeOf extracts the ErrorCode from an error chain. Storage sentinels map
// to their lifecycle codes; anything else is STORAGE_UNAVAILABLE.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	switch {
	case errors.Is(err, store.ErrAlreadyInitialized):
		return ErrCodeAlreadyInitialized
	case errors.Is(err, store.ErrNotInitialized):
		return ErrCodeNotInitialized
	default:
		return ErrCodeStorageUnavailable
	}
}

// IsNotFound returns true if the error is a missing-entity error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == ErrCodeNotFound
}

// IsInvalidInput returns true if the error is a validation rejection.
func IsInvalidInput(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == ErrCodeInvalidInput
}

// IsDuplicateEmail returns true if the error is an email collision.
func IsDuplicateEmail(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == ErrCodeDuplicateEmail
}

// IsUserNotFound returns true if the error is a missing-user reference.
func IsUserNotFound(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == ErrCodeUserNotFound
}

// mapConstraint translates SQLite constraint violations into their domain
// errors. The storage engine is the final guard behind the explicit checks:
// a unique-index violation is authoritative DuplicateEmail, a foreign-key
// violation authoritative UserNotFound.
func mapConstraint(err error, email string, userID int64) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		switch serr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return NewDuplicateEmail(email)
		case sqlite3.ErrConstraintForeignKey:
			return NewUserNotFound(userID)
		}
	}
	return store.MapQueryErr(err)
}
