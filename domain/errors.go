package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across all layers.
type ErrorCode string

const (
	ErrCodeValidation      ErrorCode = "VALIDATION"
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	ErrCodeStorage         ErrorCode = "STORAGE"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeConnectivity    ErrorCode = "CONNECTIVITY"
	ErrCodeInternal        ErrorCode = "INTERNAL"
)

// Error represents a domain-level error. Message holds the user-facing
// localized text; Err keeps the remote provider's original failure.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrNoConnection     = NewError(ErrCodeConnectivity, "tidak ada koneksi internet")
	ErrPasswordMismatch = NewError(ErrCodeValidation, "password tidak cocok")
	ErrDocumentNotFound = NewError(ErrCodeNotFound, "dokumen tidak ditemukan")
	ErrPermissionDenied = NewError(ErrCodeForbidden, "akses ditolak")
	ErrNotSignedIn      = NewError(ErrCodeUnauthenticated, "belum login")
)

// IsDomainError reports whether err carries the given code.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
