package model

import (
	"errors"
	"fmt"
)

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrUnauthenticated = errors.New("unauthenticated")

	// Note related errors
	ErrNoteNotFound = errors.New("note not found")

	// Storage errors are never shown to clients.
	ErrStorage = errors.New("storage failure")
)

type AuthFailureReason string

const (
	ReasonMissingToken    AuthFailureReason = "missing_token"
	ReasonMalformedToken  AuthFailureReason = "malformed_token"
	ReasonExpiredToken    AuthFailureReason = "expired_token"
	ReasonSubjectNotFound AuthFailureReason = "subject_not_found"
)

// AuthError is returned for every rejected bearer credential. It matches
// ErrUnauthenticated with errors.Is; Reason is meant for logs only.
type AuthError struct {
	Reason AuthFailureReason
	Err    error
}

func NewAuthError(reason AuthFailureReason, err error) *AuthError {
	return &AuthError{Reason: reason, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unauthenticated (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("unauthenticated (%s)", e.Reason)
}

func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthenticated
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Expired reports whether the credential was rejected only because its
// lifetime ran out.
func (e *AuthError) Expired() bool {
	return e.Reason == ReasonExpiredToken
}

// ConflictError carries the unique field that rejected an insert.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("user already exists: %s taken", e.Field)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrUserAlreadyExists
}
