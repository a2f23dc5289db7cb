// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package apperr defines the error taxonomy shared by stores, services and
// the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
	KindAuthentication
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindAuthentication:
		return "authentication"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
// Conflicts are reported as 400 for compatibility with existing clients.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Code doubles as the i18n message ID.
type Error struct {
	Err  error
	Code string
	Kind Kind
}

// New creates a sentinel error of the given kind.
func New(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so wrapped copies of a sentinel
// still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Err: cause}
}

// KindOf returns the kind of err, or KindInternal when err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of err, or "internal_error" when unclassified.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInternal.Code
}

// Sentinels.
var (
	ErrInternal = New(KindInternal, "internal_error")

	// Input
	ErrInvalidInput    = New(KindValidation, "invalid_input")
	ErrInvalidUsername = New(KindValidation, "invalid_username")
	ErrInvalidEmail    = New(KindValidation, "invalid_email")
	ErrWeakPassword    = New(KindValidation, "weak_password")
	ErrContentTooLong  = New(KindValidation, "content_too_long")

	// Store
	ErrNotFound          = New(KindNotFound, "account_not_found")
	ErrDuplicateUsername = New(KindConflict, "username_taken")
	ErrDuplicateEmail    = New(KindConflict, "email_taken")

	// Verification
	ErrCodeExpired   = New(KindValidation, "code_expired")
	ErrCodeIncorrect = New(KindValidation, "code_incorrect")

	// Intake
	ErrRecipientNotFound     = New(KindNotFound, "recipient_not_found")
	ErrRecipientNotAccepting = New(KindForbidden, "recipient_not_accepting")
	ErrMessageNotFound       = New(KindNotFound, "message_not_found")

	// Authorization
	ErrAccountNotFound    = New(KindAuthentication, "login_account_not_found")
	ErrAccountNotVerified = New(KindAuthentication, "login_account_not_verified")
	ErrInvalidCredentials = New(KindAuthentication, "login_invalid_credentials")
	ErrUnauthenticated    = New(KindAuthentication, "unauthenticated")

	// Collaborators
	ErrEmailDelivery = New(KindInternal, "email_delivery_failed")
)
