package app

import (
	"errors"
	"fmt"
)

// ActionError is returned by user actions that were rejected at the UI
// boundary. Message is the text shown to the user, when one is shown.
type ActionError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Action names the rejected action ("upvote", "submit idea").
	Action string

	// Field is the offending form field, for validation errors.
	Field string

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes action errors.
type ErrorCode string

const (
	// CodeValidation indicates a required field was missing or out of range.
	CodeValidation ErrorCode = "VALIDATION"

	// CodeUnauthenticated indicates no identity is available.
	CodeUnauthenticated ErrorCode = "UNAUTHENTICATED"

	// CodeNotFound indicates the target item does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyDone indicates a one-time interaction was repeated.
	CodeAlreadyDone ErrorCode = "ALREADY_DONE"

	// CodeForbidden indicates the user may not act on the item.
	CodeForbidden ErrorCode = "FORBIDDEN"
)

// Error implements the error interface.
func (e *ActionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s (field=%s)", e.Code, e.Action, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Action, e.Message)
}

// Is matches ErrUnauthenticated and the other code sentinels.
func (e *ActionError) Is(target error) bool {
	var t *ActionError
	if !errors.As(target, &t) {
		return false
	}
	return t.Action == "" && t.Code == e.Code
}

// Code sentinels for errors.Is.
var (
	ErrValidation      = &ActionError{Code: CodeValidation}
	ErrUnauthenticated = &ActionError{Code: CodeUnauthenticated}
	ErrNotFound        = &ActionError{Code: CodeNotFound}
	ErrAlreadyDone     = &ActionError{Code: CodeAlreadyDone}
	ErrForbidden       = &ActionError{Code: CodeForbidden}
)

// IsValidation returns true if err is a validation error.
func IsValidation(err error) bool {
	return CodeOf(err) == CodeValidation
}

// IsUnauthenticated returns true if err rejected an anonymous user.
func IsUnauthenticated(err error) bool {
	return CodeOf(err) == CodeUnauthenticated
}

// CodeOf returns the code of an *ActionError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func validation(action, field, message string) *ActionError {
	return &ActionError{Code: CodeValidation, Action: action, Field: field, Message: message}
}

func actionErr(code ErrorCode, action, message string) *ActionError {
	return &ActionError{Code: code, Action: action, Message: message}
}
