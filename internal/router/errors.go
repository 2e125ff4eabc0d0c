package router

import (
	"errors"
	"fmt"
)

// PanicError is returned in place of a panic raised while preparing or
// rendering a view.
type PanicError struct {
	// Route is the name of the route being dispatched.
	Route string

	// Value is what was passed to panic.
	Value any

	// Stack is the goroutine stack at the point of recovery.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("dispatch %s panicked: %v", e.Route, e.Value)
}

// IsPanic reports whether err came from a recovered panic.
// Uses errors.As to handle wrapped errors.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}
