package common

import (
	"errors"
	"fmt"
)

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Validation errors
	ErrValidation = errors.New("invalid input")

	// Concurrency errors
	ErrConflict = errors.New("edit conflict")

	// Data integrity errors
	ErrCycle = errors.New("parent chain exceeded maximum depth")
)

// HookError reports a dispatcher hook failure. The triggering write is
// rolled back together with the hook's effects; hook failures indicate
// programming or constraint errors and are never retried.
type HookError struct {
	Event string
	Hook  string
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook %s failed on %s: %v", e.Hook, e.Event, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
