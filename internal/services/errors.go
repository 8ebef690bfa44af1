package services

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when an operation needs a credential or
// client that is not configured.
var ErrNotConfigured = errors.New("not configured")

// ValidationError marks a request the caller must fix.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err}
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}

func notConfigured(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotConfigured)
}
