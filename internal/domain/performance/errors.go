package performance

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCommand     = errors.New("invalid action or entity")
	ErrScheduleInProgress = errors.New("auto schedule already running for tenant")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func unauthorized(what string) error {
	return fmt.Errorf("%w: only admin and hr managers can %s", ErrUnauthorized, what)
}
