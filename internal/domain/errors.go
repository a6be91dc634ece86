package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrBrokenOrder  = errors.New("task order is broken")
)

// NotFound returns an ErrNotFound carrying a human readable message.
func NotFound(msg string) error { return fmt.Errorf("%s: %w", msg, ErrNotFound) }

// Forbidden returns an ErrForbidden carrying a human readable message.
func Forbidden(msg string) error { return fmt.Errorf("%s: %w", msg, ErrForbidden) }

// Conflict returns an ErrConflict carrying a human readable message.
func Conflict(msg string) error { return fmt.Errorf("%s: %w", msg, ErrConflict) }

// Invalid returns an ErrInvalidInput carrying a human readable message.
func Invalid(msg string) error { return fmt.Errorf("%s: %w", msg, ErrInvalidInput) }
