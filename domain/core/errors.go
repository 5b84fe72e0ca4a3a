package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrOutOfRange       = errors.New("value outside parameter range")
	ErrMissingField     = errors.New("required parameter missing")
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrDuplicateField   = errors.New("parameter supplied more than once")

	// Model errors
	ErrModelLoad      = errors.New("classifier artifact could not be loaded")
	ErrModelNotLoaded = errors.New("no classifier loaded")

	// Internal contract errors
	ErrContractViolation = errors.New("contract violation")

	ErrNotFound = errors.New("resource not found")
)

// Error constructors with context
func NewOutOfRangeError(field string, value, min, max float64) error {
	return fmt.Errorf("%w: %s=%g not in [%g, %g]", ErrOutOfRange, field, value, min, max)
}

func NewMissingFieldError(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

func NewDuplicateFieldError(field string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateField, field)
}

func NewModelLoadError(path string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrModelLoad, path, reason)
}

func NewContractViolation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrUnknownParameter) ||
		errors.Is(err, ErrDuplicateField)
}

func IsModelError(err error) bool {
	return errors.Is(err, ErrModelLoad) || errors.Is(err, ErrModelNotLoaded)
}

func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContractViolation)
}
