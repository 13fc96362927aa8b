package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrPersonaNotFound = fmt.Errorf("%w: persona", ErrNotFound)
	ErrModelNotFound   = fmt.Errorf("%w: model", ErrNotFound)

	// ErrInvalidConfig marks a request that is rejected before any computation
	// (too few correlation columns, unknown granularity, window out of range).
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInsufficientData marks an empty or too-small view. It is a result, not a failure:
	// callers render a placeholder instead of a statistic.
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// ErrUnknownField marks a field name that is not part of the record schema.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidRecord marks a record that violates the schema domains.
	ErrInvalidRecord = errors.New("invalid record")
)

// Error constructors with context
func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason)
}

func NewInsufficientDataError(what string, have, need int) error {
	return fmt.Errorf("%w: %s has %d observations, need at least %d", ErrInsufficientData, what, have, need)
}

func NewUnknownFieldError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownField, name)
}

func NewInvalidRecordError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidRecord, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsSchemaError(err error) bool {
	return errors.Is(err, ErrUnknownField) || errors.Is(err, ErrInvalidRecord)
}
