package apperrors

import (
	"errors"
	"fmt"
)

// Standardized simulator errors
var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrEmptySequence     = errors.New("empty price sequence")
	ErrTimestampMismatch = errors.New("timestamp count does not match price count")
	ErrRunNotFound       = errors.New("run not found")
	ErrStoreClosed       = errors.New("result store is closed")
)

// ConfigError reports a rejected configuration field. It unwraps to
// ErrInvalidConfig so callers can match the whole class with errors.Is.
type ConfigError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("validation error for field '%s' (value: %v): %s", e.Field, e.Value, e.Message)
}

func (e ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
