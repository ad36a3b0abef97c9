package entity

import (
	"errors"
	"fmt"
)

// ErrValidationFailed matches every *ValidationError through errors.Is.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError names the field of a feed entry or article that was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
