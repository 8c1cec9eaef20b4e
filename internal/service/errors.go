package service

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity does not exist or belongs to another
// user. Callers cannot tell the two apart.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is the single error for every failed login.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DuplicateError reports that a unique value is already taken.
type DuplicateError struct {
	Message string
}

func (e *DuplicateError) Error() string {
	return e.Message
}

func validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	ok := errors.As(err, &v)
	return v, ok
}

// IsDuplicate reports whether err is a DuplicateError and returns it.
func IsDuplicate(err error) (*DuplicateError, bool) {
	var d *DuplicateError
	ok := errors.As(err, &d)
	return d, ok
}
