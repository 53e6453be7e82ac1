package domain

import (
	"errors"
	"fmt"
)

// Mutation validation errors. Callers match them with errors.Is; the admin
// surface re-displays the form with the message.
var (
	ErrMissingField         = errors.New("required field missing")
	ErrNonNumericField      = errors.New("field must be numeric")
	ErrMalformedRange       = errors.New("start cannot be greater than end")
	ErrDuplicateKey         = errors.New("key already exists")
	ErrNotFound             = errors.New("record not found")
	ErrConfirmationRequired = errors.New("destructive operation requires double confirmation")
	ErrInvalidPayload       = errors.New("payload must be a JSON array of records")
)

// FieldError ties a validation failure to the form field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// KeyError reports a key-level failure such as a duplicate or a missing record.
type KeyError struct {
	Entity EntityType
	Key    string
	Err    error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Entity, e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// NotFound builds a KeyError wrapping ErrNotFound.
func NotFound(entity EntityType, key string) error {
	return &KeyError{Entity: entity, Key: key, Err: ErrNotFound}
}

// Duplicate builds a KeyError wrapping ErrDuplicateKey.
func Duplicate(entity EntityType, key string) error {
	return &KeyError{Entity: entity, Key: key, Err: ErrDuplicateKey}
}
