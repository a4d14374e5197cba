package model

import "errors"

// Error kinds surfaced across package boundaries. Callers match them with
// errors.Is; the HTTP layer maps them onto status codes.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrConfiguration = errors.New("configuration error")
)

// OperationError reports an unexpected failure of a named operation.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return "failed to " + e.Op + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error { return e.Err }
