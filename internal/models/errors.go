package models

import "errors"

// Error categories shared by repositories, services and handlers.
// Wrap them with fmt.Errorf("...: %w", Err...) and test with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)
