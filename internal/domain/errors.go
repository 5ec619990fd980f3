package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound   = errors.New("domain: not found")
	ErrConflict   = errors.New("domain: conflict")
	ErrForbidden  = errors.New("domain: forbidden")
	ErrValidation = errors.New("domain: validation failed")
)
