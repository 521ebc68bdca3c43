package domain

import "errors"

// Sentinel errors shared across services. Entity-specific sentinels live next
// to their entity.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
