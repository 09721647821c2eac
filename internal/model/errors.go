package model

import "errors"

// Error taxonomy shared by every implementation of Service. Callers branch
// with errors.Is; the HTTP layer maps these onto status codes.
var (
	// ErrNotFound: an operation referenced a nonexistent calendar or event id.
	ErrNotFound = errors.New("not found")

	// ErrValidation: empty title, unknown calendar id, malformed time or
	// date, end before start, unknown color, unknown navigation direction.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is reserved for a concurrent multi-writer extension; the
	// single-user core never raises it.
	ErrConflict = errors.New("conflict")
)
