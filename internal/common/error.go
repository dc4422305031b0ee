// Package common defines shared constants and sentinel errors used across
// the revkeeper packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository precondition errors (create/update input mistakes).
	ErrMissingKey    = errors.New("entity key is missing")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidStatus = errors.New("invalid entity status")
	ErrNotFound      = errors.New("entity not found")

	// Store-level errors.
	ErrDuplicateStorageID = errors.New("duplicate storage id")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
