// Package common defines sentinel errors shared by repositories and services.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound             = errors.New("not found")
	ErrorAlreadyExists        = errors.New("already exists")
	ErrConcurrentModification = errors.New("concurrent modification")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorOwnerMismatch = errors.New("owner mismatch")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
