// Package common defines shared constants and sentinel errors used across
// the NoteKeeper server and CLI. Callers should use errors.Is to match these
// values; services wrap them with context via fmt.Errorf("...: %w", ...).
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// ErrorDependency marks a failure of an external collaborator such as
	// object storage. Image paths of the note lifecycle never return it.
	ErrorDependency = errors.New("dependency unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
	ErrResetExpired = errors.New("reset token expired")
)
