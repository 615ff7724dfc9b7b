package entity

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrNoPortalAccess     = errors.New("no portal access")

	// ErrAccessDenied must be rendered exactly like ErrNotFound.
	ErrAccessDenied    = errors.New("access denied")
	ErrNotFound        = errors.New("not found")
	ErrEntitySuspended = errors.New("entity is suspended")

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("concurrent modification")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthenticated   = errors.New("unauthenticated")
)
