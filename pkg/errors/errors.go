package askroom_errors

import "errors"

// Common errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyExists    = errors.New("already exists")
	ErrRateLimited      = errors.New("rate limited")
	ErrExhaustedIDSpace = errors.New("room code space exhausted")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrLinkExpired      = errors.New("sign-in link expired")
)
