package driftchat_errors

import "errors"

// Error taxonomy shared by the store, projection, guard and matchmaker.
var (
	ErrValidation       = errors.New("validation error")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrNoMatchAvailable = errors.New("no users available for matching")
	ErrRateLimited      = errors.New("rate limited")
)
