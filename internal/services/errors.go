package services

import (
	"errors"
	"net/http"

	driftchat_errors "driftchat/pkg/errors"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeNoMatchAvailable = "NO_MATCH_AVAILABLE"
	CodeConflict         = "CONFLICT"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL_ERROR"
)

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, driftchat_errors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, driftchat_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, driftchat_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, driftchat_errors.ErrNotFound), errors.Is(err, driftchat_errors.ErrNoMatchAvailable):
		return http.StatusNotFound
	case errors.Is(err, driftchat_errors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, driftchat_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func ErrorCode(err error) string {
	switch {
	case errors.Is(err, driftchat_errors.ErrValidation):
		return CodeValidation
	case errors.Is(err, driftchat_errors.ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, driftchat_errors.ErrForbidden):
		return CodeForbidden
	case errors.Is(err, driftchat_errors.ErrNoMatchAvailable):
		return CodeNoMatchAvailable
	case errors.Is(err, driftchat_errors.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, driftchat_errors.ErrConflict):
		return CodeConflict
	case errors.Is(err, driftchat_errors.ErrRateLimited):
		return CodeRateLimited
	default:
		return CodeInternal
	}
}

// ErrorMessage is the text shown to clients. Internal failures never leak
// their cause.
func ErrorMessage(err error) string {
	if ErrorCode(err) == CodeInternal {
		return "internal server error"
	}
	return err.Error()
}
