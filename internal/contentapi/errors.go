package contentapi

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/recipespark/content-core/internal/errors"
)

// Sentinel errors for content API operations.
var (
	ErrNotFound          = errors.New("contentapi: not found")
	ErrRateLimited       = errors.New("contentapi: rate limited by server")
	ErrBadRequest        = errors.New("contentapi: bad request")
	ErrServer            = errors.New("contentapi: server error")
	ErrMalformedEnvelope = errors.New("contentapi: malformed envelope")
)

// Error wraps an underlying error with operation context.
//
// Besides the cause it also matches the coded sentinel for its class, so
// callers can test errors.Is(err, apperrors.ErrUpstream) without knowing
// this package.
type Error struct {
	Op       string // Operation: "recipes", "recipe", "website", ...
	Resource string // Path or id, if applicable
	Err      error
}

func (e *Error) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("contentapi %s [%s]: %v", e.Op, e.Resource, e.Err)
	}
	return fmt.Sprintf("contentapi %s: %v", e.Op, e.Err)
}

// Unwrap returns the cause and the coded class of the failure.
func (e *Error) Unwrap() []error {
	return []error{e.Err, classify(e.Err)}
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, ErrMalformedEnvelope):
		return apperrors.ErrMalformedEnvelope
	case errors.Is(err, ErrBadRequest):
		return apperrors.ErrValidation
	default:
		return apperrors.ErrUpstream
	}
}

func wrapError(op, resource string, err error) error {
	return &Error{Op: op, Resource: resource, Err: err}
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrBadRequest), errors.Is(err, ErrMalformedEnvelope):
		return false
	}
	return true
}

// IsUnavailable reports whether err means the API could not give a usable answer:
// transport failures, server errors and malformed envelopes.
func IsUnavailable(err error) bool {
	return errors.Is(err, apperrors.ErrUpstream) || errors.Is(err, apperrors.ErrMalformedEnvelope)
}
