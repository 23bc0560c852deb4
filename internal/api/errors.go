package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	apperrors "github.com/recipespark/content-core/internal/errors"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps coded errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Success bool   `json:"success" doc:"Always false"`
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

func newAPIError(code apperrors.Code, message string) *APIError {
	return &APIError{status: code.HTTPStatus(), Code: string(code), Message: message}
}

// RegisterErrorHandler configures huma to use coded errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		var details []*huma.ErrorDetail
		for _, err := range errs {
			var appErr *apperrors.Error
			if errors.As(err, &appErr) {
				return &APIError{
					status:  appErr.HTTPStatus(),
					Code:    string(appErr.Code),
					Message: appErr.Message,
					Details: appErr.Details,
				}
			}

			var detail *huma.ErrorDetail
			if errors.As(err, &detail) {
				details = append(details, detail)
			}
		}

		e := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
		if len(details) > 0 {
			e.Details = details
		}
		return e
	}
}

// contentError converts a resolve failure. Anything but a not-found means the
// live API failed with nothing to fall back on.
func contentError(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return newAPIError(apperrors.CodeNotFound, "content not found")
	}
	return newAPIError(apperrors.CodeUpstream, "content API unavailable and no local copy exists")
}

// statusToCode maps HTTP status codes to our error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(apperrors.CodeValidation)
	case http.StatusNotFound:
		return string(apperrors.CodeNotFound)
	case http.StatusTooManyRequests:
		return string(apperrors.CodeRateLimited)
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return string(apperrors.CodeUpstream)
	case http.StatusServiceUnavailable:
		return string(apperrors.CodeSnapshotMissing)
	default:
		return string(apperrors.CodeInternal)
	}
}
