// Package response provides standardized HTTP response formatting and error handling utilities.
package response

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"

	"github.com/recipespark/content-core/internal/domain"
	apperrors "github.com/recipespark/content-core/internal/errors"
)

// Envelope is the body written by handlers outside the huma API.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Content is a resolved content envelope annotated with where it came from.
type Content[T any] struct {
	Success    bool               `json:"success" doc:"Whether the content source reported success"`
	Data       T                  `json:"data"`
	Message    string             `json:"message,omitempty"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
	Source     string             `json:"source" enum:"live,cache,snapshot" doc:"Where the payload was read from"`
	Stale      bool               `json:"stale" doc:"True when the live API failed and older data was served"`
}

// NewContent copies env into a Content body.
func NewContent[T any](env domain.Envelope[T], source string, stale bool) Content[T] {
	return Content[T]{
		Success:    env.Success,
		Data:       env.Data,
		Message:    env.Message,
		Pagination: env.Pagination,
		Source:     source,
		Stale:      stale,
	}
}

// JSON writes a JSON response with the given status code using json/v2.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	write(w, status, Envelope{Success: status < 400, Data: data}, logger)
}

// Success writes a successful JSON response (200 OK).
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, code apperrors.Code, message string, logger *slog.Logger) {
	write(w, status, Envelope{Success: false, Code: string(code), Error: message}, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, apperrors.CodeNotFound, message, logger)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	w.Header().Set("Retry-After", "1")
	Error(w, http.StatusTooManyRequests, apperrors.CodeRateLimited, message, logger)
}

// HandleError writes a response for err. Coded errors map to their HTTP
// status, anything else becomes a 500 with a generic message.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var appErr *apperrors.Error
	if apperrors.As(err, &appErr) {
		Error(w, appErr.HTTPStatus(), appErr.Code, appErr.Message, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	Error(w, http.StatusInternalServerError, apperrors.CodeInternal, "internal server error", logger)
}

func write(w http.ResponseWriter, status int, body Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.MarshalWrite(w, body); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}
