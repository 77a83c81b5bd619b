package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"eventmanager/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeForbidden       = "forbidden"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeInactiveAccount = "inactive_account"
	ErrCodeInternalError   = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

// WriteServiceError maps a service error onto the matching status and error
// code. Unrecognised errors are logged and answered with 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code, message := http.StatusInternalServerError, ErrCodeInternalError, "internal server error"
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		status, code, message = http.StatusUnauthorized, ErrCodeUnauthorized, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, code, message = http.StatusUnauthorized, ErrCodeUnauthorized, err.Error()
	case errors.Is(err, domain.ErrInactiveAccount):
		status, code, message = http.StatusForbidden, ErrCodeInactiveAccount, err.Error()
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrProtectedGroup):
		status, code, message = http.StatusForbidden, ErrCodeForbidden, err.Error()
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		status, code, message = http.StatusNotFound, ErrCodeNotFound, err.Error()
	case errors.Is(err, domain.ErrDuplicateEmail), errors.Is(err, domain.ErrDuplicateUsername), errors.Is(err, domain.ErrDuplicateGroup):
		status, code, message = http.StatusConflict, ErrCodeConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidActivationToken),
		errors.Is(err, domain.ErrInvalidResetToken):
		status, code, message = http.StatusBadRequest, ErrCodeBadRequest, err.Error()
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	WriteJSONError(w, status, code, message)
}
