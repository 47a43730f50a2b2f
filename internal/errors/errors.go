package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrInvalidParameter = New(http.StatusBadRequest, "INVALID_PARAMETER", "Invalid parameter value")

	// 404 Not Found
	ErrResourceNotFound = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// InvalidParameterError creates an invalid parameter error naming the field
func InvalidParameterError(field string, err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_PARAMETER", fmt.Sprintf("Invalid value for %s", field), ValidationError{
		Field:   field,
		Message: err.Error(),
	})
}

// NotFoundError creates a not found error with details
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource), resource)
}

// FromError maps an AppError onto an HTTP error. Unknown errors become 500s.
func FromError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
	}

	status := http.StatusInternalServerError
	switch appErr.Type {
	case ErrTypeNotFound:
		status = http.StatusNotFound
	case ErrTypeValidation, ErrTypeGeometryInput:
		status = http.StatusBadRequest
	case ErrTypeNoCorrespondence, ErrTypeAxisMismatch, ErrTypeInvalidServiceConsumption:
		status = http.StatusUnprocessableEntity
	}

	var details interface{}
	if len(appErr.Context) > 0 {
		details = appErr.Context
	}
	return NewWithDetails(status, string(appErr.Type), appErr.Message, details)
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(NewErrorResponse(err))
}
