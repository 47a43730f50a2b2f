package errors

import (
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Core pipeline failures. All of them are fatal and never retried.
	ErrTypeGeometryInput             ErrorType = "GEOMETRY_INPUT"
	ErrTypeNoCorrespondence          ErrorType = "NO_CORRESPONDENCE"
	ErrTypeAxisMismatch              ErrorType = "AXIS_MISMATCH"
	ErrTypeInvalidServiceConsumption ErrorType = "INVALID_SERVICE_CONSUMPTION"

	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// Sentinels for errors.Is checks. Any AppError of the same type matches.
var (
	ErrGeometryInput             = &AppError{Type: ErrTypeGeometryInput, Message: "invalid geometry input"}
	ErrNoCorrespondence          = &AppError{Type: ErrTypeNoCorrespondence, Message: "no correspondence found"}
	ErrAxisMismatch              = &AppError{Type: ErrTypeAxisMismatch, Message: "axis mismatch"}
	ErrInvalidServiceConsumption = &AppError{Type: ErrTypeInvalidServiceConsumption, Message: "invalid service consumption"}
	ErrNotFound                  = &AppError{Type: ErrTypeNotFound, Message: "not found"}
	ErrParsing                   = &AppError{Type: ErrTypeParsing, Message: "parsing failed"}
	ErrStorage                   = &AppError{Type: ErrTypeStorage, Message: "storage failure"}
	ErrValidation                = &AppError{Type: ErrTypeValidation, Message: "validation failed"}
	ErrConfig                    = &AppError{Type: ErrTypeConfig, Message: "invalid configuration"}
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewGeometryInputError reports a missing or mismatched CRS, a malformed
// polygon or a duplicate unit id.
func NewGeometryInputError(format string, args ...interface{}) *AppError {
	return NewAppError(ErrTypeGeometryInput, fmt.Sprintf(format, args...), nil)
}

// NewNoCorrespondenceError reports a region whose tiles cannot be mapped.
func NewNoCorrespondenceError(region string) *AppError {
	return NewAppError(ErrTypeNoCorrespondence, fmt.Sprintf("no zone available for region %q", region), nil).
		WithContext("region", region)
}

// NewAxisMismatchError reports slices or cubes whose axes cannot be combined.
func NewAxisMismatchError(format string, args ...interface{}) *AppError {
	return NewAppError(ErrTypeAxisMismatch, fmt.Sprintf(format, args...), nil)
}

// NewInvalidServiceConsumptionError reports a zero, negative or undefined
// per-service consumption constant.
func NewInvalidServiceConsumptionError(service string, value float64) *AppError {
	return NewAppError(ErrTypeInvalidServiceConsumption,
		fmt.Sprintf("service %q has unusable average consumption %v", service, value), nil).
		WithContext("service", service)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
