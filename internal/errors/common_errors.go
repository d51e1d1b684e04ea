package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema        ErrorType = "SCHEMA"
	ErrTypeMalformedTime ErrorType = "MALFORMED_TIME"
	ErrTypeDateParse     ErrorType = "DATE_PARSE"
	ErrTypeNoAnchor      ErrorType = "NO_ANCHOR"
	ErrTypeNoSeed        ErrorType = "NO_SEED"
	ErrTypeParsing       ErrorType = "PARSING"
	ErrTypeStorage       ErrorType = "STORAGE"
	ErrTypeValidation    ErrorType = "VALIDATION"
	ErrTypeNotFound      ErrorType = "NOT_FOUND"
	ErrTypeConfig        ErrorType = "CONFIG"
)

// Sentinels for errors.Is matching. Any AppError with the same Type matches.
var (
	ErrSchema        = &AppError{Type: ErrTypeSchema, Message: "schema error"}
	ErrMalformedTime = &AppError{Type: ErrTypeMalformedTime, Message: "malformed time"}
	ErrDateParse     = &AppError{Type: ErrTypeDateParse, Message: "date parse error"}
	ErrNoAnchor      = &AppError{Type: ErrTypeNoAnchor, Message: "no anchor found"}
	ErrNoSeed        = &AppError{Type: ErrTypeNoSeed, Message: "no seed found"}
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

// Fatal reports whether the error type aborts a run.
// Anchor, seed and date parse failures only degrade the result.
func (e *AppError) Fatal() bool {
	switch e.Type {
	case ErrTypeDateParse, ErrTypeNoAnchor, ErrTypeNoSeed:
		return false
	}
	return true
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

// TypeOf returns the ErrorType of the first AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// Helper functions for common error types

// NewSchemaError reports required columns absent from the input header
func NewSchemaError(missing []string) *AppError {
	return NewAppError(ErrTypeSchema, fmt.Sprintf("missing required columns %v", missing), nil).
		WithContext("missing", missing)
}

// NewMalformedTimeError reports a Time cell that is not HH:MM:SS
func NewMalformedTimeError(row int, value string) *AppError {
	return NewAppError(ErrTypeMalformedTime, fmt.Sprintf("row %d: time %q is not HH:MM:SS", row, value), nil).
		WithContext("row", row).
		WithContext("value", value)
}

// NewDateParseError reports a ticker without a valid embedded date
func NewDateParseError(ticker string, cause error) *AppError {
	return NewAppError(ErrTypeDateParse, fmt.Sprintf("no valid date in ticker %q", ticker), cause).
		WithContext("ticker", ticker)
}

// NewNoAnchorError reports a date without an anchor candidate
func NewNoAnchorError(date string) *AppError {
	return NewAppError(ErrTypeNoAnchor, fmt.Sprintf("no anchor candidate for %s", date), nil).
		WithContext("date", date)
}

// NewNoSeedError reports a session without a seed row
func NewNoSeedError() *AppError {
	return NewAppError(ErrTypeNoSeed, "no seed row found", nil)
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
