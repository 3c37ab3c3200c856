package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents application error codes.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrTimeout    ErrorCode = "TIMEOUT"

	// Client-side errors
	ErrCapability ErrorCode = "CAPABILITY_ERROR" // microphone absent or access denied
	ErrTransport  ErrorCode = "TRANSPORT_ERROR"  // network failure or non-success status
	ErrPlayback   ErrorCode = "PLAYBACK_ERROR"   // a clip failed to load or play

	// Pipeline errors
	ErrSTTService ErrorCode = "STT_SERVICE_ERROR"
	ErrAIService  ErrorCode = "AI_SERVICE_ERROR"
	ErrTTSService ErrorCode = "TTS_SERVICE_ERROR"
	ErrDatabase   ErrorCode = "DATABASE_ERROR"
)

// AppError represents an application error with code and metadata.
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// HTTPStatus returns the HTTP status code for the error.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrTimeout:
		return http.StatusGatewayTimeout
	case ErrSTTService, ErrAIService, ErrTTSService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Code extracts the ErrorCode from err when it is an AppError; otherwise it
// returns ErrInternal.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrInternal
}

// Common error constructors
func Internal(message string) *AppError {
	return New(ErrInternal, message)
}

func InternalWrap(message string, err error) *AppError {
	return Wrap(ErrInternal, message, err)
}

func Validation(message string) *AppError {
	return New(ErrValidation, message)
}

func NotFound(resource string) *AppError {
	return New(ErrNotFound, fmt.Sprintf("%s not found", resource))
}

func Capability(message string) *AppError {
	return New(ErrCapability, message)
}

func Transport(message string, err error) *AppError {
	return Wrap(ErrTransport, message, err)
}

func Playback(message string, err error) *AppError {
	return Wrap(ErrPlayback, message, err)
}
