package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeIO           ErrorType = "io"
	ErrorTypeAI           ErrorType = "ai"
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeVerification ErrorType = "verification"
	ErrorTypeInternal     ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// newAppError is an unexported helper to create AppError instances
func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error constructors for different types
func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewAIError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, code, message, cause)
}

func NewNetworkError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// NewEmptyInputError is returned when a document has no usable text.
// It is fatal for the request that produced it.
func NewEmptyInputError() *AppError {
	return NewValidationError(ErrCodeEmptyInput, "input text is empty after trimming", nil)
}

// NewAIServiceUnavailable describes a classifier call that failed or timed out.
// Callers recover from it by falling back to rule-based scoring.
func NewAIServiceUnavailable(reason string, cause error) *AppError {
	return NewAIError(ErrCodeAIServiceUnavailable, reason, cause)
}

// NewPartialVerificationFailure records a failed job verification step.
func NewPartialVerificationFailure(step string, cause error) *AppError {
	return newAppError(ErrorTypeVerification, ErrCodePartialVerification,
		fmt.Sprintf("%s step failed", step), cause).WithContext("step", step)
}

// NewInvalidConfigurationError is fatal at startup.
func NewInvalidConfigurationError(message string, cause error) *AppError {
	return NewConfigError(ErrCodeInvalidConfig, message, cause)
}

// HasCode reports whether err or any error it wraps is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if appErr.Code == code {
			return true
		}
		return appErr.Cause != nil && HasCode(appErr.Cause, code)
	}
	return false
}

// As and Is forward to the standard library so callers do not need to import both errors packages.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Logger wraps slog with application-specific methods
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a new structured logger
func NewLogger(level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(handler)

	return &Logger{logger: logger}
}

// NewDiscardLogger returns a logger that drops every record. Used by tests and
// by commands that write their result to stdout.
func NewDiscardLogger() *Logger {
	return &Logger{logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

// LogError logs an application error with appropriate level and context
func (l *Logger) LogError(err error, message string, args ...any) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		logArgs := []any{
			"error_type", appErr.Type,
			"error_code", appErr.Code,
			"error_message", appErr.Message,
		}
		if appErr.Cause != nil {
			logArgs = append(logArgs, "cause", appErr.Cause.Error())
		}

		for key, value := range appErr.Context {
			logArgs = append(logArgs, key, value)
		}

		logArgs = append(logArgs, args...)

		l.logger.Error(message, logArgs...)
	} else {
		logArgs := append([]any{"error", err.Error()}, args...)
		l.logger.Error(message, logArgs...)
	}
}

func (l *Logger) Info(message string, args ...any) {
	l.logger.Info(message, args...)
}

func (l *Logger) Debug(message string, args ...any) {
	l.logger.Debug(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	l.logger.Warn(message, args...)
}

// With returns a logger that adds the given attributes to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

// New creates a new logger instance
func New(level string) (*Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	return NewLogger(slogLevel), nil
}

// Common error codes
const (
	ErrCodeFileNotFound         = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable      = "FILE_NOT_READABLE"
	ErrCodeInvalidFormat        = "INVALID_FORMAT"
	ErrCodeEmptyInput           = "EMPTY_INPUT"
	ErrCodeAIServiceFailed      = "AI_SERVICE_FAILED"
	ErrCodeAIServiceUnavailable = "AI_SERVICE_UNAVAILABLE"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeInvalidConfig        = "INVALID_CONFIG"
	ErrCodePartialVerification  = "PARTIAL_VERIFICATION_FAILURE"
	ErrCodeFetchFailed          = "FETCH_FAILED"
)
