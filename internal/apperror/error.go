package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// AppError implements the error interface and provides structured error handling
type AppError struct {
	Code            Code      `json:"code"`
	Message         string    `json:"message"`
	StatusCode      int       `json:"statusCode"`
	Context         string    `json:"context,omitempty"`
	UpstreamCode    string    `json:"upstreamCode,omitempty"`
	UpstreamMessage string    `json:"upstreamMessage,omitempty"`
	TraceID         string    `json:"traceId,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	cause           error     // unexported to maintain encapsulation
	stack           []uintptr // stack trace
}

// Error implements the error interface
func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Code, e.Message))
	if e.Context != "" {
		sb.WriteString(fmt.Sprintf(" (context: %s)", e.Context))
	}
	if e.HasUpstream() {
		sb.WriteString(fmt.Sprintf(" (upstream %s: %s)", e.UpstreamCode, e.UpstreamMessage))
	}
	return sb.String()
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is implements errors.Is interface for error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HasUpstream reports whether the error carries upstream-supplied details.
func (e *AppError) HasUpstream() bool {
	return e.UpstreamCode != "" || e.UpstreamMessage != ""
}

// Detail returns the message followed by the context, if any.
func (e *AppError) Detail() string {
	if e.Context == "" {
		return e.Message
	}
	return e.Message + ": " + e.Context
}

// WithTraceID sets the trace ID for distributed tracing
func (e *AppError) WithTraceID(traceID string) *AppError {
	e.TraceID = traceID
	return e
}

// ToLog serializes the error for logging with stack trace
func (e *AppError) ToLog() map[string]interface{} {
	log := map[string]interface{}{
		"code":       e.Code,
		"message":    e.Message,
		"statusCode": e.StatusCode,
		"timestamp":  e.Timestamp.Format(time.RFC3339),
	}

	if e.Context != "" {
		log["context"] = e.Context
	}

	if e.HasUpstream() {
		log["upstreamCode"] = e.UpstreamCode
		log["upstreamMessage"] = e.UpstreamMessage
	}

	if e.TraceID != "" {
		log["traceId"] = e.TraceID
	}

	if e.cause != nil {
		log["cause"] = e.cause.Error()
	}

	if len(e.stack) > 0 {
		log["stack"] = e.formatStack()
	}

	return log
}

// formatStack formats the stack trace
func (e *AppError) formatStack() string {
	var sb strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			sb.WriteString(fmt.Sprintf("\n\t%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// captureStack captures the current stack trace
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}

// New creates a new AppError with the given code and options
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:       code,
		Message:    messages[code],
		StatusCode: getDefaultStatusCode(code),
		Timestamp:  time.Now(),
		stack:      captureStack(),
	}

	for _, opt := range opts {
		opt(err)
	}

	// If message wasn't set by options and isn't in messages map, use code as message
	if err.Message == "" {
		err.Message = string(code)
	}

	return err
}

// Option is a functional option for AppError
type Option func(*AppError)

// WithMessage sets a custom message
func WithMessage(message string) Option {
	return func(e *AppError) {
		e.Message = message
	}
}

// WithContext adds context information
func WithContext(context string) Option {
	return func(e *AppError) {
		e.Context = context
	}
}

// WithStatusCode sets a custom HTTP status code
func WithStatusCode(statusCode int) Option {
	return func(e *AppError) {
		e.StatusCode = statusCode
	}
}

// WithCause wraps an underlying error
func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// WithUpstream attaches the code and message reported by an external API.
func WithUpstream(code, message string) Option {
	return func(e *AppError) {
		e.UpstreamCode = code
		e.UpstreamMessage = message
	}
}

// Factory methods for common error types

// Validation creates a validation error
func Validation(code Code, context string) *AppError {
	return New(code, WithContext(context), WithStatusCode(http.StatusBadRequest))
}

// Internal creates an internal server error
func Internal(code Code, context string, cause error) *AppError {
	return New(code, WithContext(context), WithCause(cause), WithStatusCode(http.StatusInternalServerError))
}

// Unavailable creates a transport-level upstream error. transportCode classifies
// the failure (TIMEOUT, HTTP_502, ...).
func Unavailable(context, transportCode string, cause error) *AppError {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return New(CodeUpstreamUnavailable,
		WithContext(context),
		WithCause(cause),
		WithUpstream(transportCode, msg),
	)
}

// Rejected creates an error for a business-level failure reported by an upstream API.
func Rejected(context, upstreamCode, upstreamMessage string) *AppError {
	return New(CodeUpstreamRejected,
		WithContext(context),
		WithUpstream(upstreamCode, upstreamMessage),
	)
}

// Wrap wraps a standard error into AppError
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, return it
	var appErr *AppError
	if errors.As(err, &appErr) {
		if context != "" && appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}

	return Internal(code, context, err)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode extracts the error code from an error
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

// StatusFor returns the HTTP status code associated with code.
func StatusFor(code Code) int {
	return getDefaultStatusCode(code)
}

// getDefaultStatusCode determines the HTTP status code based on the error code
func getDefaultStatusCode(code Code) int {
	switch {
	case code == CodeUpstreamUnavailable, code == CodeCircuitOpen:
		return http.StatusServiceUnavailable

	case code == CodeUpstreamRejected, code == CodeNoRateData:
		return http.StatusBadGateway

	case code == CodeNoAdvertisementFound,
		strings.Contains(string(code), "NOT_FOUND"):
		return http.StatusNotFound

	case strings.Contains(string(code), "INVALID"),
		strings.Contains(string(code), "REQUIRED"),
		code == CodeValidationError:
		return http.StatusBadRequest

	case code == CodeRateLimitExceeded:
		return http.StatusTooManyRequests

	default:
		return http.StatusInternalServerError
	}
}
