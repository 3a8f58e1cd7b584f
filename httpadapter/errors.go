package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	apperrors "github.com/kbukum/restadapter/errors"
)

// ErrorCode classifies adapter errors.
type ErrorCode int

const (
	// ErrCodeTimeout indicates a connect, read or write timeout.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection indicates a connection failure (refused, DNS, TLS, reset).
	ErrCodeConnection
	// ErrCodeCanceled indicates the caller's context was canceled.
	ErrCodeCanceled
	// ErrCodeBody indicates a failure while streaming a response body.
	ErrCodeBody
	// ErrCodeRequest indicates a request that could not be built or encoded.
	ErrCodeRequest
	// ErrCodeAuth indicates an authentication/authorization failure (401/403/407).
	ErrCodeAuth
	// ErrCodeNotFound indicates the resource was not found (404).
	ErrCodeNotFound
	// ErrCodeRateLimit indicates rate limiting (429).
	ErrCodeRateLimit
	// ErrCodeClient indicates any other 4xx response.
	ErrCodeClient
	// ErrCodeServer indicates a server-side error (5xx).
	ErrCodeServer
	// ErrCodeRedirect indicates a 3xx response that was not followed.
	ErrCodeRedirect
	// ErrCodeUnexpectedStatus indicates a 1xx or out-of-range status.
	ErrCodeUnexpectedStatus
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeCanceled:
		return "canceled"
	case ErrCodeBody:
		return "body"
	case ErrCodeRequest:
		return "request"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeClient:
		return "client"
	case ErrCodeServer:
		return "server"
	case ErrCodeRedirect:
		return "redirect"
	case ErrCodeUnexpectedStatus:
		return "unexpected_status"
	default:
		return "unknown"
	}
}

// NetworkError reports a completed exchange whose status was not 2xx. The
// response body is discarded before the error is returned.
type NetworkError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Status is the engine's status line, e.g. "404 Not Found".
	Status string
	// Code classifies the status.
	Code ErrorCode
	// Retryable indicates whether the same request may succeed later.
	Retryable bool
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("httpadapter: %s (HTTP %s)", e.Code, e.Status)
	}
	return fmt.Sprintf("httpadapter: %s (HTTP %d)", e.Code, e.StatusCode)
}

// IOError reports a transport failure before or during a response.
type IOError struct {
	// Op is the failed step, e.g. "round trip" or "read body".
	Op string
	// Code classifies the failure.
	Code ErrorCode
	// Retryable indicates whether the operation can be retried.
	Retryable bool
	// Err is the engine's error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("httpadapter: %s: %s: %v", e.Code, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout.
func (e *IOError) Timeout() bool {
	return e.Code == ErrCodeTimeout
}

// ConfigurationError reports an invalid adapter setting.
type ConfigurationError struct {
	// Field is the offending setting, e.g. "connect_timeout".
	Field string
	// Message describes the problem.
	Message string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("httpadapter: invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// newIOError classifies an engine error.
func newIOError(op string, err error) *IOError {
	code := ErrCodeConnection
	switch {
	case isTimeout(err):
		code = ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		code = ErrCodeCanceled
	case op == "read body":
		code = ErrCodeBody
	}
	return &IOError{
		Op:        op,
		Code:      code,
		Retryable: code != ErrCodeCanceled,
		Err:       err,
	}
}

// newRequestError reports a request that never left the adapter.
func newRequestError(op string, err error) *IOError {
	return &IOError{Op: op, Code: ErrCodeRequest, Retryable: false, Err: err}
}

// isTimeout walks the whole chain: *url.Error only consults its direct cause.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if t, ok := e.(interface{ Timeout() bool }); ok && t.Timeout() {
			return true
		}
	}
	return false
}

// ClassifyStatusCode converts an HTTP status code into a NetworkError.
// Returns nil for 2xx status codes.
func ClassifyStatusCode(statusCode int) *NetworkError {
	e := &NetworkError{StatusCode: statusCode}
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == 401 || statusCode == 403 || statusCode == 407:
		e.Code = ErrCodeAuth
	case statusCode == 404:
		e.Code = ErrCodeNotFound
	case statusCode == 408:
		e.Code, e.Retryable = ErrCodeClient, true
	case statusCode == 429:
		e.Code, e.Retryable = ErrCodeRateLimit, true
	case statusCode >= 400 && statusCode < 500:
		e.Code = ErrCodeClient
	case statusCode >= 500 && statusCode < 600:
		e.Code = ErrCodeServer
		e.Retryable = statusCode != http.StatusNotImplemented
	case statusCode >= 300 && statusCode < 400:
		e.Code = ErrCodeRedirect
	default:
		e.Code = ErrCodeUnexpectedStatus
	}
	return e
}

// StatusCode returns the HTTP status carried by a NetworkError in err's chain.
func StatusCode(err error) (int, bool) {
	var e *NetworkError
	if errors.As(err, &e) {
		return e.StatusCode, true
	}
	return 0, false
}

func hasCode(err error, code ErrorCode) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Code == code
	}
	var ioe *IOError
	if errors.As(err, &ioe) {
		return ioe.Code == code
	}
	return false
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool { return hasCode(err, ErrCodeTimeout) }

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool { return hasCode(err, ErrCodeConnection) }

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool { return hasCode(err, ErrCodeAuth) }

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsRateLimit checks if an error is a rate-limit error.
func IsRateLimit(err error) bool { return hasCode(err, ErrCodeRateLimit) }

// IsServerError checks if an error is a server error.
func IsServerError(err error) bool { return hasCode(err, ErrCodeServer) }

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	var ioe *IOError
	return errors.As(err, &ioe) && ioe.Retryable
}

// ToAppError maps an adapter error onto the shared application error
// taxonomy. Errors that are already AppErrors pass through unchanged.
func ToAppError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return apperrors.Wrap(err)
	}

	var ne *NetworkError
	if errors.As(err, &ne) {
		var appErr *apperrors.AppError
		switch {
		case ne.StatusCode == http.StatusUnauthorized || ne.StatusCode == http.StatusProxyAuthRequired:
			appErr = apperrors.Unauthorized("")
		case ne.StatusCode == http.StatusForbidden:
			appErr = apperrors.Forbidden("")
		case ne.Code == ErrCodeNotFound:
			appErr = apperrors.NotFound("resource", "")
		case ne.Code == ErrCodeRateLimit:
			appErr = apperrors.RateLimited()
		case ne.StatusCode == http.StatusServiceUnavailable:
			appErr = apperrors.ServiceUnavailable("upstream")
		default:
			appErr = apperrors.ExternalServiceError("upstream", nil)
			appErr.Retryable = ne.Retryable
		}
		return appErr.WithCause(err).WithDetail("status_code", ne.StatusCode)
	}

	var ioe *IOError
	if errors.As(err, &ioe) {
		switch ioe.Code {
		case ErrCodeTimeout:
			return apperrors.Timeout(ioe.Op).WithCause(err)
		case ErrCodeRequest:
			return apperrors.Validation(err.Error()).WithCause(err)
		default:
			return apperrors.ConnectionFailed("upstream").WithCause(err)
		}
	}

	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return apperrors.InvalidInput(ce.Field, ce.Message).WithCause(err)
	}

	return apperrors.Wrap(err)
}
