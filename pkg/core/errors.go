package core

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind represents the category of a client error.
type ErrorKind int

// Error kind constants. Callers branch on the kind; no kind is ever
// downgraded to another or to a default value.
const (
	// ErrorKindConfiguration indicates missing or unusable client setup,
	// such as absent credentials on an authenticated call.
	ErrorKindConfiguration ErrorKind = iota
	// ErrorKindValidation indicates a caller-supplied argument violated a precondition.
	ErrorKindValidation
	// ErrorKindTransport indicates the HTTP call could not be completed.
	ErrorKindTransport
	// ErrorKindAPI indicates the exchange answered with a non-success status.
	ErrorKindAPI
	// ErrorKindProtocol indicates a success status with a body that could not be understood.
	ErrorKindProtocol
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	names := [...]string{
		"CONFIGURATION",
		"VALIDATION",
		"TRANSPORT",
		"API",
		"PROTOCOL",
	}
	if k < 0 || int(k) >= len(names) {
		return "UNKNOWN"
	}
	return names[k]
}

// Sentinel errors for common error conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNoCredentials is returned when an authenticated call has no usable credentials.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrNonceRegressed is returned when a nonce is not greater than the last one signed.
	ErrNonceRegressed = errors.New("nonce must be strictly increasing")
)

// Error is the single error type returned across the package boundary.
type Error struct {
	// Kind categorizes the error for programmatic handling.
	Kind ErrorKind `json:"kind"`
	// StatusCode is the HTTP status code, zero when no response was received.
	StatusCode int `json:"status_code,omitempty"`
	// Code is the exchange error code for API errors, or a local ErrorCode otherwise.
	Code string `json:"code,omitempty"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Raw holds the undecoded response body of API and protocol errors.
	Raw []byte `json:"-"`
	// RetryAfter is the server's Retry-After hint on API errors, zero if absent.
	RetryAfter time.Duration `json:"retry_after,omitempty"`
	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}

	switch {
	case e.StatusCode != 0 && e.Code != "":
		return fmt.Sprintf("ovex: %s (%d/%s): %s", e.Kind, e.StatusCode, e.Code, msg)
	case e.StatusCode != 0:
		return fmt.Sprintf("ovex: %s (%d): %s", e.Kind, e.StatusCode, msg)
	case e.Code != "":
		return fmt.Sprintf("ovex: %s (%s): %s", e.Kind, e.Code, msg)
	default:
		return fmt.Sprintf("ovex: %s: %s", e.Kind, msg)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a configuration error wrapping cause.
func NewConfigurationError(code ErrorCode, message string, cause error) *Error {
	return &Error{Kind: ErrorKindConfiguration, Code: string(code), Message: message, Err: cause}
}

// NewValidationError creates a validation error.
func NewValidationError(code ErrorCode, message string, cause error) *Error {
	return &Error{Kind: ErrorKindValidation, Code: string(code), Message: message, Err: cause}
}

// NewTransportError creates a transport error carrying the underlying failure.
func NewTransportError(code ErrorCode, cause error) *Error {
	return &Error{Kind: ErrorKindTransport, Code: string(code), Message: "http request failed", Err: cause}
}

// NewAPIError creates an API error from a non-success response.
func NewAPIError(statusCode int, code, message string, raw []byte) *Error {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &Error{Kind: ErrorKindAPI, StatusCode: statusCode, Code: code, Message: message, Raw: raw}
}

// NewProtocolError creates a protocol error for an unexpected success body.
func NewProtocolError(statusCode int, message string, raw []byte, cause error) *Error {
	return &Error{
		Kind:       ErrorKindProtocol,
		StatusCode: statusCode,
		Code:       string(ErrCodeMalformedResponse),
		Message:    message,
		Raw:        raw,
		Err:        cause,
	}
}

func isKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsConfigurationError reports whether err is a configuration error.
func IsConfigurationError(err error) bool {
	return isKind(err, ErrorKindConfiguration)
}

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool {
	return isKind(err, ErrorKindValidation)
}

// IsTransportError reports whether err is a transport error.
// Transport errors leave the outcome of a non-idempotent call unknown.
func IsTransportError(err error) bool {
	return isKind(err, ErrorKindTransport)
}

// IsAPIError reports whether err is an API error.
func IsAPIError(err error) bool {
	return isKind(err, ErrorKindAPI)
}

// IsProtocolError reports whether err is a protocol error.
func IsProtocolError(err error) bool {
	return isKind(err, ErrorKindProtocol)
}

// IsRateLimitError reports whether err is an API error with status 429.
func IsRateLimitError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == ErrorKindAPI && e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// IsAuthenticationError reports whether err is an API error with status 401 or 403.
func IsAuthenticationError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == ErrorKindAPI &&
			(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
	}
	return false
}
