package core

import "errors"

// ErrorCode is a stable, machine-readable identifier for errors raised
// locally by the client. API errors carry the exchange's own code instead.
type ErrorCode string

const (
	// Configuration errors
	ErrCodeInvalidConfig  ErrorCode = "INVALID_CONFIG"
	ErrCodeNoCredentials  ErrorCode = "NO_CREDENTIALS"
	ErrCodeNonceRegressed ErrorCode = "NONCE_REGRESSED"
	ErrCodeClientClosed   ErrorCode = "CLIENT_CLOSED"

	// Validation errors
	ErrCodeInvalidParam    ErrorCode = "INVALID_PARAM"
	ErrCodeInvalidMethod   ErrorCode = "INVALID_METHOD"
	ErrCodeInvalidPath     ErrorCode = "INVALID_PATH"
	ErrCodeUnknownCurrency ErrorCode = "UNKNOWN_CURRENCY"

	// Transport errors
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// Protocol errors
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
)

// IsErrorCode checks if the error carries the specified code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return ErrorCode(e.Code) == code
	}
	return false
}
