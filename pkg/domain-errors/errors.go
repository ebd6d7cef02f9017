// Package domainerrors defines the gateway's error taxonomy. Services and
// handlers attach a Code so the transport layer can translate failures into
// HTTP statuses without inspecting error strings.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a gateway failure.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeNotFound           Code = "not_found"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInternal           Code = "internal"
	CodeUnavailable        Code = "unavailable"
	CodeInvariantViolation Code = "invariant_violation"
)

// GatewayError carries a code plus a human-readable message. The message is
// safe to log but not necessarily safe to expose to end users.
type GatewayError struct {
	Code    Code
	Message string
	cause   error
}

func (e GatewayError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e GatewayError) Unwrap() error {
	return e.cause
}

// New constructs a GatewayError with the given code and message.
func New(code Code, message string) error {
	return GatewayError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error so callers can both
// classify it and unwrap the original cause.
func Wrap(code Code, message string, cause error) error {
	return GatewayError{Code: code, Message: message, cause: cause}
}

// Is reports whether err (or anything it wraps) is a GatewayError with the
// given code.
func Is(err error, code Code) bool {
	var gw GatewayError
	if errors.As(err, &gw) {
		return gw.Code == code
	}
	return false
}

// ToHTTPStatus maps a code to the HTTP status handlers should emit.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvariantViolation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
