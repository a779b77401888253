package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed gateway request
type ErrorKind string

const (
	KindBackendError      ErrorKind = "backend_error"
	KindTransportError    ErrorKind = "transport_error"
	KindContractViolation ErrorKind = "contract_violation"
)

// GatewayError is the normalized outcome of a failed relay. It is built per
// request and never stored.
type GatewayError struct {
	Kind       ErrorKind
	Message    string
	Details    *string
	StatusCode int
	Cause      error
}

// ErrorBody is the JSON document written for a GatewayError
type ErrorBody struct {
	Error   string  `json:"error"`
	Details *string `json:"details,omitempty"`
}

// NewBackendError keeps the backend's status and raw body text.
func NewBackendError(statusCode int, text string) *GatewayError {
	return &GatewayError{
		Kind:       KindBackendError,
		Message:    fmt.Sprintf("Backend failed with %d", statusCode),
		Details:    &text,
		StatusCode: statusCode,
		Cause:      ErrBackendFailure,
	}
}

// NewTransportError collapses any outbound failure into a 500 carrying only
// the raw failure message.
func NewTransportError(err error) *GatewayError {
	return &GatewayError{
		Kind:       KindTransportError,
		Message:    err.Error(),
		StatusCode: http.StatusInternalServerError,
		Cause:      errors.Join(ErrBackendUnreachable, err),
	}
}

// NewTimeoutError is a transport error whose cause is ErrBackendTimeout.
func NewTimeoutError(err error) *GatewayError {
	gatewayErr := NewTransportError(err)
	gatewayErr.Cause = errors.Join(ErrBackendTimeout, err)
	return gatewayErr
}

// NewContractViolation reports a 2xx backend response whose body is not JSON.
func NewContractViolation(body []byte) *GatewayError {
	text := string(body)
	return &GatewayError{
		Kind:       KindContractViolation,
		Message:    ErrContractViolation.Error(),
		Details:    &text,
		StatusCode: http.StatusInternalServerError,
		Cause:      ErrContractViolation,
	}
}

func (e *GatewayError) Error() string {
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// Body returns the wire representation of the error
func (e *GatewayError) Body() ErrorBody {
	return ErrorBody{Error: e.Message, Details: e.Details}
}
