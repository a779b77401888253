package domain

import "errors"

var (
	// ErrInvalidMediaType is returned when a file does not declare an image media type
	ErrInvalidMediaType = errors.New("declared media type is not an image")

	// ErrNotMultipart is returned when a detection upload is not multipart/form-data
	ErrNotMultipart = errors.New("request body is not multipart/form-data")

	// ErrPayloadTooLarge is returned when an upload exceeds the configured limit
	ErrPayloadTooLarge = errors.New("request body exceeds upload limit")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrBackendFailure is returned when the detection service answers with a non-2xx status
	ErrBackendFailure = errors.New("backend request failed")

	// ErrBackendUnreachable is returned when the outbound call itself fails
	ErrBackendUnreachable = errors.New("backend unreachable")

	// ErrBackendTimeout is the cause attached to transport failures caused by the outbound timeout
	ErrBackendTimeout = errors.New("backend request timed out")

	// ErrContractViolation is returned when the backend answers 2xx with a body that is not JSON
	ErrContractViolation = errors.New("backend returned invalid JSON")
)
