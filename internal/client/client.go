// Package client submits captured images to a SnapLens gateway.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/snaplens/gateway/internal/domain"
	"github.com/snaplens/gateway/internal/upload"
)

const (
	// DefaultTimeout bounds one detection round trip
	DefaultTimeout = 2 * time.Minute

	detectPath = "/api/detect"
	formField  = "file"
)

// Client talks to the gateway's public endpoints
type Client struct {
	httpClient *resty.Client
	baseURL    string
}

// New creates a gateway client
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	c.httpClient = resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return c
}

// Detect uploads f as multipart form data and returns the ranked matches.
// resty builds the body and derives the Content-Type boundary from it.
// Error statuses are returned as *domain.GatewayError.
func (c *Client) Detect(ctx context.Context, f *upload.File) ([]domain.ProductMatch, error) {
	if f == nil || !upload.Accepts(f.MediaType) {
		return nil, domain.ErrInvalidMediaType
	}

	res, err := c.httpClient.R().
		SetContext(ctx).
		SetMultipartField(formField, f.Name, f.MediaType, bytes.NewReader(f.Data)).
		Post(detectPath)
	if err != nil {
		return nil, domain.NewTransportError(err)
	}

	if !res.IsSuccess() {
		return nil, decodeError(res.StatusCode(), res.Body())
	}

	matches, err := domain.ParseDetectionResponse(res.Body())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrContractViolation, err)
	}
	return matches, nil
}

// decodeError rebuilds the gateway's error document. A 500 is either a
// contract violation, recognized by its fixed message, or a transport
// failure, which carries no details.
func decodeError(status int, body []byte) *domain.GatewayError {
	var payload domain.ErrorBody
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return domain.NewBackendError(status, string(body))
	}

	gatewayErr := &domain.GatewayError{
		Kind:       domain.KindBackendError,
		Message:    payload.Error,
		Details:    payload.Details,
		StatusCode: status,
		Cause:      domain.ErrBackendFailure,
	}
	if status != http.StatusInternalServerError {
		return gatewayErr
	}

	switch {
	case payload.Error == domain.ErrContractViolation.Error():
		gatewayErr.Kind = domain.KindContractViolation
		gatewayErr.Cause = domain.ErrContractViolation
	case payload.Details == nil:
		gatewayErr.Kind = domain.KindTransportError
		gatewayErr.Cause = domain.ErrBackendUnreachable
	}
	return gatewayErr
}
