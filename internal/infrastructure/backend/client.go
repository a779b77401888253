package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/snaplens/gateway/internal/domain"
)

const userAgent = "SnapLens-Gateway/1.0"

// Client sends requests to the detection service origin. It performs no
// retries and sets no timeout of its own; callers bound each call with ctx.
type Client struct {
	httpClient *resty.Client
	baseURL    string
	debug      bool
}

// NewClient creates a new detection service client
func NewClient(baseURL string) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	c.httpClient = resty.New().
		SetBaseURL(c.baseURL).
		SetLogger(restyLogger{}).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent)

	return c
}

// SetDebug enables resty request/response dumps
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
	c.httpClient.SetDebug(debug)
}

// BaseURL returns the configured origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post sends body to path with the given Content-Type. A non-2xx answer is
// not an error here: the raw status and body are returned for the caller to
// classify. Only failures to complete the exchange are returned as errors,
// unwrapped, so their message reaches the gateway response as-is.
func (c *Client) Post(ctx context.Context, path string, body []byte, contentType string) (*domain.BackendResponse, error) {
	if contentType == "" {
		return nil, fmt.Errorf("%w: missing content type for %s", domain.ErrInvalidRequest, path)
	}

	res, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(body).
		Post(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("backend request failed")
		return nil, err
	}

	log.Debug().
		Str("path", path).
		Int("status", res.StatusCode()).
		Int("bytes", len(res.Body())).
		Dur("latency", res.Time()).
		Msg("backend responded")

	return &domain.BackendResponse{
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
	}, nil
}

// restyLogger routes resty's internal messages through zerolog
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	log.Error().Str("component", "resty").Msgf(format, v...)
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	log.Warn().Str("component", "resty").Msgf(format, v...)
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	log.Debug().Str("component", "resty").Msgf(format, v...)
}
