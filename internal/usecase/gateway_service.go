package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/snaplens/gateway/internal/domain"
)

const jsonContentType = "application/json"

// GatewayServiceConfig holds configuration for the gateway service
type GatewayServiceConfig struct {
	DetectPath   string
	OptOutPath   string
	CheckoutPath string
	Timeout      time.Duration // 0 leaves outbound calls bound only by the caller's context
}

// GatewayService relays requests to the detection service and normalizes
// every outcome. It keeps no state between requests.
type GatewayService struct {
	backend      domain.BackendClient
	detectPath   string
	optOutPath   string
	checkoutPath string
	timeout      time.Duration
}

// NewGatewayService creates a new gateway service with dependencies
func NewGatewayService(backend domain.BackendClient, config GatewayServiceConfig) *GatewayService {
	s := &GatewayService{
		backend:      backend,
		detectPath:   config.DetectPath,
		optOutPath:   config.OptOutPath,
		checkoutPath: config.CheckoutPath,
		timeout:      config.Timeout,
	}
	if s.detectPath == "" {
		s.detectPath = "/api/detect"
	}
	if s.optOutPath == "" {
		s.optOutPath = "/api/opt-out"
	}
	if s.checkoutPath == "" {
		s.checkoutPath = "/api/subscription/checkout"
	}
	return s
}

// Detect forwards a multipart upload unmodified and returns the backend's
// JSON document verbatim. Failures are *domain.GatewayError, except a
// request that is not multipart, which fails with domain.ErrNotMultipart
// before anything is sent.
func (s *GatewayService) Detect(ctx context.Context, request *domain.DetectionRequest) ([]byte, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}

	contentType, err := MultipartContentType(request.ContentType, request.Body)
	if err != nil {
		return nil, err
	}

	return s.relay(ctx, s.detectPath, request.Body, contentType)
}

// OptOut relays a shop opt-out request
func (s *GatewayService) OptOut(ctx context.Context, request *domain.OptOutRequest) ([]byte, error) {
	if request == nil || request.ShopURL == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.relayJSON(ctx, s.optOutPath, request)
}

// Checkout relays a subscription checkout request; the backend answers {url}
func (s *GatewayService) Checkout(ctx context.Context, request *domain.CheckoutRequest) ([]byte, error) {
	if request == nil || request.UserID == "" || request.Email == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.relayJSON(ctx, s.checkoutPath, request)
}

func (s *GatewayService) relayJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return s.relay(ctx, path, body, jsonContentType)
}

// relay performs exactly one outbound call. No retries, no deduplication.
func (s *GatewayService) relay(ctx context.Context, path string, body []byte, contentType string) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.backend.Post(ctx, path, body, contentType)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Str("path", path).Dur("timeout", s.timeout).Msg("backend call timed out")
			return nil, domain.NewTimeoutError(err)
		}
		log.Error().Err(err).Str("path", path).Msg("backend call failed")
		return nil, domain.NewTransportError(err)
	}

	if !resp.IsSuccess() {
		log.Warn().Str("path", path).Int("status", resp.StatusCode).Msg("backend returned error status")
		return nil, domain.NewBackendError(resp.StatusCode, string(resp.Body))
	}

	if !json.Valid(resp.Body) {
		log.Error().Str("path", path).Int("status", resp.StatusCode).Msg("backend returned non-JSON success body")
		return nil, domain.NewContractViolation(resp.Body)
	}

	return resp.Body, nil
}
