package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/snaplens/gateway/internal/domain"
)

const (
	serviceName    = "snaplens-gateway"
	serviceVersion = "1.0.0"
)

// Gateway is the usecase behind the handlers
type Gateway interface {
	Detect(ctx context.Context, request *domain.DetectionRequest) ([]byte, error)
	OptOut(ctx context.Context, request *domain.OptOutRequest) ([]byte, error)
	Checkout(ctx context.Context, request *domain.CheckoutRequest) ([]byte, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	gateway        Gateway
	maxUploadBytes int64
}

// NewHandler creates a new HTTP handler. A nil gateway makes the API
// endpoints answer 501.
func NewHandler(gateway Gateway, maxUploadBytes int64) *Handler {
	return &Handler{
		gateway:        gateway,
		maxUploadBytes: maxUploadBytes,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// Detect relays a multipart image upload to the detection service. The
// response is the backend's JSON verbatim on success, or an error document.
func (h *Handler) Detect(c *gin.Context) {
	if h.gateway == nil {
		h.notConfigured(c)
		return
	}

	body, err := h.readBody(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, err := h.gateway.Detect(c.Request.Context(), &domain.DetectionRequest{
		Body:        body,
		ContentType: c.GetHeader("Content-Type"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, gin.MIMEJSON+"; charset=utf-8", data)
}

// OptOut relays a shop opt-out request
func (h *Handler) OptOut(c *gin.Context) {
	if h.gateway == nil {
		h.notConfigured(c)
		return
	}

	var request domain.OptOutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.respondBindError(c, err)
		return
	}

	data, err := h.gateway.OptOut(c.Request.Context(), &request)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, gin.MIMEJSON+"; charset=utf-8", data)
}

// Checkout relays a subscription checkout request; the backend answers {url}
func (h *Handler) Checkout(c *gin.Context) {
	if h.gateway == nil {
		h.notConfigured(c)
		return
	}

	var request domain.CheckoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.respondBindError(c, err)
		return
	}

	data, err := h.gateway.Checkout(c.Request.Context(), &request)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, gin.MIMEJSON+"; charset=utf-8", data)
}

// readBody reads the whole request body up to the upload limit
func (h *Handler) readBody(c *gin.Context) ([]byte, error) {
	reader := c.Request.Body
	if h.maxUploadBytes > 0 {
		reader = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, domain.ErrPayloadTooLarge
		}
		return nil, errors.Join(domain.ErrInvalidRequest, err)
	}
	return body, nil
}

// respondError maps usecase errors to HTTP responses
func (h *Handler) respondError(c *gin.Context, err error) {
	var gatewayErr *domain.GatewayError
	switch {
	case errors.As(err, &gatewayErr):
		log.Warn().
			Str("kind", string(gatewayErr.Kind)).
			Int("status", gatewayErr.StatusCode).
			Str("request_id", requestID(c)).
			Msg(gatewayErr.Message)
		c.JSON(gatewayErr.StatusCode, gatewayErr.Body())
	case errors.Is(err, domain.ErrPayloadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, domain.ErrorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrNotMultipart), errors.Is(err, domain.ErrInvalidRequest):
		// The outbound request could not be built; same shape as a transport failure
		log.Warn().Err(err).Str("request_id", requestID(c)).Msg("cannot build backend request")
		c.JSON(http.StatusInternalServerError, domain.ErrorBody{Error: err.Error()})
	default:
		log.Error().Err(err).Str("request_id", requestID(c)).Msg("unexpected gateway error")
		c.JSON(http.StatusInternalServerError, domain.ErrorBody{Error: err.Error()})
	}
}

func (h *Handler) respondBindError(c *gin.Context, err error) {
	details := err.Error()
	c.JSON(http.StatusBadRequest, domain.ErrorBody{
		Error:   domain.ErrInvalidRequest.Error(),
		Details: &details,
	})
}

func (h *Handler) notConfigured(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, domain.ErrorBody{Error: "gateway not configured"})
}
