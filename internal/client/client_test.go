package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaplens/gateway/internal/domain"
	"github.com/snaplens/gateway/internal/upload"
)

func testFile() *upload.File {
	return &upload.File{Name: "cat.png", MediaType: "image/png", Data: []byte("\x89PNG fake")}
}

func TestDetect_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/detect", r.URL.Path)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "cat.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, "\x89PNG fake", string(data))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"matches":[{"title":"A","price":1200,"score":0.873},{"title":"B","price":"¥5"}]}`))
	}))
	defer server.Close()

	matches, err := New(server.URL, 0).Detect(context.Background(), testFile())

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "A", matches[0].Title)
	assert.Equal(t, "B", matches[1].Title)
}

func TestDetect_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Backend failed with 503","details":"overloaded"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, 0).Detect(context.Background(), testFile())

	var gatewayErr *domain.GatewayError
	require.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, domain.KindBackendError, gatewayErr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, gatewayErr.StatusCode)
	assert.Equal(t, "Backend failed with 503", gatewayErr.Message)
	require.NotNil(t, gatewayErr.Details)
	assert.Equal(t, "overloaded", *gatewayErr.Details)
}

func TestDetect_GatewayTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"connection refused"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, 0).Detect(context.Background(), testFile())

	var gatewayErr *domain.GatewayError
	require.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, domain.KindTransportError, gatewayErr.Kind)
	assert.Equal(t, "connection refused", gatewayErr.Message)
	assert.ErrorIs(t, err, domain.ErrBackendUnreachable)
	assert.NotErrorIs(t, err, domain.ErrBackendFailure)
}

func TestDetect_GatewayContractViolation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"backend returned invalid JSON","details":"<html>oops</html>"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, 0).Detect(context.Background(), testFile())

	var gatewayErr *domain.GatewayError
	require.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, domain.KindContractViolation, gatewayErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, gatewayErr.StatusCode)
	assert.ErrorIs(t, err, domain.ErrContractViolation)
	require.NotNil(t, gatewayErr.Details)
	assert.Equal(t, "<html>oops</html>", *gatewayErr.Details)
}

func TestDetect_BackendFailureWithDetailsOn500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Backend failed with 500","details":"trace"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, 0).Detect(context.Background(), testFile())

	var gatewayErr *domain.GatewayError
	require.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, domain.KindBackendError, gatewayErr.Kind)
	assert.ErrorIs(t, err, domain.ErrBackendFailure)
}

func TestDetect_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	}))
	defer server.Close()

	_, err := New(server.URL, 0).Detect(context.Background(), testFile())

	var gatewayErr *domain.GatewayError
	require.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, http.StatusBadGateway, gatewayErr.StatusCode)
	require.NotNil(t, gatewayErr.Details)
	assert.Equal(t, "bad gateway", *gatewayErr.Details)
}

func TestDetect_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(url, 0).Detect(context.Background(), testFile())

	assert.ErrorIs(t, err, domain.ErrBackendUnreachable)
}

func TestDetect_RejectsNonImage(t *testing.T) {
	_, err := New("http://127.0.0.1:1", 0).Detect(context.Background(), &upload.File{Name: "a.txt", MediaType: "text/plain"})
	assert.ErrorIs(t, err, domain.ErrInvalidMediaType)
}

func TestDetect_InvalidSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := New(server.URL, 0).Detect(context.Background(), testFile())
	assert.ErrorIs(t, err, domain.ErrContractViolation)
}
