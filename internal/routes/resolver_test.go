package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Run("falls back to the local default origin", func(t *testing.T) {
		rule, err := Resolve("", "")
		require.NoError(t, err)

		assert.Equal(t, "/api/", rule.Prefix)
		assert.Equal(t, "http://127.0.0.1:8000", rule.Origin.String())
		assert.Equal(t, "http://127.0.0.1:8000/api/detect", rule.Destination("/api/detect", ""))
	})

	t.Run("uses configured origin", func(t *testing.T) {
		rule, err := Resolve("https://detect.example.com/", "/api/")
		require.NoError(t, err)

		assert.Equal(t, "https://detect.example.com/api/search?q=1", rule.Destination("/api/search", "q=1"))
	})

	t.Run("normalizes prefix slashes", func(t *testing.T) {
		rule, err := Resolve(DefaultOrigin, "api")
		require.NoError(t, err)
		assert.Equal(t, "/api/", rule.Prefix)
	})

	t.Run("rejects non-http origin", func(t *testing.T) {
		_, err := Resolve("unix:///tmp/sock", "")
		assert.Error(t, err)
	})

	t.Run("rejects origin without host", func(t *testing.T) {
		_, err := Resolve("http://", "")
		assert.Error(t, err)
	})
}

func TestRule_Match(t *testing.T) {
	rule, err := Resolve("", "")
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"/api/detect", true},
		{"/api/images/a/b.jpg", true},
		{"/api/", true},
		{"/api", true},
		{"/apix/detect", false},
		{"/health", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, rule.Match(tt.path))
		})
	}
}

func TestNewProxy(t *testing.T) {
	t.Run("forwards to the same path under the origin", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"path":  r.URL.Path,
				"query": r.URL.RawQuery,
				"body":  string(body),
				"fwd":   r.Header.Get("X-Forwarded-Host"),
			})
		}))
		defer backend.Close()

		rule, err := Resolve(backend.URL, "/api/")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "http://gateway.local/api/opt-out?x=1", strings.NewReader(`{"shopUrl":"u"}`))
		w := httptest.NewRecorder()
		NewProxy(rule).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var got map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "/api/opt-out", got["path"])
		assert.Equal(t, "x=1", got["query"])
		assert.Equal(t, `{"shopUrl":"u"}`, got["body"])
		assert.Equal(t, "gateway.local", got["fwd"])
	})

	t.Run("unreachable origin yields a JSON 502", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		origin := backend.URL
		backend.Close()

		rule, err := Resolve(origin, "/api/")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/anything", nil)
		w := httptest.NewRecorder()
		NewProxy(rule).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		var got map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.NotEmpty(t, got["error"])
	})
}
