package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"

	"github.com/rs/zerolog/log"

	"github.com/snaplens/gateway/internal/domain"
)

// NewProxy returns a reverse proxy that applies rule to every request it
// serves. Callers decide which requests reach it (see Rule.Match).
func NewProxy(rule Rule) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(rule.Origin)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error().Err(err).Str("path", r.URL.Path).Str("origin", rule.Origin.String()).Msg("static route proxy failed")
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(domain.ErrorBody{Error: err.Error()})
		},
	}
}
