// Package routes holds the static prefix rewrite that sends /api/ traffic
// to the backend origin. It is resolved once at startup and knows nothing
// about individual gateway handlers.
package routes

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultOrigin is used when no backend origin is configured
	DefaultOrigin = "http://127.0.0.1:8000"

	// DefaultPrefix is the API path prefix that is rewritten
	DefaultPrefix = "/api/"
)

// Rule rewrites any path under Prefix to the same path under Origin
type Rule struct {
	Prefix string
	Origin *url.URL
}

// Resolve builds the rewrite rule. An empty origin or prefix falls back to
// the defaults.
func Resolve(origin, prefix string) (Rule, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		origin = DefaultOrigin
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	target, err := url.Parse(strings.TrimRight(origin, "/"))
	if err != nil {
		return Rule{}, fmt.Errorf("invalid backend origin %q: %w", origin, err)
	}
	if (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return Rule{}, fmt.Errorf("backend origin must be an absolute http(s) URL, got %q", origin)
	}

	return Rule{Prefix: prefix, Origin: target}, nil
}

// Match reports whether path falls under the rule's prefix. The bare prefix
// without its trailing slash matches too.
func (r Rule) Match(path string) bool {
	return strings.HasPrefix(path, r.Prefix) || path == strings.TrimSuffix(r.Prefix, "/")
}

// Destination returns the backend URL for path and query
func (r Rule) Destination(path, rawQuery string) string {
	dest := *r.Origin
	dest.Path = strings.TrimRight(r.Origin.Path, "/") + path
	dest.RawQuery = rawQuery
	return dest.String()
}

func (r Rule) String() string {
	return fmt.Sprintf("%s* -> %s%s*", r.Prefix, r.Origin.String(), r.Prefix)
}
