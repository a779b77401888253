package domain

import "context"

// BackendClient sends a request body to a path on the detection service origin
type BackendClient interface {
	Post(ctx context.Context, path string, body []byte, contentType string) (*BackendResponse, error)
}
