package domain

// DetectionRequest is an upload as received by the gateway: the raw
// multipart body and the Content-Type header that carries its boundary.
type DetectionRequest struct {
	Body        []byte
	ContentType string
}

// BackendResponse is the raw answer of the detection service
type BackendResponse struct {
	StatusCode int
	Body       []byte
}

// IsSuccess reports a 2xx status
func (r *BackendResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// OptOutRequest asks the backend to exclude a shop from results
type OptOutRequest struct {
	ShopURL string `json:"shopUrl" binding:"required,url"`
}

// CheckoutRequest starts a redirect-based subscription checkout
type CheckoutRequest struct {
	UserID string `json:"userId" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
}
