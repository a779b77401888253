package usecase

import (
	"bytes"
	"fmt"
	"mime"

	"github.com/snaplens/gateway/internal/domain"
)

const multipartFormData = "multipart/form-data"

// MultipartContentType derives the outbound Content-Type of a relayed
// upload from the incoming header and the body it describes. The result
// always names the boundary that actually delimits body, so the bytes can be
// forwarded untouched. A static Content-Type is never used for uploads.
func MultipartContentType(incoming string, body []byte) (string, error) {
	if incoming == "" {
		return "", fmt.Errorf("%w: missing Content-Type", domain.ErrNotMultipart)
	}

	mediaType, params, err := mime.ParseMediaType(incoming)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNotMultipart, err)
	}
	if mediaType != multipartFormData {
		return "", fmt.Errorf("%w: got %s", domain.ErrNotMultipart, mediaType)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return "", fmt.Errorf("%w: missing boundary", domain.ErrNotMultipart)
	}
	if !bytes.Contains(body, []byte("--"+boundary)) {
		return "", fmt.Errorf("%w: boundary %q not found in body", domain.ErrNotMultipart, boundary)
	}

	return mime.FormatMediaType(multipartFormData, map[string]string{"boundary": boundary}), nil
}
