package usecase

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaplens/gateway/internal/domain"
)

func TestMultipartContentType(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		body     []byte
		want     string
		wantErr  bool
	}{
		{
			name:     "keeps the original boundary",
			incoming: "multipart/form-data; boundary=" + testBoundary,
			body:     multipartBody(),
			want:     "multipart/form-data; boundary=" + testBoundary,
		},
		{
			name:     "normalizes quoting and case",
			incoming: `Multipart/Form-Data; BOUNDARY="` + testBoundary + `"`,
			body:     multipartBody(),
			want:     "multipart/form-data; boundary=" + testBoundary,
		},
		{
			name:     "drops unrelated parameters",
			incoming: "multipart/form-data; charset=utf-8; boundary=" + testBoundary,
			body:     multipartBody(),
			want:     "multipart/form-data; boundary=" + testBoundary,
		},
		{
			name:     "missing header",
			incoming: "",
			body:     multipartBody(),
			wantErr:  true,
		},
		{
			name:     "not multipart",
			incoming: "application/json",
			body:     []byte(`{}`),
			wantErr:  true,
		},
		{
			name:     "multipart/mixed is rejected",
			incoming: "multipart/mixed; boundary=" + testBoundary,
			body:     multipartBody(),
			wantErr:  true,
		},
		{
			name:     "missing boundary",
			incoming: "multipart/form-data",
			body:     multipartBody(),
			wantErr:  true,
		},
		{
			name:     "boundary does not match body",
			incoming: "multipart/form-data; boundary=other",
			body:     multipartBody(),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MultipartContentType(tt.incoming, tt.body)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrNotMultipart)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMultipartContentType_WriterBoundary(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	part.Write([]byte{0xFF, 0xD8, 0xFF})
	require.NoError(t, writer.Close())

	got, err := MultipartContentType(writer.FormDataContentType(), buf.Bytes())

	require.NoError(t, err)
	assert.Equal(t, writer.FormDataContentType(), got)
}
