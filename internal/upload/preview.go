package upload

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// Preview is a displayable local rendition of a selected file
type Preview struct {
	DataURL string
	Format  string // decoder name, empty when the image could not be decoded
	Width   int
	Height  int
}

// buildPreview encodes the file as a data URL and reads its dimensions when
// a registered decoder recognizes it.
func buildPreview(f *File) Preview {
	preview := Preview{
		DataURL: fmt.Sprintf("data:%s;base64,%s", f.MediaType, base64.StdEncoding.EncodeToString(f.Data)),
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(f.Data))
	if err == nil {
		preview.Format = format
		preview.Width = cfg.Width
		preview.Height = cfg.Height
	}

	return preview
}

// FileFromPath reads a file from disk and declares its media type from the
// content, the way a browser reports it for a picked file.
func FileFromPath(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return &File{
		Name:      filepath.Base(path),
		MediaType: mimetype.Detect(data).String(),
		Data:      data,
	}, nil
}
