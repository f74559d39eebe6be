package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes is the upload size limit when none is configured.
const DefaultMaxBytes int64 = 2 * 1024 * 1024

// MaxPixels bounds width*height before an image is fully decoded.
const MaxPixels = 89_478_485

// DefaultFormats lists the accepted image formats by decoder name.
var DefaultFormats = []string{"jpeg", "png", "webp"}

var (
	ErrTooLarge          = errors.New("image too large")
	ErrInvalidImage      = errors.New("invalid image")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// ImageError carries the user-facing message for a rejected upload.
type ImageError struct {
	Kind    error
	Message string
}

func (e *ImageError) Error() string { return e.Message }

func (e *ImageError) Unwrap() error { return e.Kind }

var mediaTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// ImageInfo is what validation learned about an accepted image.
type ImageInfo struct {
	Format    string
	MediaType string
	Width     int
	Height    int
}

// ValidateImage checks the size, format and dimensions of an uploaded image
// from its header, then decodes it once to verify the pixel data.
// GIF is decodable so it can be reported as unsupported rather than corrupt.
func ValidateImage(data []byte, maxBytes int64, allowed []string) (ImageInfo, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(allowed) == 0 {
		allowed = DefaultFormats
	}
	if int64(len(data)) > maxBytes {
		return ImageInfo{}, &ImageError{Kind: ErrTooLarge, Message: fmt.Sprintf("Image file must be under %s.", humanSize(maxBytes))}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, &ImageError{Kind: ErrInvalidImage, Message: "Invalid or corrupted image file."}
	}
	if !containsFold(allowed, format) {
		return ImageInfo{}, &ImageError{
			Kind:    ErrUnsupportedFormat,
			Message: "Unsupported image format. Allowed formats: " + strings.ToUpper(strings.Join(allowed, ", ")),
		}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, &ImageError{Kind: ErrInvalidImage, Message: "Invalid or corrupted image file."}
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return ImageInfo{}, &ImageError{
			Kind:    ErrTooLarge,
			Message: fmt.Sprintf("Image dimensions %dx%d exceed the %d pixel limit.", cfg.Width, cfg.Height, MaxPixels),
		}
	}

	// Full decode catches truncated or corrupt pixel data.
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return ImageInfo{}, &ImageError{Kind: ErrInvalidImage, Message: "Invalid or corrupted image file."}
	}

	return ImageInfo{
		Format:    format,
		MediaType: mediaTypes[format],
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, nil
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}

func humanSize(n int64) string {
	const mib = 1024 * 1024
	if n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	if n%1024 == 0 {
		return fmt.Sprintf("%dKB", n/1024)
	}
	return fmt.Sprintf("%d bytes", n)
}
