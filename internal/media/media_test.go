package media

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"regexp"
	"testing"

	"quill/internal/models"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeGIF(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

func TestValidateImageAcceptsPNG(t *testing.T) {
	info, err := ValidateImage(encodePNG(t), 0, nil)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if info.Format != "png" || info.MediaType != "image/png" || info.Width != 4 || info.Height != 3 {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestValidateImageRejections(t *testing.T) {
	pngData := encodePNG(t)
	tests := []struct {
		name     string
		data     []byte
		maxBytes int64
		kind     error
		message  string
	}{
		{name: "too large", data: pngData, maxBytes: 8, kind: ErrTooLarge, message: "Image file must be under 8 bytes."},
		{name: "corrupted", data: []byte("not an image at all"), kind: ErrInvalidImage, message: "Invalid or corrupted image file."},
		{name: "truncated", data: pngData[:len(pngData)/2], kind: ErrInvalidImage, message: "Invalid or corrupted image file."},
		{name: "gif", data: encodeGIF(t), kind: ErrUnsupportedFormat, message: "Unsupported image format. Allowed formats: JPEG, PNG, WEBP"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateImage(tc.data, tc.maxBytes, nil)
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			if err.Error() != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, err.Error())
			}
		})
	}
}

// pngHeader returns a PNG signature and IHDR chunk for a grayscale image of
// the given size. It carries no pixel data.
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth; color type, compression, filter and interlace stay 0

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestValidateImageRejectsHugeDimensions(t *testing.T) {
	_, err := ValidateImage(pngHeader(12000, 12000), 0, nil)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	want := "Image dimensions 12000x12000 exceed the 89478485 pixel limit."
	if err.Error() != want {
		t.Fatalf("expected message %q, got %q", want, err.Error())
	}
}

func TestValidateImageHeaderWithoutPixels(t *testing.T) {
	_, err := ValidateImage(pngHeader(64, 64), 0, nil)
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestHumanSize(t *testing.T) {
	if got := humanSize(DefaultMaxBytes); got != "2MB" {
		t.Fatalf("expected 2MB, got %s", got)
	}
	if got := humanSize(512 * 1024); got != "512KB" {
		t.Fatalf("expected 512KB, got %s", got)
	}
}

func TestUploadKey(t *testing.T) {
	key, err := UploadKey(models.MediaAvatar, "../My Photo.PNG", "")
	if err != nil {
		t.Fatalf("upload key: %v", err)
	}
	if !regexp.MustCompile(`^avatar/my-photo-png_[0-9a-f]{32}\.png$`).MatchString(key) {
		t.Fatalf("unexpected key %q", key)
	}

	other, _ := UploadKey(models.MediaAvatar, "../My Photo.PNG", "")
	if other == key {
		t.Fatal("expected unique keys per upload")
	}

	key, err = UploadKey(models.MediaSEO, "???", "")
	if err != nil {
		t.Fatalf("upload key: %v", err)
	}
	if !regexp.MustCompile(`^seo/file_[0-9a-f]{32}$`).MatchString(key) {
		t.Fatalf("unexpected fallback key %q", key)
	}

	if _, err := UploadKey(models.MediaKind("video"), "a.mp4", ""); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestUploadKeyUsesDecodedFormat(t *testing.T) {
	tests := []struct {
		filename string
		format   string
		pattern  string
	}{
		{"photo.jpeg", "jpeg", `^article/photo-jpeg_[0-9a-f]{32}\.jpeg$`},
		{"photo.JPG", "jpeg", `^article/photo-jpg_[0-9a-f]{32}\.jpg$`},
		{"photo", "png", `^article/photo_[0-9a-f]{32}\.png$`},
		{"photo.png", "webp", `^article/photo-png_[0-9a-f]{32}\.webp$`},
		{"scan.tiff", "jpeg", `^article/scan-tiff_[0-9a-f]{32}\.jpg$`},
	}
	for _, tc := range tests {
		key, err := UploadKey(models.MediaArticle, tc.filename, tc.format)
		if err != nil {
			t.Fatalf("upload key %q: %v", tc.filename, err)
		}
		if !regexp.MustCompile(tc.pattern).MatchString(key) {
			t.Fatalf("UploadKey(%q, %q) = %q, want match %s", tc.filename, tc.format, key, tc.pattern)
		}
	}
}

func TestExtForFormat(t *testing.T) {
	for format, want := range map[string]string{"jpeg": ".jpg", "png": ".png", "webp": ".webp", "": ""} {
		if got := ExtForFormat(format); got != want {
			t.Fatalf("ExtForFormat(%q) = %q, want %q", format, got, want)
		}
	}
}
