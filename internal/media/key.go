package media

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"quill/internal/models"
)

const fallbackStem = "file"

// UploadKey builds the storage key for an uploaded file:
// <kind>/<slugified filename>_<random hex><ext>. When format names the decoded
// image format, ext is taken from it unless the filename already carries a
// matching extension.
func UploadKey(kind models.MediaKind, filename, format string) (string, error) {
	if _, err := models.ParseMediaKind(string(kind)); err != nil {
		return "", err
	}
	filename = filepath.Base(strings.TrimSpace(filename))
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case format != "" && !extMatchesFormat(ext, format):
		ext = ExtForFormat(format)
	case !validExt(ext):
		ext = ""
	}

	stem := slug.Make(filename)
	if stem == "" {
		stem = fallbackStem
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return path.Join(string(kind), fmt.Sprintf("%s_%s%s", stem, id, ext)), nil
}

// ExtForFormat returns the canonical extension for a decoder format name.
func ExtForFormat(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "":
		return ""
	default:
		return "." + format
	}
}

func extMatchesFormat(ext, format string) bool {
	if format == "jpeg" {
		return ext == ".jpg" || ext == ".jpeg"
	}
	return ext == "."+format
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
