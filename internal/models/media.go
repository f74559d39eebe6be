package models

import (
	"fmt"
	"strings"
	"time"
)

// MediaKind selects the upload directory of a stored file.
type MediaKind string

const (
	MediaLogo    MediaKind = "logo"
	MediaAvatar  MediaKind = "avatar"
	MediaArticle MediaKind = "article"
	MediaSEO     MediaKind = "seo"
)

func ParseMediaKind(raw string) (MediaKind, error) {
	value := MediaKind(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case MediaLogo, MediaAvatar, MediaArticle, MediaSEO:
		return value, nil
	case "":
		return "", fmt.Errorf("kind is required")
	default:
		return "", fmt.Errorf("invalid kind: %s", value)
	}
}

// OwnerType names the record type holding a file field.
type OwnerType string

const (
	OwnerArticle OwnerType = "article"
	OwnerCompany OwnerType = "company"
	OwnerProfile OwnerType = "profile"
)

// Media is the metadata row of one stored file. A file has at most one owner;
// an unowned file is a GC candidate.
type Media struct {
	Key        string     `json:"key"`
	Kind       MediaKind  `json:"kind"`
	Filename   string     `json:"filename"`
	MediaType  string     `json:"media_type"`
	SizeBytes  int64      `json:"size_bytes"`
	SHA256     string     `json:"sha256"`
	OwnerType  OwnerType  `json:"owner_type,omitempty"`
	OwnerID    string     `json:"owner_id,omitempty"`
	OwnerField string     `json:"owner_field,omitempty"`
	UploadedBy string     `json:"uploaded_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

// Owned reports whether a record field currently references the file.
func (m Media) Owned() bool {
	return m.OwnerType != "" && m.OwnerID != ""
}
