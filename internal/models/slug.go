package models

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

// MaxSlugLength matches the slug column limit.
const MaxSlugLength = 200

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// Slugify converts free text into a URL slug of at most MaxSlugLength bytes,
// cut at a word boundary when one exists.
func Slugify(text string) string {
	out := slug.Make(strings.TrimSpace(text))
	if len(out) <= MaxSlugLength {
		return out
	}
	out = out[:MaxSlugLength]
	if i := strings.LastIndexAny(out, "-_"); i > 0 {
		out = out[:i]
	}
	return strings.TrimRight(out, "-_")
}

// IsValidSlug reports whether value is already in canonical slug form.
func IsValidSlug(value string) bool {
	return slugPattern.MatchString(value)
}
