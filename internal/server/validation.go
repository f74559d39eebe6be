package server

import (
	"fmt"
	"regexp"
	"strings"

	"quill/internal/auth"
	"quill/internal/models"
	"quill/internal/store"
	"quill/internal/validate"
)

var idRegex = regexp.MustCompile(`^([a-z]{2})-[0-9a-z]{6}$`)

// validateID checks the canonical id shape and, when prefix is set, its record type.
func validateID(prefix, id string) bool {
	match := idRegex.FindStringSubmatch(id)
	if match == nil {
		return false
	}
	return prefix == "" || match[1] == prefix
}

func entityPrefix(entity models.Entity) string {
	switch entity {
	case models.EntityCategory:
		return store.PrefixCategory
	case models.EntityTag:
		return store.PrefixTag
	case models.EntityArticle:
		return store.PrefixArticle
	case models.EntityComment:
		return store.PrefixComment
	default:
		return ""
	}
}

func termKindFor(entity models.Entity) (models.TermKind, bool) {
	switch entity {
	case models.EntityCategory:
		return models.TermCategory, true
	case models.EntityTag:
		return models.TermTag, true
	default:
		return "", false
	}
}

func normalizeEntity(value string) (models.Entity, error) {
	entity, err := models.ParseEntity(value)
	if err != nil {
		return "", notFoundCode(fmt.Errorf("unknown resource: %s", strings.TrimSpace(value)), ErrCodeInvalidEntity)
	}
	return entity, nil
}

func normalizeScope(value string) (models.Scope, error) {
	scope, err := models.ParseScope(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidScope)
	}
	return scope, nil
}

func normalizeStatus(value string) (models.ArticleStatus, error) {
	status, err := models.ParseArticleStatus(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidStatus)
	}
	return status, nil
}

func normalizeRole(value string) (models.Role, error) {
	role, err := models.ParseRole(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidRole)
	}
	return role, nil
}

func normalizeUsername(value string) (string, error) {
	username, err := auth.NormalizeUsername(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidArgument)
	}
	return username, nil
}

func normalizeOptionalPhone(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	phone, err := validate.NormalizePhone(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidArgument)
	}
	return phone, nil
}

// slugOrDerived returns the explicit slug, or one derived from source when blank.
func slugOrDerived(explicit, source string, minLen int) (string, error) {
	slug := strings.TrimSpace(explicit)
	if slug == "" {
		slug = models.Slugify(source)
	}
	if len(slug) < minLen {
		return "", badRequestCode(fmt.Errorf("slug must be at least %d characters", minLen), ErrCodeInvalidSlug)
	}
	if len(slug) > models.MaxSlugLength {
		return "", badRequestCode(fmt.Errorf("slug must be at most %d characters", models.MaxSlugLength), ErrCodeInvalidSlug)
	}
	if !models.IsValidSlug(slug) {
		return "", badRequestCode(fmt.Errorf("invalid slug: %s", slug), ErrCodeInvalidSlug)
	}
	return slug, nil
}

func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}
