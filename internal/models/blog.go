package models

import (
	"fmt"
	"strings"
	"time"
)

// ArticleStatus defines the editorial state of an article.
type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "DR"
	ArticlePublished ArticleStatus = "PB"
	ArticleArchived  ArticleStatus = "AR"
)

var articleStatusAliases = map[string]ArticleStatus{
	"dr":        ArticleDraft,
	"draft":     ArticleDraft,
	"pb":        ArticlePublished,
	"published": ArticlePublished,
	"ar":        ArticleArchived,
	"archive":   ArticleArchived,
	"archived":  ArticleArchived,
}

func ParseArticleStatus(raw string) (ArticleStatus, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	status, ok := articleStatusAliases[value]
	if !ok {
		return "", fmt.Errorf("invalid status: %s", raw)
	}
	return status, nil
}

// Label returns the display label of a status.
func (s ArticleStatus) Label() string {
	switch s {
	case ArticleDraft:
		return "Draft"
	case ArticlePublished:
		return "Published"
	case ArticleArchived:
		return "Archive"
	default:
		return string(s)
	}
}

const (
	TermNameMinLength    = 3
	TermNameMaxLength    = 200
	ArticleTitleMin      = 5
	ArticleTitleMax      = 200
	CommentTextMaxLength = 500
	MetaTitleMaxLength   = 70
	MetaDescMaxLength    = 160
)

// SEO holds search metadata shared by categories, tags and articles.
type SEO struct {
	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
}

// TermKind distinguishes categories from tags; both share one shape.
type TermKind string

const (
	TermCategory TermKind = "category"
	TermTag      TermKind = "tag"
)

// Entity maps a term kind to its audited entity.
func (k TermKind) Entity() Entity {
	if k == TermTag {
		return EntityTag
	}
	return EntityCategory
}

// Term is a category or tag.
type Term struct {
	ID          string   `json:"id"`
	Kind        TermKind `json:"kind"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	IsActive    bool     `json:"is_active"`
	SEO
	Audit
}

// TermRef is the compact form embedded in article responses.
type TermRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Article is a blog post.
type Article struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Content       string        `json:"content"`
	FeaturedImage string        `json:"featured_image,omitempty"`
	OGImage       string        `json:"og_image,omitempty"`
	Status        ArticleStatus `json:"status"`
	AuthorID      string        `json:"author_id,omitempty"`
	PublishedAt   *time.Time    `json:"published_at,omitempty"`
	Views         int64         `json:"views"`
	Likes         int64         `json:"likes"`
	Categories    []TermRef     `json:"categories"`
	Tags          []TermRef     `json:"tags"`
	SEO
	Audit
}

// IsPublished reports whether the article is publicly visible.
func (a Article) IsPublished() bool {
	return a.Status == ArticlePublished && !a.IsDeleted
}

// Comment is a reader comment on an article.
type Comment struct {
	ID         string `json:"id"`
	ArticleID  string `json:"article_id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username,omitempty"`
	Text       string `json:"text"`
	IsApproved bool   `json:"is_approved"`
	Audit
}
