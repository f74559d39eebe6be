package api

import (
	"time"

	"quill/internal/models"
)

// TermCreateRequest creates a category or tag.
type TermCreateRequest struct {
	Name            string `json:"name" validate:"required,min=3,max=200"`
	Slug            string `json:"slug,omitempty" validate:"omitempty,min=3,max=200,slug"`
	Description     string `json:"description" validate:"required"`
	IsActive        *bool  `json:"is_active,omitempty"`
	MetaTitle       string `json:"meta_title,omitempty" validate:"max=70"`
	MetaDescription string `json:"meta_description,omitempty" validate:"max=160"`
}

// TermUpdateRequest patches a category or tag.
type TermUpdateRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Slug            *string `json:"slug,omitempty" validate:"omitempty,min=3,max=200,slug"`
	Description     *string `json:"description,omitempty" validate:"omitempty,min=1"`
	IsActive        *bool   `json:"is_active,omitempty"`
	MetaTitle       *string `json:"meta_title,omitempty" validate:"omitempty,max=70"`
	MetaDescription *string `json:"meta_description,omitempty" validate:"omitempty,max=160"`
}

// ArticleCreateRequest creates an article.
type ArticleCreateRequest struct {
	Title           string     `json:"title" validate:"required,min=5,max=200"`
	Slug            string     `json:"slug,omitempty" validate:"omitempty,min=5,max=200,slug"`
	Content         string     `json:"content" validate:"required"`
	FeaturedImage   string     `json:"featured_image,omitempty"`
	OGImage         string     `json:"og_image,omitempty"`
	Status          string     `json:"status,omitempty"`
	AuthorID        string     `json:"author_id,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CategoryIDs     []string   `json:"category_ids,omitempty"`
	TagIDs          []string   `json:"tag_ids,omitempty"`
	MetaTitle       string     `json:"meta_title,omitempty" validate:"max=70"`
	MetaDescription string     `json:"meta_description,omitempty" validate:"max=160"`
}

// ArticleUpdateRequest patches an article. A present empty string clears a file field.
type ArticleUpdateRequest struct {
	Title           *string    `json:"title,omitempty" validate:"omitempty,min=5,max=200"`
	Slug            *string    `json:"slug,omitempty" validate:"omitempty,min=5,max=200,slug"`
	Content         *string    `json:"content,omitempty" validate:"omitempty,min=1"`
	FeaturedImage   *string    `json:"featured_image,omitempty"`
	OGImage         *string    `json:"og_image,omitempty"`
	Status          *string    `json:"status,omitempty"`
	AuthorID        *string    `json:"author_id,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CategoryIDs     *[]string  `json:"category_ids,omitempty"`
	TagIDs          *[]string  `json:"tag_ids,omitempty"`
	MetaTitle       *string    `json:"meta_title,omitempty" validate:"omitempty,max=70"`
	MetaDescription *string    `json:"meta_description,omitempty" validate:"omitempty,max=160"`
}

// CommentCreateRequest is a reader comment on a published article.
type CommentCreateRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

// CommentAdminCreateRequest creates a comment on behalf of a user.
type CommentAdminCreateRequest struct {
	ArticleID  string `json:"article_id" validate:"required"`
	UserID     string `json:"user_id" validate:"required"`
	Text       string `json:"text" validate:"required,min=1,max=500"`
	IsApproved bool   `json:"is_approved,omitempty"`
}

// CommentUpdateRequest patches a comment.
type CommentUpdateRequest struct {
	Text       *string `json:"text,omitempty" validate:"omitempty,min=1,max=500"`
	IsApproved *bool   `json:"is_approved,omitempty"`
}

// ArticleListResponse is one page of the public article list.
type ArticleListResponse struct {
	Articles   []models.Article `json:"articles"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
	HasNext    bool             `json:"has_next"`
}

// ArticleDetailResponse is the public article page.
type ArticleDetailResponse struct {
	Article  models.Article   `json:"article"`
	Comments []models.Comment `json:"comments"`
	Related  []models.Article `json:"related"`
}

// LikeResponse reports the new like count.
type LikeResponse struct {
	ID    string `json:"id"`
	Likes int64  `json:"likes"`
}

// HomeResponse carries the sidebar context shared by public pages.
type HomeResponse struct {
	Categories []models.Term    `json:"categories"`
	Tags       []models.Term    `json:"tags"`
	Featured   []models.Article `json:"featured"`
}

// AdminListResponse wraps one page of a scoped admin listing.
type AdminListResponse[T any] struct {
	Entity string `json:"entity"`
	Scope  string `json:"scope"`
	Total  int    `json:"total"`
	Items  []T    `json:"items"`
}
