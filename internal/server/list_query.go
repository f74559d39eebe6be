package server

import (
	"fmt"
	"net/http"
	"strings"

	"quill/internal/models"
	"quill/internal/store"
)

const (
	defaultAdminListLimit = 50
	maxAdminListLimit     = 500
	maxSearchQueryLength  = 200
)

// adminListQuery is the parsed query string of an admin listing.
type adminListQuery struct {
	Scope     models.Scope
	Query     string
	Statuses  []models.ArticleStatus
	Category  string
	Tag       string
	ArticleID string
	AuthorID  string
	Approved  *bool
	Limit     int
	Offset    int
}

func parseAdminListQuery(r *http.Request) (adminListQuery, error) {
	values := r.URL.Query()

	scope, err := normalizeScope(values.Get("scope"))
	if err != nil {
		return adminListQuery{}, err
	}
	limit, err := queryIntDefault(r, "limit", defaultAdminListLimit)
	if err != nil {
		return adminListQuery{}, err
	}
	if limit == 0 || limit > maxAdminListLimit {
		limit = maxAdminListLimit
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return adminListQuery{}, err
	}

	q := adminListQuery{
		Scope:    scope,
		Query:    strings.TrimSpace(values.Get("q")),
		Category: strings.TrimSpace(values.Get("category")),
		Tag:      strings.TrimSpace(values.Get("tag")),
		Limit:    limit,
		Offset:   offset,
	}
	if len(q.Query) > maxSearchQueryLength {
		return adminListQuery{}, badRequestCode(fmt.Errorf("q must be at most %d characters", maxSearchQueryLength), ErrCodeInvalidSearchQuery)
	}

	for _, raw := range splitCSV(values.Get("status")) {
		status, err := normalizeStatus(raw)
		if err != nil {
			return adminListQuery{}, err
		}
		q.Statuses = append(q.Statuses, status)
	}

	if q.ArticleID = strings.TrimSpace(values.Get("article_id")); q.ArticleID != "" && !validateID(store.PrefixArticle, q.ArticleID) {
		return adminListQuery{}, badRequestCode(fmt.Errorf("invalid article_id"), ErrCodeInvalidID)
	}
	if q.AuthorID = strings.TrimSpace(values.Get("author_id")); q.AuthorID != "" && !validateID(store.PrefixUser, q.AuthorID) {
		return adminListQuery{}, badRequestCode(fmt.Errorf("invalid author_id"), ErrCodeInvalidID)
	}
	if q.Approved, err = queryBool(r, "approved"); err != nil {
		return adminListQuery{}, err
	}
	return q, nil
}

func (q adminListQuery) termFilter() store.TermFilter {
	return store.TermFilter{Scope: q.Scope, Query: q.Query, Limit: q.Limit, Offset: q.Offset}
}

func (q adminListQuery) articleFilter() store.ArticleFilter {
	return store.ArticleFilter{
		Scope:        q.Scope,
		Statuses:     q.Statuses,
		CategorySlug: q.Category,
		TagSlug:      q.Tag,
		AuthorID:     q.AuthorID,
		SearchQuery:  q.Query,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
}

func (q adminListQuery) commentFilter() store.CommentFilter {
	return store.CommentFilter{
		ArticleID: q.ArticleID,
		Scope:     q.Scope,
		Approved:  q.Approved,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
}
