package store

import (
	"fmt"
	"strings"
	"unicode"

	"quill/internal/models"
)

// ArticleFilter narrows an article listing.
type ArticleFilter struct {
	Scope        models.Scope
	Statuses     []models.ArticleStatus
	CategorySlug string
	CategoryIDs  []string
	TagSlug      string
	AuthorID     string
	ExcludeID    string
	SearchQuery  string
	Limit        int
	Offset       int
}

type articleQueryBuilder struct {
	filter ArticleFilter
	query  string
	args   []any
	where  []string
}

func buildArticleListQuery(filter ArticleFilter) (string, []any) {
	b := &articleQueryBuilder{filter: filter}
	b.buildSelect("SELECT " + qualifiedArticleColumns)
	b.buildWhere()
	b.buildOrder()
	b.query, b.args = appendPagination(b.query, b.args, filter.Limit, filter.Offset)
	return b.query, b.args
}

func buildArticleCountQuery(filter ArticleFilter) (string, []any) {
	b := &articleQueryBuilder{filter: filter}
	b.buildSelect("SELECT COUNT(*)")
	b.buildWhere()
	return b.query, b.args
}

func (b *articleQueryBuilder) buildSelect(selectClause string) {
	b.query = selectClause + " FROM articles a"
	match := ftsMatchExpression(b.filter.SearchQuery)
	if match == "" {
		if strings.TrimSpace(b.filter.SearchQuery) != "" {
			// no searchable terms
			b.where = append(b.where, "0 = 1")
		}
		return
	}
	b.query += " JOIN articles_fts ON a.id = articles_fts.article_id AND articles_fts MATCH ?"
	b.args = append(b.args, match)
}

func (b *articleQueryBuilder) buildWhere() {
	b.appendScope()
	b.appendStatuses()
	b.appendCategory()
	b.appendTag()
	b.appendAuthor()
	b.appendExclude()

	if len(b.where) == 0 {
		return
	}
	b.query += " WHERE " + strings.Join(b.where, " AND ")
}

func (b *articleQueryBuilder) buildOrder() {
	b.query += " ORDER BY a.published_at IS NULL, a.published_at DESC, a.created_at DESC, a.id ASC"
}

func (b *articleQueryBuilder) appendScope() {
	if clause := scopeClause(b.filter.Scope, "a"); clause != "" {
		b.where = append(b.where, clause)
	}
}

func (b *articleQueryBuilder) appendStatuses() {
	if len(b.filter.Statuses) == 0 {
		return
	}
	b.where = append(b.where, fmt.Sprintf("a.status IN (%s)", placeholders(len(b.filter.Statuses))))
	for _, status := range b.filter.Statuses {
		b.args = append(b.args, string(status))
	}
}

func (b *articleQueryBuilder) appendCategory() {
	if slug := strings.TrimSpace(b.filter.CategorySlug); slug != "" {
		b.where = append(b.where, `EXISTS (
			SELECT 1 FROM article_categories ac JOIN categories c ON c.id = ac.category_id
			WHERE ac.article_id = a.id AND c.slug = ? AND c.is_deleted = 0)`)
		b.args = append(b.args, slug)
	}
	if len(b.filter.CategoryIDs) > 0 {
		b.where = append(b.where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM article_categories ac WHERE ac.article_id = a.id AND ac.category_id IN (%s))`, placeholders(len(b.filter.CategoryIDs))))
		b.args = append(b.args, stringArgs(b.filter.CategoryIDs)...)
	}
}

func (b *articleQueryBuilder) appendTag() {
	slug := strings.TrimSpace(b.filter.TagSlug)
	if slug == "" {
		return
	}
	b.where = append(b.where, `EXISTS (
		SELECT 1 FROM article_tags at JOIN tags t ON t.id = at.tag_id
		WHERE at.article_id = a.id AND t.slug = ? AND t.is_deleted = 0)`)
	b.args = append(b.args, slug)
}

func (b *articleQueryBuilder) appendAuthor() {
	if b.filter.AuthorID == "" {
		return
	}
	b.where = append(b.where, "a.author_id = ?")
	b.args = append(b.args, b.filter.AuthorID)
}

func (b *articleQueryBuilder) appendExclude() {
	if b.filter.ExcludeID == "" {
		return
	}
	b.where = append(b.where, "a.id != ?")
	b.args = append(b.args, b.filter.ExcludeID)
}

// ftsMatchExpression turns free text into an FTS5 prefix query with every
// term quoted, so user input never reaches the MATCH parser as syntax. Terms
// match word prefixes only: "pyth" finds Python, "thon" does not.
func ftsMatchExpression(raw string) string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		terms = append(terms, `"`+field+`"*`)
	}
	return strings.Join(terms, " ")
}
