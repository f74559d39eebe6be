package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"quill/internal/models"
)

const articleColumns = "id, title, slug, content, featured_image, og_image, status, author_id, published_at, views, likes, meta_title, meta_description, " + auditColumns

const qualifiedArticleColumns = "a.id, a.title, a.slug, a.content, a.featured_image, a.og_image, a.status, a.author_id, a.published_at, a.views, a.likes, a.meta_title, a.meta_description, " +
	"a.created_by, a.updated_by, a.deleted_by, a.created_at, a.updated_at, a.is_deleted, a.deleted_at"

const (
	articleFieldFeaturedImage = "featured_image"
	articleFieldOGImage       = "og_image"
)

// ArticleLinks replaces category and tag links when non-nil.
type ArticleLinks struct {
	CategoryIDs *[]string
	TagIDs      *[]string
}

// CreateArticle inserts an article, claims its files and links its terms in one transaction.
func (s *Store) CreateArticle(ctx context.Context, article *models.Article, links ArticleLinks) error {
	if article == nil {
		return fmt.Errorf("article is required")
	}
	if err := article.Audit.Validate(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if article.ID == "" {
			id, err := newID(ctx, tx, "articles", PrefixArticle)
			if err != nil {
				return err
			}
			article.ID = id
		}

		args := []any{
			article.ID,
			article.Title,
			article.Slug,
			article.Content,
			nullIfEmpty(article.FeaturedImage),
			nullIfEmpty(article.OGImage),
			string(article.Status),
			nullIfEmpty(article.AuthorID),
			nullTime(article.PublishedAt),
			article.Views,
			article.Likes,
			nullIfEmpty(article.MetaTitle),
			nullIfEmpty(article.MetaDescription),
		}
		args = append(args, auditArgs(article.Audit)...)
		if _, err := tx.ExecContext(ctx, `INSERT INTO articles (`+articleColumns+`) VALUES (`+placeholders(len(args))+`)`, args...); err != nil {
			return err
		}

		if article.FeaturedImage != "" {
			if err := claimMediaTx(ctx, tx, models.OwnerArticle, article.ID, articleFieldFeaturedImage, article.FeaturedImage); err != nil {
				return err
			}
		}
		if article.OGImage != "" {
			if err := claimMediaTx(ctx, tx, models.OwnerArticle, article.ID, articleFieldOGImage, article.OGImage); err != nil {
				return err
			}
		}
		return replaceArticleLinksTx(ctx, tx, article.ID, links)
	})
}

// GetArticle returns one article within scope, with its categories and tags.
func (s *Store) GetArticle(ctx context.Context, id string, scope models.Scope) (*models.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles WHERE id = ?"
	if clause := scopeClause(scope, ""); clause != "" {
		query += " AND " + clause
	}
	article, err := scanArticle(s.db.QueryRowContext(ctx, query, id))
	if err != nil || article == nil {
		return article, err
	}
	if err := s.attachArticleTerms(ctx, []*models.Article{article}); err != nil {
		return nil, err
	}
	return article, nil
}

// GetPublishedArticleBySlug returns the live published article with slug.
func (s *Store) GetPublishedArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE slug = ? AND status = 'PB' AND is_deleted = 0 ORDER BY published_at DESC LIMIT 1", slug)
	article, err := scanArticle(row)
	if err != nil || article == nil {
		return article, err
	}
	if err := s.attachArticleTerms(ctx, []*models.Article{article}); err != nil {
		return nil, err
	}
	return article, nil
}

// UpdateArticle writes the mutable columns, swaps changed files and optionally
// replaces term links in one transaction. Released file keys are returned for
// purging after commit.
func (s *Store) UpdateArticle(ctx context.Context, article *models.Article, links ArticleLinks) ([]string, error) {
	if article == nil {
		return nil, fmt.Errorf("article is required")
	}

	var released []string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var oldFeatured, oldOG sql.NullString
		err := tx.QueryRowContext(ctx, "SELECT featured_image, og_image FROM articles WHERE id = ?", article.ID).Scan(&oldFeatured, &oldOG)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE articles
			SET title = ?, slug = ?, content = ?, featured_image = ?, og_image = ?, status = ?,
			    author_id = ?, published_at = ?, meta_title = ?, meta_description = ?,
			    updated_by = ?, updated_at = ?
			WHERE id = ?
		`,
			article.Title,
			article.Slug,
			article.Content,
			nullIfEmpty(article.FeaturedImage),
			nullIfEmpty(article.OGImage),
			string(article.Status),
			nullIfEmpty(article.AuthorID),
			nullTime(article.PublishedAt),
			nullIfEmpty(article.MetaTitle),
			nullIfEmpty(article.MetaDescription),
			nullIfEmpty(article.UpdatedBy),
			dbFormatTime(article.UpdatedAt),
			article.ID,
		)
		if err != nil {
			return err
		}

		now := article.UpdatedAt
		keys, err := swapMediaTx(ctx, tx, models.OwnerArticle, article.ID, articleFieldFeaturedImage, oldFeatured.String, article.FeaturedImage, now)
		if err != nil {
			return err
		}
		released = append(released, keys...)
		keys, err = swapMediaTx(ctx, tx, models.OwnerArticle, article.ID, articleFieldOGImage, oldOG.String, article.OGImage, now)
		if err != nil {
			return err
		}
		released = append(released, keys...)

		return replaceArticleLinksTx(ctx, tx, article.ID, links)
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

// ListArticles lists articles matching filter, newest publication first.
func (s *Store) ListArticles(ctx context.Context, filter ArticleFilter) ([]models.Article, error) {
	query, args := buildArticleListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	articles := []models.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		if article != nil {
			articles = append(articles, *article)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	ptrs := make([]*models.Article, len(articles))
	for i := range articles {
		ptrs[i] = &articles[i]
	}
	if err := s.attachArticleTerms(ctx, ptrs); err != nil {
		return nil, err
	}
	return articles, nil
}

// CountArticles counts articles matching filter, ignoring pagination.
func (s *Store) CountArticles(ctx context.Context, filter ArticleFilter) (int, error) {
	query, args := buildArticleCountQuery(filter)
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// PublishArticles publishes live, not-yet-published articles and returns how
// many changed. published_at is kept when already set.
func (s *Store) PublishArticles(ctx context.Context, ids []string, actor string, now time.Time) (int, error) {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	count := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		args := []any{dbFormatTime(now), nullIfEmpty(actor), dbFormatTime(now)}
		args = append(args, stringArgs(ids)...)
		query := fmt.Sprintf(`
			UPDATE articles
			SET status = 'PB', published_at = COALESCE(published_at, ?), updated_by = ?, updated_at = ?
			WHERE status != 'PB' AND is_deleted = 0 AND id IN (%s)
		`, placeholders(len(ids)))
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		count = int(affected)
		return nil
	})
	return count, err
}

// IncrementArticleViews bumps the view counter of a live published article.
func (s *Store) IncrementArticleViews(ctx context.Context, id string) error {
	return s.incrementArticleCounter(ctx, id, "views")
}

// IncrementArticleLikes bumps the like counter of a live published article.
func (s *Store) IncrementArticleLikes(ctx context.Context, id string) error {
	return s.incrementArticleCounter(ctx, id, "likes")
}

func (s *Store) incrementArticleCounter(ctx context.Context, id, column string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE articles SET "+column+" = "+column+" + 1 WHERE id = ? AND status = 'PB' AND is_deleted = 0", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RelatedArticles returns live published articles sharing a category with id.
func (s *Store) RelatedArticles(ctx context.Context, article *models.Article, limit int) ([]models.Article, error) {
	if article == nil || len(article.Categories) == 0 {
		return []models.Article{}, nil
	}
	categoryIDs := make([]string, 0, len(article.Categories))
	for _, c := range article.Categories {
		categoryIDs = append(categoryIDs, c.ID)
	}
	return s.ListArticles(ctx, ArticleFilter{
		Scope:       models.ScopeAlive,
		Statuses:    []models.ArticleStatus{models.ArticlePublished},
		CategoryIDs: categoryIDs,
		ExcludeID:   article.ID,
		Limit:       limit,
	})
}

func replaceArticleLinksTx(ctx context.Context, tx *sql.Tx, articleID string, links ArticleLinks) error {
	if links.CategoryIDs != nil {
		if err := replaceLinksTx(ctx, tx, "article_categories", "category_id", articleID, *links.CategoryIDs); err != nil {
			return err
		}
	}
	if links.TagIDs != nil {
		if err := replaceLinksTx(ctx, tx, "article_tags", "tag_id", articleID, *links.TagIDs); err != nil {
			return err
		}
	}
	return nil
}

func replaceLinksTx(ctx context.Context, tx *sql.Tx, table, column, articleID string, ids []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE article_id = ?", articleID); err != nil {
		return err
	}
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	values := make([]string, len(ids))
	args := make([]any, 0, len(ids)*2)
	for i, id := range ids {
		values[i] = "(?, ?)"
		args = append(args, articleID, id)
	}
	_, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO "+table+" (article_id, "+column+") VALUES "+strings.Join(values, ","), args...)
	return err
}

// attachArticleTerms loads live category and tag references for articles.
func (s *Store) attachArticleTerms(ctx context.Context, articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}
	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}

	categories, err := s.loadArticleTerms(ctx, "article_categories", "category_id", "categories", ids)
	if err != nil {
		return err
	}
	tags, err := s.loadArticleTerms(ctx, "article_tags", "tag_id", "tags", ids)
	if err != nil {
		return err
	}
	for _, a := range articles {
		a.Categories = categories[a.ID]
		if a.Categories == nil {
			a.Categories = []models.TermRef{}
		}
		a.Tags = tags[a.ID]
		if a.Tags == nil {
			a.Tags = []models.TermRef{}
		}
	}
	return nil
}

func (s *Store) loadArticleTerms(ctx context.Context, linkTable, column, termTable string, articleIDs []string) (map[string][]models.TermRef, error) {
	query := fmt.Sprintf(`
		SELECT l.article_id, t.id, t.name, t.slug
		FROM %s l JOIN %s t ON t.id = l.%s
		WHERE t.is_deleted = 0 AND l.article_id IN (%s)
		ORDER BY t.name COLLATE NOCASE ASC
	`, linkTable, termTable, column, placeholders(len(articleIDs)))
	rows, err := s.db.QueryContext(ctx, query, stringArgs(articleIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]models.TermRef{}
	for rows.Next() {
		var articleID string
		var ref models.TermRef
		if err := rows.Scan(&articleID, &ref.ID, &ref.Name, &ref.Slug); err != nil {
			return nil, err
		}
		out[articleID] = append(out[articleID], ref)
	}
	return out, rows.Err()
}

func scanArticle(row scanner) (*models.Article, error) {
	article := models.Article{}
	var featured, og, authorID, publishedAt, metaTitle, metaDescription sql.NullString
	var status string
	var audit auditScan

	dest := []any{
		&article.ID,
		&article.Title,
		&article.Slug,
		&article.Content,
		&featured,
		&og,
		&status,
		&authorID,
		&publishedAt,
		&article.Views,
		&article.Likes,
		&metaTitle,
		&metaDescription,
	}
	if err := row.Scan(append(dest, audit.dest()...)...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	article.FeaturedImage = featured.String
	article.OGImage = og.String
	article.Status = models.ArticleStatus(status)
	article.AuthorID = authorID.String
	article.MetaTitle = metaTitle.String
	article.MetaDescription = metaDescription.String

	parsed, err := dbParseNullTime(publishedAt)
	if err != nil {
		return nil, err
	}
	article.PublishedAt = parsed

	if err := audit.apply(&article.Audit); err != nil {
		return nil, err
	}
	return &article, nil
}
