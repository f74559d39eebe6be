package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quill/internal/api"
	"quill/internal/models"
	"quill/internal/store"
)

const (
	defaultPageSize      = 6
	defaultFeaturedCount = 3
	defaultRelatedCount  = 3
)

type userLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// ArticleService covers editorial article CRUD and the public reading views.
type ArticleService struct {
	store store.BlogStore
	users userLookup
	media *MediaService
	now   func() time.Time

	pageSize      int
	featuredCount int
	relatedCount  int
}

func NewArticleService(blogStore store.BlogStore, users userLookup, mediaService *MediaService) *ArticleService {
	return &ArticleService{
		store:         blogStore,
		users:         users,
		media:         mediaService,
		now:           func() time.Time { return time.Now().UTC() },
		pageSize:      defaultPageSize,
		featuredCount: defaultFeaturedCount,
		relatedCount:  defaultRelatedCount,
	}
}

// ConfigureListing overrides page and sidebar sizes; zero keeps the default.
func (a *ArticleService) ConfigureListing(pageSize, featuredCount, relatedCount int) {
	if pageSize > 0 {
		a.pageSize = pageSize
	}
	if featuredCount > 0 {
		a.featuredCount = featuredCount
	}
	if relatedCount > 0 {
		a.relatedCount = relatedCount
	}
}

func (a *ArticleService) Create(ctx context.Context, req api.ArticleCreateRequest, actor string) (*models.Article, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	slug, err := slugOrDerived(req.Slug, title, models.ArticleTitleMin)
	if err != nil {
		return nil, err
	}
	status := models.ArticleDraft
	if strings.TrimSpace(req.Status) != "" {
		if status, err = normalizeStatus(req.Status); err != nil {
			return nil, err
		}
	}
	authorID := strings.TrimSpace(req.AuthorID)
	if authorID == "" {
		authorID = actor
	}
	if err := a.ensureAuthor(ctx, authorID); err != nil {
		return nil, err
	}

	links, err := a.resolveLinks(ctx, &req.CategoryIDs, &req.TagIDs)
	if err != nil {
		return nil, err
	}

	now := a.now()
	article := &models.Article{
		Title:         title,
		Slug:          slug,
		Content:       req.Content,
		FeaturedImage: strings.TrimSpace(req.FeaturedImage),
		OGImage:       strings.TrimSpace(req.OGImage),
		Status:        status,
		AuthorID:      authorID,
		PublishedAt:   req.PublishedAt,
		SEO:           models.SEO{MetaTitle: strings.TrimSpace(req.MetaTitle), MetaDescription: strings.TrimSpace(req.MetaDescription)},
	}
	stampPublication(article, now)
	article.StampCreate(actor, now)

	if err := a.store.CreateArticle(ctx, article, links); err != nil {
		return nil, articleWriteError(err)
	}
	return a.Get(ctx, article.ID, models.ScopeAlive)
}

func (a *ArticleService) Update(ctx context.Context, id string, req api.ArticleUpdateRequest, actor string) (*models.Article, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	article, err := a.store.GetArticle(ctx, id, models.ScopeAlive)
	if err != nil {
		return nil, storeFailure(err)
	}
	if article == nil {
		return nil, recordNotFound(models.EntityArticle)
	}

	if req.Title != nil {
		article.Title = strings.TrimSpace(*req.Title)
	}
	if req.Slug != nil {
		if article.Slug, err = slugOrDerived(*req.Slug, article.Title, models.ArticleTitleMin); err != nil {
			return nil, err
		}
	}
	if req.Content != nil {
		article.Content = *req.Content
	}
	if req.FeaturedImage != nil {
		article.FeaturedImage = strings.TrimSpace(*req.FeaturedImage)
	}
	if req.OGImage != nil {
		article.OGImage = strings.TrimSpace(*req.OGImage)
	}
	if req.Status != nil {
		if article.Status, err = normalizeStatus(*req.Status); err != nil {
			return nil, err
		}
	}
	if req.AuthorID != nil {
		authorID := strings.TrimSpace(*req.AuthorID)
		if err := a.ensureAuthor(ctx, authorID); err != nil {
			return nil, err
		}
		article.AuthorID = authorID
	}
	if req.PublishedAt != nil {
		article.PublishedAt = req.PublishedAt
	}
	if req.MetaTitle != nil {
		article.MetaTitle = strings.TrimSpace(*req.MetaTitle)
	}
	if req.MetaDescription != nil {
		article.MetaDescription = strings.TrimSpace(*req.MetaDescription)
	}

	links, err := a.resolveLinks(ctx, req.CategoryIDs, req.TagIDs)
	if err != nil {
		return nil, err
	}

	now := a.now()
	stampPublication(article, now)
	article.StampUpdate(actor, now)

	released, err := a.store.UpdateArticle(ctx, article, links)
	if err != nil {
		return nil, articleWriteError(err)
	}
	a.media.Purge(ctx, released)
	return a.Get(ctx, article.ID, models.ScopeAlive)
}

func (a *ArticleService) Get(ctx context.Context, id string, scope models.Scope) (*models.Article, error) {
	article, err := a.store.GetArticle(ctx, id, scope)
	if err != nil {
		return nil, storeFailure(err)
	}
	if article == nil {
		return nil, recordNotFound(models.EntityArticle)
	}
	return article, nil
}

// List returns one admin page and the total.
func (a *ArticleService) List(ctx context.Context, filter store.ArticleFilter) ([]models.Article, int, error) {
	articles, err := a.store.ListArticles(ctx, filter)
	if err != nil {
		return nil, 0, searchOrStoreError(err)
	}
	total, err := a.store.CountArticles(ctx, filter)
	if err != nil {
		return nil, 0, searchOrStoreError(err)
	}
	return articles, total, nil
}

// Publish publishes the live, unpublished articles among ids.
func (a *ArticleService) Publish(ctx context.Context, ids []string, actor string) (BulkResult, error) {
	count, err := a.store.PublishArticles(ctx, ids, actor, a.now())
	if err != nil {
		return BulkResult{}, articleWriteError(err)
	}
	return BulkResult{
		Entity:  models.EntityArticle,
		Action:  "publish",
		Count:   count,
		Message: fmt.Sprintf("%d article(s) published successfully.", count),
	}, nil
}

// PublicQuery selects one page of the public article list.
type PublicQuery struct {
	Page     int
	Category string
	Tag      string
	Search   string
}

func (a *ArticleService) PublicList(ctx context.Context, q PublicQuery) (api.ArticleListResponse, error) {
	filter := store.ArticleFilter{
		Scope:       models.ScopeAlive,
		Statuses:    []models.ArticleStatus{models.ArticlePublished},
		SearchQuery: strings.TrimSpace(q.Search),
	}
	if slug := strings.TrimSpace(q.Category); slug != "" {
		if err := a.ensureActiveTerm(ctx, models.TermCategory, slug); err != nil {
			return api.ArticleListResponse{}, err
		}
		filter.CategorySlug = slug
	}
	if slug := strings.TrimSpace(q.Tag); slug != "" {
		if err := a.ensureActiveTerm(ctx, models.TermTag, slug); err != nil {
			return api.ArticleListResponse{}, err
		}
		filter.TagSlug = slug
	}

	total, err := a.store.CountArticles(ctx, filter)
	if err != nil {
		return api.ArticleListResponse{}, searchOrStoreError(err)
	}
	page := max(q.Page, 1)
	totalPages := (total + a.pageSize - 1) / a.pageSize
	if page > 1 && page > totalPages {
		return api.ArticleListResponse{}, notFoundCode(fmt.Errorf("invalid page"), ErrCodeRecordNotFound)
	}

	filter.Limit = a.pageSize
	filter.Offset = (page - 1) * a.pageSize
	articles, err := a.store.ListArticles(ctx, filter)
	if err != nil {
		return api.ArticleListResponse{}, searchOrStoreError(err)
	}
	return api.ArticleListResponse{
		Articles:   articles,
		Total:      total,
		Page:       page,
		PageSize:   a.pageSize,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}, nil
}

// Detail returns a published article with its approved comments and related
// articles, counting one view.
func (a *ArticleService) Detail(ctx context.Context, slug string) (api.ArticleDetailResponse, error) {
	article, err := a.published(ctx, slug)
	if err != nil {
		return api.ArticleDetailResponse{}, err
	}
	if err := a.store.IncrementArticleViews(ctx, article.ID); err != nil {
		return api.ArticleDetailResponse{}, mapStoreError(err, recordNotFound(models.EntityArticle))
	}
	article.Views++

	approved := true
	comments, err := a.store.ListComments(ctx, store.CommentFilter{ArticleID: article.ID, Scope: models.ScopeAlive, Approved: &approved})
	if err != nil {
		return api.ArticleDetailResponse{}, storeFailure(err)
	}
	related, err := a.store.RelatedArticles(ctx, article, a.relatedCount)
	if err != nil {
		return api.ArticleDetailResponse{}, storeFailure(err)
	}
	return api.ArticleDetailResponse{Article: *article, Comments: comments, Related: related}, nil
}

func (a *ArticleService) Like(ctx context.Context, slug string) (api.LikeResponse, error) {
	article, err := a.published(ctx, slug)
	if err != nil {
		return api.LikeResponse{}, err
	}
	if err := a.store.IncrementArticleLikes(ctx, article.ID); err != nil {
		return api.LikeResponse{}, mapStoreError(err, recordNotFound(models.EntityArticle))
	}
	return api.LikeResponse{ID: article.ID, Likes: article.Likes + 1}, nil
}

// Home returns the sidebar context shared by public pages.
func (a *ArticleService) Home(ctx context.Context) (api.HomeResponse, error) {
	live := store.TermFilter{Scope: models.ScopeAlive, ActiveOnly: true}
	categories, err := a.store.ListTerms(ctx, models.TermCategory, live)
	if err != nil {
		return api.HomeResponse{}, storeFailure(err)
	}
	tags, err := a.store.ListTerms(ctx, models.TermTag, live)
	if err != nil {
		return api.HomeResponse{}, storeFailure(err)
	}
	featured, err := a.store.ListArticles(ctx, store.ArticleFilter{
		Scope:    models.ScopeAlive,
		Statuses: []models.ArticleStatus{models.ArticlePublished},
		Limit:    a.featuredCount,
	})
	if err != nil {
		return api.HomeResponse{}, storeFailure(err)
	}
	return api.HomeResponse{Categories: categories, Tags: tags, Featured: featured}, nil
}

func (a *ArticleService) published(ctx context.Context, slug string) (*models.Article, error) {
	article, err := a.store.GetPublishedArticleBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, storeFailure(err)
	}
	if article == nil {
		return nil, recordNotFound(models.EntityArticle)
	}
	return article, nil
}

func (a *ArticleService) ensureActiveTerm(ctx context.Context, kind models.TermKind, slug string) error {
	term, err := a.store.GetActiveTermBySlug(ctx, kind, slug)
	if err != nil {
		return storeFailure(err)
	}
	if term == nil {
		return notFoundCode(fmt.Errorf("%s not found", kind), ErrCodeRecordNotFound)
	}
	return nil
}

func (a *ArticleService) ensureAuthor(ctx context.Context, id string) error {
	if id == "" || a.users == nil {
		return nil
	}
	user, err := a.users.GetUserByID(ctx, id)
	if err != nil {
		return storeFailure(err)
	}
	if user == nil {
		return badRequestCode(fmt.Errorf("unknown author: %s", id), ErrCodeInvalidReference)
	}
	return nil
}

// resolveLinks checks that every referenced category and tag is live. A nil
// pointer leaves the existing links untouched.
func (a *ArticleService) resolveLinks(ctx context.Context, categoryIDs, tagIDs *[]string) (store.ArticleLinks, error) {
	var links store.ArticleLinks
	resolve := func(kind models.TermKind, ids *[]string) (*[]string, error) {
		if ids == nil {
			return nil, nil
		}
		wanted := dedupeStrings(*ids)
		if len(wanted) > maxBulkIDs {
			return nil, badRequestCode(fmt.Errorf("too many %s ids: %d (max %d)", kind, len(wanted), maxBulkIDs), ErrCodeRequestTooLarge)
		}
		for _, id := range wanted {
			if !validateID(entityPrefix(kind.Entity()), id) {
				return nil, badRequestCode(fmt.Errorf("invalid %s id: %s", kind, id), ErrCodeInvalidID)
			}
		}
		found, err := a.store.ResolveTermIDs(ctx, kind, wanted)
		if err != nil {
			return nil, storeFailure(err)
		}
		if len(found) != len(wanted) {
			return nil, badRequestCode(fmt.Errorf("unknown or deleted %s among %v", kind, wanted), ErrCodeInvalidReference)
		}
		return &found, nil
	}

	var err error
	if links.CategoryIDs, err = resolve(models.TermCategory, categoryIDs); err != nil {
		return links, err
	}
	if links.TagIDs, err = resolve(models.TermTag, tagIDs); err != nil {
		return links, err
	}
	return links, nil
}

// stampPublication sets published_at on the first transition to published.
func stampPublication(article *models.Article, now time.Time) {
	if article.Status == models.ArticlePublished && article.PublishedAt == nil {
		at := now.UTC()
		article.PublishedAt = &at
	}
}

func articleWriteError(err error) error {
	if store.IsUniqueConstraint(err) {
		return conflictCode(fmt.Errorf("a published article with this title and slug already exists"), ErrCodeDuplicate)
	}
	return mapStoreError(err, recordNotFound(models.EntityArticle))
}

func searchOrStoreError(err error) error {
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "fts5") || strings.Contains(message, "malformed match") {
		return badRequestCode(fmt.Errorf("invalid search query"), ErrCodeInvalidSearchQuery)
	}
	return storeFailure(err)
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
