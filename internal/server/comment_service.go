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

// CommentService handles reader comments and their moderation.
type CommentService struct {
	store store.BlogStore
	users userLookup
	now   func() time.Time
}

func NewCommentService(blogStore store.BlogStore, users userLookup) *CommentService {
	return &CommentService{store: blogStore, users: users, now: func() time.Time { return time.Now().UTC() }}
}

// Create adds an unapproved comment by user to the published article at slug.
func (c *CommentService) Create(ctx context.Context, slug string, req api.CommentCreateRequest, user *models.User) (*models.Comment, error) {
	if user == nil {
		return nil, unauthorized(fmt.Errorf("login required"))
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	article, err := c.store.GetPublishedArticleBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, storeFailure(err)
	}
	if article == nil {
		return nil, recordNotFound(models.EntityArticle)
	}
	return c.insert(ctx, article.ID, user.ID, req.Text, false, user.ID)
}

// AdminCreate adds a comment on behalf of any user to any live article.
func (c *CommentService) AdminCreate(ctx context.Context, req api.CommentAdminCreateRequest, actor string) (*models.Comment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	articleID := strings.TrimSpace(req.ArticleID)
	if !validateID(store.PrefixArticle, articleID) {
		return nil, badRequestCode(fmt.Errorf("invalid article id: %s", articleID), ErrCodeInvalidID)
	}
	article, err := c.store.GetArticle(ctx, articleID, models.ScopeAlive)
	if err != nil {
		return nil, storeFailure(err)
	}
	if article == nil {
		return nil, badRequestCode(fmt.Errorf("unknown or deleted article: %s", articleID), ErrCodeInvalidReference)
	}
	user, err := c.users.GetUserByID(ctx, strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, storeFailure(err)
	}
	if user == nil {
		return nil, badRequestCode(fmt.Errorf("unknown user: %s", req.UserID), ErrCodeInvalidReference)
	}
	return c.insert(ctx, article.ID, user.ID, req.Text, req.IsApproved, actor)
}

func (c *CommentService) insert(ctx context.Context, articleID, userID, text string, approved bool, actor string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, badRequestCode(fmt.Errorf("text is required"), ErrCodeMissingRequired)
	}
	comment := &models.Comment{
		ArticleID:  articleID,
		UserID:     userID,
		Text:       text,
		IsApproved: approved,
	}
	comment.StampCreate(actor, c.now())
	if err := c.store.CreateComment(ctx, comment); err != nil {
		return nil, mapStoreError(err, recordNotFound(models.EntityComment))
	}
	return c.Get(ctx, comment.ID, models.ScopeAlive)
}

func (c *CommentService) Update(ctx context.Context, id string, req api.CommentUpdateRequest, actor string) (*models.Comment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	comment, err := c.Get(ctx, id, models.ScopeAlive)
	if err != nil {
		return nil, err
	}
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return nil, badRequestCode(fmt.Errorf("text is required"), ErrCodeMissingRequired)
		}
		comment.Text = text
	}
	if req.IsApproved != nil {
		comment.IsApproved = *req.IsApproved
	}
	comment.StampUpdate(actor, c.now())
	if err := c.store.UpdateComment(ctx, comment); err != nil {
		return nil, mapStoreError(err, recordNotFound(models.EntityComment))
	}
	return comment, nil
}

func (c *CommentService) Get(ctx context.Context, id string, scope models.Scope) (*models.Comment, error) {
	comment, err := c.store.GetComment(ctx, id, scope)
	if err != nil {
		return nil, storeFailure(err)
	}
	if comment == nil {
		return nil, recordNotFound(models.EntityComment)
	}
	return comment, nil
}

func (c *CommentService) List(ctx context.Context, filter store.CommentFilter) ([]models.Comment, int, error) {
	comments, err := c.store.ListComments(ctx, filter)
	if err != nil {
		return nil, 0, storeFailure(err)
	}
	total, err := c.store.CountComments(ctx, filter)
	if err != nil {
		return nil, 0, storeFailure(err)
	}
	return comments, total, nil
}

// Approve marks the live, unapproved comments among ids as approved.
func (c *CommentService) Approve(ctx context.Context, ids []string, actor string) (BulkResult, error) {
	count, err := c.store.ApproveComments(ctx, ids, actor, c.now())
	if err != nil {
		return BulkResult{}, storeFailure(err)
	}
	return BulkResult{
		Entity:  models.EntityComment,
		Action:  "approve",
		Count:   count,
		Message: fmt.Sprintf("%d comment(s) approved successfully.", count),
	}, nil
}
