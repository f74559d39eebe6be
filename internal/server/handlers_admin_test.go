package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"quill/internal/api"
	"quill/internal/models"
)

func createTerm(t *testing.T, h http.Handler, entity, name string, opts ...requestOption) models.Term {
	t.Helper()
	w := serve(t, h, http.MethodPost, "/v1/admin/"+entity, api.TermCreateRequest{Name: name, Description: name + " posts"}, opts...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[models.Term](t, w)
}

func createArticle(t *testing.T, h http.Handler, req api.ArticleCreateRequest, opts ...requestOption) models.Article {
	t.Helper()
	w := serve(t, h, http.MethodPost, "/v1/admin/articles", req, opts...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[models.Article](t, w)
}

func TestSoftDeleteLifecycle(t *testing.T) {
	srv := newTestServer(t)
	editor := seedUser(t, srv, "editor", models.RoleEditor)
	h := srv.Handler()
	asEditor := withCookie(loginAs(t, h, "editor"))

	term := createTerm(t, h, "categories", "Golang", asEditor)
	require.Equal(t, "golang", term.Slug)
	require.Equal(t, editor.ID, term.CreatedBy)
	require.True(t, term.IsActive)

	w := serve(t, h, http.MethodDelete, "/v1/admin/categories/"+term.ID, nil, asEditor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	want := api.BulkActionResponse{Entity: "categories", Action: "delete", Count: 1, Message: "1 item(s) deleted successfully."}
	if diff := cmp.Diff(want, decodeBody[api.BulkActionResponse](t, w)); diff != "" {
		t.Fatalf("delete response mismatch (-want +got):\n%s", diff)
	}

	w = serve(t, h, http.MethodDelete, "/v1/admin/categories/"+term.ID, nil, asEditor)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, decodeBody[api.BulkActionResponse](t, w).Count, "second delete must be a no-op")

	alive := decodeBody[api.AdminListResponse[models.Term]](t, serve(t, h, http.MethodGet, "/v1/admin/categories", nil, asEditor))
	require.Equal(t, 0, alive.Total)
	require.Empty(t, alive.Items)

	deleted := decodeBody[api.AdminListResponse[models.Term]](t, serve(t, h, http.MethodGet, "/v1/admin/categories?scope=deleted", nil, asEditor))
	require.Equal(t, 1, deleted.Total)
	got := deleted.Items[0]
	require.True(t, got.IsDeleted)
	require.NotNil(t, got.DeletedAt)
	require.Equal(t, editor.ID, got.DeletedBy)

	public := decodeBody[[]models.Term](t, serve(t, h, http.MethodGet, "/v1/categories", nil))
	require.Empty(t, public)

	w = serve(t, h, http.MethodPost, "/v1/admin/categories/"+term.ID+"/restore", nil, asEditor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "1 item(s) restored successfully.", decodeBody[api.BulkActionResponse](t, w).Message)

	w = serve(t, h, http.MethodGet, "/v1/admin/categories/"+term.ID, nil, asEditor)
	require.Equal(t, http.StatusOK, w.Code)
	restored := decodeBody[models.Term](t, w)
	require.False(t, restored.IsDeleted)
	require.Nil(t, restored.DeletedAt)
	require.Empty(t, restored.DeletedBy)
}

func TestBulkDeleteAndRestore(t *testing.T) {
	srv := newTestServer(t)
	seedUser(t, srv, "editor", models.RoleEditor)
	h := srv.Handler()
	asEditor := withCookie(loginAs(t, h, "editor"))

	a := createTerm(t, h, "tags", "Tips", asEditor)
	b := createTerm(t, h, "tags", "Tricks", asEditor)

	w := serve(t, h, http.MethodPost, "/v1/admin/tags/delete", api.IDsRequest{IDs: []string{a.ID, b.ID}}, asEditor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, 2, decodeBody[api.BulkActionResponse](t, w).Count)

	w = serve(t, h, http.MethodPost, "/v1/admin/tags/restore", api.IDsRequest{IDs: []string{a.ID, b.ID}}, asEditor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "2 item(s) restored successfully.", decodeBody[api.BulkActionResponse](t, w).Message)

	w = serve(t, h, http.MethodPost, "/v1/admin/tags/restore", api.IDsRequest{IDs: []string{a.ID}}, asEditor)
	require.Equal(t, 0, decodeBody[api.BulkActionResponse](t, w).Count, "restoring a live record is a no-op")

	w = serve(t, h, http.MethodPost, "/v1/admin/tags/delete", api.IDsRequest{IDs: []string{a.ID, "ar-abcdef"}}, asEditor)
	requireErrorCode(t, w, http.StatusBadRequest, ErrCodeInvalidID)

	w = serve(t, h, http.MethodPost, "/v1/admin/tags/delete", api.IDsRequest{}, asEditor)
	requireErrorCode(t, w, http.StatusBadRequest, ErrCodeMissingRequired)
}

func TestBulkRequestsAreCapped(t *testing.T) {
	srv := newTestServer(t)
	seedUser(t, srv, "editor", models.RoleEditor)
	h := srv.Handler()
	asEditor := withCookie(loginAs(t, h, "editor"))

	ids := make([]string, 0, maxBulkIDs+1)
	for i := 0; i <= maxBulkIDs; i++ {
		ids = append(ids, fmt.Sprintf("tg-%06d", i))
	}

	w := serve(t, h, http.MethodPost, "/v1/admin/tags/delete", api.IDsRequest{IDs: ids}, asEditor)
	requireErrorCode(t, w, http.StatusBadRequest, ErrCodeRequestTooLarge)

	w = serve(t, h, http.MethodPost, "/v1/admin/tags/restore", api.IDsRequest{IDs: ids}, asEditor)
	requireErrorCode(t, w, http.StatusBadRequest, ErrCodeRequestTooLarge)

	w = serve(t, h, http.MethodPost, "/v1/admin/tags/delete", api.IDsRequest{IDs: ids[:maxBulkIDs]}, asEditor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, 0, decodeBody[api.BulkActionResponse](t, w).Count)
}

func TestRestoreConflictsWithLiveDuplicate(t *testing.T) {
	srv := newTestServer(t)
	seedUser(t, srv, "editor", models.RoleEditor)
	h := srv.Handler()
	asEditor := withCookie(loginAs(t, h, "editor"))

	original := createTerm(t, h, "tags", "Golang", asEditor)
	require.Equal(t, http.StatusOK, serve(t, h, http.MethodDelete, "/v1/admin/tags/"+original.ID, nil, asEditor).Code)

	replacement := createTerm(t, h, "tags", "Golang", asEditor)
	require.NotEqual(t, original.ID, replacement.ID)

	w := serve(t, h, http.MethodPost, "/v1/admin/tags/"+original.ID+"/restore", nil, asEditor)
	requireErrorCode(t, w, http.StatusConflict, ErrCodeDuplicate)

	w = serve(t, h, http.MethodPost, "/v1/admin/tags", api.TermCreateRequest{Name: "golang", Description: "dup"}, asEditor)
	requireErrorCode(t, w, http.StatusConflict, ErrCodeDuplicate)
}

func TestAdminAuthorization(t *testing.T) {
	srv := newTestServer(t)
	seedUser(t, srv, "member", models.RoleMember)
	seedUser(t, srv, "editor", models.RoleEditor)
	h := srv.Handler()
	asMember := withCookie(loginAs(t, h, "member"))
	asEditor := withCookie(loginAs(t, h, "editor"))
	asAdmin := withHeader("X-Admin-Token", testAdminToken)

	requireErrorCode(t, serve(t, h, http.MethodGet, "/v1/admin/articles", nil), http.StatusUnauthorized, ErrCodeUnauthorized)
	requireErrorCode(t, serve(t, h, http.MethodGet, "/v1/admin/articles", nil, asMember), http.StatusForbidden, ErrCodeForbidden)
	requireErrorCode(t, serve(t, h, http.MethodGet, "/v1/admin/users", nil, asEditor), http.StatusForbidden, ErrCodeForbidden)
	requireErrorCode(t, serve(t, h, http.MethodGet, "/v1/admin/widgets", nil, asEditor), http.StatusNotFound, ErrCodeInvalidEntity)

	term := createTerm(t, h, "tags", "Purgeable", asEditor)
	requireErrorCode(t, serve(t, h, http.MethodDelete, "/v1/admin/tags/"+term.ID+"/purge", nil, asEditor), http.StatusForbidden, ErrCodeForbidden)

	w := serve(t, h, http.MethodDelete, "/v1/admin/tags/"+term.ID+"/purge", nil, asAdmin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	purge := decodeBody[api.PurgeResponse](t, w)
	require.True(t, purge.Deleted)
	require.Empty(t, purge.PurgedFiles)

	requireErrorCode(t, serve(t, h, http.MethodGet, "/v1/admin/tags/"+term.ID+"?scope=all", nil, asEditor), http.StatusNotFound, ErrCodeRecordNotFound)
	requireErrorCode(t, serve(t, h, http.MethodDelete, "/v1/admin/tags/"+term.ID, nil, asEditor), http.StatusNotFound, ErrCodeRecordNotFound)
}

func TestAdminTokenActsWithoutActor(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()
	asAdmin := withHeader("X-Admin-Token", testAdminToken)

	term := createTerm(t, h, "categories", "Anonymous", asAdmin)
	require.Empty(t, term.CreatedBy)

	w := serve(t, h, http.MethodDelete, "/v1/admin/categories/"+term.ID, nil, asAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	deleted := decodeBody[models.Term](t, serve(t, h, http.MethodGet, "/v1/admin/categories/"+term.ID+"?scope=deleted", nil, asAdmin))
	require.True(t, deleted.IsDeleted)
	require.Empty(t, deleted.DeletedBy)
}

func TestPublishArticles(t *testing.T) {
	srv := newTestServer(t)
	editor := seedUser(t, srv, "editor", models.RoleEditor)
	h := srv.Handler()
	asEditor := withCookie(loginAs(t, h, "editor"))

	draft := createArticle(t, h, api.ArticleCreateRequest{Title: "Draft number one", Content: "body"}, asEditor)
	require.Equal(t, models.ArticleDraft, draft.Status)
	require.Equal(t, editor.ID, draft.AuthorID)
	require.Nil(t, draft.PublishedAt)

	w := serve(t, h, http.MethodPost, "/v1/admin/articles/publish", api.IDsRequest{IDs: []string{draft.ID}}, asEditor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "1 article(s) published successfully.", decodeBody[api.BulkActionResponse](t, w).Message)

	published := decodeBody[models.Article](t, serve(t, h, http.MethodGet, "/v1/admin/articles/"+draft.ID, nil, asEditor))
	require.Equal(t, models.ArticlePublished, published.Status)
	require.NotNil(t, published.PublishedAt)

	w = serve(t, h, http.MethodPost, "/v1/admin/articles", api.ArticleCreateRequest{Title: "Draft number one", Content: "again", Status: "published"}, asEditor)
	requireErrorCode(t, w, http.StatusConflict, ErrCodeDuplicate)
}

func TestArticleRejectsUnknownTerms(t *testing.T) {
	srv := newTestServer(t)
	seedUser(t, srv, "editor", models.RoleEditor)
	h := srv.Handler()
	asEditor := withCookie(loginAs(t, h, "editor"))

	tag := createTerm(t, h, "tags", "Gone", asEditor)
	require.Equal(t, http.StatusOK, serve(t, h, http.MethodDelete, "/v1/admin/tags/"+tag.ID, nil, asEditor).Code)

	w := serve(t, h, http.MethodPost, "/v1/admin/articles", api.ArticleCreateRequest{Title: "Tagged article", Content: "x", TagIDs: []string{tag.ID}}, asEditor)
	requireErrorCode(t, w, http.StatusBadRequest, ErrCodeInvalidReference)

	w = serve(t, h, http.MethodPost, "/v1/admin/articles", api.ArticleCreateRequest{Title: "Short", Content: "x", Status: "maybe"}, asEditor)
	requireErrorCode(t, w, http.StatusBadRequest, ErrCodeInvalidStatus)
}

func TestCommentModeration(t *testing.T) {
	srv := newTestServer(t)
	seedUser(t, srv, "editor", models.RoleEditor)
	reader := seedUser(t, srv, "reader", models.RoleMember)
	h := srv.Handler()
	asEditor := withCookie(loginAs(t, h, "editor"))

	article := createArticle(t, h, api.ArticleCreateRequest{Title: "Commented article", Content: "body", Status: "PB"}, asEditor)

	w := serve(t, h, http.MethodPost, "/v1/admin/comments", api.CommentAdminCreateRequest{ArticleID: article.ID, UserID: reader.ID, Text: "nice"}, asEditor)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decodeBody[models.Comment](t, w)
	require.False(t, comment.IsApproved)
	require.Equal(t, "reader", comment.Username)

	pending := decodeBody[api.AdminListResponse[models.Comment]](t, serve(t, h, http.MethodGet, "/v1/admin/comments?approved=false", nil, asEditor))
	require.Equal(t, 1, pending.Total)

	w = serve(t, h, http.MethodPost, "/v1/admin/comments/approve", api.IDsRequest{IDs: []string{comment.ID}}, asEditor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "1 comment(s) approved successfully.", decodeBody[api.BulkActionResponse](t, w).Message)

	detail := decodeBody[api.ArticleDetailResponse](t, serve(t, h, http.MethodGet, "/v1/articles/commented-article", nil))
	require.Len(t, detail.Comments, 1)

	require.Equal(t, http.StatusOK, serve(t, h, http.MethodDelete, "/v1/admin/comments/"+comment.ID, nil, asEditor).Code)
	detail = decodeBody[api.ArticleDetailResponse](t, serve(t, h, http.MethodGet, "/v1/articles/commented-article", nil))
	require.Empty(t, detail.Comments)
}
