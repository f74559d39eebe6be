package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"quill/internal/models"
)

func TestArticleMediaSwapReleasesOldFile(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	createTestMedia(t, st, "article/old.png")
	createTestMedia(t, st, "article/new.png")

	article := &models.Article{Title: "Swap files", Slug: "swap-files", Content: "x", Status: models.ArticleDraft, FeaturedImage: "article/old.png"}
	article.StampCreate("", testNow)
	if err := st.CreateArticle(ctx, article, ArticleLinks{}); err != nil {
		t.Fatalf("create: %v", err)
	}

	old, err := st.GetMedia(ctx, "article/old.png")
	if err != nil || old == nil {
		t.Fatalf("get old media: %v", err)
	}
	if old.OwnerType != models.OwnerArticle || old.OwnerID != article.ID || old.OwnerField != articleFieldFeaturedImage {
		t.Fatalf("expected claimed media, got %+v", old)
	}

	// Saving without a change releases nothing.
	article.StampUpdate("", testNow.Add(time.Minute))
	released, err := st.UpdateArticle(ctx, article, ArticleLinks{})
	if err != nil {
		t.Fatalf("update unchanged: %v", err)
	}
	if len(released) != 0 {
		t.Fatalf("expected nothing released, got %v", released)
	}

	article.FeaturedImage = "article/new.png"
	article.StampUpdate("", testNow.Add(2*time.Minute))
	released, err = st.UpdateArticle(ctx, article, ArticleLinks{})
	if err != nil {
		t.Fatalf("update swap: %v", err)
	}
	if len(released) != 1 || released[0] != "article/old.png" {
		t.Fatalf("expected old file released, got %v", released)
	}

	old, _ = st.GetMedia(ctx, "article/old.png")
	if old.Owned() {
		t.Fatalf("expected old media unowned, got %+v", old)
	}
	fresh, _ := st.GetMedia(ctx, "article/new.png")
	if fresh.OwnerID != article.ID {
		t.Fatalf("expected new media claimed, got %+v", fresh)
	}
}

func TestClaimRejectsForeignOrMissingMedia(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	createTestMedia(t, st, "article/shared.png")

	first := &models.Article{Title: "First owner", Slug: "first-owner", Content: "x", Status: models.ArticleDraft, FeaturedImage: "article/shared.png"}
	first.StampCreate("", testNow)
	if err := st.CreateArticle(ctx, first, ArticleLinks{}); err != nil {
		t.Fatalf("create first: %v", err)
	}

	second := &models.Article{Title: "Second owner", Slug: "second-owner", Content: "x", Status: models.ArticleDraft, FeaturedImage: "article/shared.png"}
	second.StampCreate("", testNow)
	if err := st.CreateArticle(ctx, second, ArticleLinks{}); !errors.Is(err, ErrMediaInUse) {
		t.Fatalf("expected ErrMediaInUse, got %v", err)
	}
	if got, _ := st.GetArticle(ctx, second.ID, models.ScopeAll); got != nil {
		t.Fatal("expected failed create rolled back")
	}

	third := &models.Article{Title: "Missing file", Slug: "missing-file", Content: "x", Status: models.ArticleDraft, OGImage: "seo/nope.png"}
	third.StampCreate("", testNow)
	if err := st.CreateArticle(ctx, third, ArticleLinks{}); !errors.Is(err, ErrMediaMissing) {
		t.Fatalf("expected ErrMediaMissing, got %v", err)
	}
}

func TestReleasedMediaCannotBeClaimedAgain(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	createTestMedia(t, st, "article/x.png")
	createTestMedia(t, st, "article/y.png")

	holder := &models.Article{Title: "Holder", Slug: "holder", Content: "x", Status: models.ArticleDraft, FeaturedImage: "article/x.png"}
	holder.StampCreate("", testNow)
	if err := st.CreateArticle(ctx, holder, ArticleLinks{}); err != nil {
		t.Fatalf("create holder: %v", err)
	}
	holder.FeaturedImage = "article/y.png"
	if _, err := st.UpdateArticle(ctx, holder, ArticleLinks{}); err != nil {
		t.Fatalf("swap: %v", err)
	}

	taker := &models.Article{Title: "Taker", Slug: "taker", Content: "x", Status: models.ArticleDraft, FeaturedImage: "article/x.png"}
	taker.StampCreate("", testNow)
	if err := st.CreateArticle(ctx, taker, ArticleLinks{}); !errors.Is(err, ErrMediaReleased) {
		t.Fatalf("expected ErrMediaReleased, got %v", err)
	}

	holder.FeaturedImage = "article/x.png"
	if _, err := st.UpdateArticle(ctx, holder, ArticleLinks{}); !errors.Is(err, ErrMediaReleased) {
		t.Fatalf("expected previous owner refused too, got %v", err)
	}
	if deleted, err := st.DeleteUnownedMedia(ctx, "article/x.png"); err != nil || !deleted {
		t.Fatalf("expected released row deletable, deleted=%v err=%v", deleted, err)
	}
}

func TestListAndDeleteUnownedMedia(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	createTestMedia(t, st, "logo/orphan.png")
	createTestMedia(t, st, "logo/kept.png")

	company := &models.Company{Name: "Acme", Logo: "logo/kept.png", CreatedAt: testNow, UpdatedAt: testNow}
	if err := st.CreateCompany(ctx, company); err != nil {
		t.Fatalf("create company: %v", err)
	}

	candidates, err := st.ListUnownedMedia(ctx, testNow.Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("list unowned: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Key != "logo/orphan.png" {
		t.Fatalf("expected orphan only, got %+v", candidates)
	}

	candidates, err = st.ListUnownedMedia(ctx, testNow.Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("list unowned before cutoff: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates older than cutoff, got %d", len(candidates))
	}

	deleted, err := st.DeleteUnownedMedia(ctx, "logo/kept.png")
	if err != nil {
		t.Fatalf("delete owned: %v", err)
	}
	if deleted {
		t.Fatal("owned media must not be deleted")
	}
	deleted, err = st.DeleteUnownedMedia(ctx, "logo/orphan.png")
	if err != nil || !deleted {
		t.Fatalf("expected orphan deleted, deleted=%v err=%v", deleted, err)
	}
}

func TestCompanyLogoLifecycle(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	createTestMedia(t, st, "logo/a.png")
	createTestMedia(t, st, "logo/b.png")

	company := &models.Company{Name: "Acme", Logo: "logo/a.png", CreatedAt: testNow, UpdatedAt: testNow}
	if err := st.CreateCompany(ctx, company); err != nil {
		t.Fatalf("create: %v", err)
	}

	company.Logo = "logo/b.png"
	company.UpdatedAt = testNow.Add(time.Minute)
	released, err := st.UpdateCompany(ctx, company)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(released) != 1 || released[0] != "logo/a.png" {
		t.Fatalf("expected logo a released, got %v", released)
	}

	released, err = st.DeleteCompany(ctx, company.ID, testNow)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(released) != 1 || released[0] != "logo/b.png" {
		t.Fatalf("expected logo b released, got %v", released)
	}
	if _, err := st.DeleteCompany(ctx, company.ID, testNow); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
