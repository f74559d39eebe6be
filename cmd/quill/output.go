package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"quill/internal/api"
	"quill/internal/format"
	"quill/internal/models"
)

const commentPreviewLength = 60

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeLines(lines []string) error {
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatTermLine(term models.Term) string {
	line := fmt.Sprintf("%s  %s  %s", term.ID, term.Slug, term.Name)
	if !term.IsActive {
		line += " [inactive]"
	}
	return line + deletedMarker(term.Audit)
}

func formatArticleLine(article models.Article) string {
	return fmt.Sprintf("%s [%s] %s - %s%s", article.ID, article.Status, article.Slug, article.Title, deletedMarker(article.Audit))
}

func formatCommentLine(comment models.Comment) string {
	state := "pending"
	if comment.IsApproved {
		state = "approved"
	}
	author := comment.Username
	if author == "" {
		author = comment.UserID
	}
	return fmt.Sprintf("%s [%s] %s on %s: %s%s", comment.ID, state, author, comment.ArticleID, preview(comment.Text), deletedMarker(comment.Audit))
}

func deletedMarker(audit models.Audit) string {
	if !audit.IsDeleted {
		return ""
	}
	return " [deleted]"
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= commentPreviewLength {
		return text
	}
	return string(runes[:commentPreviewLength-1]) + "…"
}

func auditLines(audit models.Audit) []string {
	lines := []string{
		fmt.Sprintf("created_at: %s", formatTime(audit.CreatedAt)),
		fmt.Sprintf("updated_at: %s", formatTime(audit.UpdatedAt)),
	}
	if audit.CreatedBy != "" {
		lines = append(lines, fmt.Sprintf("created_by: %s", audit.CreatedBy))
	}
	if audit.UpdatedBy != "" {
		lines = append(lines, fmt.Sprintf("updated_by: %s", audit.UpdatedBy))
	}
	if audit.IsDeleted {
		lines = append(lines, "deleted: true")
		if audit.DeletedAt != nil {
			lines = append(lines, fmt.Sprintf("deleted_at: %s", formatTime(*audit.DeletedAt)))
		}
		if audit.DeletedBy != "" {
			lines = append(lines, fmt.Sprintf("deleted_by: %s", audit.DeletedBy))
		}
	}
	return lines
}

func writeTermDetail(term models.Term) error {
	lines := []string{
		fmt.Sprintf("id: %s", term.ID),
		fmt.Sprintf("kind: %s", term.Kind),
		fmt.Sprintf("name: %s", term.Name),
		fmt.Sprintf("slug: %s", term.Slug),
		fmt.Sprintf("active: %t", term.IsActive),
		fmt.Sprintf("description: %s", term.Description),
	}
	lines = append(lines, seoLines(term.SEO)...)
	return writeLines(append(lines, auditLines(term.Audit)...))
}

func writeArticleDetail(article models.Article) error {
	lines := []string{
		fmt.Sprintf("id: %s", article.ID),
		fmt.Sprintf("title: %s", article.Title),
		fmt.Sprintf("slug: %s", article.Slug),
		fmt.Sprintf("status: %s (%s)", article.Status, article.Status.Label()),
		fmt.Sprintf("views: %d", article.Views),
		fmt.Sprintf("likes: %d", article.Likes),
	}
	if article.AuthorID != "" {
		lines = append(lines, fmt.Sprintf("author_id: %s", article.AuthorID))
	}
	if article.PublishedAt != nil {
		lines = append(lines, fmt.Sprintf("published_at: %s", formatTime(*article.PublishedAt)))
	}
	if article.FeaturedImage != "" {
		lines = append(lines, fmt.Sprintf("featured_image: %s", article.FeaturedImage))
	}
	if article.OGImage != "" {
		lines = append(lines, fmt.Sprintf("og_image: %s", article.OGImage))
	}
	if len(article.Categories) > 0 {
		lines = append(lines, fmt.Sprintf("categories: %s", joinTermRefs(article.Categories)))
	}
	if len(article.Tags) > 0 {
		lines = append(lines, fmt.Sprintf("tags: %s", joinTermRefs(article.Tags)))
	}
	lines = append(lines, seoLines(article.SEO)...)
	lines = append(lines, auditLines(article.Audit)...)
	lines = append(lines, "", article.Content)
	return writeLines(lines)
}

func writeCommentDetail(comment models.Comment) error {
	lines := []string{
		fmt.Sprintf("id: %s", comment.ID),
		fmt.Sprintf("article_id: %s", comment.ArticleID),
		fmt.Sprintf("user: %s (%s)", comment.Username, comment.UserID),
		fmt.Sprintf("approved: %t", comment.IsApproved),
		fmt.Sprintf("text: %s", comment.Text),
	}
	return writeLines(append(lines, auditLines(comment.Audit)...))
}

func seoLines(seo models.SEO) []string {
	var lines []string
	if seo.MetaTitle != "" {
		lines = append(lines, fmt.Sprintf("meta_title: %s", seo.MetaTitle))
	}
	if seo.MetaDescription != "" {
		lines = append(lines, fmt.Sprintf("meta_description: %s", seo.MetaDescription))
	}
	return lines
}

func joinTermRefs(refs []models.TermRef) string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Slug)
	}
	return strings.Join(names, ", ")
}

func writeBulkResult(resp api.BulkActionResponse, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(resp)
	}
	return writePlain("%s\n", resp.Message)
}

func writePurgeResult(resp api.PurgeResponse, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(resp)
	}
	if err := writePlain("purged %s %s\n", models.Entity(resp.Entity).Singular(), resp.ID); err != nil {
		return err
	}
	for _, key := range resp.PurgedFiles {
		if err := writePlain("  removed file %s\n", key); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
