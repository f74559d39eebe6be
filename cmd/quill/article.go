package main

import (
	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/models"
)

func newArticleCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article",
		Short: "Manage articles",
	}
	cmd.AddCommand(lifecycleCmds(cfg, jsonOutput, models.EntityArticle)...)
	cmd.AddCommand(
		newArticleCreateCmd(cfg, jsonOutput),
		newArticleUpdateCmd(cfg, jsonOutput),
		newArticlePublishCmd(cfg, jsonOutput),
	)
	return cmd
}

func newArticleCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		req        api.ArticleCreateRequest
		categories string
		tags       string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create an article (draft unless --status is given)",
		Args:  requireExactlyArgs(1, "title is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readTextArg(req.Content)
			if err != nil {
				return err
			}
			req.Title = args[0]
			req.Content = content
			req.CategoryIDs = splitCommaList(categories)
			req.TagIDs = splitCommaList(tags)

			return withClient(cfg, func(client *api.Client) error {
				var created models.Article
				if err := client.AdminCreate(cmd.Context(), models.EntityArticle, req, &created); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(created)
				}
				return writePlain("created article %s\n", formatArticleLine(created))
			})
		},
	}

	cmd.Flags().StringVar(&req.Content, "content", "", "article body, or - to read stdin (required)")
	cmd.Flags().StringVar(&req.Slug, "slug", "", "slug (derived from the title when empty)")
	cmd.Flags().StringVar(&req.Status, "status", "", "DR, PB or AR")
	cmd.Flags().StringVar(&req.AuthorID, "author", "", "author user id (defaults to the caller)")
	cmd.Flags().StringVar(&categories, "categories", "", "comma separated category ids")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tag ids")
	cmd.Flags().StringVar(&req.FeaturedImage, "featured-image", "", "uploaded media key")
	cmd.Flags().StringVar(&req.OGImage, "og-image", "", "uploaded media key for social previews")
	cmd.Flags().StringVar(&req.MetaTitle, "meta-title", "", "SEO title")
	cmd.Flags().StringVar(&req.MetaDescription, "meta-description", "", "SEO description")
	return cmd
}

func newArticleUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		title, slug, content, status, author string
		featured, og, metaTitle, metaDesc    string
		categories, tags                     string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an article; pass an empty image flag to clear it",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.ArticleUpdateRequest{
				Title:           stringFlag(cmd, "title", title),
				Slug:            stringFlag(cmd, "slug", slug),
				Status:          stringFlag(cmd, "status", status),
				AuthorID:        stringFlag(cmd, "author", author),
				FeaturedImage:   stringFlag(cmd, "featured-image", featured),
				OGImage:         stringFlag(cmd, "og-image", og),
				MetaTitle:       stringFlag(cmd, "meta-title", metaTitle),
				MetaDescription: stringFlag(cmd, "meta-description", metaDesc),
				CategoryIDs:     listFlag(cmd, "categories", categories),
				TagIDs:          listFlag(cmd, "tags", tags),
			}
			if cmd.Flags().Changed("content") {
				body, err := readTextArg(content)
				if err != nil {
					return err
				}
				req.Content = &body
			}

			return withClient(cfg, func(client *api.Client) error {
				var updated models.Article
				if err := client.AdminUpdate(cmd.Context(), models.EntityArticle, args[0], req, &updated); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(updated)
				}
				return writePlain("updated article %s\n", formatArticleLine(updated))
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&slug, "slug", "", "new slug")
	cmd.Flags().StringVar(&content, "content", "", "new body, or - to read stdin")
	cmd.Flags().StringVar(&status, "status", "", "DR, PB or AR")
	cmd.Flags().StringVar(&author, "author", "", "author user id")
	cmd.Flags().StringVar(&featured, "featured-image", "", "uploaded media key")
	cmd.Flags().StringVar(&og, "og-image", "", "uploaded media key for social previews")
	cmd.Flags().StringVar(&metaTitle, "meta-title", "", "SEO title")
	cmd.Flags().StringVar(&metaDesc, "meta-description", "", "SEO description")
	cmd.Flags().StringVar(&categories, "categories", "", "replace category ids (comma separated)")
	cmd.Flags().StringVar(&tags, "tags", "", "replace tag ids (comma separated)")
	return cmd
}

func newArticlePublishCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <id> [<id>...]",
		Short: "Publish articles",
		Args:  requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.PublishArticles(cmd.Context(), args)
				if err != nil {
					return err
				}
				return writeBulkResult(resp, *jsonOutput)
			})
		},
	}
}
