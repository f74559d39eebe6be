package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/models"
)

// lifecycleCmds returns the list, show, delete, restore and purge commands
// shared by every audited entity.
func lifecycleCmds(cfg *config.Config, jsonOutput *bool, entity models.Entity) []*cobra.Command {
	return []*cobra.Command{
		newContentListCmd(cfg, jsonOutput, entity),
		newContentShowCmd(cfg, jsonOutput, entity),
		newContentDeleteCmd(cfg, jsonOutput, entity),
		newContentRestoreCmd(cfg, jsonOutput, entity),
		newContentPurgeCmd(cfg, jsonOutput, entity),
	}
}

type listOptions struct {
	scope     string
	query     string
	status    string
	category  string
	tag       string
	articleID string
	authorID  string
	approved  string
	limit     int
	offset    int
}

func (o listOptions) values() url.Values {
	query := url.Values{}
	setIfNotEmpty(query, "scope", o.scope)
	setIfNotEmpty(query, "q", o.query)
	setIfNotEmpty(query, "status", o.status)
	setIfNotEmpty(query, "category", o.category)
	setIfNotEmpty(query, "tag", o.tag)
	setIfNotEmpty(query, "article_id", o.articleID)
	setIfNotEmpty(query, "author_id", o.authorID)
	setIfNotEmpty(query, "approved", o.approved)
	if o.limit > 0 {
		query.Set("limit", intToString(o.limit))
	}
	if o.offset > 0 {
		query.Set("offset", intToString(o.offset))
	}
	return query
}

func newContentListCmd(cfg *config.Config, jsonOutput *bool, entity models.Entity) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s (live by default)", entity),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				ctx, query := cmd.Context(), opts.values()
				switch entity {
				case models.EntityArticle:
					return listEntity(ctx, client, entity, query, *jsonOutput, formatArticleLine)
				case models.EntityComment:
					return listEntity(ctx, client, entity, query, *jsonOutput, formatCommentLine)
				default:
					return listEntity(ctx, client, entity, query, *jsonOutput, formatTermLine)
				}
			})
		},
	}

	cmd.Flags().StringVar(&opts.scope, "scope", "", "alive, deleted or all")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "limit results")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "offset results")
	switch entity {
	case models.EntityArticle:
		cmd.Flags().StringVar(&opts.query, "search", "", "full-text search")
		cmd.Flags().StringVar(&opts.status, "status", "", "status filter, comma separated (DR,PB,AR)")
		cmd.Flags().StringVar(&opts.category, "category", "", "category slug")
		cmd.Flags().StringVar(&opts.tag, "tag", "", "tag slug")
		cmd.Flags().StringVar(&opts.authorID, "author", "", "author user id")
	case models.EntityComment:
		cmd.Flags().StringVar(&opts.articleID, "article", "", "article id")
		cmd.Flags().StringVar(&opts.approved, "approved", "", "true or false")
	default:
		cmd.Flags().StringVar(&opts.query, "search", "", "name contains")
	}
	return cmd
}

func listEntity[T any](ctx context.Context, client *api.Client, entity models.Entity, query url.Values, jsonOutput bool, line func(T) string) error {
	var resp api.AdminListResponse[T]
	if err := client.AdminList(ctx, entity, query, &resp); err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(resp)
	}
	if len(resp.Items) == 0 {
		return writePlain("no %s (scope %s)\n", entity, resp.Scope)
	}
	for _, item := range resp.Items {
		if err := writePlain("%s\n", line(item)); err != nil {
			return err
		}
	}
	return writePlain("showing %d of %d\n", len(resp.Items), resp.Total)
}

func newContentShowCmd(cfg *config.Config, jsonOutput *bool, entity models.Entity) *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: fmt.Sprintf("Show one %s", entity.Singular()),
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			setIfNotEmpty(query, "scope", scope)
			return withClient(cfg, func(client *api.Client) error {
				ctx := cmd.Context()
				switch entity {
				case models.EntityArticle:
					return showEntity(ctx, client, entity, args[0], query, *jsonOutput, writeArticleDetail)
				case models.EntityComment:
					return showEntity(ctx, client, entity, args[0], query, *jsonOutput, writeCommentDetail)
				default:
					return showEntity(ctx, client, entity, args[0], query, *jsonOutput, writeTermDetail)
				}
			})
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "alive, deleted or all")
	return cmd
}

func showEntity[T any](ctx context.Context, client *api.Client, entity models.Entity, id string, query url.Values, jsonOutput bool, detail func(T) error) error {
	var record T
	if err := client.AdminGet(ctx, entity, id, query, &record); err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(record)
	}
	return detail(record)
}

func newContentDeleteCmd(cfg *config.Config, jsonOutput *bool, entity models.Entity) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id> [<id>...]",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Move %s to the trash (recoverable)", entity),
		Args:    requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.SoftDelete(cmd.Context(), entity, args)
				if err != nil {
					return err
				}
				return writeBulkResult(resp, *jsonOutput)
			})
		},
	}
}

func newContentRestoreCmd(cfg *config.Config, jsonOutput *bool, entity models.Entity) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id> [<id>...]",
		Short: fmt.Sprintf("Restore deleted %s", entity),
		Args:  requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Restore(cmd.Context(), entity, args)
				if err != nil {
					return err
				}
				return writeBulkResult(resp, *jsonOutput)
			})
		},
	}
}

func newContentPurgeCmd(cfg *config.Config, jsonOutput *bool, entity models.Entity) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "purge <id>",
		Short: fmt.Sprintf("Permanently remove one %s and its files", entity.Singular()),
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("purge cannot be undone; rerun with --force")
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Purge(cmd.Context(), entity, args[0])
				if err != nil {
					return err
				}
				return writePurgeResult(resp, *jsonOutput)
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm the permanent removal")
	return cmd
}
