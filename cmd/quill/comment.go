package main

import (
	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/models"
)

func newCommentCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Moderate comments",
	}
	cmd.AddCommand(lifecycleCmds(cfg, jsonOutput, models.EntityComment)...)
	cmd.AddCommand(
		newCommentCreateCmd(cfg, jsonOutput),
		newCommentUpdateCmd(cfg, jsonOutput),
		newCommentApproveCmd(cfg, jsonOutput),
	)
	return cmd
}

func newCommentCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var req api.CommentAdminCreateRequest

	cmd := &cobra.Command{
		Use:   "create <text>",
		Short: "Add a comment on behalf of a user",
		Args:  requireExactlyArgs(1, "comment text is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Text = args[0]
			return withClient(cfg, func(client *api.Client) error {
				var created models.Comment
				if err := client.AdminCreate(cmd.Context(), models.EntityComment, req, &created); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(created)
				}
				return writePlain("created comment %s\n", formatCommentLine(created))
			})
		},
	}

	cmd.Flags().StringVar(&req.ArticleID, "article", "", "article id (required)")
	cmd.Flags().StringVar(&req.UserID, "user", "", "author user id (required)")
	cmd.Flags().BoolVar(&req.IsApproved, "approved", false, "publish immediately")
	return cmd
}

func newCommentUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		text     string
		approved bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a comment",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.CommentUpdateRequest{
				Text:       stringFlag(cmd, "text", text),
				IsApproved: boolFlag(cmd, "approved", approved),
			}
			return withClient(cfg, func(client *api.Client) error {
				var updated models.Comment
				if err := client.AdminUpdate(cmd.Context(), models.EntityComment, args[0], req, &updated); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(updated)
				}
				return writePlain("updated comment %s\n", formatCommentLine(updated))
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "new text")
	cmd.Flags().BoolVar(&approved, "approved", false, "approval state")
	return cmd
}

func newCommentApproveCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id> [<id>...]",
		Short: "Approve comments",
		Args:  requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.ApproveComments(cmd.Context(), args)
				if err != nil {
					return err
				}
				return writeBulkResult(resp, *jsonOutput)
			})
		},
	}
}
