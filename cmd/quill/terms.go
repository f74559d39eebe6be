package main

import (
	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/models"
)

func newTermCmd(cfg *config.Config, jsonOutput *bool, kind models.TermKind) *cobra.Command {
	entity := kind.Entity()
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: "Manage " + string(entity),
	}
	cmd.AddCommand(lifecycleCmds(cfg, jsonOutput, entity)...)
	cmd.AddCommand(newTermCreateCmd(cfg, jsonOutput, kind))
	cmd.AddCommand(newTermUpdateCmd(cfg, jsonOutput, kind))
	return cmd
}

func newTermCreateCmd(cfg *config.Config, jsonOutput *bool, kind models.TermKind) *cobra.Command {
	var (
		req      api.TermCreateRequest
		inactive bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a " + string(kind),
		Args:  requireExactlyArgs(1, "name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			if inactive {
				active := false
				req.IsActive = &active
			}
			return withClient(cfg, func(client *api.Client) error {
				var created models.Term
				if err := client.AdminCreate(cmd.Context(), kind.Entity(), req, &created); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(created)
				}
				return writePlain("created %s %s\n", kind, formatTermLine(created))
			})
		},
	}

	cmd.Flags().StringVar(&req.Description, "description", "", "description (required)")
	cmd.Flags().StringVar(&req.Slug, "slug", "", "slug (derived from the name when empty)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "hide from public navigation")
	cmd.Flags().StringVar(&req.MetaTitle, "meta-title", "", "SEO title")
	cmd.Flags().StringVar(&req.MetaDescription, "meta-description", "", "SEO description")
	return cmd
}

func newTermUpdateCmd(cfg *config.Config, jsonOutput *bool, kind models.TermKind) *cobra.Command {
	var (
		name, slug, description string
		metaTitle, metaDesc     string
		active                  bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a " + string(kind),
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.TermUpdateRequest{
				Name:            stringFlag(cmd, "name", name),
				Slug:            stringFlag(cmd, "slug", slug),
				Description:     stringFlag(cmd, "description", description),
				IsActive:        boolFlag(cmd, "active", active),
				MetaTitle:       stringFlag(cmd, "meta-title", metaTitle),
				MetaDescription: stringFlag(cmd, "meta-description", metaDesc),
			}
			return withClient(cfg, func(client *api.Client) error {
				var updated models.Term
				if err := client.AdminUpdate(cmd.Context(), kind.Entity(), args[0], req, &updated); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(updated)
				}
				return writePlain("updated %s %s\n", kind, formatTermLine(updated))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&slug, "slug", "", "new slug")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().BoolVar(&active, "active", true, "show in public navigation")
	cmd.Flags().StringVar(&metaTitle, "meta-title", "", "SEO title")
	cmd.Flags().StringVar(&metaDesc, "meta-description", "", "SEO description")
	return cmd
}
