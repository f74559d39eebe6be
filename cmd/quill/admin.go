package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
)

func newAdminCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Site administration (admin session or QUILL_ADMIN_TOKEN)",
	}

	cmd.AddCommand(
		newAdminUserCmd(cfg, jsonOutput),
		newCompanyCmd(cfg, jsonOutput),
		newAdminContactsCmd(cfg, jsonOutput),
		newAdminGCMediaCmd(cfg, jsonOutput),
	)
	return cmd
}

func newAdminContactsCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List contact form submissions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if limit > 0 {
				query.Set("limit", intToString(limit))
			}
			if offset > 0 {
				query.Set("offset", intToString(offset))
			}

			return withClient(cfg, func(client *api.Client) error {
				contacts, err := client.ListContacts(cmd.Context(), query)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(contacts)
				}
				if len(contacts) == 0 {
					return writePlain("no contacts\n")
				}
				for _, contact := range contacts {
					if err := writePlain("%s  %s <%s>  %s: %s\n", contact.ID, contact.Name, contact.Email, formatTime(contact.CreatedAt), preview(contact.Message)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of contacts")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of contacts to skip")
	return cmd
}

func newAdminGCMediaCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		dryRun    bool
		apply     bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "gc-media",
		Short: "Remove uploaded files no record references",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				apply = false
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.MediaGC(cmd.Context(), api.MediaGCRequest{Apply: apply, BatchSize: batchSize})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				mode := "dry run"
				if !resp.DryRun {
					mode = "applied"
				}
				return writePlain("%s: candidates=%d deleted=%d failed=%d reclaimed_bytes=%d\n", mode, resp.CandidateCount, resp.DeletedCount, resp.FailedCount, resp.ReclaimedBytes)
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count orphans without deleting (default)")
	cmd.Flags().BoolVar(&apply, "apply", false, "delete orphaned files")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "files per sweep (default: media.gc_batch_size)")
	return cmd
}
