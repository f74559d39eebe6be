package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/models"
)

func newMediaCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Upload images for articles, avatars and logos",
	}
	cmd.AddCommand(newMediaUploadCmd(cfg, jsonOutput))
	return cmd
}

func newMediaUploadCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var rawKind string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image and print its media key",
		Long:  "Upload an image and print its media key. The key stays unclaimed until a record references it, and unclaimed files are removed by `quill admin gc-media`.",
		Args:  requireExactlyArgs(1, "file path is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseMediaKind(rawKind)
			if err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open upload: %w", err)
			}
			defer file.Close()

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.UploadMedia(cmd.Context(), kind, args[0], file)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("%s  %dx%d  %d bytes  %s\n", resp.Key, resp.Width, resp.Height, resp.SizeBytes, resp.URL)
			})
		},
	}

	cmd.Flags().StringVar(&rawKind, "kind", string(models.MediaArticle), "article, seo, avatar or logo")
	return cmd
}
