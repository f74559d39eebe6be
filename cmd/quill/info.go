package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
)

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database and content counts (staff only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}
				if resp.DBPath == "" {
					resp.DBPath = cfg.DBPath
				}
				if *jsonOutput {
					return writeJSON(resp)
				}

				lines := []string{
					fmt.Sprintf("db_path: %s", resp.DBPath),
					fmt.Sprintf("schema_version: %d", resp.SchemaVersion),
					fmt.Sprintf("users: %d", resp.Users),
					fmt.Sprintf("media: %d", resp.Media),
				}
				lines = append(lines, countLines("alive", resp.Alive)...)
				lines = append(lines, countLines("deleted", resp.Deleted)...)
				return writeLines(lines)
			})
		},
	}
}

func countLines(label string, counts map[string]int) []string {
	entities := make([]string, 0, len(counts))
	for entity := range counts {
		entities = append(entities, entity)
	}
	sort.Strings(entities)

	lines := []string{label + ":"}
	for _, entity := range entities {
		lines = append(lines, fmt.Sprintf("  %s: %d", entity, counts[entity]))
	}
	return lines
}
