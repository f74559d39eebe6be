package main

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"quill/internal/config"
	"quill/internal/store"

	_ "modernc.org/sqlite"
)

func newMigrateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  "Apply pending schema migrations to the blog database. With --dry-run only the pending steps are listed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := readMigrationStatus(cfg.DBPath)
			if err != nil {
				return err
			}
			if dryRun {
				return writeMigrationStatus(before, *jsonOutput)
			}

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			st.Close()

			after, err := readMigrationStatus(cfg.DBPath)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(after)
			}
			if len(before.Pending) == 0 {
				return writePlain("schema already at version %d\n", after.CurrentVersion)
			}
			for _, step := range before.Pending {
				if err := writePlain("applied %d: %s\n", step.Version, step.Description); err != nil {
					return err
				}
			}
			return writePlain("schema now at version %d\n", after.CurrentVersion)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")
	cmd.Flags().BoolVar(&dryRun, "inspect", false, "alias for --dry-run")
	return cmd
}

// readMigrationStatus inspects the schema without running migrations.
func readMigrationStatus(path string) (*store.MigrationStatus, error) {
	db, err := openRawDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	status, err := store.MigrationPlan(db)
	if err != nil {
		return nil, fmt.Errorf("inspect migrations: %w", err)
	}
	return status, nil
}

func writeMigrationStatus(status *store.MigrationStatus, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(status)
	}
	lines := []string{
		fmt.Sprintf("current version: %d", status.CurrentVersion),
		fmt.Sprintf("available version: %d", status.AvailableVersion),
	}
	if len(status.Pending) == 0 {
		lines = append(lines, "no pending migrations")
	}
	for _, step := range status.Pending {
		lines = append(lines, fmt.Sprintf("  pending %d: %s", step.Version, step.Description))
	}
	return writeLines(lines)
}

func openRawDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	return sql.Open("sqlite", u.String())
}
