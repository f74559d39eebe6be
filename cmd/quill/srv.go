package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quill/internal/blobstore"
	"quill/internal/config"
	"quill/internal/server"
	"quill/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the quill API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			blobs, err := blobstore.NewLocalStore(cfg.Media.Root)
			if err != nil {
				return err
			}

			srv := server.New(addr, st, blobs, server.Options{
				DBPath: cfg.DBPath,
				Media: server.MediaOptions{
					MaxUploadBytes:     cfg.Media.MaxUploadBytes,
					MultipartMaxMemory: cfg.Media.MultipartMaxMemory,
					AllowedFormats:     cfg.Media.AllowedFormats,
					GCBatchSize:        cfg.Media.GCBatchSize,
					GCMinAge:           cfg.Media.GCMinAge.Duration,
				},
				Blog: server.BlogOptions{
					PageSize:      cfg.Blog.PageSize,
					FeaturedCount: cfg.Blog.FeaturedCount,
					RelatedCount:  cfg.Blog.RelatedCount,
				},
			}, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
}
