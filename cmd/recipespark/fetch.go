package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recipespark/content-core/internal/fetcher"
	"github.com/recipespark/content-core/internal/logger"
	"github.com/recipespark/content-core/internal/metrics"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Snapshot the content API into the local JSON files",
	Long: `Fetch the website settings, the menu and every recipe page, writing the
API cache under data/ and the import copies under src/data/. A resource that
cannot be fetched keeps its existing local copy. The command fails only when
some resource has neither.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, _ []string) error {
	client := newContentClient()
	defer client.Close()

	f := fetcher.New(client, cfg.Paths.Root, logger.Component(log.Logger, "fetcher"), metrics.New())

	report, runErr := f.Run(cmd.Context())
	if report != nil {
		for _, r := range report.Resources() {
			log.Info("Resource synced",
				"resource", r.Name,
				"source", r.Source,
				"count", r.Count,
				"partial", r.Partial,
				"live_error", r.LiveErr,
			)
		}
	}

	if cfg.Fetch.WriteBuildInfo {
		info, err := fetcher.WriteBuildInfo(cfg.Paths.Public, cfg.App.Version)
		if err != nil {
			log.Warn("Failed to write build info", "error", err)
		} else {
			log.Info("Build info written", "build_id", info.BuildID, "version", info.Version)
		}
	}

	if runErr != nil {
		return fmt.Errorf("fetch: %w", runErr)
	}
	return nil
}
