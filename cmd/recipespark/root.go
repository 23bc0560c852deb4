package main

import (
	"github.com/spf13/cobra"

	"github.com/recipespark/content-core/internal/config"
	"github.com/recipespark/content-core/internal/contentapi"
	"github.com/recipespark/content-core/internal/logger"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "recipespark",
	Short:         "Content layer for the Mechanics of Motherhood recipe site",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded
		log = logger.New(logger.Config{
			Writer:      cmd.ErrOrStderr(),
			Level:       logger.ParseLevel(cfg.Logger.Level),
			Format:      cfg.Logger.Format,
			Environment: cfg.App.Environment,
		})
		return nil
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(fetchCmd, sitemapCmd, serveCmd, schemaCmd)
}

func newContentClient() *contentapi.Client {
	return contentapi.New(contentapi.Options{
		BaseURL:    cfg.API.BaseURL,
		WebsiteID:  cfg.API.WebsiteID,
		Timeout:    cfg.API.Timeout,
		MaxRetries: cfg.API.MaxRetries,
		RPS:        cfg.API.RPS,
		Burst:      cfg.API.Burst,
		UserAgent:  "recipespark-content-core/" + cfg.App.Version,
	}, logger.Component(log.Logger, "contentapi"))
}
