package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/recipespark/content-core/internal/di"
	"github.com/recipespark/content-core/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the content API over the snapshot, cache and live API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Create DI container
	injector := di.NewContainer(cfg)

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		_ = injector.Shutdown()
		return fmt.Errorf("bootstrap server: %w", err)
	}

	srvLog := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	<-cmd.Context().Done()

	srvLog.Info("Shutting down server gracefully...")

	// The DI container shuts services down in reverse dependency order.
	if err := injector.Shutdown(); err != nil {
		srvLog.Error("Shutdown error", "error", err)
	}

	srvLog.Info("Server stopped")
	return nil
}
