package providers

import (
	"github.com/samber/do/v2"

	"github.com/recipespark/content-core/internal/config"
	"github.com/recipespark/content-core/internal/logger"
	"github.com/recipespark/content-core/internal/metrics"
)

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting RecipeSpark content server",
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"log_level", cfg.Logger.Level,
		"root", cfg.Paths.Root,
		"api", cfg.API.BaseURL,
	)

	return log, nil
}

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}
