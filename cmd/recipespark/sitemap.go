package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recipespark/content-core/internal/contentapi"
	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/fetcher"
	"github.com/recipespark/content-core/internal/hierarchy"
	"github.com/recipespark/content-core/internal/logger"
	"github.com/recipespark/content-core/internal/seo"
	"github.com/recipespark/content-core/internal/snapshot"
)

const sitemapFile = "sitemap.xml"

var sitemapLive bool

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Write public/sitemap.xml from the snapshot",
	Long: `Write the sitemap from the local snapshot. With --live the content API is
tried first and the snapshot covers whatever it cannot answer. Missing data
only shrinks the sitemap; the home and recipe index entries are always written.
The command never fails the build: a sitemap that cannot be written is logged.`,
	Args: cobra.NoArgs,
	RunE: runSitemap,
}

func init() {
	sitemapCmd.Flags().BoolVar(&sitemapLive, "live", false, "try the content API before the snapshot")
}

func runSitemap(cmd *cobra.Command, _ []string) error {
	st := loadSnapshot()

	var src seo.DataSource = seo.StoreSource{Store: st}
	if sitemapLive {
		client := newContentClient()
		defer client.Close()
		src = seo.FallbackSource{
			Primary:   newLiveSitemapSource(client),
			Secondary: src,
			Logger:    log.Logger,
		}
	}

	gen := seo.NewSitemapGenerator(cfg.Site.URL, logger.Component(log.Logger, "sitemap"))
	data, err := gen.Generate(cmd.Context(), src)
	if err != nil {
		return err
	}

	out := filepath.Join(cfg.Paths.Public, sitemapFile)
	if err := fetcher.WriteAtomic(out, data); err != nil {
		log.Warn("Failed to write sitemap", "path", out, "error", err)
		return nil
	}

	log.Info("Sitemap written", "path", out, "bytes", len(data))
	return nil
}

// loadSnapshot reads the import copies. An unreadable snapshot is logged
// and replaced by an empty one.
func loadSnapshot() *snapshot.Store {
	st, err := snapshot.Load(snapshot.ImportPaths(cfg.Paths.Root), logger.Component(log.Logger, "snapshot"))
	if err != nil {
		log.Warn("Snapshot unreadable, continuing without it", "error", err)
		return snapshot.Empty()
	}
	return st
}

// liveSitemapSource reads sitemap content straight from the content API.
type liveSitemapSource struct {
	client  *contentapi.Client
	fetcher *fetcher.Fetcher
}

func newLiveSitemapSource(client *contentapi.Client) liveSitemapSource {
	return liveSitemapSource{
		client:  client,
		fetcher: fetcher.New(client, cfg.Paths.Root, logger.Component(log.Logger, "fetcher"), nil),
	}
}

func (l liveSitemapSource) Recipes(ctx context.Context) ([]domain.Recipe, error) {
	res, err := l.fetcher.FetchAllRecipes(ctx)
	if err != nil {
		return nil, err
	}
	return res.Envelope.Data, nil
}

func (l liveSitemapSource) MenuTree(ctx context.Context) ([]domain.MenuNode, error) {
	env, err := l.client.MenuHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.Build(env.Data), nil
}
