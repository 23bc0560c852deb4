package fetcher

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Where a resource's import copy came from after a run.
const (
	SourceLive   = "live"   // fetched and written this run
	SourceImport = "import" // existing import copy kept
	SourceCache  = "cache"  // cache copy promoted to the import path
	SourceNone   = "none"
)

// ResourceReport describes what happened to one resource.
type ResourceReport struct {
	Name    string
	Source  string
	Count   int
	Partial bool
	LiveErr error // why the live fetch failed, if it did
	Err     error // fatal for this resource
}

// Report is the result of Run.
type Report struct {
	Website ResourceReport
	Menu    ResourceReport
	Recipes ResourceReport
}

// Resources returns the per-resource reports in fetch order.
func (r *Report) Resources() []ResourceReport {
	return []ResourceReport{r.Website, r.Menu, r.Recipes}
}

type fetchFunc func(ctx context.Context, rep *ResourceReport) (any, error)

// Run fetches every resource and writes the snapshot files. It returns an
// error, joining one per resource, only when some resource ended with no
// usable file.
func (f *Fetcher) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Website: ResourceReport{Name: "website"},
		Menu:    ResourceReport{Name: "menu"},
		Recipes: ResourceReport{Name: "recipes"},
	}

	steps := []struct {
		rep       *ResourceReport
		cachePath string
		destPath  string
		fetch     fetchFunc
	}{
		{&report.Website, f.Cache.Website, f.Paths.Website, f.fetchWebsite},
		{&report.Menu, f.Cache.Menu, f.Paths.Menu, f.fetchMenu},
		{&report.Recipes, f.Cache.Recipes, f.Paths.Recipes, f.fetchRecipes},
	}

	var errs []error
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		f.sync(ctx, step.rep, step.cachePath, step.destPath, step.fetch)
		if step.rep.Err != nil {
			errs = append(errs, step.rep.Err)
		}
	}

	f.Logger.Info("content fetch complete",
		"website", report.Website.Source,
		"menu_items", report.Menu.Count,
		"recipes", report.Recipes.Count,
		"partial", report.Recipes.Partial,
	)

	return report, errors.Join(errs...)
}

func (f *Fetcher) sync(ctx context.Context, rep *ResourceReport, cachePath, destPath string, fetch fetchFunc) {
	payload, err := fetch(ctx, rep)
	f.Metrics.ObserveFetch(rep.Name, err)

	if err == nil {
		if werr := writeJSON(cachePath, payload); werr != nil {
			rep.Err = fmt.Errorf("%s: %w", rep.Name, werr)
			return
		}
		if werr := writeJSON(destPath, payload); werr != nil {
			rep.Err = fmt.Errorf("%s: %w", rep.Name, werr)
			return
		}
		rep.Source = SourceLive
		f.Logger.Info("saved content", "resource", rep.Name, "count", rep.Count, "path", destPath)
		return
	}

	rep.LiveErr = err
	f.Metrics.ObserveFallback(rep.Name)

	switch {
	case exists(destPath):
		rep.Source = SourceImport
		f.Logger.Warn("live fetch failed, keeping existing file",
			"resource", rep.Name, "path", destPath, "error", err)
	case exists(cachePath):
		if perr := copyFile(cachePath, destPath); perr != nil {
			rep.Source = SourceNone
			rep.Err = fmt.Errorf("%s: promote cache: %w", rep.Name, perr)
			return
		}
		rep.Source = SourceCache
		f.Logger.Warn("live fetch failed, promoted cached copy",
			"resource", rep.Name, "from", cachePath, "to", destPath, "error", err)
	default:
		rep.Source = SourceNone
		rep.Err = fmt.Errorf("%s: %w: %w", rep.Name, ErrNoFallback, err)
		f.Logger.Error("live fetch failed and no local copy exists",
			"resource", rep.Name, "error", err)
	}
}

func (f *Fetcher) fetchWebsite(ctx context.Context, rep *ResourceReport) (any, error) {
	env, err := f.Client.Website(ctx)
	if err != nil {
		return nil, err
	}
	rep.Count = 1
	return env, nil
}

func (f *Fetcher) fetchMenu(ctx context.Context, rep *ResourceReport) (any, error) {
	env, err := f.Client.MenuHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	rep.Count = len(env.Data)
	return env, nil
}

func (f *Fetcher) fetchRecipes(ctx context.Context, rep *ResourceReport) (any, error) {
	res, err := f.FetchAllRecipes(ctx)
	if err != nil {
		return nil, err
	}
	rep.Count = len(res.Envelope.Data)
	rep.Partial = res.Partial
	rep.LiveErr = res.Err
	return res.Envelope, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// writeJSON encodes v indented and replaces path atomically.
func writeJSON(path string, v any) error {
	data, err := json.Marshal(v, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return WriteAtomic(path, append(data, '\n'))
}

// WriteAtomic writes data to a temp file beside path and renames it into place.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("source missing: %w", err)
		}
		return err
	}
	return WriteAtomic(dst, data)
}
