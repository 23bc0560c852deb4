package snapshot

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/ohler55/ojg/jp"

	"github.com/recipespark/content-core/internal/domain"
)

var (
	pathData      = jp.MustParseString("$.data")
	pathDataItems = jp.MustParseString("$.data.items[*]")
	pathDataList  = jp.MustParseString("$.data[*]")
	pathSuccess   = jp.MustParseString("$.success")
	pathMessage   = jp.MustParseString("$.message")
)

// Load reads the snapshot files at paths.
//
// A missing or unreadable website file leaves the config absent. A missing
// menu or recipe file yields an empty, unsuccessful envelope. Only I/O errors
// other than not-exist are returned.
func Load(paths Paths, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	website, err := loadWebsite(paths.Website, logger)
	if err != nil {
		return nil, err
	}

	menu, err := loadMenu(paths.Menu, logger)
	if err != nil {
		return nil, err
	}

	recipes, err := loadRecipes(paths.Recipes, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("snapshot loaded",
		"recipes", len(recipes.Data),
		"menu_items", len(menu.Data),
		"website", website != nil,
	)

	return New(website, menu, recipes), nil
}

func readOptional(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return data, true, nil
}

func loadWebsite(path string, logger *slog.Logger) (*domain.Envelope[domain.WebsiteConfig], error) {
	data, ok, err := readOptional(path)
	if err != nil || !ok {
		return nil, err
	}

	var env domain.Envelope[domain.WebsiteConfig]
	if err := json.Unmarshal(data, &env); err != nil {
		logger.Warn("website snapshot unparsable", "path", path, "error", err)
		return nil, nil
	}
	return &env, nil
}

func loadRecipes(path string, logger *slog.Logger) (domain.Envelope[[]domain.Recipe], error) {
	empty := domain.Envelope[[]domain.Recipe]{Success: false, Data: []domain.Recipe{}}

	data, ok, err := readOptional(path)
	if err != nil || !ok {
		return empty, err
	}

	var env domain.Envelope[[]domain.Recipe]
	if err := json.Unmarshal(data, &env); err != nil {
		logger.Warn("recipe snapshot unparsable", "path", path, "error", err)
		return empty, nil
	}
	if env.Data == nil {
		env.Data = []domain.Recipe{}
	}
	return env, nil
}

func loadMenu(path string, logger *slog.Logger) (domain.Envelope[[]domain.MenuNode], error) {
	empty := domain.Envelope[[]domain.MenuNode]{Success: false, Data: []domain.MenuNode{}}

	data, ok, err := readOptional(path)
	if err != nil || !ok {
		return empty, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("menu snapshot unparsable", "path", path, "error", err)
		return empty, nil
	}

	env, err := normalizeMenu(doc)
	if err != nil {
		logger.Warn("menu snapshot has unexpected shape", "path", path, "error", err)
		return empty, nil
	}
	return env, nil
}

// normalizeMenu accepts both menu shapes the CMS has served: a bare list
// under data, or a paged object under data.items. It returns the flat list.
func normalizeMenu(doc any) (domain.Envelope[[]domain.MenuNode], error) {
	env := domain.Envelope[[]domain.MenuNode]{Success: true, Data: []domain.MenuNode{}}

	if v := pathSuccess.First(doc); v != nil {
		if b, ok := v.(bool); ok {
			env.Success = b
		}
	}
	if v, ok := pathMessage.First(doc).(string); ok {
		env.Message = v
	}

	var items []any
	switch pathData.First(doc).(type) {
	case []any:
		items = pathDataList.Get(doc)
	case map[string]any:
		items = pathDataItems.Get(doc)
	}
	if len(items) == 0 {
		return env, nil
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return env, err
	}
	if err := json.Unmarshal(raw, &env.Data); err != nil {
		return env, fmt.Errorf("decode menu items: %w", err)
	}
	return env, nil
}

// Reload loads paths and swaps the result into h. On error the current
// store stays in place.
func (h *Holder) Reload(paths Paths, logger *slog.Logger) (*Store, error) {
	s, err := Load(paths, logger)
	if err != nil {
		return nil, err
	}
	h.Swap(s)
	return s, nil
}
