package snapshot

import "path/filepath"

// Paths locates the three snapshot files the store reads.
type Paths struct {
	Website string
	Menu    string
	Recipes string
}

// ImportPaths returns the src/data import copies under root.
func ImportPaths(root string) Paths {
	dir := filepath.Join(root, "src", "data")
	return Paths{
		Website: filepath.Join(dir, "website-config.json"),
		Menu:    filepath.Join(dir, "menu-hierarchy.json"),
		Recipes: filepath.Join(dir, "recipes-list.json"),
	}
}

// CachePaths returns the verbatim API cache files under root.
func CachePaths(root string) Paths {
	dir := filepath.Join(root, "data")
	return Paths{
		Website: filepath.Join(dir, "api-website-cache.json"),
		Menu:    filepath.Join(dir, "api-menu-cache.json"),
		Recipes: filepath.Join(dir, "api-recipes-cache.json"),
	}
}

// All returns the paths in a fixed order, for watchers.
func (p Paths) All() []string {
	return []string{p.Website, p.Menu, p.Recipes}
}
