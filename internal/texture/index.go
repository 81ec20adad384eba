package texture

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Index maps lower-cased slash paths relative to a textures root to the
// files on disk. Extracted archives keep the game's mixed casing, while
// manifests reference textures in whatever case the record carries.
type Index struct {
	root    string
	entries map[string]string // normalized relative path → full path
}

// BuildIndex walks root and indexes every file below it.
func BuildIndex(root string) (*Index, error) {
	idx := &Index{root: root, entries: make(map[string]string)}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		key := NormalizePath(rel)
		if _, exists := idx.entries[key]; !exists {
			idx.entries[key] = path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// NormalizePath turns a manifest texture path into an index key: slashes
// unified, a leading "textures/" stripped, lower-cased.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	p = strings.TrimLeft(p, "/")
	p = strings.ToLower(p)
	p = strings.TrimPrefix(p, "textures/")
	return p
}

// ResolvePath returns the file for a manifest texture path, or ("", false).
func (idx *Index) ResolvePath(texPath string) (string, bool) {
	key := NormalizePath(texPath)
	if key == "" {
		return "", false
	}
	path, ok := idx.entries[key]
	return path, ok
}

// FirstExisting returns the first of paths present in the index.
func (idx *Index) FirstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		if full, ok := idx.ResolvePath(p); ok {
			return full, true
		}
	}
	return "", false
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
