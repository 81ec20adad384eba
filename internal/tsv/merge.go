package tsv

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Merge combines several exports of the same table keyed by column key.
// Rows without a key are dropped. Later non-empty values override earlier
// ones; rows keep first-seen order.
func Merge(tables []*Table, key string) []Row {
	var order []string
	merged := make(map[string]Row)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, r := range t.Rows {
			k := strings.ToUpper(r.Get(key))
			if k == "" {
				continue
			}
			cur, ok := merged[k]
			if !ok {
				merged[k] = r.Clone()
				order = append(order, k)
				continue
			}
			for col, v := range r {
				if strings.TrimSpace(v) != "" {
					cur[col] = v
				}
			}
		}
	}

	out := make([]Row, 0, len(order))
	for _, k := range order {
		out = append(out, merged[k])
	}
	return out
}

// LoadAll loads every path in order.
func LoadAll(paths []string) ([]*Table, error) {
	tables := make([]*Table, 0, len(paths))
	for _, p := range paths {
		t, err := Load(p)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Discover walks root and returns files whose base name matches any of the
// glob patterns, sorted and de-duplicated.
func Discover(root string, patterns ...string) []string {
	if root == "" {
		return nil
	}
	seen := make(map[string]bool)
	var hits []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		base := d.Name()
		for _, pat := range patterns {
			if ok, _ := filepath.Match(pat, base); ok && !seen[path] {
				seen[path] = true
				hits = append(hits, path)
				break
			}
		}
		return nil
	})
	sort.Strings(hits)
	return hits
}
