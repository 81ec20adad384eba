package build

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"site-data-builder/internal/feed"
	"site-data-builder/internal/titles"
	"site-data-builder/internal/tsv"
)

// LatestExport returns the most recently modified <prefix>_Export_*.tsv
// directly inside dir.
func LatestExport(dir, prefix string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"_Export_*.tsv"))
	if err != nil {
		return "", fmt.Errorf("build: glob %s: %w", dir, err)
	}
	var best string
	var bestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestMod) || (info.ModTime().Equal(bestMod) && m > best) {
			best, bestMod = m, info.ModTime()
		}
	}
	if best == "" {
		return "", fmt.Errorf("build: no %s_Export_*.tsv found in %s", prefix, dir)
	}
	return best, nil
}

// GeneratorResult reports one written generator feed.
type GeneratorResult struct {
	Source   string
	Output   string
	Prefixes int
	Suffixes int
}

// WriteGenerators builds the camp and player generator feeds from the
// latest CMPT and PLYT exports in tsvDir.
func WriteGenerators(tsvDir, outDir string, now time.Time) ([]GeneratorResult, error) {
	jobs := []struct {
		kind   titles.Kind
		prefix string
		out    string
	}{
		{titles.Camp, "CMPT", feed.FileCampGenerator},
		{titles.Player, "PLYT", feed.FilePlayerGenerator},
	}

	var sources []string
	for _, j := range jobs {
		src, err := LatestExport(tsvDir, j.prefix)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	var out []GeneratorResult
	for i, j := range jobs {
		t, err := tsv.Load(sources[i])
		if err != nil {
			return out, err
		}
		g := titles.BuildGenerator(j.kind, t, feed.Date(now))
		p := filepath.Join(outDir, j.out)
		if err := feed.WriteJSON(p, g); err != nil {
			return out, err
		}
		out = append(out, GeneratorResult{
			Source:   sources[i],
			Output:   p,
			Prefixes: g.Meta.PrefixCount,
			Suffixes: g.Meta.SuffixCount,
		})
	}
	return out, nil
}
