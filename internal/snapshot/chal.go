// Package snapshot publishes raw export tables as JSON: the latest and
// previous monthly CHAL exports, and a plain TSV-to-JSON passthrough.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"site-data-builder/internal/feed"
	"site-data-builder/internal/tsv"
)

// ErrTooFewExports is returned when fewer than two CHAL exports exist.
var ErrTooFewExports = errors.New("snapshot: need at least two CHAL exports (previous and latest)")

var reCHALFile = regexp.MustCompile(`^CHAL_Export_([A-Za-z]+)_(\d{4})\.tsv$`)

var months = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// Export is one dated CHAL export file.
type Export struct {
	Path  string `json:"-"`
	File  string `json:"file"`
	Label string `json:"label"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
}

// ParseExportName recognizes CHAL_Export_<Mon>_<YYYY>.tsv with a three
// letter or full English month name.
func ParseExportName(path string) (Export, bool) {
	name := filepath.Base(path)
	m := reCHALFile.FindStringSubmatch(name)
	if m == nil {
		return Export{}, false
	}
	month, ok := months[strings.ToLower(m[1])]
	if !ok {
		return Export{}, false
	}
	year, _ := strconv.Atoi(m[2])
	mon := strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
	return Export{
		Path:  path,
		File:  name,
		Label: fmt.Sprintf("%s %d", mon, year),
		Year:  year,
		Month: month,
	}, true
}

// LatestPrevious picks the two most recent exports by (year, month).
func LatestPrevious(exports []Export) (latest, previous Export, err error) {
	if len(exports) < 2 {
		return latest, previous, ErrTooFewExports
	}
	sorted := append([]Export(nil), exports...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year < sorted[j].Year
		}
		return sorted[i].Month < sorted[j].Month
	})
	n := len(sorted)
	return sorted[n-1], sorted[n-2], nil
}

// Manifest is dist/manifest.json.
type Manifest struct {
	CHAL struct {
		Latest   Export `json:"latest"`
		Previous Export `json:"previous"`
	} `json:"chal"`
}

// Meta describes the table inside a snapshot file.
type Meta struct {
	SourceFile string   `json:"source_file"`
	Label      string   `json:"label"`
	RowCount   int      `json:"row_count"`
	Columns    []string `json:"columns"`
}

// Snapshot is chal_latest.json or chal_previous.json.
type Snapshot struct {
	Meta Meta         `json:"_meta"`
	Rows []OrderedRow `json:"rows"`
}

// CHALResult names what WriteCHAL produced.
type CHALResult struct {
	Latest, Previous Export
	Files            []string
}

// WriteCHAL finds the CHAL exports directly inside tsvDir and writes
// manifest.json, chal_latest.json and chal_previous.json to outDir.
func WriteCHAL(tsvDir, outDir string) (CHALResult, error) {
	var res CHALResult
	entries, err := os.ReadDir(tsvDir)
	if err != nil {
		return res, fmt.Errorf("snapshot: read dir %s: %w", tsvDir, err)
	}
	var exports []Export
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ex, ok := ParseExportName(filepath.Join(tsvDir, e.Name())); ok {
			exports = append(exports, ex)
		}
	}

	res.Latest, res.Previous, err = LatestPrevious(exports)
	if err != nil {
		return res, err
	}

	var man Manifest
	man.CHAL.Latest = res.Latest
	man.CHAL.Previous = res.Previous
	manPath := filepath.Join(outDir, "manifest.json")
	if err := feed.WriteJSON(manPath, man); err != nil {
		return res, err
	}
	res.Files = append(res.Files, manPath)

	for _, x := range []struct {
		ex   Export
		name string
	}{{res.Latest, "chal_latest.json"}, {res.Previous, "chal_previous.json"}} {
		t, err := tsv.Load(x.ex.Path)
		if err != nil {
			return res, err
		}
		snap := Snapshot{
			Meta: Meta{
				SourceFile: x.ex.File,
				Label:      x.ex.Label,
				RowCount:   len(t.Rows),
				Columns:    nonNil(t.Headers),
			},
			Rows: Ordered(t),
		}
		p := filepath.Join(outDir, x.name)
		if err := feed.WriteJSON(p, snap); err != nil {
			return res, err
		}
		res.Files = append(res.Files, p)
	}
	return res, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
