package tsv

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Record types whose exports prefix the identity columns, e.g. COBJ_FormID.
var aliasTypes = []string{"CMPT", "PLYT", "BOOK", "COBJ", "GLOB", "GMRW", "LVLI", "CHAL", "CNDF"}

// Load reads a tab-separated export with a header row.
// Every row carries every header; missing trailing cells are "".
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tsv: read %s: %w", path, err)
	}
	t := Parse(Decode(raw))
	t.Path = path
	return t, nil
}

// Parse splits decoded text into a Table. Quotes are kept verbatim:
// quoted labels inside condition strings are significant.
func Parse(text string) *Table {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	t := &Table{}
	start := -1
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			start = i
			break
		}
	}
	if start < 0 {
		return t
	}

	for _, h := range strings.Split(lines[start], "\t") {
		t.Headers = append(t.Headers, strings.TrimSpace(h))
	}

	for _, line := range lines[start+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		row := make(Row, len(t.Headers)+3)
		for i, h := range t.Headers {
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		addAliases(row)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// addAliases fills FormID/EDID/FULL from type-prefixed columns when the
// plain column is missing or empty.
func addAliases(row Row) {
	for _, field := range []string{"FormID", "EDID", "FULL"} {
		if strings.TrimSpace(row[field]) != "" {
			continue
		}
		if field == "EDID" {
			if v := strings.TrimSpace(row["EDID - Editor ID"]); v != "" {
				row[field] = v
				continue
			}
		}
		for _, typ := range aliasTypes {
			if v := strings.TrimSpace(row[typ+"_"+field]); v != "" {
				row[field] = v
				break
			}
		}
	}
}

func sortedKeys(r Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
