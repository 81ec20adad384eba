package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"site-data-builder/internal/feed"
	"site-data-builder/internal/tsv"
)

// ErrNoTables is returned when a passthrough directory holds no TSV files.
var ErrNoTables = errors.New("snapshot: no .tsv files found")

// OrderedRow marshals a row as a JSON object whose keys follow the file's
// header order. Alias columns added by the loader are left out.
type OrderedRow struct {
	Columns []string
	Row     tsv.Row
}

// MarshalJSON implements json.Marshaler.
func (r OrderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(c); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(r.Row[c]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Ordered wraps every row of t. The result is never nil.
func Ordered(t *tsv.Table) []OrderedRow {
	out := make([]OrderedRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, OrderedRow{Columns: t.Headers, Row: r})
	}
	return out
}

// Converted is one file written by ConvertDir.
type Converted struct {
	Source string
	Output string
	Rows   int
}

// ConvertDir writes every *.tsv directly inside tsvDir to outDir as
// <stem>.json holding an array of row objects.
func ConvertDir(tsvDir, outDir string) ([]Converted, error) {
	entries, err := os.ReadDir(tsvDir)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read dir %s: %w", tsvDir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".tsv") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTables, tsvDir)
	}
	sort.Strings(names)

	out := make([]Converted, 0, len(names))
	for _, name := range names {
		src := filepath.Join(tsvDir, name)
		t, err := tsv.Load(src)
		if err != nil {
			return out, err
		}
		dst := filepath.Join(outDir, strings.TrimSuffix(name, filepath.Ext(name))+".json")
		if err := feed.WriteJSON(dst, Ordered(t)); err != nil {
			return out, err
		}
		out = append(out, Converted{Source: src, Output: dst, Rows: len(t.Rows)})
	}
	return out, nil
}
