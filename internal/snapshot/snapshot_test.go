package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-data-builder/internal/tsv"
)

func write(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func TestParseExportName(t *testing.T) {
	tests := []struct {
		name  string
		ok    bool
		label string
		year  int
		month int
	}{
		{"CHAL_Export_Dec_2025.tsv", true, "Dec 2025", 2025, 12},
		{"CHAL_Export_march_2026.tsv", true, "March 2026", 2026, 3},
		{"CHAL_Export_Sept_2025.tsv", false, "", 0, 0},
		{"CMPT_Export_Dec_2025.tsv", false, "", 0, 0},
		{"CHAL_Export_Dec_2025.txt", false, "", 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ex, ok := ParseExportName(filepath.Join("tsv", tc.name))
			require.Equal(t, tc.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tc.label, ex.Label)
			assert.Equal(t, tc.year, ex.Year)
			assert.Equal(t, tc.month, ex.Month)
			assert.Equal(t, tc.name, ex.File)
		})
	}
}

func TestLatestPrevious(t *testing.T) {
	exports := []Export{
		{File: "a", Year: 2026, Month: 1},
		{File: "b", Year: 2025, Month: 12},
		{File: "c", Year: 2026, Month: 3},
	}
	latest, prev, err := LatestPrevious(exports)
	require.NoError(t, err)
	assert.Equal(t, "c", latest.File)
	assert.Equal(t, "a", prev.File)

	_, _, err = LatestPrevious(exports[:1])
	assert.ErrorIs(t, err, ErrTooFewExports)
}

func TestWriteCHAL(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	write(t, in, "CHAL_Export_Dec_2025.tsv", "CHAL_FormID\tCHAL_FULL\n00000001\tOld\n")
	write(t, in, "CHAL_Export_Jan_2026.tsv", "CHAL_FormID\tCHAL_FULL\n00000001\tA <b>\n00000002\tB\n")
	write(t, in, "CHAL_Export_Nov_2025.tsv", "CHAL_FormID\n")

	res, err := WriteCHAL(in, out)
	require.NoError(t, err)
	assert.Equal(t, "Jan 2026", res.Latest.Label)
	assert.Equal(t, "Dec 2025", res.Previous.Label)
	assert.Len(t, res.Files, 3)

	raw, err := os.ReadFile(filepath.Join(out, "chal_latest.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"CHAL_FULL": "A <b>"`)
	assert.NotContains(t, string(raw), `"FormID"`, "loader aliases are not published")

	var snap struct {
		Meta Meta                `json:"_meta"`
		Rows []map[string]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, Meta{SourceFile: "CHAL_Export_Jan_2026.tsv", Label: "Jan 2026", RowCount: 2, Columns: []string{"CHAL_FormID", "CHAL_FULL"}}, snap.Meta)
	assert.Equal(t, "00000002", snap.Rows[1]["CHAL_FormID"])

	var man map[string]map[string]map[string]any
	require.NoError(t, readJSON(filepath.Join(out, "manifest.json"), &man))
	assert.Equal(t, "CHAL_Export_Dec_2025.tsv", man["chal"]["previous"]["file"])
	assert.Equal(t, 2026.0, man["chal"]["latest"]["year"])
}

func TestWriteCHAL_TooFew(t *testing.T) {
	in := t.TempDir()
	write(t, in, "CHAL_Export_Dec_2025.tsv", "CHAL_FormID\n")
	_, err := WriteCHAL(in, t.TempDir())
	assert.ErrorIs(t, err, ErrTooFewExports)
}

func TestConvertDir(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	write(t, in, "b.tsv", "Name\tValue\nx\t1\n")
	write(t, in, "a.TSV", "Z\tA\nlast\tfirst\n")
	write(t, in, "notes.txt", "ignored")

	got, err := ConvertDir(in, out)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, filepath.Join(out, "a.json"), got[0].Output)

	raw, err := os.ReadFile(filepath.Join(out, "a.json"))
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"Z\": \"last\",\n    \"A\": \"first\"\n  }\n]\n", string(raw), "header order is kept")

	_, err = ConvertDir(t.TempDir(), out)
	assert.ErrorIs(t, err, ErrNoTables)
}

func TestOrdered_EmptyTable(t *testing.T) {
	rows := Ordered(tsv.Parse(""))
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func readJSON(p string, v any) error {
	raw, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
