package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.json")
	v := map[string]any{"how": `Complete the quest "A & B" <now>`, "n": 1}

	require.NoError(t, WriteJSON(p, v))

	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	want := "{\n  \"how\": \"Complete the quest \\\"A & B\\\" <now>\",\n  \"n\": 1\n}\n"
	assert.Equal(t, want, string(raw))

	var back map[string]any
	require.NoError(t, ReadJSON(p, &back))
	assert.Equal(t, v["how"], back["how"])
}

func TestTimestamp(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 30, 15, 999, time.FixedZone("x", 3600))
	assert.Equal(t, "2026-03-01T11:30:15Z", Timestamp(ts))
	assert.Equal(t, "2026-03-01", Date(ts))
}

func TestNewManifest(t *testing.T) {
	seasons := "Seasons.tsv"
	m := NewManifest("2026-03-01T00:00:00Z", 3, 4, Sources{
		CMPT:    BaseNames([]string{"/a/b/CMPT_Export_March_2026.tsv"}),
		PLYT:    BaseNames(nil),
		Seasons: &seasons,
	})

	data, err := Marshal(m)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"camp": {
      "file": "titles_camp.json",
      "count": 3
    }`)
	assert.Contains(t, s, `"patchlog": {
      "file": "titles_patchlog.json"
    }`)
	assert.Contains(t, s, `"cmpt": [
      "CMPT_Export_March_2026.tsv"
    ]`)
	assert.Contains(t, s, `"plyt": []`)
	assert.Contains(t, s, `"seasons": "Seasons.tsv"`)
}
