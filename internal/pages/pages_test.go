package pages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-data-builder/internal/tsv"
)

const guideIndex = "URL\tTemplate\tTags\tStatus\tVisibility\tType\n" +
	"https://example.com/df/titles/camp-titles/checklist\tchecklist\t\tpublished\tpublic\tguide\n" +
	"/df/collectables/player-titles/checklist/\tchecklist\t\t\t\t\n" +
	"df/guides/zealot\tTitlesGuide\t\tlive\t\t\n" +
	"/bnb/guides/other/\tguide\tCamp, Titles\tdraft\t\t\n" +
	"/bnb/guides/private/\tguide\ttitles\t\tmembers\t\n" +
	"/df/guides/redirected/\tguide\ttitles\t\t\tredirect\n" +
	"/df/guides/weapons/\tguide\tweapons\tpublished\tpublic\t\n" +
	"https://example.com\ttitles\t\t\t\t\n"

func TestBuild_DefaultRules(t *testing.T) {
	m, err := Build(tsv.Parse(guideIndex), Options{BaseURL: "https://raw.example.com/dist/"})
	require.NoError(t, err)

	feed := Entry{URL: "https://raw.example.com/dist/patchlog_latest_titles.json", Label: "titles"}
	assert.Equal(t, map[string]Entry{
		"/df/titles/camp-titles/checklist/":         feed,
		"/df/collectables/player-titles/checklist/": feed,
		"/df/guides/zealot/":                        feed,
		"/bnb/guides/other/":                        feed,
		"/bnb/guides/private/":                      feed,
		"/df/guides/redirected/":                    feed,
	}, m.ByPage)
}

func TestBuild_PublicOnly(t *testing.T) {
	m, err := Build(tsv.Parse(guideIndex), Options{BaseURL: "https://x", PublicOnly: true})
	require.NoError(t, err)

	assert.Contains(t, m.ByPage, "/df/titles/camp-titles/checklist/")
	assert.Contains(t, m.ByPage, "/df/collectables/player-titles/checklist/")
	assert.Contains(t, m.ByPage, "/df/guides/zealot/")
	assert.NotContains(t, m.ByPage, "/bnb/guides/other/", "draft status")
	assert.NotContains(t, m.ByPage, "/bnb/guides/private/", "non-public visibility")
	assert.NotContains(t, m.ByPage, "/df/guides/redirected/", "redirect type")
}

func TestBuild_NoPagesIsError(t *testing.T) {
	_, err := Build(tsv.Parse("url\ttemplate\n/df/guides/weapons/\tguide\n"), Options{BaseURL: "https://x"})
	assert.ErrorIs(t, err, ErrNoPages)
}

func TestBuild_ConfigRulesAndStaticPages(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pages.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
rules:
  - match: exact
    path: /df/guides/weapons
    feed: patchlog_latest_weapons.json
    label: weapons
  - path: /df/
    feed: patchlog_latest_titles.json
pages:
  - path: /bnb/titles/player-titles/generator
`), 0644))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, MatchPrefix, cfg.Rules[1].Match)

	m, err := Build(tsv.Parse(guideIndex), Options{BaseURL: "https://x", Rules: cfg.Rules, Pages: cfg.Pages})
	require.NoError(t, err)

	assert.Equal(t, Entry{URL: "https://x/patchlog_latest_weapons.json", Label: "weapons"}, m.ByPage["/df/guides/weapons/"])
	assert.Equal(t, "https://x/patchlog_latest_titles.json", m.ByPage["/df/guides/zealot/"].URL)
	assert.Contains(t, m.ByPage, "/bnb/titles/player-titles/generator/")
	assert.NotContains(t, m.ByPage, "/bnb/guides/other/")
}

func TestBuild_ExactPathRuleFieldCase(t *testing.T) {
	for _, field := range []string{"", "path", "Path", "PATH"} {
		t.Run("field="+field, func(t *testing.T) {
			rules := []Rule{{Match: MatchExact, Field: field, Path: "df/guides/weapons", Feed: "weapons.json", Label: "weapons"}}
			m, err := Build(tsv.Parse(guideIndex), Options{BaseURL: "https://x", Rules: rules})
			require.NoError(t, err)
			assert.Equal(t, map[string]Entry{
				"/df/guides/weapons/": {URL: "https://x/weapons.json", Label: "weapons"},
			}, m.ByPage)
		})
	}
}

func TestLoadConfig_BadMatch(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pages.yaml")
	require.NoError(t, os.WriteFile(p, []byte("rules:\n  - match: regex\n    path: /x/\n"), 0644))
	_, err := LoadConfig(p)
	assert.ErrorContains(t, err, "unknown match")
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"https://example.com/df/titles": "/df/titles/",
		"df/titles/":                    "/df/titles/",
		"/df/titles":                    "/df/titles/",
		"  ":                            "",
		"https://example.com":           "",
		"http://example.com/":           "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePath(in), in)
	}
}
