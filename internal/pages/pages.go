// Package pages maps site pages to the patch-log feed they display.
package pages

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"site-data-builder/internal/tsv"
)

// ErrNoPages is returned when no page maps to a feed. An empty manifest
// means the routing rules stopped matching the page index.
var ErrNoPages = errors.New("pages: no pages mapped to a feed")

// Match kinds.
const (
	MatchPrefix   = "prefix"
	MatchExact    = "exact"
	MatchContains = "contains"
)

// Rule routes pages to a feed. Field selects what is matched: the page
// path (default), its template or its tags. Template and tag matches are
// case-insensitive.
type Rule struct {
	Match string `yaml:"match"`
	Path  string `yaml:"path"`
	Field string `yaml:"field"`
	Feed  string `yaml:"feed"`
	Label string `yaml:"label"`
}

// StaticPage is always present in the manifest.
type StaticPage struct {
	Path  string `yaml:"path"`
	Feed  string `yaml:"feed"`
	Label string `yaml:"label"`
}

// Config is the YAML rules file.
type Config struct {
	Rules []Rule       `yaml:"rules"`
	Pages []StaticPage `yaml:"pages"`
}

// Entry is where one page loads its patch log from.
type Entry struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// Manifest is the page-to-feed mapping file.
type Manifest struct {
	ByPage map[string]Entry `json:"byPage"`
}

// Options control Build.
type Options struct {
	BaseURL     string
	DefaultFeed string
	PublicOnly  bool
	Rules       []Rule
	Pages       []StaticPage
}

// DefaultFeed is the titles patch-log feed name.
const DefaultFeed = "patchlog_latest_titles.json"

// DefaultRules route every titles page to feed.
func DefaultRules(feed string) []Rule {
	return []Rule{
		{Match: MatchContains, Path: "/titles/", Feed: feed, Label: "titles"},
		{Match: MatchContains, Path: "/collectables/player-titles/", Feed: feed, Label: "titles"},
		{Match: MatchContains, Path: "/camp/camp-titles/", Feed: feed, Label: "titles"},
		{Match: MatchContains, Path: "titles", Field: "template", Feed: feed, Label: "titles"},
		{Match: MatchContains, Path: "titles", Field: "tags", Feed: feed, Label: "titles"},
	}
}

// LoadConfig reads a YAML rules file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("pages: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("pages: parse %s: %w", path, err)
	}
	for i, r := range cfg.Rules {
		switch r.Match {
		case MatchPrefix, MatchExact, MatchContains:
		case "":
			cfg.Rules[i].Match = MatchPrefix
		default:
			return cfg, fmt.Errorf("pages: %s: rule %d: unknown match %q", path, i+1, r.Match)
		}
	}
	return cfg, nil
}

// Build maps every row of the page index through the rules, first match
// wins, then adds the static pages.
func Build(index *tsv.Table, opts Options) (Manifest, error) {
	if opts.DefaultFeed == "" {
		opts.DefaultFeed = DefaultFeed
	}
	rules := opts.Rules
	if len(rules) == 0 {
		rules = DefaultRules(opts.DefaultFeed)
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")

	m := Manifest{ByPage: make(map[string]Entry)}
	if index != nil {
		for _, row := range index.Rows {
			if opts.PublicOnly && !IsPublic(row) {
				continue
			}
			p := NormalizePath(field(row, "url"))
			if p == "" {
				continue
			}
			page := pageFields{
				path:     p,
				template: strings.ToLower(field(row, "template")),
				tags:     strings.ToLower(field(row, "tags")),
			}
			for _, r := range rules {
				if r.matches(page) {
					m.ByPage[p] = entry(base, r.Feed, r.Label, opts.DefaultFeed)
					break
				}
			}
		}
	}

	for _, sp := range opts.Pages {
		if p := NormalizePath(sp.Path); p != "" {
			m.ByPage[p] = entry(base, sp.Feed, sp.Label, opts.DefaultFeed)
		}
	}

	if len(m.ByPage) == 0 {
		return m, ErrNoPages
	}
	return m, nil
}

type pageFields struct {
	path, template, tags string
}

func (r Rule) matches(p pageFields) bool {
	var have, want string
	var onPath bool
	switch strings.ToLower(r.Field) {
	case "template":
		have, want = p.template, strings.ToLower(r.Path)
	case "tags":
		have, want = p.tags, strings.ToLower(r.Path)
	default:
		have, want = p.path, r.Path
		onPath = true
	}
	if want == "" {
		return false
	}
	switch r.Match {
	case MatchExact:
		if onPath {
			want = NormalizePath(want)
		}
		return have == want
	case MatchContains:
		return strings.Contains(have, want)
	default:
		return strings.HasPrefix(have, want)
	}
}

func entry(base, feed, label, defFeed string) Entry {
	if feed == "" {
		feed = defFeed
	}
	if label == "" {
		label = "titles"
	}
	return Entry{URL: base + "/" + strings.TrimLeft(feed, "/"), Label: label}
}

// NormalizePath strips scheme and host from full URLs and forces a leading
// and trailing slash. A URL with a host but no path yields "".
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if _, rest, ok := strings.Cut(p, "://"); ok {
		i := strings.Index(rest, "/")
		if i < 0 {
			return ""
		}
		p = rest[i:]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

var (
	publicStatus = map[string]bool{"published": true, "public": true, "live": true, "active": true}
	hiddenType   = map[string]bool{"draft": true, "private": true, "hidden": true, "redirect": true}
)

// IsPublic applies the public-only filter to one page-index row. Absent
// status, visibility and type columns never exclude a row.
func IsPublic(row tsv.Row) bool {
	if s := strings.ToLower(field(row, "status")); s != "" && !publicStatus[s] {
		return false
	}
	if v := strings.ToLower(field(row, "visibility")); v != "" && v != "public" {
		return false
	}
	if t := strings.ToLower(field(row, "type")); hiddenType[t] {
		return false
	}
	return true
}

// field looks a column up by name, falling back to a case-insensitive
// header match.
func field(row tsv.Row, name string) string {
	if v, ok := row[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range row {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
