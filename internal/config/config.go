// Package config resolves the inputs and settings of a titles build from a
// YAML file, command-line flags and auto-discovery under a TSV root.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"site-data-builder/internal/tsv"
)

// Inputs lists the export files of every table. Each table may have
// several monthly exports; they are merged in order.
type Inputs struct {
	CMPT    []string `yaml:"cmpt"`
	PLYT    []string `yaml:"plyt"`
	BOOK    []string `yaml:"book"`
	COBJ    []string `yaml:"cobj"`
	GLOB    []string `yaml:"glob"`
	GMRW    []string `yaml:"gmrw"`
	LVLI    []string `yaml:"lvli"`
	CHAL    []string `yaml:"chal"`
	CNDF    []string `yaml:"cndf"`
	Seasons string   `yaml:"seasons"`
}

// Storefront holds the texture conversion settings.
type Storefront struct {
	Manifest     string `yaml:"manifest"`
	TexturesRoot string `yaml:"textures_root"`
	OutputDir    string `yaml:"output_dir"`
	Report       string `yaml:"report"`
	MaxSize      int    `yaml:"max_size"`
	Workers      int    `yaml:"workers"`
}

// Config holds all configurable paths and build settings.
type Config struct {
	// Paths
	TSVRoot     string `yaml:"tsv_root"`
	Inputs      Inputs `yaml:"inputs"`
	OutputDir   string `yaml:"output_dir"`
	PreviousDir string `yaml:"previous_dir"`
	SQLite      string `yaml:"sqlite"`

	// Previous generation lookup: `git show <GitRev>:<GitDist>/<feed>`.
	GitRev  string `yaml:"git_rev"`
	GitDist string `yaml:"git_dist"`

	Debug bool `yaml:"debug"`

	Storefront Storefront `yaml:"storefront"`

	// baseDir is the directory of the loaded file; relative paths in the
	// file are resolved against it.
	baseDir string
}

// Load reads a YAML config file. Fields not set in the file keep their
// zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.baseDir = filepath.Dir(path)
	cfg.relativeTo(cfg.baseDir)
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	TSVRoot     string
	Inputs      Inputs
	OutputDir   string
	PreviousDir string
	SQLite      string
	GitRev      string
	GitDist     string
	Debug       bool

	Storefront Storefront
}

// Discovery patterns matched against file base names under TSVRoot.
var patterns = map[string][]string{
	"cmpt": {"*CMPT*.tsv"},
	"plyt": {"*PLYT*.tsv", "*Player*Title*.tsv", "*PlayerTitles*.tsv"},
	"book": {"*BOOK*.tsv"},
	"cobj": {"*COBJ*.tsv"},
	"glob": {"*GLOB*.tsv"},
	"gmrw": {"*GMRW*.tsv"},
	"lvli": {"*LVLI*.tsv"},
	"chal": {"*CHAL*.tsv"},
	"cndf": {"*CNDF*.tsv"},
}

// Resolve applies flag overrides, discovers unset inputs under TSVRoot and
// fills defaults. CLI flags take priority when non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.TSVRoot != "" {
		c.TSVRoot = flags.TSVRoot
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.PreviousDir != "" {
		c.PreviousDir = flags.PreviousDir
	}
	if flags.SQLite != "" {
		c.SQLite = flags.SQLite
	}
	if flags.GitRev != "" {
		c.GitRev = flags.GitRev
	}
	if flags.GitDist != "" {
		c.GitDist = flags.GitDist
	}
	if flags.Debug {
		c.Debug = true
	}
	if flags.Inputs.Seasons != "" {
		c.Inputs.Seasons = flags.Inputs.Seasons
	}
	for name, dst := range c.Inputs.tables() {
		if src := flags.Inputs.tables()[name]; len(*src) > 0 {
			*dst = append([]string(nil), (*src)...)
		}
	}
	c.Storefront.override(flags.Storefront)

	// Explicit paths win; discovery only fills empty tables.
	if c.TSVRoot != "" {
		for name, dst := range c.Inputs.tables() {
			if len(*dst) == 0 {
				*dst = tsv.Discover(c.TSVRoot, patterns[name]...)
			}
		}
	}

	if c.GitRev == "" {
		c.GitRev = "HEAD^"
	}
	if c.GitDist == "" {
		c.GitDist = "dist"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if c.Storefront.Workers <= 0 {
		c.Storefront.Workers = runtime.NumCPU()
	}
}

// MissingInputsError names every required table that has no input file.
type MissingInputsError struct {
	Inputs []string
}

func (e *MissingInputsError) Error() string {
	flags := make([]string, len(e.Inputs))
	for i, in := range e.Inputs {
		flags[i] = "--" + in + " (or auto via --tsv-root)"
	}
	return "config: missing required TSV inputs: " + strings.Join(flags, ", ")
}

// Missing reports the required tables without inputs, in flag order, as
// a *MissingInputsError. It returns nil when every table has a file.
func (c *Config) Missing() error {
	var missing []string
	for _, name := range TableNames {
		if len(*c.Inputs.tables()[name]) == 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingInputsError{Inputs: missing}
}

// IsMissingInputs reports whether err is a *MissingInputsError.
func IsMissingInputs(err error) bool {
	var m *MissingInputsError
	return errors.As(err, &m)
}

// TableNames are the required tables in flag order.
var TableNames = []string{"cmpt", "plyt", "book", "cobj", "glob", "gmrw", "lvli", "chal", "cndf"}

func (in *Inputs) tables() map[string]*[]string {
	return map[string]*[]string{
		"cmpt": &in.CMPT,
		"plyt": &in.PLYT,
		"book": &in.BOOK,
		"cobj": &in.COBJ,
		"glob": &in.GLOB,
		"gmrw": &in.GMRW,
		"lvli": &in.LVLI,
		"chal": &in.CHAL,
		"cndf": &in.CNDF,
	}
}

// Paths returns every input file, seasons last when set.
func (in *Inputs) Paths() []string {
	var out []string
	for _, name := range TableNames {
		out = append(out, *in.tables()[name]...)
	}
	if in.Seasons != "" {
		out = append(out, in.Seasons)
	}
	return out
}

func (s *Storefront) override(f Storefront) {
	if f.Manifest != "" {
		s.Manifest = f.Manifest
	}
	if f.TexturesRoot != "" {
		s.TexturesRoot = f.TexturesRoot
	}
	if f.OutputDir != "" {
		s.OutputDir = f.OutputDir
	}
	if f.Report != "" {
		s.Report = f.Report
	}
	if f.MaxSize > 0 {
		s.MaxSize = f.MaxSize
	}
	if f.Workers > 0 {
		s.Workers = f.Workers
	}
}

// relativeTo resolves relative paths of a loaded file against dir.
func (c *Config) relativeTo(dir string) {
	abs := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	abs(&c.TSVRoot)
	abs(&c.OutputDir)
	abs(&c.PreviousDir)
	abs(&c.SQLite)
	abs(&c.Inputs.Seasons)
	for _, paths := range c.Inputs.tables() {
		for i := range *paths {
			abs(&(*paths)[i])
		}
	}
	abs(&c.Storefront.Manifest)
	abs(&c.Storefront.TexturesRoot)
	abs(&c.Storefront.OutputDir)
	abs(&c.Storefront.Report)
}
