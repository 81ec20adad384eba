// Package build runs one titles build: load the exports, classify every
// title, write the feeds and the patch log.
package build

import (
	"context"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"site-data-builder/internal/classify"
	"site-data-builder/internal/config"
	"site-data-builder/internal/feed"
	"site-data-builder/internal/lookup"
	"site-data-builder/internal/patchlog"
	"site-data-builder/internal/store"
	"site-data-builder/internal/titles"
)

// PreviousFunc returns the records of the previous generation of the feed
// file name. Errors mean "no previous generation".
type PreviousFunc func(ctx context.Context, file string) ([]titles.Record, error)

// Options carry what a build needs besides the config.
type Options struct {
	Log *zap.Logger
	Now func() time.Time
	// Previous overrides the previous-generation lookup derived from the
	// config (previous_dir, else git).
	Previous PreviousFunc
}

// Result summarizes a finished build.
type Result struct {
	Camp, Player []titles.Record
	Patchlog     patchlog.Log
	Files        []string
}

// Run builds every titles feed into cfg.OutputDir. cfg must be resolved.
func Run(ctx context.Context, cfg config.Config, opts Options) (Result, error) {
	var res Result
	if err := cfg.Missing(); err != nil {
		return res, err
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	previous := opts.Previous
	if previous == nil {
		previous = defaultPrevious(cfg)
	}

	t, err := loadTables(cfg.Inputs, log)
	if err != nil {
		return res, err
	}
	idx := lookup.Build(t.sources)
	log.Info("indexes built",
		zap.Int("challenges", len(idx.ChallengesByID)),
		zap.Int("condition_forms", len(idx.ConditionForms)),
		zap.Int("recipes", len(idx.Recipes)),
		zap.Int("loot_lists", len(idx.LootLists)),
		zap.Int("rewards", len(idx.RewardLabels)),
		zap.Int("seasons", len(idx.Seasons)),
	)

	copts := classify.Options{Debug: cfg.Debug}
	res.Camp = titles.Build(titles.Camp, t.camp, idx, copts)
	res.Player = titles.Build(titles.Player, t.player, idx, copts)
	titles.Sort(res.Camp)
	titles.Sort(res.Player)
	logUnclassified(log, titles.Camp, res.Camp)
	logUnclassified(log, titles.Player, res.Player)

	ts := feed.Timestamp(now())
	write := func(name string, v any) error {
		p := filepath.Join(cfg.OutputDir, name)
		if err := feed.WriteJSON(p, v); err != nil {
			return err
		}
		res.Files = append(res.Files, p)
		log.Debug("wrote feed", zap.String("path", p))
		return nil
	}

	if err := write(feed.FileCamp, titles.Document{GeneratedAt: ts, Type: titles.TypeCamp, Items: res.Camp}); err != nil {
		return res, err
	}
	if err := write(feed.FilePlayer, titles.Document{GeneratedAt: ts, Type: titles.TypePlayer, Items: res.Player}); err != nil {
		return res, err
	}
	combined := titles.Document{GeneratedAt: ts, Type: titles.TypeCombined, Items: titles.Combined(res.Camp, res.Player)}
	if err := write(feed.FileCombined, combined); err != nil {
		return res, err
	}

	prevCamp := loadPrevious(ctx, previous, feed.FileCamp, log)
	prevPlayer := loadPrevious(ctx, previous, feed.FilePlayer, log)
	res.Patchlog = patchlog.Log{
		GeneratedAt: ts,
		Camp:        patchlog.Diff(prevCamp, res.Camp, ts),
		Player:      patchlog.Diff(prevPlayer, res.Player, ts),
	}
	if err := write(feed.FilePatchlog, res.Patchlog); err != nil {
		return res, err
	}

	var seasons *string
	if cfg.Inputs.Seasons != "" {
		s := filepath.Base(cfg.Inputs.Seasons)
		seasons = &s
	}
	man := feed.NewManifest(ts, len(res.Camp), len(res.Player), feed.Sources{
		CMPT:    feed.BaseNames(cfg.Inputs.CMPT),
		PLYT:    feed.BaseNames(cfg.Inputs.PLYT),
		BOOK:    feed.BaseNames(cfg.Inputs.BOOK),
		COBJ:    feed.BaseNames(cfg.Inputs.COBJ),
		GLOB:    feed.BaseNames(cfg.Inputs.GLOB),
		GMRW:    feed.BaseNames(cfg.Inputs.GMRW),
		LVLI:    feed.BaseNames(cfg.Inputs.LVLI),
		CHAL:    feed.BaseNames(cfg.Inputs.CHAL),
		CNDF:    feed.BaseNames(cfg.Inputs.CNDF),
		Seasons: seasons,
	})
	if err := write(feed.FileManifest, man); err != nil {
		return res, err
	}

	if cfg.SQLite != "" {
		if err := export(ctx, cfg.SQLite, res); err != nil {
			return res, err
		}
		log.Info("exported titles to sqlite", zap.String("path", cfg.SQLite))
	}

	log.Info("titles built",
		zap.Int("camp", len(res.Camp)),
		zap.Int("player", len(res.Player)),
		zap.Int("camp_changed", res.Patchlog.Camp.Counts.Changed),
		zap.Int("player_changed", res.Patchlog.Player.Counts.Changed),
	)
	return res, nil
}

func defaultPrevious(cfg config.Config) PreviousFunc {
	if cfg.PreviousDir != "" {
		return func(_ context.Context, file string) ([]titles.Record, error) {
			return patchlog.FromFile(filepath.Join(cfg.PreviousDir, file))
		}
	}
	return func(ctx context.Context, file string) ([]titles.Record, error) {
		return patchlog.FromGit(ctx, cfg.GitRev, path.Join(filepath.ToSlash(cfg.GitDist), file))
	}
}

func loadPrevious(ctx context.Context, previous PreviousFunc, file string, log *zap.Logger) []titles.Record {
	recs, err := previous(ctx, file)
	if err != nil {
		log.Debug("no previous generation, diffing against empty", zap.String("file", file), zap.Error(err))
		return nil
	}
	return recs
}

func logUnclassified(log *zap.Logger, kind titles.Kind, recs []titles.Record) {
	n := 0
	for _, r := range recs {
		if r.UnlockType == classify.TypeOther {
			n++
		}
	}
	if n > 0 {
		log.Warn("titles with unclassified conditions", zap.String("kind", string(kind)), zap.Int("count", n))
	}
}

func export(ctx context.Context, dbPath string, res Result) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.ReplaceTitles(ctx, titles.Camp, res.Camp, res.Patchlog.Camp); err != nil {
		return err
	}
	return s.ReplaceTitles(ctx, titles.Player, res.Player, res.Patchlog.Player)
}
