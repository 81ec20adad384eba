package build

import (
	"errors"
	"os"

	"go.uber.org/zap"

	"site-data-builder/internal/config"
	"site-data-builder/internal/lookup"
	"site-data-builder/internal/tsv"
)

// refByHeader marks an LVLI export listing what references each list
// rather than the list entries themselves.
const refByHeader = "ReferencedByCount"

// tables holds the merged rows of one build.
type tables struct {
	camp, player []tsv.Row
	sources      lookup.Sources
}

func loadTables(in config.Inputs, log *zap.Logger) (tables, error) {
	var t tables
	var err error

	merged := func(paths []string) []tsv.Row {
		if err != nil {
			return nil
		}
		var ts []*tsv.Table
		ts, err = tsv.LoadAll(paths)
		if err != nil {
			return nil
		}
		for _, x := range ts {
			log.Debug("loaded table", zap.String("path", x.Path), zap.Int("rows", len(x.Rows)))
		}
		return tsv.Merge(ts, "FormID")
	}

	t.camp = merged(in.CMPT)
	t.player = merged(in.PLYT)
	t.sources.Books = merged(in.BOOK)
	t.sources.Recipes = merged(in.COBJ)
	t.sources.Globals = merged(in.GLOB)
	t.sources.Rewards = merged(in.GMRW)
	t.sources.Challenges = merged(in.CHAL)
	t.sources.ConditionForms = merged(in.CNDF)
	if err != nil {
		return t, err
	}

	// LVLI exports are concatenated, not merged: definition rows repeat
	// the list FormID once per entry.
	for _, p := range in.LVLI {
		lt, err := tsv.Load(p)
		if err != nil {
			return t, err
		}
		if lt.HasHeader(refByHeader) {
			t.sources.LootRefBy = append(t.sources.LootRefBy, lt.Rows...)
		} else {
			t.sources.LootLists = append(t.sources.LootLists, lt.Rows...)
		}
	}

	if in.Seasons != "" {
		st, err := tsv.Load(in.Seasons)
		switch {
		case err == nil:
			t.sources.Seasons = st.Rows
		case errors.Is(err, os.ErrNotExist):
			log.Warn("season table not found, using generic season names", zap.String("path", in.Seasons))
		default:
			return t, err
		}
	}
	return t, nil
}
