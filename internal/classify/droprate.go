package classify

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"site-data-builder/internal/lookup"
	"site-data-builder/internal/tsv"
)

// FormatPercent renders pct as "5%" when it is integral (within 1e-6),
// otherwise with three decimals ("2.500%").
func FormatPercent(pct float64) string {
	if r := math.Round(pct); math.Abs(pct-r) < 1e-6 {
		return fmt.Sprintf("%d%%", int64(r))
	}
	return fmt.Sprintf("%.3f%%", pct)
}

// chanceFromNone converts a chance-none value into a drop rate.
func chanceFromNone(none float64) (string, bool) {
	pct := 100 - none
	if pct < 0 {
		return "", false
	}
	return FormatPercent(pct), true
}

// globalDropRate resolves a GLOB reference field to 100 - FLTV.
func globalDropRate(idx *lookup.Index, field string) (string, bool) {
	var row tsv.Row
	if fid := lookup.GlobalFormID(field); fid != "" {
		row = idx.Globals[fid]
	} else if edid, _, _ := strings.Cut(strings.TrimSpace(field), ":"); edid != "" {
		row = idx.GlobalsByEDID[edid]
	}
	if row == nil {
		return "", false
	}
	v, ok := row.Float("FLTV")
	if !ok {
		return "", false
	}
	return chanceFromNone(v)
}

// lootDropRate finds the loot entry for the recipe's book and derives its
// drop rate: entry global, entry curve global, list global, list curve
// global, then the entry's own chance-none.
func lootDropRate(idx *lookup.Index, cobjFormID string) (string, bool) {
	recipe := idx.Recipes[cobjFormID]
	if recipe == nil {
		return "", false
	}
	book := strings.ToUpper(recipe.Get("GNAM_FormID"))
	if !tsv.IsFormID(book) {
		return "", false
	}

	var matches []tsv.Row
	for _, r := range idx.LootLists {
		if strings.Contains(strings.ToUpper(r["LVLO_Reference"]), book) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return "", false
	}

	rank := func(r tsv.Row) (int, string) {
		if eg := r.Get("LVOG_ChanceNoneGlobal"); eg != "" {
			return 0, eg
		}
		if lg := r.Get("LVLG_ChanceNoneGlobal"); lg != "" {
			return 1, lg
		}
		return 2, ""
	}
	sort.SliceStable(matches, func(i, j int) bool {
		ri, vi := rank(matches[i])
		rj, vj := rank(matches[j])
		if ri != rj {
			return ri < rj
		}
		return vi < vj
	})
	best := matches[0]

	var candidates []string
	if v := best.Get("LVOG_ChanceNoneGlobal"); v != "" {
		candidates = append(candidates, v)
	}
	if v := best.Get("LVOC_ChanceNoneCurve"); strings.Contains(v, ":GLOB") {
		candidates = append(candidates, v)
	}
	if v := best.Get("LVLG_ChanceNoneGlobal"); v != "" {
		candidates = append(candidates, v)
	}
	if v := best.Get("LVCT_ChanceNoneCurve"); strings.Contains(v, ":GLOB") {
		candidates = append(candidates, v)
	}
	for _, field := range candidates {
		if dr, ok := globalDropRate(idx, field); ok {
			return dr, true
		}
	}

	none, ok := best.Float("LVOV_ChanceNone")
	if !ok {
		return "", false
	}
	if math.Abs(none) < 1e-9 {
		return "100%", true
	}
	return chanceFromNone(none)
}
