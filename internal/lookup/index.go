// Package lookup builds the read-only indexes the classifier joins against.
package lookup

import (
	"strconv"
	"strings"

	"site-data-builder/internal/tsv"
)

// Sources holds the merged rows of every auxiliary table.
type Sources struct {
	Challenges     []tsv.Row // CHAL
	ConditionForms []tsv.Row // CNDF
	Recipes        []tsv.Row // COBJ
	Globals        []tsv.Row // GLOB
	Rewards        []tsv.Row // GMRW
	Books          []tsv.Row // BOOK
	LootLists      []tsv.Row // LVLI definitions
	LootRefBy      []tsv.Row // LVLI referenced-by exports
	Seasons        []tsv.Row // optional season names
}

// Index is built once per run and only read afterwards.
type Index struct {
	ChallengesByID   map[string]tsv.Row
	ChallengesByEDID map[string]tsv.Row
	ConditionForms   map[string]tsv.Row
	Recipes          map[string]tsv.Row
	Globals          map[string]tsv.Row
	GlobalsByEDID    map[string]tsv.Row
	Books            map[string]tsv.Row
	LootLists        []tsv.Row
	LootRefBy        map[string]tsv.Row
	RewardLabels     map[string]string // GMRW FormID -> quoted label
	Seasons          map[int]string

	tradeable map[string]bool
}

// Build indexes every table in src.
func Build(src Sources) *Index {
	idx := &Index{
		ChallengesByID:   make(map[string]tsv.Row),
		ChallengesByEDID: make(map[string]tsv.Row),
		ConditionForms:   byFormID(src.ConditionForms),
		Recipes:          byFormID(src.Recipes),
		Globals:          byFormID(src.Globals),
		GlobalsByEDID:    make(map[string]tsv.Row),
		Books:            byFormID(src.Books),
		LootLists:        src.LootLists,
		LootRefBy:        make(map[string]tsv.Row),
		RewardLabels:     make(map[string]string),
		Seasons:          seasonNames(src.Seasons),
		tradeable:        tradeableMap(src.Books),
	}

	for _, r := range src.Challenges {
		if fid := r.FormID(); fid != "" {
			idx.ChallengesByID[fid] = r
		}
		if edid := r.EDID(); edid != "" {
			idx.ChallengesByEDID[edid] = r
		}
	}

	for _, r := range src.Globals {
		if edid := r.EDID(); edid != "" {
			idx.GlobalsByEDID[edid] = r
		}
	}

	for _, r := range src.LootRefBy {
		fid := strings.ToUpper(r.Get("LVLI_FormID", "FormID"))
		if fid == "" {
			continue
		}
		if _, ok := idx.LootRefBy[fid]; !ok {
			idx.LootRefBy[fid] = r
		}
	}

	for _, r := range src.Rewards {
		if IsCut(r.EDID()) {
			continue
		}
		fid := r.FormID()
		if label := RewardLabel(r); fid != "" && label != "" {
			idx.RewardLabels[fid] = label
		}
	}

	return idx
}

// Tradeable looks keys up (normalized) in the trade-ability map. The first
// key present wins; found is false when none is.
func (idx *Index) Tradeable(keys ...string) (tradeable, found bool) {
	for _, k := range keys {
		nk := NormalizeKey(k)
		if nk == "" {
			continue
		}
		if v, ok := idx.tradeable[nk]; ok {
			return v, true
		}
	}
	return false, false
}

// SeasonName returns the display name for season n, or "" when unknown.
func (idx *Index) SeasonName(n int) string {
	return idx.Seasons[n]
}

func byFormID(rows []tsv.Row) map[string]tsv.Row {
	m := make(map[string]tsv.Row, len(rows))
	for _, r := range rows {
		if fid := r.FormID(); fid != "" {
			m[fid] = r
		}
	}
	return m
}

// tradeableMap marks a book non-tradeable when any of its cells carries the
// NonPlayerTradeable keyword.
func tradeableMap(books []tsv.Row) map[string]bool {
	m := make(map[string]bool)
	for _, r := range books {
		blob := strings.ToLower(r.Text(nil))
		ok := !strings.Contains(blob, "nonplayertradeable")
		if k := NormalizeKey(r.EDID()); k != "" {
			m[k] = ok
		}
		if k := NormalizeKey(r.Get("FULL")); k != "" {
			m[k] = ok
		}
	}
	return m
}

func seasonNames(rows []tsv.Row) map[int]string {
	m := make(map[int]string)
	for _, r := range rows {
		num := r.Get("SeasonNumber", "Season", "Number", "SeasonID")
		num = strings.TrimPrefix(strings.ToUpper(num), "S")
		name := r.Get("SeasonName", "Name", "ScoreboardName")
		n, err := strconv.Atoi(num)
		if err != nil || n == 0 || name == "" {
			continue
		}
		m[n] = name
	}
	return m
}
