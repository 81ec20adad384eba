// Package patchlog compares two generations of a title feed and keeps the
// append-only history of those comparisons.
package patchlog

import "site-data-builder/internal/titles"

// MaxListed caps each FormID list in a Summary. Counts are never capped.
const MaxListed = 500

// Counts are the uncapped sizes behind a Summary.
type Counts struct {
	Prev    int `json:"prev"`
	Curr    int `json:"curr"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Changed int `json:"changed"`
}

// Summary is the patch log of one record set.
type Summary struct {
	GeneratedAt string   `json:"generatedAt"`
	Counts      Counts   `json:"counts"`
	Added       []string `json:"addedFormIds"`
	Removed     []string `json:"removedFormIds"`
	Changed     []string `json:"changedFormIds"`
}

// Log is the shape of titles_patchlog.json.
type Log struct {
	GeneratedAt string  `json:"generatedAt"`
	Camp        Summary `json:"camp"`
	Player      Summary `json:"player"`
}

// Diff compares prev with curr by FormID. Added follows curr order, removed
// follows prev order and changed lists records whose tracked fields differ.
// A nil prev is an empty previous generation.
func Diff(prev, curr []titles.Record, generatedAt string) Summary {
	prevIdx, prevOrder := index(prev)
	currIdx, currOrder := index(curr)

	s := Summary{
		GeneratedAt: generatedAt,
		Added:       []string{},
		Removed:     []string{},
		Changed:     []string{},
	}

	var added, removed, changed []string
	for _, id := range currOrder {
		p, ok := prevIdx[id]
		if !ok {
			added = append(added, id)
			continue
		}
		if !sameTracked(p, currIdx[id]) {
			changed = append(changed, id)
		}
	}
	for _, id := range prevOrder {
		if _, ok := currIdx[id]; !ok {
			removed = append(removed, id)
		}
	}

	s.Counts = Counts{
		Prev:    len(prevIdx),
		Curr:    len(currIdx),
		Added:   len(added),
		Removed: len(removed),
		Changed: len(changed),
	}
	s.Added = append(s.Added, capped(added)...)
	s.Removed = append(s.Removed, capped(removed)...)
	s.Changed = append(s.Changed, capped(changed)...)
	return s
}

// index keys records by FormID; a repeated FormID keeps its last record.
func index(recs []titles.Record) (map[string]titles.Record, []string) {
	m := make(map[string]titles.Record, len(recs))
	var order []string
	for _, r := range recs {
		if r.FormID == "" {
			continue
		}
		if _, ok := m[r.FormID]; !ok {
			order = append(order, r.FormID)
		}
		m[r.FormID] = r
	}
	return m, order
}

// tracked is the subset of a record whose change counts as a patch.
type tracked struct {
	EDID, Title, TitleMale, TitleFemale string
	IsPrefix, IsSuffix                  bool
	HowToObtain, DropRate               string
	Tradeable, CutContent               bool
	UnlockType                          string
}

func trackedOf(r titles.Record) tracked {
	return tracked{
		EDID:        r.EDID,
		Title:       r.Title,
		TitleMale:   r.TitleMale,
		TitleFemale: r.TitleFemale,
		IsPrefix:    r.IsPrefix,
		IsSuffix:    r.IsSuffix,
		HowToObtain: r.HowToObtain,
		DropRate:    r.DropRate,
		Tradeable:   r.Tradeable,
		CutContent:  r.CutContent,
		UnlockType:  r.UnlockType,
	}
}

func sameTracked(a, b titles.Record) bool {
	return trackedOf(a) == trackedOf(b)
}

func capped(ids []string) []string {
	if len(ids) > MaxListed {
		return ids[:MaxListed]
	}
	return ids
}
