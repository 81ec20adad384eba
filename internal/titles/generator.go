package titles

import (
	"regexp"
	"strings"

	"site-data-builder/internal/tsv"
)

// GeneratorItem is one prefix or suffix offered by the title generator page.
type GeneratorItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// GeneratorMeta describes a generator feed.
type GeneratorMeta struct {
	Type        Kind   `json:"type"`
	Updated     string `json:"updated"`
	PrefixCount int    `json:"prefixCount"`
	SuffixCount int    `json:"suffixCount"`
}

// Generator is the payload of titles_{camp,player}_generator.json.
type Generator struct {
	Meta     GeneratorMeta   `json:"meta"`
	Prefixes []GeneratorItem `json:"prefixes"`
	Suffixes []GeneratorItem `json:"suffixes"`
}

// The generator drops anything that looks removed, including markers in
// the middle of an EDID, so it is broader than lookup.IsCut.
var reGeneratorCut = regexp.MustCompile(`(?i)\bCUT\b|CUT_|_CUT|\bPOST\b|POST_|_POST|\bDEL\b|DEL_|_DEL|ZZZZ|ZZZ`)

// generatorColumns names the columns of one PLYT/CMPT export layout.
type generatorColumns struct {
	formID, edid, male, female, prefix, suffix string
}

var (
	campColumns      = generatorColumns{"FormID", "EDID", colTitle, "", colIsPrefix, colIsSuffix}
	playerColumns    = generatorColumns{"FormID", colEditorID, colMaleTitle, colFemaleTitle, colIsPrefix, colIsSuffix}
	legacyPlayerCols = generatorColumns{"", "EditorID", "MaleTitle", "FemaleTitle", "IsPrefix", "IsSuffix"}
)

// BuildGenerator extracts the prefix and suffix lists of one title export.
// Player exports in the older EditorID/MaleTitle layout are detected by
// their headers. updated is the YYYY-MM-DD stamp for the meta block.
func BuildGenerator(kind Kind, t *tsv.Table, updated string) Generator {
	cols := campColumns
	if kind == Player {
		cols = playerColumns
		if !t.HasHeader(colEditorID) {
			cols = legacyPlayerCols
		}
	}

	g := Generator{
		Meta:     GeneratorMeta{Type: kind, Updated: updated},
		Prefixes: []GeneratorItem{},
		Suffixes: []GeneratorItem{},
	}
	seenPre := make(map[GeneratorItem]bool)
	seenSuf := make(map[GeneratorItem]bool)

	for _, r := range t.Rows {
		edid := r.Get(cols.edid)
		text := r.Get(cols.male, cols.female)
		if text == "" || reGeneratorCut.MatchString(edid+" "+text) {
			continue
		}
		id := edid
		if cols.formID != "" {
			id = r.Get(cols.formID, cols.edid)
		}
		it := GeneratorItem{ID: id, Text: text}

		if truthy(r[cols.prefix]) && !seenPre[it] {
			seenPre[it] = true
			g.Prefixes = append(g.Prefixes, it)
		}
		if truthy(r[cols.suffix]) && !seenSuf[it] {
			seenSuf[it] = true
			g.Suffixes = append(g.Suffixes, it)
		}
	}

	g.Meta.PrefixCount = len(g.Prefixes)
	g.Meta.SuffixCount = len(g.Suffixes)
	return g
}

// truthy is looser than tsv.Row.Bool: the generator exports also use yes/y.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}
