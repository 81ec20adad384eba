// Package titles builds camp and player title records from the CMPT and
// PLYT exports.
package titles

import "site-data-builder/internal/classify"

// Kind of a title record set.
type Kind = classify.Kind

const (
	Camp   = classify.Camp
	Player = classify.Player
)

// Document types.
const (
	TypeCamp     = "camp_titles"
	TypePlayer   = "player_titles"
	TypeCombined = "titles_combined"
)

// Record is one title as written to the feeds. Camp records leave
// TitleMale and TitleFemale empty.
type Record struct {
	FormID       string                `json:"formId"`
	EDID         string                `json:"edid"`
	Title        string                `json:"title"`
	TitleMale    string                `json:"titleMale,omitempty"`
	TitleFemale  string                `json:"titleFemale,omitempty"`
	IsPrefix     bool                  `json:"isPrefix"`
	IsSuffix     bool                  `json:"isSuffix"`
	AffixType    string                `json:"affixType"`
	Conditions   []string              `json:"conditions"`
	CondCount    int                   `json:"condCount"`
	HowToObtain  string                `json:"howToObtain"`
	DropRate     string                `json:"dropRate"`
	Tradeable    bool                  `json:"tradeable"`
	UnlockType   string                `json:"unlockType"`
	SeasonNumber *int                  `json:"seasonNumber"`
	CutContent   bool                  `json:"cutContent"`
	Debug        *classify.Diagnostics `json:"debug,omitempty"`
	TitleType    Kind                  `json:"titleType,omitempty"`
}

// Document is the top-level shape of titles_camp.json, titles_player.json
// and titles_data.json.
type Document struct {
	GeneratedAt string   `json:"generatedAt"`
	Type        string   `json:"type"`
	Items       []Record `json:"items"`
}

// AffixType renders the prefix/suffix flags.
func AffixType(prefix, suffix bool) string {
	switch {
	case prefix && suffix:
		return "Prefix/Suffix"
	case prefix:
		return "Prefix"
	case suffix:
		return "Suffix"
	}
	return "-"
}
