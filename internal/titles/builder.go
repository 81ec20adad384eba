package titles

import (
	"sort"
	"strconv"
	"strings"

	"site-data-builder/internal/classify"
	"site-data-builder/internal/lookup"
	"site-data-builder/internal/tsv"
)

// Column names of the title exports.
const (
	colTitle       = "ANAM - Title"
	colMaleTitle   = "ANAM - Male Title"
	colFemaleTitle = "BNAM - Female Title"
	colIsPrefix    = "PTPR - Is Prefix"
	colIsSuffix    = "PTSU - Is Suffix"
	colEditorID    = "EDID - Editor ID"
	colCondCount   = "CondCount"
)

// Build turns merged CMPT (Camp) or PLYT (Player) rows into records.
// Rows without a FormID and repeated FormIDs are skipped. The result is
// not sorted; call Sort.
func Build(kind Kind, rows []tsv.Row, idx *lookup.Index, opts classify.Options) []Record {
	if idx == nil {
		idx = lookup.Build(lookup.Sources{})
	}
	c := classify.New(idx, opts)

	seen := make(map[string]bool, len(rows))
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		fid := r.Get("FormID")
		if fid == "" || seen[strings.ToUpper(fid)] {
			continue
		}
		seen[strings.ToUpper(fid)] = true
		out = append(out, buildOne(kind, r, idx, c))
	}
	return out
}

func buildOne(kind Kind, r tsv.Row, idx *lookup.Index, c *classify.Classifier) Record {
	rec := Record{
		FormID:   r.Get("FormID"),
		IsPrefix: r.Bool(colIsPrefix),
		IsSuffix: r.Bool(colIsSuffix),
	}

	if kind == Player {
		rec.EDID = r.Get(colEditorID, "EDID")
		rec.TitleMale = r.Get(colMaleTitle)
		rec.TitleFemale = r.Get(colFemaleTitle)
		rec.Title = r.Get(colMaleTitle, colFemaleTitle)
	} else {
		rec.EDID = r.Get("EDID")
		rec.Title = r.Get(colTitle)
	}

	rec.AffixType = AffixType(rec.IsPrefix, rec.IsSuffix)
	rec.Conditions = Conditions(r)
	rec.CondCount = len(rec.Conditions)

	res := c.Classify(classify.Input{
		Kind:       kind,
		Title:      rec.Title,
		EDID:       rec.EDID,
		Conditions: rec.Conditions,
	})
	rec.HowToObtain = res.HowToObtain
	rec.DropRate = res.DropRate
	rec.UnlockType = res.UnlockType
	rec.SeasonNumber = res.SeasonNumber
	rec.Debug = res.Diag

	// Both kinds default to non-tradeable when the book table has no match.
	rec.Tradeable, _ = idx.Tradeable(rec.EDID, rec.Title)
	rec.CutContent = lookup.IsCut(rec.EDID)
	return rec
}

// Conditions returns the non-empty Cond1..CondN cells, N being CondCount.
// Zero-padded column names (Cond01) are accepted too.
func Conditions(r tsv.Row) []string {
	n := r.Int(colCondCount, 0)
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		v := r.Get("Cond"+strconv.Itoa(i), "Cond"+pad2(i))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func pad2(i int) string {
	if i < 10 {
		return "0" + strconv.Itoa(i)
	}
	return strconv.Itoa(i)
}

// Sort orders records in place: live content before cut content, then by
// display title ignoring case. FormID breaks ties so output is stable.
func Sort(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.CutContent != b.CutContent {
			return !a.CutContent
		}
		ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if ta != tb {
			return ta < tb
		}
		return a.FormID < b.FormID
	})
}

// Combined concatenates camp then player records, tagging each with its
// TitleType. The inputs are not modified.
func Combined(camp, player []Record) []Record {
	out := make([]Record, 0, len(camp)+len(player))
	for _, r := range camp {
		r.TitleType = Camp
		out = append(out, r)
	}
	for _, r := range player {
		r.TitleType = Player
		out = append(out, r)
	}
	return out
}
