package lookup

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"site-data-builder/internal/tsv"
)

var (
	reRefKey     = regexp.MustCompile(`^Ref(\d+)$`)
	reRefFormID  = regexp.MustCompile(`^([0-9A-Fa-f]{8}):`)
	reEventLabel = regexp.MustCompile(`(?i)"((Event|Activity|Bounty\s*Hunting)\s*:\s*[^"]+)"`)
	reQuotedAny  = regexp.MustCompile(`"([^"]+)"`)
)

// RefKeys returns the row's Ref* columns in numeric order (Ref1, Ref2, ...
// or Ref01, Ref02, ...). Non-numeric Ref columns sort last by name.
func RefKeys(r tsv.Row) []string {
	var keys []string
	for k := range r {
		if strings.HasPrefix(k, "Ref") {
			keys = append(keys, k)
		}
	}
	num := func(k string) int {
		m := reRefKey.FindStringSubmatch(k)
		if m == nil {
			return 1 << 30
		}
		n, _ := strconv.Atoi(m[1])
		return n
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, nj := num(keys[i]), num(keys[j])
		if ni != nj {
			return ni < nj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// RefFormIDs returns the leading FormIDs of Ref cells ending in suffix
// (e.g. ":LVLI"), in reference order.
func RefFormIDs(r tsv.Row, suffix string) []string {
	var out []string
	for _, k := range RefKeys(r) {
		s := strings.TrimSpace(r[k])
		if s == "" || !strings.HasSuffix(s, suffix) {
			continue
		}
		if m := reRefFormID.FindStringSubmatch(s); m != nil {
			out = append(out, strings.ToUpper(m[1]))
		}
	}
	return out
}

// RewardLabel scans a GMRW row's Ref cells in order for a quoted
// "Event:"/"Activity:"/"Bounty Hunting:" label. A QUST ref with a quoted
// name is accepted as fallback unless its EDID is cut content.
func RewardLabel(r tsv.Row) string {
	for _, k := range RefKeys(r) {
		s := strings.TrimSpace(r[k])
		if s == "" {
			continue
		}
		if m := reEventLabel.FindString(s); m != "" {
			return strings.TrimSpace(m)
		}
		if !strings.HasSuffix(s, ":QUST") {
			continue
		}
		// FormID:EDID:"FULL":QUST
		parts := strings.SplitN(s, ":", 4)
		if len(parts) >= 2 && IsCut(strings.TrimSpace(parts[1])) {
			continue
		}
		if m := reQuotedAny.FindStringSubmatch(s); m != nil {
			return `"` + strings.TrimSpace(m[1]) + `"`
		}
	}
	return ""
}

// GlobalFormID extracts the FormID from a field like
// "0089EA90:SpawnChance_Cnone_ActivityCampTitle:GLOB".
func GlobalFormID(field string) string {
	m := reRefFormID.FindStringSubmatch(strings.TrimSpace(field))
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}
