package lookup

import (
	"regexp"
	"strings"
)

// CutPrefixes mark removed or unused records by EDID prefix.
var CutPrefixes = []string{"DEL", "POST", "CUT", "ZZZ", "ZZZZ"}

var (
	reSpaces   = regexp.MustCompile(`\s+`)
	reNonAlnum = regexp.MustCompile(`[^a-z0-9 ]+`)
)

// NormalizeKey lower-cases s, collapses whitespace and strips everything
// that is not a letter, digit or space.
func NormalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = reSpaces.ReplaceAllString(s, " ")
	s = reNonAlnum.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// IsCut reports whether edid starts with a cut-content prefix (any case).
func IsCut(edid string) bool {
	e := strings.ToUpper(strings.TrimSpace(edid))
	for _, p := range CutPrefixes {
		if strings.HasPrefix(e, p) {
			return true
		}
	}
	return false
}
