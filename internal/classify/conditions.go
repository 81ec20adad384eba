package classify

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	reHasEntitlement    = regexp.MustCompile(`(?i)\bHasEntitlement\(`)
	reHasCompletedChal  = regexp.MustCompile(`(?i)\bHasCompletedChallenge\(`)
	reIsTrueCNDF        = regexp.MustCompile(`(?i)\bIsTrueForConditionForm\(`)
	reQuestCompleted    = regexp.MustCompile(`(?i)\bGetQuestCompleted\(`)
	reNumTimesCompleted = regexp.MustCompile(`(?i)\bGetNumTimesCompletedQuest\(`)

	reScoreSeason = regexp.MustCompile(`(?i)\bSCORE[_-]?S(\d+)(?:\b|_)`)
	reMiniSeason  = regexp.MustCompile(`(?i)\bSCORE_MiniSeason`)
	reAtomShop    = regexp.MustCompile(`(?i)\bATX_`)
	reCommunity   = regexp.MustCompile(`(?i)\bCommunity_`)

	reFormRef     = regexp.MustCompile(`(?i)\[([A-Z]{4}):([0-9A-F]{8})\]`)
	reQuoted      = regexp.MustCompile(`"([^"]+)"`)
	reCOBJRef     = regexp.MustCompile(`(?i)\[COBJ:[0-9A-F]{8}\]`)
	reEntArg      = regexp.MustCompile(`(?i)HasEntitlement\(\s*([^\s)]+)`)
	reCNDFArg     = regexp.MustCompile(`(?i)IsTrueForConditionForm\(\s*([^\s)]+)`)
	reRHSNumber   = regexp.MustCompile(`=\s*([0-9]+(?:\.[0-9]+)?)`)
	reCallArg     = regexp.MustCompile(`\(([^)\s]+)`)
	reLeadingYear = regexp.MustCompile(`^\d{4}_`)
	reLabelPlain  = regexp.MustCompile(`\b(Event|Activity|Bounty\s*Hunting)\s*:\s*([^\r\n|]+)`)
)

// formRef returns the FormID of the first [TYPE:XXXXXXXX] token of typ.
func formRef(cond, typ string) string {
	for _, m := range reFormRef.FindAllStringSubmatch(cond, -1) {
		if strings.EqualFold(m[1], typ) {
			return strings.ToUpper(m[2])
		}
	}
	return ""
}

// quoted returns the first quoted string in s.
func quoted(s string) string {
	if m := reQuoted.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// rhsNumber parses the number after "=" (covers "==", ">=").
func rhsNumber(cond string) (float64, bool) {
	m := reRHSNumber.FindStringSubmatch(cond)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	return v, err == nil
}

func entitlementArg(cond string) string {
	if m := reEntArg.FindStringSubmatch(cond); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// prettifyToken turns "Dark_AndStormy" into "Dark And Stormy".
func prettifyToken(tok string) string {
	tok = strings.TrimSpace(strings.ReplaceAll(tok, "_", " "))
	var b strings.Builder
	var prev rune
	for i, r := range tok {
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var placeholders = map[string]bool{
	"":            true,
	"tbd":         true,
	"todo":        true,
	"placeholder": true,
	"none":        true,
	"null":        true,
	"<none>":      true,
	"n/a":         true,
}

// isPlaceholder reports names that must not reach a sentence.
func isPlaceholder(name string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(name))]
}

func firstUsable(names ...string) string {
	for _, n := range names {
		if !isPlaceholder(n) {
			return strings.TrimSpace(n)
		}
	}
	return ""
}
