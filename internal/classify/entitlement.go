package classify

import (
	"fmt"
	"strconv"
	"strings"
)

// applyEntitlement sub-classifies HasEntitlement conditions in priority
// order: community, mini season, scoreboard season, Atom Shop, generic.
func applyEntitlement(s *state) (Result, bool) {
	var ents []string
	for _, c := range s.in.Conditions {
		if !strings.Contains(c, "HasEntitlement") {
			continue
		}
		if e := entitlementArg(c); e != "" {
			ents = append(ents, e)
		}
	}
	s.diag.Entitlements = ents

	for _, e := range ents {
		if reCommunity.MatchString(e) {
			return result("Awarded through a Bethesda community event or promotion.", NotApplicable, TypeCommunity)
		}
	}

	for _, e := range ents {
		if reMiniSeason.MatchString(e) {
			return miniSeason(s, e)
		}
	}

	for _, e := range ents {
		m := reScoreSeason.FindStringSubmatch(e)
		if m == nil {
			continue
		}
		if n, _ := strconv.Atoi(m[1]); n > 0 {
			return season(s, n, e)
		}
		break
	}

	for _, e := range ents {
		if reAtomShop.MatchString(e) {
			return result("Can be purchased with certain bundles from the Atom Shop.", "100%", TypeAtomShop)
		}
	}

	return result("Unlocked via account entitlement.", NotApplicable, TypeEntitlement)
}

// miniSeason strips SCORE_MiniSeason_, the _ENTM_ suffix and a leading
// year from the entitlement, then prettifies what is left.
func miniSeason(s *state, ent string) (Result, bool) {
	tok := ent
	const marker = "score_miniseason_"
	if i := strings.Index(strings.ToLower(tok), marker); i >= 0 {
		tok = tok[i+len(marker):]
	}
	if i := strings.Index(strings.ToUpper(tok), "_ENTM_"); i >= 0 {
		tok = tok[:i]
	}
	tok = reLeadingYear.ReplaceAllString(tok, "")
	name := firstUsable(prettifyToken(tok))
	s.diag.Season = &SeasonRef{Name: name, Raw: tok}

	if name == "" {
		return result("Claim from the Mini Season.", "100%", TypeMiniSeason)
	}
	return result("Claim from the Mini Season - "+name, "100%", TypeMiniSeason)
}

// season renders scoreboard unlocks. Player titles always come from the
// scoreboard; camp titles distinguish framed art, a direct title claim and
// gameboard/corkboard items.
func season(s *state, n int, ent string) (Result, bool) {
	name := firstUsable(s.idx.SeasonName(n), fmt.Sprintf("Season %d", n))
	s.diag.Season = &SeasonRef{Number: n, Name: name, Raw: ent}

	var how string
	upper := strings.ToUpper(ent)
	switch {
	case s.in.Kind == Player:
		how = fmt.Sprintf("Unlock via the Season %d - %s Scoreboard.", n, name)
	case isFramedArt(s, ent, upper):
		how = fmt.Sprintf("Unlocks when you claim the Framed Art from Season %d - %s.", n, name)
	case strings.Contains(upper, "CAMPTITLES") && !strings.Contains(upper, "GAMEBOARD") && !strings.Contains(upper, "CORKBOARD"):
		how = fmt.Sprintf("Unlocks when you claim this reward from Season %d - %s.", n, name)
	default:
		how = fmt.Sprintf("Unlocks when you claim the Gameboard from Season %d - %s.", n, name)
	}

	res, _ := result(how, "100%", TypeSeason)
	res.SeasonNumber = &n
	return res, true
}

// isFramedArt: an EndOfSeasonArt entitlement, or a quoted reward name that
// says "framed art" and is not a gameboard or corkboard.
func isFramedArt(s *state, ent, upper string) bool {
	if strings.Contains(upper, "ENDOFSEASONART") {
		return true
	}
	for _, c := range s.in.Conditions {
		if !strings.Contains(c, "HasEntitlement") || !strings.Contains(c, ent) {
			continue
		}
		q := strings.ToLower(quoted(c))
		if q == "" {
			continue
		}
		return strings.Contains(q, "framed art") && !strings.Contains(q, "gameboard") && !strings.Contains(q, "corkboard")
	}
	return false
}
