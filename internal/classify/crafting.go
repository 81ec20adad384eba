package classify

import (
	"strings"

	"site-data-builder/internal/lookup"
	"site-data-builder/internal/tsv"
)

const unknownEvent = "Complete the Event/Activity: (unknown)"

// applyCrafting handles titles granted through a crafting recipe. The
// recipe either points at a challenge or at a book whose loot list is
// awarded by an event or activity reward.
func applyCrafting(s *state) (Result, bool) {
	trail := &RecipeTrail{Token: recipeToken(s.in.Conditions)}
	s.diag.Recipe = trail

	for _, c := range s.in.Conditions {
		if strings.Contains(c, "[COBJ:") {
			if trail.FormID = formRef(c, "COBJ"); trail.FormID != "" {
				break
			}
		}
	}
	if trail.FormID == "" {
		return result(unknownEvent, NotApplicable, TypeEvent)
	}

	how := unknownEvent
	if recipe := s.idx.Recipes[trail.FormID]; recipe != nil {
		trail.TargetEDID = recipe.Get("GNAM_EDID")
		trail.TargetName = recipe.Get("GNAM_FULL")
		trail.TargetFormID = strings.ToUpper(recipe.Get("GNAM_FormID"))

		if tsv.IsFormID(trail.TargetFormID) {
			if label := bookRewardLabel(s, trail); label != "" {
				if kind, name, ok := parseRewardLabel(label); ok {
					how = "Complete the " + kind + ": " + name
				}
			}
		}

		if strings.HasPrefix(trail.TargetEDID, "Challenge_") ||
			(trail.TargetFormID != "" && strings.Contains(trail.TargetName, "CHAL:")) {
			if row := s.idx.ChallengesByEDID[trail.TargetEDID]; row != nil {
				return challengeSentence(s, row, trail.TargetName, trail.TargetEDID)
			}
			name := firstUsable(trail.TargetName, trail.TargetEDID)
			if name == "" {
				return result("Complete the Challenge.", "100%", TypeChallenge)
			}
			return result("Complete the Challenge "+name, "100%", TypeChallenge)
		}
	}

	drop, ok := lootDropRate(s.idx, trail.FormID)
	if !ok {
		drop = NotApplicable
	}
	return result(how, drop, TypeEvent)
}

// recipeToken is the EDID prefix of the first COBJ call argument.
func recipeToken(conds []string) string {
	for _, c := range conds {
		if !strings.Contains(c, "[COBJ:") {
			continue
		}
		m := reCallArg.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		if tok, _, _ := strings.Cut(m[1], "_"); tok != "" {
			return tok
		}
	}
	return ""
}

// bookRewardLabel follows BOOK -> first LVLI ref -> LVLI referenced-by ->
// first GMRW ref -> GMRW label.
func bookRewardLabel(s *state, trail *RecipeTrail) string {
	book := s.idx.Books[trail.TargetFormID]
	if book == nil {
		return ""
	}
	trail.BookFound = true

	trail.LootIDs = lookup.RefFormIDs(book, ":LVLI")
	if len(trail.LootIDs) == 0 {
		return ""
	}
	trail.LootPicked = trail.LootIDs[0]

	refBy := s.idx.LootRefBy[trail.LootPicked]
	if refBy == nil {
		return ""
	}
	trail.LootRefByFound = true

	trail.RewardIDs = lookup.RefFormIDs(refBy, ":GMRW")
	if len(trail.RewardIDs) == 0 {
		return ""
	}
	trail.RewardPicked = trail.RewardIDs[0]

	label := s.idx.RewardLabels[trail.RewardPicked]
	trail.LabelFound = label != ""
	return label
}

// parseRewardLabel splits `"Event: Name"` into ("Event", "Name"). A quoted
// label without a kind is treated as a quest name.
func parseRewardLabel(label string) (kind, name string, ok bool) {
	text := quoted(label)
	if text == "" {
		m := reLabelPlain.FindStringSubmatch(label)
		if m == nil {
			return "", "", false
		}
		text = m[1] + ": " + strings.TrimSpace(m[2])
	}

	if k, n, found := strings.Cut(text, ":"); found {
		k, n = strings.TrimSpace(k), strings.TrimSpace(n)
		if k == "" || n == "" {
			return "", "", false
		}
		return k, n, true
	}
	if text = strings.TrimSpace(text); text == "" {
		return "", "", false
	}
	return "Quest", text, true
}
