package classify

import (
	"fmt"
	"math"
	"strings"

	"site-data-builder/internal/tsv"
)

const maxFormConditions = 25

// applyChallengeList expands the first CNDF reference. Two or more distinct
// completed-challenge names render as a checklist; anything else declines.
func applyChallengeList(s *state) (Result, bool) {
	var fid string
	for _, c := range s.in.Conditions {
		if fid = formRef(c, "CNDF"); fid != "" {
			break
		}
	}
	if fid == "" {
		return Result{}, false
	}

	trail := &ConditionTrail{FormID: fid}
	s.diag.ConditionForm = trail
	row := s.idx.ConditionForms[fid]
	if row == nil {
		return Result{}, false
	}
	trail.EDID = row.EDID()
	trail.Conditions = numbered(row, "ConditionCount", "Cond")
	trail.Refs = numbered(row, "ReferencedByCount", "Ref")

	var names []string
	seen := make(map[string]bool)
	for _, c := range trail.Conditions {
		if !strings.Contains(c, "HasCompletedChallenge") {
			continue
		}
		n := quoted(c)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	if len(names) < 2 {
		return Result{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Complete the following challenges to unlock this %s title:", s.in.Kind)
	for _, n := range names {
		b.WriteString("\n- ")
		b.WriteString(n)
	}
	return result(b.String(), "100%", TypeChallenge)
}

// numbered reads Prefix01..PrefixNN bounded by the count column.
func numbered(row tsv.Row, countCol, prefix string) []string {
	n := min(row.Int(countCol, 0), maxFormConditions)
	var out []string
	for i := 1; i <= n; i++ {
		if v := row.Get(fmt.Sprintf("%s%02d", prefix, i), fmt.Sprintf("%s%d", prefix, i)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// applyChallenge resolves HasCompletedChallenge by CHAL FormID. The last
// CHAL reference on a matching line wins.
func applyChallenge(s *state) (Result, bool) {
	var fid string
	for _, c := range s.in.Conditions {
		if !strings.Contains(c, "HasCompletedChallenge") {
			continue
		}
		if f := formRef(c, "CHAL"); f != "" {
			fid = f
		}
	}
	if row := s.idx.ChallengesByID[fid]; fid != "" && row != nil {
		return challengeSentence(s, row)
	}
	return result("Complete the Challenge.", "100%", TypeChallenge)
}

// applyConditionForm handles IsTrueForConditionForm(<CHAL EDID>_ConditionForm).
// Other condition forms fall through to later rules.
func applyConditionForm(s *state) (Result, bool) {
	for _, c := range s.in.Conditions {
		if !strings.Contains(c, "IsTrueForConditionForm") {
			continue
		}
		m := reCNDFArg.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		edid, ok := strings.CutSuffix(strings.TrimSpace(m[1]), "_ConditionForm")
		if !ok {
			continue
		}
		if row := s.idx.ChallengesByEDID[edid]; row != nil {
			return challengeSentence(s, row)
		}
	}
	return Result{}, false
}

// challengeSentence renders "Complete the {CNAM} Challenge {FULL}",
// dropping the category when it is the generic "Challenge". The name falls
// back to fallbacks, then to the challenge EDID.
func challengeSentence(s *state, row tsv.Row, fallbacks ...string) (Result, bool) {
	edid := row.EDID()
	names := append([]string{row.Get("FULL")}, fallbacks...)
	name := firstUsable(append(names, edid)...)
	category := firstUsable(row.Get("CNAM"))

	s.diag.Challenge = &ChallengeRef{
		FormID:   row.FormID(),
		EDID:     edid,
		Category: category,
		Name:     name,
	}

	switch {
	case name == "":
		return result("Complete the Challenge.", "100%", TypeChallenge)
	case category == "" || strings.EqualFold(category, "challenge"):
		return result("Complete the Challenge "+name, "100%", TypeChallenge)
	default:
		return result(fmt.Sprintf("Complete the %s Challenge %s", category, name), "100%", TypeChallenge)
	}
}

// maxQuestTimes bounds a parsed completion count before it becomes an int.
const maxQuestTimes = math.MaxInt32

func applyQuestCount(s *state) (Result, bool) {
	for _, c := range s.in.Conditions {
		if !strings.Contains(c, "GetNumTimesCompletedQuest") {
			continue
		}
		q := firstUsable(quoted(c), "Unknown Quest")
		n, ok := rhsNumber(c)
		if times := int(math.Round(min(n, maxQuestTimes))); ok && times > 1 {
			return result(fmt.Sprintf(`Complete the quest "%s" %d times.`, q, times), "100%", TypeQuest)
		}
		return result(fmt.Sprintf(`Complete the quest "%s".`, q), "100%", TypeQuest)
	}
	return Result{}, false
}

func applyQuest(s *state) (Result, bool) {
	q := firstUsable(quoted(s.joined), "Unknown Quest")
	return result(fmt.Sprintf(`Complete the quest "%s".`, q), "100%", TypeQuest)
}
