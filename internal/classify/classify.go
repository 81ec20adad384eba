// Package classify turns a title's raw unlock conditions into a
// human-readable "how to obtain" sentence, a drop rate and an unlock type.
//
// Classification is an ordered list of rules. Each rule has a cheap match
// over the joined condition text and an apply step that may still decline,
// in which case evaluation continues with the next rule. The last rule
// always accepts, so every input gets a result.
package classify

import (
	"strings"

	"site-data-builder/internal/lookup"
)

// Kind distinguishes camp titles from player titles.
type Kind string

const (
	Camp   Kind = "camp"
	Player Kind = "player"
)

// NotApplicable is the drop rate of unlocks that are not random drops.
const NotApplicable = "N/A"

// Unlock types.
const (
	TypeDefault     = "default"
	TypeChallenge   = "challenge"
	TypeQuest       = "quest"
	TypeCommunity   = "community"
	TypeMiniSeason  = "miniseason"
	TypeSeason      = "season"
	TypeAtomShop    = "atx"
	TypeEntitlement = "entitlement"
	TypeEvent       = "event_activity"
	TypeLearned     = "learned"
	TypeOther       = "other"
)

// Input is one title's classification input.
type Input struct {
	Kind       Kind
	Title      string
	EDID       string
	Conditions []string
}

// Result is the classifier output embedded into the title record.
type Result struct {
	HowToObtain  string
	DropRate     string
	SeasonNumber *int
	UnlockType   string
	Diag         *Diagnostics
}

// Options tune a Classifier.
type Options struct {
	// Debug attaches Diagnostics to every Result.
	Debug bool
}

// Classifier applies the rule list against one lookup index.
type Classifier struct {
	idx   *lookup.Index
	opts  Options
	rules []rule
}

type rule struct {
	name  string
	match func(s *state) bool
	apply func(s *state) (Result, bool)
}

// state is the per-call scratch space shared by the rules.
type state struct {
	in     Input
	joined string
	idx    *lookup.Index
	diag   *Diagnostics
}

// New returns a Classifier over idx.
func New(idx *lookup.Index, opts Options) *Classifier {
	if idx == nil {
		idx = lookup.Build(lookup.Sources{})
	}
	return &Classifier{idx: idx, opts: opts, rules: defaultRules()}
}

// Rules returns the rule names in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.name
	}
	return names
}

func defaultRules() []rule {
	always := func(*state) bool { return true }
	return []rule{
		{"default", func(s *state) bool { return len(s.in.Conditions) == 0 }, applyDefault},
		{"challenge-list", func(s *state) bool { return strings.Contains(s.joined, "[CNDF:") }, applyChallengeList},
		{"challenge", func(s *state) bool { return reHasCompletedChal.MatchString(s.joined) }, applyChallenge},
		{"condition-form", func(s *state) bool { return reIsTrueCNDF.MatchString(s.joined) }, applyConditionForm},
		{"quest-count", func(s *state) bool { return reNumTimesCompleted.MatchString(s.joined) }, applyQuestCount},
		{"quest", func(s *state) bool { return reQuestCompleted.MatchString(s.joined) }, applyQuest},
		{"entitlement", func(s *state) bool { return reHasEntitlement.MatchString(s.joined) }, applyEntitlement},
		{"crafting", func(s *state) bool { return reCOBJRef.MatchString(s.joined) }, applyCrafting},
		{"learned", func(s *state) bool { return strings.Contains(s.joined, "HasLearnedRecipe(") }, applyLearned},
		{"unclassified", always, applyUnclassified},
	}
}

// Classify runs the rules in order and returns the first accepted result.
func (c *Classifier) Classify(in Input) Result {
	conds := make([]string, 0, len(in.Conditions))
	for _, cond := range in.Conditions {
		if cond = strings.TrimSpace(cond); cond != "" {
			conds = append(conds, cond)
		}
	}
	in.Conditions = conds

	s := &state{
		in:     in,
		joined: strings.Join(conds, " "),
		idx:    c.idx,
		diag:   &Diagnostics{},
	}

	for _, r := range c.rules {
		if !r.match(s) {
			continue
		}
		res, ok := r.apply(s)
		if !ok {
			continue
		}
		s.diag.Rule = r.name
		return c.finish(res, s)
	}

	// Unreachable while the last rule always accepts.
	res, _ := applyUnclassified(s)
	s.diag.Rule = "unclassified"
	return c.finish(res, s)
}

func (c *Classifier) finish(res Result, s *state) Result {
	if res.HowToObtain == "" {
		res.HowToObtain = unclassifiedHow
	}
	if res.DropRate == "" {
		res.DropRate = NotApplicable
	}
	if res.UnlockType == "" {
		res.UnlockType = TypeOther
	}
	if c.opts.Debug {
		res.Diag = s.diag
	}
	return res
}

const unclassifiedHow = "Unlock condition present (unclassified)."

func result(how, drop, typ string) (Result, bool) {
	return Result{HowToObtain: how, DropRate: drop, UnlockType: typ}, true
}

func applyDefault(*state) (Result, bool) {
	return result("Unlocked by Default", "100%", TypeDefault)
}

func applyLearned(*state) (Result, bool) {
	return result("Unlocks after learning the required plan.", "100%", TypeLearned)
}

func applyUnclassified(*state) (Result, bool) {
	return result(unclassifiedHow, NotApplicable, TypeOther)
}
