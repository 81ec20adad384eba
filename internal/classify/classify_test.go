package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-data-builder/internal/lookup"
	"site-data-builder/internal/tsv"
)

func testIndex() *lookup.Index {
	return lookup.Build(lookup.Sources{
		Challenges: []tsv.Row{
			{"FormID": "0000C4A1", "EDID": "Challenge_Daily_Fish", "FULL": "Catch a fish", "CNAM": "Daily"},
			{"FormID": "0000C4A2", "EDID": "Challenge_Lifetime_Build", "FULL": "Build furniture", "CNAM": "Challenge"},
			{"FormID": "0000C4A3", "EDID": "Challenge_Weekly_Nameless", "FULL": "", "CNAM": ""},
		},
		ConditionForms: []tsv.Row{
			{
				"FormID": "00CD0001", "EDID": "CNDF_Fishing", "ConditionCount": "3",
				"Cond01": `HasCompletedChallenge([CHAL:0000C4A1] "Catch a fish") == 1`,
				"Cond02": `HasCompletedChallenge([CHAL:0000C4A5] "Catch ten fish") == 1`,
				"Cond03": `HasCompletedChallenge([CHAL:0000C4A1] "Catch a fish") == 1`,
			},
			{
				"FormID": "00CD0002", "EDID": "CNDF_Single", "ConditionCount": "1",
				"Cond01": `HasCompletedChallenge([CHAL:0000C4A1] "Catch a fish") == 1`,
			},
		},
		Recipes: []tsv.Row{
			{"FormID": "00AB0001", "EDID": "Meat_Recipe_Title", "GNAM_FormID": "00B00001", "GNAM_EDID": "Book_Title_Meat"},
			{"FormID": "00AB0002", "EDID": "Build_Recipe_Title", "GNAM_FormID": "00B00009", "GNAM_EDID": "Challenge_Lifetime_Build", "GNAM_FULL": "Build decorative furnishings"},
			{"FormID": "00AB0003", "EDID": "Fish_Recipe_Title", "GNAM_FormID": "00B00002", "GNAM_EDID": "Book_Title_Fish"},
		},
		Books: []tsv.Row{
			{"FormID": "00B00001", "EDID": "Book_Title_Meat", "Ref1": "00C00001:LL_Meat_Titles:LVLI"},
		},
		LootRefBy: []tsv.Row{
			{"LVLI_FormID": "00C00001", "ReferencedByCount": "1", "Ref1": "00D00001:QuestReward_MeatWeek:GMRW"},
		},
		Rewards: []tsv.Row{
			{"FormID": "00D00001", "EDID": "QuestReward_MeatWeek", "Ref1": `00E00001:MeatWeek_Quest:"Event: Meat Week":QUST`},
		},
		LootLists: []tsv.Row{
			{"FormID": "00C00001", "LVLO_Reference": "00B00001:Book_Title_Meat:BOOK", "LVOG_ChanceNoneGlobal": "00F00001:SpawnChance_Meat:GLOB", "LVOV_ChanceNone": "50"},
			{"FormID": "00C00002", "LVLO_Reference": "00B00002:Book_Title_Fish:BOOK", "LVOV_ChanceNone": "97.5"},
		},
		Globals: []tsv.Row{
			{"FormID": "00F00001", "EDID": "SpawnChance_Meat", "FLTV": "95"},
		},
		Seasons: []tsv.Row{
			{"SeasonNumber": "7", "SeasonName": "Wasteland Wonders"},
			{"SeasonNumber": "9", "SeasonName": "TBD"},
		},
	})
}

func TestClassify(t *testing.T) {
	c := New(testIndex(), Options{})

	tests := []struct {
		name     string
		kind     Kind
		conds    []string
		wantHow  string
		wantDrop string
		wantType string
	}{
		{
			name:     "no conditions",
			kind:     Camp,
			wantHow:  "Unlocked by Default",
			wantDrop: "100%",
			wantType: TypeDefault,
		},
		{
			name:     "blank conditions count as none",
			kind:     Player,
			conds:    []string{"  ", ""},
			wantHow:  "Unlocked by Default",
			wantDrop: "100%",
			wantType: TypeDefault,
		},
		{
			name:     "challenge checklist from condition form",
			kind:     Camp,
			conds:    []string{`IsTrueForConditionForm([CNDF:00CD0001] CNDF_Fishing) == 1`},
			wantHow:  "Complete the following challenges to unlock this camp title:\n- Catch a fish\n- Catch ten fish",
			wantDrop: "100%",
			wantType: TypeChallenge,
		},
		{
			name:     "player challenge checklist names the player kind",
			kind:     Player,
			conds:    []string{`IsTrueForConditionForm([CNDF:00CD0001] CNDF_Fishing) == 1`},
			wantHow:  "Complete the following challenges to unlock this player title:\n- Catch a fish\n- Catch ten fish",
			wantDrop: "100%",
			wantType: TypeChallenge,
		},
		{
			name:     "single-entry condition form is not a checklist",
			kind:     Camp,
			conds:    []string{`IsTrueForConditionForm([CNDF:00CD0002] CNDF_Single) == 1`},
			wantHow:  "Unlock condition present (unclassified).",
			wantDrop: NotApplicable,
			wantType: TypeOther,
		},
		{
			name:     "challenge with category",
			kind:     Player,
			conds:    []string{`HasCompletedChallenge([CHAL:0000C4A1] "Catch a fish") == 1`},
			wantHow:  "Complete the Daily Challenge Catch a fish",
			wantDrop: "100%",
			wantType: TypeChallenge,
		},
		{
			name:     "challenge with generic category",
			kind:     Player,
			conds:    []string{`HasCompletedChallenge([CHAL:0000C4A2]) == 1`},
			wantHow:  "Complete the Challenge Build furniture",
			wantDrop: "100%",
			wantType: TypeChallenge,
		},
		{
			name:     "challenge without a name falls back to the EDID",
			kind:     Player,
			conds:    []string{`HasCompletedChallenge([CHAL:0000C4A3]) == 1`},
			wantHow:  "Complete the Challenge Challenge_Weekly_Nameless",
			wantDrop: "100%",
			wantType: TypeChallenge,
		},
		{
			name:     "unknown challenge",
			kind:     Player,
			conds:    []string{`HasCompletedChallenge([CHAL:0BADBEEF]) == 1`},
			wantHow:  "Complete the Challenge.",
			wantDrop: "100%",
			wantType: TypeChallenge,
		},
		{
			name:     "challenge through condition form naming",
			kind:     Camp,
			conds:    []string{`IsTrueForConditionForm(Challenge_Daily_Fish_ConditionForm) == 1`},
			wantHow:  "Complete the Daily Challenge Catch a fish",
			wantDrop: "100%",
			wantType: TypeChallenge,
		},
		{
			name:     "quest completed several times",
			kind:     Player,
			conds:    []string{`GetNumTimesCompletedQuest([QUST:00123456] "Meat Week") >= 3`},
			wantHow:  `Complete the quest "Meat Week" 3 times.`,
			wantDrop: "100%",
			wantType: TypeQuest,
		},
		{
			name:     "quest count beyond int range is clamped",
			kind:     Player,
			conds:    []string{`GetNumTimesCompletedQuest([QUST:00123456] "Meat Week") >= 99999999999999999999`},
			wantHow:  `Complete the quest "Meat Week" 2147483647 times.`,
			wantDrop: "100%",
			wantType: TypeQuest,
		},
		{
			name:     "quest completed once",
			kind:     Player,
			conds:    []string{`GetNumTimesCompletedQuest([QUST:00123456] "Meat Week") >= 1`},
			wantHow:  `Complete the quest "Meat Week".`,
			wantDrop: "100%",
			wantType: TypeQuest,
		},
		{
			name:     "quest completed",
			kind:     Camp,
			conds:    []string{`GetQuestCompleted([QUST:00654321] "Wild Appalachia") == 1`},
			wantHow:  `Complete the quest "Wild Appalachia".`,
			wantDrop: "100%",
			wantType: TypeQuest,
		},
		{
			name:     "quest without a name",
			kind:     Camp,
			conds:    []string{`GetQuestCompleted([QUST:00654321]) == 1`},
			wantHow:  `Complete the quest "Unknown Quest".`,
			wantDrop: "100%",
			wantType: TypeQuest,
		},
		{
			name:     "community entitlement",
			kind:     Player,
			conds:    []string{`HasEntitlement(Community_Fasnacht2021) == 1`},
			wantHow:  "Awarded through a Bethesda community event or promotion.",
			wantDrop: NotApplicable,
			wantType: TypeCommunity,
		},
		{
			name:     "mini season",
			kind:     Player,
			conds:    []string{`HasEntitlement(SCORE_MiniSeason_2024_DarkAndStormy_ENTM_PlayerTitle) == 1`},
			wantHow:  "Claim from the Mini Season - Dark And Stormy",
			wantDrop: "100%",
			wantType: TypeMiniSeason,
		},
		{
			name:     "season with placeholder name",
			kind:     Player,
			conds:    []string{`HasEntitlement(SCORE_S9_PlayerTitle) == 1`},
			wantHow:  "Unlock via the Season 9 - Season 9 Scoreboard.",
			wantDrop: "100%",
			wantType: TypeSeason,
		},
		{
			name:     "camp framed art by entitlement name",
			kind:     Camp,
			conds:    []string{`HasEntitlement(SCORE_S7_EndOfSeasonArt_Title) == 1`},
			wantHow:  "Unlocks when you claim the Framed Art from Season 7 - Wasteland Wonders.",
			wantDrop: "100%",
			wantType: TypeSeason,
		},
		{
			name:     "camp framed art by quoted name",
			kind:     Camp,
			conds:    []string{`HasEntitlement(SCORE_S7_Reward12 "Wonders Framed Art") == 1`},
			wantHow:  "Unlocks when you claim the Framed Art from Season 7 - Wasteland Wonders.",
			wantDrop: "100%",
			wantType: TypeSeason,
		},
		{
			name:     "camp framed gameboard is a gameboard",
			kind:     Camp,
			conds:    []string{`HasEntitlement(SCORE_S7_Reward13 "Framed Art Gameboard") == 1`},
			wantHow:  "Unlocks when you claim the Gameboard from Season 7 - Wasteland Wonders.",
			wantDrop: "100%",
			wantType: TypeSeason,
		},
		{
			name:     "camp title claimed directly",
			kind:     Camp,
			conds:    []string{`HasEntitlement(SCORE_S7_CAMPTitles_Wonders) == 1`},
			wantHow:  "Unlocks when you claim this reward from Season 7 - Wasteland Wonders.",
			wantDrop: "100%",
			wantType: TypeSeason,
		},
		{
			name:     "atom shop bundle",
			kind:     Player,
			conds:    []string{`HasEntitlement(ATX_Bundle_Raider) == 1`},
			wantHow:  "Can be purchased with certain bundles from the Atom Shop.",
			wantDrop: "100%",
			wantType: TypeAtomShop,
		},
		{
			name:     "other entitlement",
			kind:     Player,
			conds:    []string{`HasEntitlement(Fallout1st_Member) == 1`},
			wantHow:  "Unlocked via account entitlement.",
			wantDrop: NotApplicable,
			wantType: TypeEntitlement,
		},
		{
			name:     "recipe resolved to event with global override",
			kind:     Camp,
			conds:    []string{`HasLearnedRecipe(Meat_Recipe_Title [COBJ:00AB0001]) == 1`},
			wantHow:  "Complete the Event: Meat Week",
			wantDrop: "5%",
			wantType: TypeEvent,
		},
		{
			name:     "recipe falls back to chance none",
			kind:     Camp,
			conds:    []string{`HasLearnedRecipe(Fish_Recipe_Title [COBJ:00AB0003]) == 1`},
			wantHow:  "Complete the Event/Activity: (unknown)",
			wantDrop: "2.500%",
			wantType: TypeEvent,
		},
		{
			name:     "recipe pointing at a challenge",
			kind:     Camp,
			conds:    []string{`HasLearnedRecipe(Build_Recipe_Title [COBJ:00AB0002]) == 1`},
			wantHow:  "Complete the Challenge Build furniture",
			wantDrop: "100%",
			wantType: TypeChallenge,
		},
		{
			name:     "unknown recipe",
			kind:     Camp,
			conds:    []string{`HasLearnedRecipe(Lost_Recipe [COBJ:00AB00FF]) == 1`},
			wantHow:  "Complete the Event/Activity: (unknown)",
			wantDrop: NotApplicable,
			wantType: TypeEvent,
		},
		{
			name:     "learned plan without recipe ref",
			kind:     Camp,
			conds:    []string{`HasLearnedRecipe(SomePlan) == 1`},
			wantHow:  "Unlocks after learning the required plan.",
			wantDrop: "100%",
			wantType: TypeLearned,
		},
		{
			name:     "nothing matches",
			kind:     Camp,
			conds:    []string{`GetLevel >= 50`},
			wantHow:  "Unlock condition present (unclassified).",
			wantDrop: NotApplicable,
			wantType: TypeOther,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(Input{Kind: tc.kind, Conditions: tc.conds})
			assert.Equal(t, tc.wantHow, got.HowToObtain)
			assert.Equal(t, tc.wantDrop, got.DropRate)
			assert.Equal(t, tc.wantType, got.UnlockType)
			assert.Nil(t, got.Diag)
		})
	}
}

func TestClassify_SeasonScoreboard(t *testing.T) {
	c := New(testIndex(), Options{})

	got := c.Classify(Input{
		Kind:       Player,
		Conditions: []string{`HasEntitlement(SCORE_S7_PlayerTitle_Wonders) == 1`},
	})

	assert.Equal(t, "Unlock via the Season 7 - Wasteland Wonders Scoreboard.", got.HowToObtain)
	assert.Equal(t, "100%", got.DropRate)
	require.NotNil(t, got.SeasonNumber)
	assert.Equal(t, 7, *got.SeasonNumber)
}

func TestClassify_AlwaysProducesText(t *testing.T) {
	c := New(nil, Options{})

	inputs := [][]string{
		nil,
		{"("},
		{"[COBJ:zzzz]"},
		{"HasEntitlement("},
		{"HasEntitlement(SCORE_MiniSeason_) == 1"},
		{"HasCompletedChallenge("},
		{`IsTrueForConditionForm([CNDF:00000000]) == 1`},
		{"GetNumTimesCompletedQuest( = 0"},
		{"\"\""},
	}
	for _, conds := range inputs {
		for _, kind := range []Kind{Camp, Player} {
			got := c.Classify(Input{Kind: kind, Conditions: conds})
			assert.NotEmpty(t, got.HowToObtain, "conds=%q", conds)
			assert.NotEmpty(t, got.DropRate, "conds=%q", conds)
			assert.NotEmpty(t, got.UnlockType, "conds=%q", conds)
		}
	}
}

func TestClassify_Diagnostics(t *testing.T) {
	c := New(testIndex(), Options{Debug: true})

	got := c.Classify(Input{
		Kind:       Camp,
		Conditions: []string{`HasLearnedRecipe(Meat_Recipe_Title [COBJ:00AB0001]) == 1`},
	})

	require.NotNil(t, got.Diag)
	assert.Equal(t, "crafting", got.Diag.Rule)
	require.NotNil(t, got.Diag.Recipe)
	assert.Equal(t, "00AB0001", got.Diag.Recipe.FormID)
	assert.Equal(t, "Meat", got.Diag.Recipe.Token)
	assert.True(t, got.Diag.Recipe.BookFound)
	assert.Equal(t, "00C00001", got.Diag.Recipe.LootPicked)
	assert.Equal(t, "00D00001", got.Diag.Recipe.RewardPicked)
	assert.True(t, got.Diag.Recipe.LabelFound)
}

func TestRules_Order(t *testing.T) {
	c := New(nil, Options{})
	assert.Equal(t, []string{
		"default", "challenge-list", "challenge", "condition-form", "quest-count",
		"quest", "entitlement", "crafting", "learned", "unclassified",
	}, c.Rules())
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5, "5%"},
		{100 - 95, "5%"},
		{100 - 97.5, "2.500%"},
		{100, "100%"},
		{0.1, "0.100%"},
		{33.3333333, "33.333%"},
		{4.9999999999, "5%"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatPercent(tc.in), "FormatPercent(%v)", tc.in)
	}
}

func TestPrettifyToken(t *testing.T) {
	assert.Equal(t, "Dark And Stormy", prettifyToken("DarkAndStormy"))
	assert.Equal(t, "Into The Fog 2", prettifyToken("Into_The_Fog_2"))
	assert.Equal(t, "Season2 Kickoff", prettifyToken("Season2Kickoff"))
}
