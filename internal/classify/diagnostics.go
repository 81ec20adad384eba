package classify

// Diagnostics records how a result was reached. It is only attached to a
// Result when Options.Debug is set.
type Diagnostics struct {
	Rule          string          `json:"rule"`
	ConditionForm *ConditionTrail `json:"conditionForm,omitempty"`
	Challenge     *ChallengeRef   `json:"challenge,omitempty"`
	Entitlements  []string        `json:"entitlementEdids,omitempty"`
	Season        *SeasonRef      `json:"season,omitempty"`
	Recipe        *RecipeTrail    `json:"recipe,omitempty"`
}

// ConditionTrail is the expanded CNDF record.
type ConditionTrail struct {
	FormID     string   `json:"formId"`
	EDID       string   `json:"edid,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
	Refs       []string `json:"refs,omitempty"`
}

// ChallengeRef is the resolved CHAL record.
type ChallengeRef struct {
	FormID   string `json:"formId,omitempty"`
	EDID     string `json:"edid,omitempty"`
	Category string `json:"category,omitempty"`
	Name     string `json:"name,omitempty"`
}

// SeasonRef describes a season or mini-season entitlement.
type SeasonRef struct {
	Number int    `json:"number,omitempty"`
	Name   string `json:"name,omitempty"`
	Raw    string `json:"raw,omitempty"`
}

// RecipeTrail follows COBJ -> BOOK -> LVLI -> GMRW.
type RecipeTrail struct {
	FormID         string   `json:"formId,omitempty"`
	Token          string   `json:"token,omitempty"`
	TargetEDID     string   `json:"gnamEdid,omitempty"`
	TargetName     string   `json:"gnamFull,omitempty"`
	TargetFormID   string   `json:"gnamFormId,omitempty"`
	BookFound      bool     `json:"bookFound"`
	LootIDs        []string `json:"lvliIds,omitempty"`
	LootPicked     string   `json:"lvliPicked,omitempty"`
	LootRefByFound bool     `json:"lvliRefByFound"`
	RewardIDs      []string `json:"gmrwIds,omitempty"`
	RewardPicked   string   `json:"gmrwPicked,omitempty"`
	LabelFound     bool     `json:"gmrwLabelFound"`
}
