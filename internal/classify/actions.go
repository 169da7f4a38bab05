package classify

// SuggestedAction is a user-facing action a bubble can offer for content of
// a given category.
type SuggestedAction struct {
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

// actionTable maps each category to its actions. Declaration order is the
// order callers receive, so it must stay stable.
var actionTable = map[Category][]SuggestedAction{
	CategoryURL: {
		{Label: "Open Link", Category: CategoryURL},
		{Label: "Copy URL", Category: CategoryURL},
	},
	CategoryEmail: {
		{Label: "Compose Email", Category: CategoryEmail},
		{Label: "Add Contact", Category: CategoryEmail},
	},
	CategoryPhone: {
		{Label: "Call Number", Category: CategoryPhone},
		{Label: "Send Message", Category: CategoryPhone},
	},
	CategoryAddress: {
		{Label: "Open in Maps", Category: CategoryAddress},
	},
	CategoryJSON: {
		{Label: "Format JSON", Category: CategoryJSON},
	},
	CategoryCode: {
		{Label: "Copy as Snippet", Category: CategoryCode},
	},
	CategoryNumber: {
		{Label: "Copy Number", Category: CategoryNumber},
	},
}

// genericAction is the fallback so Actions is never empty and callers never
// branch on absence.
var genericAction = SuggestedAction{Label: "Search Text", Category: CategoryText}

// Actions returns the suggested actions for a category in deterministic
// declaration order. The result is always non-empty: categories without a
// specific action set fall back to the generic search action.
func Actions(c Category) []SuggestedAction {
	if acts, ok := actionTable[c]; ok {
		out := make([]SuggestedAction, len(acts))
		copy(out, acts)
		return out
	}
	return []SuggestedAction{genericAction}
}
