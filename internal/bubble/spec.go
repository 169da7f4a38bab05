package bubble

import "github.com/avelius/halo/internal/classify"

// TypeID identifies a bubble type and keys its policy record.
type TypeID string

const (
	TypeTextPaste     TypeID = "text_paste"
	TypeToolbelt      TypeID = "toolbelt"
	TypePinned        TypeID = "pinned"
	TypeSystem        TypeID = "system"
	TypeQuickAction   TypeID = "quick_action"
	TypeAccumulator   TypeID = "accumulator"
	TypeVoice         TypeID = "voice"
	TypeCollaboration TypeID = "collaboration"
)

// AllTypes lists every bubble type in declaration order.
var AllTypes = []TypeID{
	TypeTextPaste, TypeToolbelt, TypePinned, TypeSystem,
	TypeQuickAction, TypeAccumulator, TypeVoice, TypeCollaboration,
}

// ParseType maps a stored type string back to a TypeID.
func ParseType(s string) (TypeID, bool) {
	for _, t := range AllTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// minimizedSize is the fixed footprint of any minimized bubble, regardless
// of its configured default.
var minimizedSize = Size{Width: 32, Height: 32}

// Spec is the immutable policy record for one bubble type.
type Spec struct {
	Type             TypeID
	MaxInstances     int
	DefaultSize      Size
	Priority         int // z-index priority, higher surfaces first
	AutoHideDelayMs  int // 0 = never auto-hide
	SupportsDragging bool

	// RelevantCategories feed the relevance tier of ranking: a bubble gains
	// a tier when the last classified category is in this set.
	RelevantCategories []classify.Category

	// Keyboard policy. visibleWhenKeyboard[b] answers "should this bubble be
	// visible when keyboardVisible == b", and likewise for the other two, so
	// every predicate is total over both inputs by construction.
	visibleWhenKeyboard    [2]bool
	minimizedWhenKeyboard  [2]bool
	repositionWhenKeyboard [2]bool
}

func boolIdx(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ShouldBeVisible reports whether bubbles of this type are shown for the
// given keyboard state.
func (s Spec) ShouldBeVisible(keyboardVisible bool) bool {
	return s.visibleWhenKeyboard[boolIdx(keyboardVisible)]
}

// ShouldBeMinimized reports whether bubbles of this type collapse to the
// minimized footprint for the given keyboard state. Independent of
// visibility: a bubble can be visible-but-minimized.
func (s Spec) ShouldBeMinimized(keyboardVisible bool) bool {
	return s.minimizedWhenKeyboard[boolIdx(keyboardVisible)]
}

// ShouldBeRepositioned reports whether the orchestrator should flag bubbles
// of this type for layout recompute when the keyboard state flips. The
// coordinate itself is owned by the caller's layout layer.
func (s Spec) ShouldBeRepositioned(keyboardVisible bool) bool {
	return s.repositionWhenKeyboard[boolIdx(keyboardVisible)]
}

// EffectiveSize returns the display size for the given state. Minimized
// bubbles always get the fixed minimized footprint.
func (s Spec) EffectiveSize(minimized, keyboardVisible bool) Size {
	if minimized {
		return minimizedSize
	}
	return s.DefaultSize
}

// IsRelevantTo reports whether c is one of the type's relevant categories.
func (s Spec) IsRelevantTo(c classify.Category) bool {
	for _, rc := range s.RelevantCategories {
		if rc == c {
			return true
		}
	}
	return false
}

// specTable holds one record per type. Priorities stay below the ranking
// tier width (see engine ranking), so a tier always outranks priority.
var specTable = map[TypeID]Spec{
	TypeTextPaste: {
		Type:             TypeTextPaste,
		MaxInstances:     5,
		DefaultSize:      Size{Width: 56, Height: 56},
		Priority:         50,
		AutoHideDelayMs:  15000,
		SupportsDragging: true,
		RelevantCategories: []classify.Category{
			classify.CategoryText, classify.CategoryAddress,
		},
		// Content-entry bubbles only make sense while typing is possible.
		visibleWhenKeyboard:    [2]bool{false, true},
		minimizedWhenKeyboard:  [2]bool{false, false},
		repositionWhenKeyboard: [2]bool{false, true},
	},
	TypeToolbelt: {
		Type:             TypeToolbelt,
		MaxInstances:     1,
		DefaultSize:      Size{Width: 200, Height: 48},
		Priority:         80,
		SupportsDragging: true,
		RelevantCategories: []classify.Category{
			classify.CategoryURL, classify.CategoryEmail, classify.CategoryPhone,
			classify.CategoryAddress,
		},
		// Always visible; collapses instead of hiding when the keyboard is up.
		visibleWhenKeyboard:    [2]bool{true, true},
		minimizedWhenKeyboard:  [2]bool{false, true},
		repositionWhenKeyboard: [2]bool{false, true},
	},
	TypePinned: {
		Type:                   TypePinned,
		MaxInstances:           10,
		DefaultSize:            Size{Width: 48, Height: 48},
		Priority:               60,
		SupportsDragging:       true,
		RelevantCategories:     []classify.Category{classify.CategoryText},
		visibleWhenKeyboard:    [2]bool{true, true},
		minimizedWhenKeyboard:  [2]bool{false, false},
		repositionWhenKeyboard: [2]bool{false, false},
	},
	TypeSystem: {
		Type:                   TypeSystem,
		MaxInstances:           3,
		DefaultSize:            Size{Width: 240, Height: 64},
		Priority:               90,
		AutoHideDelayMs:        8000,
		visibleWhenKeyboard:    [2]bool{true, true},
		minimizedWhenKeyboard:  [2]bool{false, false},
		repositionWhenKeyboard: [2]bool{false, false},
	},
	TypeQuickAction: {
		Type:             TypeQuickAction,
		MaxInstances:     4,
		DefaultSize:      Size{Width: 48, Height: 48},
		Priority:         70,
		AutoHideDelayMs:  10000,
		SupportsDragging: true,
		RelevantCategories: []classify.Category{
			classify.CategoryURL, classify.CategoryEmail, classify.CategoryPhone,
		},
		visibleWhenKeyboard:    [2]bool{false, true},
		minimizedWhenKeyboard:  [2]bool{false, false},
		repositionWhenKeyboard: [2]bool{false, true},
	},
	TypeAccumulator: {
		Type:             TypeAccumulator,
		MaxInstances:     2,
		DefaultSize:      Size{Width: 64, Height: 64},
		Priority:         75,
		SupportsDragging: true,
		RelevantCategories: []classify.Category{
			classify.CategoryText, classify.CategoryURL, classify.CategoryEmail,
			classify.CategoryPhone, classify.CategoryNumber,
		},
		// Stays alive while collecting; shrinks out of the way of typing.
		visibleWhenKeyboard:    [2]bool{true, true},
		minimizedWhenKeyboard:  [2]bool{false, true},
		repositionWhenKeyboard: [2]bool{false, true},
	},
	TypeVoice: {
		Type:                   TypeVoice,
		MaxInstances:           1,
		DefaultSize:            Size{Width: 56, Height: 56},
		Priority:               65,
		AutoHideDelayMs:        30000,
		SupportsDragging:       true,
		visibleWhenKeyboard:    [2]bool{true, true},
		minimizedWhenKeyboard:  [2]bool{false, true},
		repositionWhenKeyboard: [2]bool{false, true},
	},
	TypeCollaboration: {
		Type:                   TypeCollaboration,
		MaxInstances:           1,
		DefaultSize:            Size{Width: 56, Height: 56},
		Priority:               85,
		SupportsDragging:       true,
		visibleWhenKeyboard:    [2]bool{true, true},
		minimizedWhenKeyboard:  [2]bool{false, false},
		repositionWhenKeyboard: [2]bool{false, false},
	},
}

// SpecFor returns the policy record for a type. Unknown types get a
// conservative single-instance spec so lookups stay total.
func SpecFor(t TypeID) Spec {
	if s, ok := specTable[t]; ok {
		return s
	}
	return Spec{
		Type:                   t,
		MaxInstances:           1,
		DefaultSize:            Size{Width: 48, Height: 48},
		Priority:               10,
		visibleWhenKeyboard:    [2]bool{true, true},
		minimizedWhenKeyboard:  [2]bool{false, false},
		repositionWhenKeyboard: [2]bool{false, false},
	}
}
