package bubble

import (
	"testing"

	"github.com/avelius/halo/internal/classify"
)

func TestSpecFor_CoversEveryType(t *testing.T) {
	for _, typ := range AllTypes {
		spec := SpecFor(typ)
		if spec.Type != typ {
			t.Errorf("SpecFor(%q).Type = %q", typ, spec.Type)
		}
		if spec.MaxInstances < 1 {
			t.Errorf("%q: MaxInstances = %d, want >= 1", typ, spec.MaxInstances)
		}
		if spec.DefaultSize.Width <= 0 || spec.DefaultSize.Height <= 0 {
			t.Errorf("%q: bad default size %+v", typ, spec.DefaultSize)
		}
		if spec.Priority <= 0 || spec.Priority >= 1000 {
			t.Errorf("%q: priority %d must stay within the tier width", typ, spec.Priority)
		}
	}
}

func TestSpecFor_UnknownTypeIsTotal(t *testing.T) {
	spec := SpecFor(TypeID("mystery"))
	if spec.MaxInstances != 1 {
		t.Errorf("unknown type MaxInstances = %d, want 1", spec.MaxInstances)
	}
	// Predicates must be defined for both inputs.
	for _, kb := range []bool{false, true} {
		_ = spec.ShouldBeVisible(kb)
		_ = spec.ShouldBeMinimized(kb)
		_ = spec.ShouldBeRepositioned(kb)
	}
}

func TestPredicates_TotalForEveryType(t *testing.T) {
	for _, typ := range AllTypes {
		spec := SpecFor(typ)
		for _, kb := range []bool{false, true} {
			// Calling for both inputs must be defined and stable.
			if spec.ShouldBeVisible(kb) != spec.ShouldBeVisible(kb) {
				t.Errorf("%q: ShouldBeVisible(%v) unstable", typ, kb)
			}
			if spec.ShouldBeMinimized(kb) != spec.ShouldBeMinimized(kb) {
				t.Errorf("%q: ShouldBeMinimized(%v) unstable", typ, kb)
			}
		}
	}
}

func TestPolicy_TextPasteFollowsKeyboard(t *testing.T) {
	spec := SpecFor(TypeTextPaste)
	if spec.ShouldBeVisible(false) {
		t.Error("text paste hidden without keyboard")
	}
	if !spec.ShouldBeVisible(true) {
		t.Error("text paste visible with keyboard")
	}
}

func TestPolicy_ToolbeltMinimizesInsteadOfHiding(t *testing.T) {
	spec := SpecFor(TypeToolbelt)
	if !spec.ShouldBeVisible(false) || !spec.ShouldBeVisible(true) {
		t.Error("toolbelt is always visible")
	}
	if spec.ShouldBeMinimized(false) {
		t.Error("toolbelt expanded without keyboard")
	}
	if !spec.ShouldBeMinimized(true) {
		t.Error("toolbelt minimizes with keyboard")
	}
}

func TestPolicy_SystemIgnoresKeyboard(t *testing.T) {
	spec := SpecFor(TypeSystem)
	for _, kb := range []bool{false, true} {
		if !spec.ShouldBeVisible(kb) {
			t.Errorf("system bubble must ignore the keyboard signal (kb=%v)", kb)
		}
		if spec.ShouldBeMinimized(kb) {
			t.Errorf("system bubble never minimizes (kb=%v)", kb)
		}
	}
}

func TestEffectiveSize_MinimizedIsFixed(t *testing.T) {
	for _, typ := range AllTypes {
		spec := SpecFor(typ)
		for _, kb := range []bool{false, true} {
			got := spec.EffectiveSize(true, kb)
			if got != minimizedSize {
				t.Errorf("%q: minimized size = %+v, want %+v", typ, got, minimizedSize)
			}
		}
		if got := spec.EffectiveSize(false, false); got != spec.DefaultSize {
			t.Errorf("%q: expanded size = %+v, want default", typ, got)
		}
	}
}

func TestIsRelevantTo(t *testing.T) {
	spec := SpecFor(TypeQuickAction)
	if !spec.IsRelevantTo(classify.CategoryURL) {
		t.Error("quick action is relevant to urls")
	}
	if spec.IsRelevantTo(classify.CategoryText) {
		t.Error("quick action is not relevant to plain text")
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range AllTypes {
		got, ok := ParseType(string(typ))
		if !ok || got != typ {
			t.Errorf("ParseType(%q) = %q, %v", typ, got, ok)
		}
	}
	if _, ok := ParseType("nope"); ok {
		t.Error("ParseType should reject unknown names")
	}
}
