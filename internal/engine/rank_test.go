package engine

import (
	"testing"
	"time"

	"github.com/avelius/halo/internal/bubble"
	"github.com/avelius/halo/internal/classify"
)

func TestRank_PriorityOrderWithinTier(t *testing.T) {
	// No relevance match for category unknown: plain priority order.
	paste := bubble.New(bubble.TypeTextPaste, bubble.TextPastePayload{})     // 50
	system := bubble.New(bubble.TypeSystem, bubble.SystemPayload{})          // 90
	pinned := bubble.New(bubble.TypePinned, bubble.PinnedPayload{})          // 60

	entities := []bubble.Entity{paste, pinned, system}
	rank(entities, classify.CategoryUnknown, false)

	wantOrder := []bubble.TypeID{bubble.TypeSystem, bubble.TypePinned, bubble.TypeTextPaste}
	for i, w := range wantOrder {
		if entities[i].Type != w {
			t.Errorf("entities[%d] = %q, want %q", i, entities[i].Type, w)
		}
	}
}

func TestRank_RelevanceTierBeatsPriority(t *testing.T) {
	// System (priority 90) has no relevant categories; text paste (50) is
	// relevant to text. With a text sample in flight the paste must come
	// first: a tier outranks any priority gap.
	paste := bubble.New(bubble.TypeTextPaste, bubble.TextPastePayload{})
	system := bubble.New(bubble.TypeSystem, bubble.SystemPayload{})

	entities := []bubble.Entity{system, paste}
	rank(entities, classify.CategoryText, false)

	if entities[0].Type != bubble.TypeTextPaste {
		t.Errorf("relevance tier should win, got %q first", entities[0].Type)
	}
}

func TestRank_KeyboardTierUniform(t *testing.T) {
	// The keyboard tier applies to every entity, so relative order is
	// unchanged by the flag alone.
	a := bubble.New(bubble.TypeSystem, bubble.SystemPayload{})
	b := bubble.New(bubble.TypePinned, bubble.PinnedPayload{})

	down := []bubble.Entity{b, a}
	rank(down, classify.CategoryUnknown, false)
	up := []bubble.Entity{b, a}
	rank(up, classify.CategoryUnknown, true)

	if down[0].Type != up[0].Type {
		t.Error("keyboard tier must not reorder entities relative to each other")
	}
	if score(a, classify.CategoryUnknown, true) != score(a, classify.CategoryUnknown, false)+tierWeight {
		t.Error("keyboard visibility must add exactly one tier")
	}
}

func TestRank_TieBreakByInteraction(t *testing.T) {
	older := bubble.New(bubble.TypePinned, bubble.PinnedPayload{Content: "a"})
	newer := bubble.New(bubble.TypePinned, bubble.PinnedPayload{Content: "b"})
	older.LastInteraction = time.Now().Add(-time.Hour)
	newer.LastInteraction = time.Now()

	entities := []bubble.Entity{older, newer}
	rank(entities, classify.CategoryUnknown, false)

	if entities[0].ID != newer.ID {
		t.Error("ties break by most recent interaction first")
	}
}

func TestRank_Deterministic(t *testing.T) {
	ts := time.Now()
	a := bubble.New(bubble.TypePinned, bubble.PinnedPayload{})
	b := bubble.New(bubble.TypePinned, bubble.PinnedPayload{})
	a.LastInteraction = ts
	b.LastInteraction = ts

	first := []bubble.Entity{a, b}
	rank(first, classify.CategoryUnknown, false)
	second := []bubble.Entity{b, a}
	rank(second, classify.CategoryUnknown, false)

	if first[0].ID != second[0].ID {
		t.Error("equal-score, equal-time ranking must still be deterministic")
	}
}

func TestSnapshotVisible_FiltersOnly(t *testing.T) {
	o := New()
	defer o.Close()

	// Keyboard hidden: text paste exists but is not visible.
	paste := bubble.New(bubble.TypeTextPaste, bubble.TextPastePayload{Content: "x"})
	pinned := bubble.New(bubble.TypePinned, bubble.PinnedPayload{Content: "y"})
	o.Add(paste)
	o.Add(pinned)

	snap := o.Snapshot()
	if len(snap.Entities) != 2 {
		t.Fatalf("ranking must keep hidden entities, got %d", len(snap.Entities))
	}
	vis := snap.Visible()
	if len(vis) != 1 || vis[0].ID != pinned.ID {
		t.Errorf("visible = %v, want only the pinned bubble", vis)
	}
}
