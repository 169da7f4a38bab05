package bubble

import (
	"testing"
	"time"

	"github.com/avelius/halo/internal/accum"
	"github.com/avelius/halo/internal/classify"
)

func TestNew_AppliesSpecDefaults(t *testing.T) {
	e := New(TypeTextPaste, TextPastePayload{Content: "hi", Category: classify.CategoryText})
	if e.ID == "" {
		t.Error("ID must be assigned")
	}
	if e.Type != TypeTextPaste {
		t.Errorf("Type = %q", e.Type)
	}
	if e.Size != SpecFor(TypeTextPaste).DefaultSize {
		t.Errorf("Size = %+v, want spec default", e.Size)
	}
	if e.LastInteraction.IsZero() || e.CreatedAt.IsZero() {
		t.Error("timestamps must be set")
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestWithInteraction_ReturnsCopy(t *testing.T) {
	e := New(TypePinned, PinnedPayload{Content: "x"})
	before := e.LastInteraction

	later := before.Add(time.Minute)
	updated := e.WithInteraction(later)

	if !updated.LastInteraction.Equal(later) {
		t.Error("copy should carry the new interaction time")
	}
	if !e.LastInteraction.Equal(before) {
		t.Error("receiver must not be mutated")
	}
}

func TestWithPosition_ClearsRepositionFlag(t *testing.T) {
	e := New(TypePinned, PinnedPayload{Content: "x"})
	e.NeedsReposition = true

	moved := e.WithPosition(Position{X: 10, Y: 20})
	if moved.Position != (Position{X: 10, Y: 20}) {
		t.Errorf("Position = %+v", moved.Position)
	}
	if moved.NeedsReposition {
		t.Error("explicit positioning clears the flag")
	}
}

func TestApplyKeyboardPolicy(t *testing.T) {
	e := New(TypeToolbelt, ToolbeltPayload{})

	up := e.ApplyKeyboardPolicy(true)
	if !up.Visible || !up.Minimized || !up.NeedsReposition {
		t.Errorf("keyboard up: visible=%v minimized=%v reposition=%v", up.Visible, up.Minimized, up.NeedsReposition)
	}
	if up.Size != (Size{Width: 32, Height: 32}) {
		t.Errorf("keyboard up size = %+v", up.Size)
	}

	down := e.ApplyKeyboardPolicy(false)
	if !down.Visible || down.Minimized {
		t.Errorf("keyboard down: visible=%v minimized=%v", down.Visible, down.Minimized)
	}
	if down.Size != SpecFor(TypeToolbelt).DefaultSize {
		t.Errorf("keyboard down size = %+v", down.Size)
	}
}

func TestAccumulator_Accessor(t *testing.T) {
	p := accum.NewPattern(NewID(), "emails", `\S+@\S+`, accum.DelimiterComma, 10, true)
	e := New(TypeAccumulator, AccumulatorPayload{State: accum.NewState(p)})

	state, ok := e.Accumulator()
	if !ok {
		t.Fatal("accumulator payload not detected")
	}
	if !state.Collecting {
		t.Error("new accumulator state should be collecting")
	}

	other := New(TypePinned, PinnedPayload{Content: "x"})
	if _, ok := other.Accumulator(); ok {
		t.Error("non-accumulator entity must not report a state")
	}
}

func TestPayloadVariants_Exhaustive(t *testing.T) {
	payloads := []Payload{
		TextPastePayload{}, ToolbeltPayload{}, PinnedPayload{},
		SystemPayload{}, QuickActionPayload{}, AccumulatorPayload{},
		VoicePayload{}, CollaborationPayload{},
	}
	if len(payloads) != len(AllTypes) {
		t.Errorf("payload variants = %d, types = %d; keep the union in sync", len(payloads), len(AllTypes))
	}
}
