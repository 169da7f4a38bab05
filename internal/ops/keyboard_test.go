package ops

import (
	"context"
	"testing"

	"github.com/avelius/halo/internal/bubble"
)

func TestKeyboard_ShowAndHide(t *testing.T) {
	database, cfg := setupTestDB(t)
	ctx := context.Background()

	paste := mustAdd(t, database, cfg, AddInput{Type: "text_paste", Content: "sample"})
	belt := mustAdd(t, database, cfg, AddInput{Type: "toolbelt"})

	out, err := Keyboard(ctx, database, KeyboardInput{Visible: true})
	if err != nil {
		t.Fatalf("Keyboard() error = %v", err)
	}
	if !out.KeyboardVisible {
		t.Error("KeyboardVisible = false, want true")
	}

	byID := make(map[string]BubbleView)
	for _, v := range out.Bubbles {
		byID[v.ID] = v
	}
	if !byID[paste.ID].Visible {
		t.Error("text_paste hidden while keyboard visible")
	}
	if !byID[belt.ID].Minimized {
		t.Error("toolbelt not minimized while keyboard visible")
	}
	if byID[belt.ID].Size != (bubble.Size{Width: 32, Height: 32}) {
		t.Errorf("minimized size = %+v, want 32x32", byID[belt.ID].Size)
	}
	if !byID[belt.ID].NeedsReposition {
		t.Error("toolbelt not flagged for reposition")
	}

	out, err = Keyboard(ctx, database, KeyboardInput{Visible: false})
	if err != nil {
		t.Fatalf("Keyboard() error = %v", err)
	}
	byID = make(map[string]BubbleView)
	for _, v := range out.Bubbles {
		byID[v.ID] = v
	}
	if byID[paste.ID].Visible {
		t.Error("text_paste visible while keyboard hidden")
	}
	if byID[belt.ID].Minimized {
		t.Error("toolbelt still minimized after keyboard hide")
	}
}

func TestKeyboard_StatePersistsAcrossInvocations(t *testing.T) {
	database, _ := setupTestDB(t)
	ctx := context.Background()

	if _, err := Keyboard(ctx, database, KeyboardInput{Visible: true}); err != nil {
		t.Fatalf("Keyboard() error = %v", err)
	}

	out, err := List(ctx, database, ListInput{All: true})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !out.KeyboardVisible {
		t.Error("keyboard flag lost across invocations")
	}
}
