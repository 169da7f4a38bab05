package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/avelius/halo/internal/bubble"
	"github.com/avelius/halo/internal/classify"
	"github.com/avelius/halo/internal/errors"
)

func TestAdd_TextPaste(t *testing.T) {
	database, cfg := setupTestDB(t)

	out, err := Add(context.Background(), database, cfg, AddInput{
		Type:    "text_paste",
		Content: "https://go.dev",
		X:       12,
		Y:       30,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if out.Bubble.Type != bubble.TypeTextPaste {
		t.Errorf("Type = %s, want text_paste", out.Bubble.Type)
	}
	if out.Bubble.Position.X != 12 || out.Bubble.Position.Y != 30 {
		t.Errorf("Position = %+v", out.Bubble.Position)
	}
	p, ok := out.Bubble.Payload.(bubble.TextPastePayload)
	if !ok {
		t.Fatalf("payload type = %T", out.Bubble.Payload)
	}
	if p.Category != classify.CategoryURL {
		t.Errorf("Category = %s, want url", p.Category)
	}
}

func TestAdd_UnknownType(t *testing.T) {
	database, cfg := setupTestDB(t)

	_, err := Add(context.Background(), database, cfg, AddInput{Type: "hologram"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestAdd_TextPasteRequiresContent(t *testing.T) {
	database, cfg := setupTestDB(t)

	_, err := Add(context.Background(), database, cfg, AddInput{Type: "text_paste"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestAdd_SampleTooLarge(t *testing.T) {
	database, cfg := setupTestDB(t)
	cfg.SampleMaxChars = 10

	_, err := Add(context.Background(), database, cfg, AddInput{
		Type:    "text_paste",
		Content: "this sample is longer than ten characters",
	})
	if !errors.Is(err, errors.ErrSampleTooLarge) {
		t.Errorf("error = %v, want SAMPLE_TOO_LARGE", err)
	}
}

func TestAdd_CapacityReached(t *testing.T) {
	database, cfg := setupTestDB(t)

	// toolbelt caps at one instance
	mustAdd(t, database, cfg, AddInput{Type: "toolbelt"})

	_, err := Add(context.Background(), database, cfg, AddInput{Type: "toolbelt"})
	if !errors.Is(err, errors.ErrCapacityReached) {
		t.Errorf("error = %v, want CAPACITY_REACHED", err)
	}
}

func TestAdd_ToolbeltDefaultsToLastCategory(t *testing.T) {
	database, cfg := setupTestDB(t)
	ctx := context.Background()

	if _, err := Ingest(ctx, database, cfg, IngestInput{Content: "https://example.com"}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	out, err := Add(ctx, database, cfg, AddInput{Type: "toolbelt"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	p, ok := out.Bubble.Payload.(bubble.ToolbeltPayload)
	if !ok {
		t.Fatalf("payload type = %T", out.Bubble.Payload)
	}
	if len(p.Actions) == 0 || p.Actions[0].Category != classify.CategoryURL {
		t.Errorf("actions = %+v, want url actions", p.Actions)
	}
}

func TestAdd_QuickActionByLabel(t *testing.T) {
	database, cfg := setupTestDB(t)

	out, err := Add(context.Background(), database, cfg, AddInput{
		Type:        "quick_action",
		Category:    "url",
		ActionLabel: "copy url",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	p, ok := out.Bubble.Payload.(bubble.QuickActionPayload)
	if !ok {
		t.Fatalf("payload type = %T", out.Bubble.Payload)
	}
	if p.Action.Label != "Copy URL" {
		t.Errorf("Label = %s, want Copy URL", p.Action.Label)
	}
}

func TestAdd_QuickActionUnknownLabel(t *testing.T) {
	database, cfg := setupTestDB(t)

	_, err := Add(context.Background(), database, cfg, AddInput{
		Type:        "quick_action",
		Category:    "url",
		ActionLabel: "teleport",
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestAdd_AccumulatorFromBuiltinPattern(t *testing.T) {
	database, cfg := setupTestDB(t)

	out, err := Add(context.Background(), database, cfg, AddInput{
		Type:      "accumulator",
		PatternID: "emails",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	p, ok := out.Bubble.Payload.(bubble.AccumulatorPayload)
	if !ok {
		t.Fatalf("payload type = %T", out.Bubble.Payload)
	}
	if !p.State.Collecting {
		t.Error("new accumulator not collecting")
	}
	if p.State.Pattern.ID != "emails" {
		t.Errorf("pattern = %s, want emails", p.State.Pattern.ID)
	}
}

func TestAdd_AccumulatorFromUserPattern(t *testing.T) {
	database, cfg := setupTestDB(t)
	userFile := filepath.Join(cfg.BaseDir, "patterns.yaml")
	content := "patterns:\n  - id: tickets\n    name: Tickets\n    expr: '[A-Z]+-\\d+'\n"
	if err := os.WriteFile(userFile, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write patterns file: %v", err)
	}

	out, err := Add(context.Background(), database, cfg, AddInput{
		Type:      "accumulator",
		PatternID: "tickets",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	p := out.Bubble.Payload.(bubble.AccumulatorPayload)
	if p.State.Pattern.Name != "Tickets" {
		t.Errorf("pattern = %+v", p.State.Pattern)
	}
}

func TestAdd_AccumulatorUnknownPattern(t *testing.T) {
	database, cfg := setupTestDB(t)

	_, err := Add(context.Background(), database, cfg, AddInput{
		Type:      "accumulator",
		PatternID: "nope",
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestAdd_AppliesKeyboardPolicyToNewcomer(t *testing.T) {
	database, cfg := setupTestDB(t)
	ctx := context.Background()

	if _, err := Keyboard(ctx, database, KeyboardInput{Visible: true}); err != nil {
		t.Fatalf("Keyboard() error = %v", err)
	}

	// toolbelt minimizes while the keyboard is visible
	out, err := Add(ctx, database, cfg, AddInput{Type: "toolbelt"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !out.Bubble.Minimized {
		t.Error("toolbelt added under visible keyboard is not minimized")
	}
}
