package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/avelius/halo/internal/accum"
	"github.com/avelius/halo/internal/bubble"
	"github.com/avelius/halo/internal/classify"
	"github.com/avelius/halo/internal/config"
	"github.com/avelius/halo/internal/errors"
	"github.com/avelius/halo/internal/patterns"
)

// AddInput contains parameters for the Add operation. Type selects the
// payload shape; the other fields apply per type.
type AddInput struct {
	Type        string // required
	Content     string // text_paste, pinned
	Message     string // system
	Severity    string // system; default "info"
	Category    string // toolbelt, quick_action; toolbelt defaults to the session's last category
	ActionLabel string // quick_action; default: first action for the category
	PatternID   string // accumulator; required for that type
	SessionName string // collaboration
	X, Y        int    // initial position
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	Bubble BubbleView `json:"bubble"`
}

// Add creates a bubble of the requested type and persists the new overlay
// state. A type at its instance cap rejects the add with CAPACITY_REACHED.
func Add(ctx context.Context, database *sql.DB, cfg *config.Config, input AddInput) (*AddOutput, error) {
	t, err := parseType(input.Type)
	if err != nil {
		return nil, err
	}

	orch, err := loadSession(ctx, database)
	if err != nil {
		return nil, err
	}
	defer orch.Close()

	payload, err := buildPayload(t, cfg, orch.Snapshot().LastCategory, input)
	if err != nil {
		return nil, err
	}

	e := bubble.New(t, payload)
	e.Position = bubble.Position{X: input.X, Y: input.Y}

	if !orch.Add(e) {
		return nil, errors.NewCapacityReached(string(t), bubble.SpecFor(t).MaxInstances)
	}
	if err := saveSession(ctx, database, orch); err != nil {
		return nil, err
	}

	added, _ := orch.Snapshot().Find(e.ID)
	return &AddOutput{Bubble: ToView(added)}, nil
}

func buildPayload(t bubble.TypeID, cfg *config.Config, lastCategory classify.Category, input AddInput) (bubble.Payload, error) {
	switch t {
	case bubble.TypeTextPaste:
		if input.Content == "" {
			return nil, errors.NewInvalidRequest("content is required for text_paste bubbles")
		}
		if err := checkSampleSize(cfg, input.Content); err != nil {
			return nil, err
		}
		return bubble.TextPastePayload{
			Content:  input.Content,
			Category: classify.Classify(input.Content),
		}, nil

	case bubble.TypePinned:
		if input.Content == "" {
			return nil, errors.NewInvalidRequest("content is required for pinned bubbles")
		}
		if err := checkSampleSize(cfg, input.Content); err != nil {
			return nil, err
		}
		return bubble.PinnedPayload{Content: input.Content}, nil

	case bubble.TypeToolbelt:
		cat := lastCategory
		if input.Category != "" {
			parsed, err := parseCategory(input.Category)
			if err != nil {
				return nil, err
			}
			cat = parsed
		}
		return bubble.ToolbeltPayload{Actions: classify.Actions(cat)}, nil

	case bubble.TypeSystem:
		if input.Message == "" {
			return nil, errors.NewInvalidRequest("message is required for system bubbles")
		}
		severity := input.Severity
		if severity == "" {
			severity = "info"
		}
		return bubble.SystemPayload{Message: input.Message, Severity: severity}, nil

	case bubble.TypeQuickAction:
		if input.Category == "" {
			return nil, errors.NewInvalidRequest("category is required for quick_action bubbles")
		}
		cat, err := parseCategory(input.Category)
		if err != nil {
			return nil, err
		}
		action, err := pickAction(cat, input.ActionLabel)
		if err != nil {
			return nil, err
		}
		return bubble.QuickActionPayload{Action: action}, nil

	case bubble.TypeAccumulator:
		if input.PatternID == "" {
			return nil, errors.NewInvalidRequest("pattern_id is required for accumulator bubbles")
		}
		p, err := patterns.Find(cfg.BaseDir, input.PatternID)
		if err != nil {
			return nil, err
		}
		return bubble.AccumulatorPayload{State: accum.NewState(p)}, nil

	case bubble.TypeVoice:
		return bubble.VoicePayload{}, nil

	case bubble.TypeCollaboration:
		return bubble.CollaborationPayload{SessionName: input.SessionName}, nil

	default:
		return nil, errors.NewInvalidRequest("unknown bubble type: " + string(t))
	}
}

// pickAction resolves a quick action for a category, by label when given.
func pickAction(cat classify.Category, label string) (classify.SuggestedAction, error) {
	actions := classify.Actions(cat)
	if label == "" {
		return actions[0], nil
	}
	for _, a := range actions {
		if strings.EqualFold(a.Label, label) {
			return a, nil
		}
	}
	return classify.SuggestedAction{}, errors.NewInvalidRequest("no action " + label + " for category " + string(cat))
}

func checkSampleSize(cfg *config.Config, content string) error {
	if cfg != nil && cfg.SampleMaxChars > 0 && len(content) > cfg.SampleMaxChars {
		return errors.NewSampleTooLarge(cfg.SampleMaxChars, len(content))
	}
	return nil
}
