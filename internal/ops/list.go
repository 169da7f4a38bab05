package ops

import (
	"context"
	"database/sql"

	"github.com/avelius/halo/internal/bubble"
	"github.com/avelius/halo/internal/classify"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Type string // optional filter by bubble type
	All  bool   // include hidden bubbles; default is visible only
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Bubbles         []BubbleView      `json:"bubbles"`
	KeyboardVisible bool              `json:"keyboard_visible"`
	LastCategory    classify.Category `json:"last_category"`
	Total           int               `json:"total"`
}

// List returns the current overlay state in relevance order. By default only
// visible bubbles are returned; All includes hidden ones.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	var typeFilter bubble.TypeID
	if input.Type != "" {
		t, err := parseType(input.Type)
		if err != nil {
			return nil, err
		}
		typeFilter = t
	}

	orch, err := loadSession(ctx, database)
	if err != nil {
		return nil, err
	}
	defer orch.Close()

	// Load-time expiry may have dropped stale bubbles; persist so later
	// invocations agree with what this one reported.
	if err := saveSession(ctx, database, orch); err != nil {
		return nil, err
	}

	snap := orch.Snapshot()
	entities := snap.Entities
	if !input.All {
		entities = snap.Visible()
	}
	if typeFilter != "" {
		filtered := make([]bubble.Entity, 0, len(entities))
		for _, e := range entities {
			if e.Type == typeFilter {
				filtered = append(filtered, e)
			}
		}
		entities = filtered
	}

	return &ListOutput{
		Bubbles:         toViews(entities),
		KeyboardVisible: snap.KeyboardVisible,
		LastCategory:    snap.LastCategory,
		Total:           len(entities),
	}, nil
}
