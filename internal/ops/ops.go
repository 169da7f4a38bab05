// Package ops implements the overlay operations shared by the CLI, the MCP
// server, and the web viewer. Each operation loads the persisted overlay
// state, applies one mutation through the orchestrator, and persists the
// result, so short-lived invocations compose into one continuous session.
package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/avelius/halo/internal/bubble"
	"github.com/avelius/halo/internal/classify"
	"github.com/avelius/halo/internal/db"
	"github.com/avelius/halo/internal/engine"
	"github.com/avelius/halo/internal/errors"
)

// BubbleView is the serializable projection of an overlay entity returned by
// list-shaped operations.
type BubbleView struct {
	ID              string          `json:"id"`
	Type            bubble.TypeID   `json:"type"`
	Position        bubble.Position `json:"position"`
	Size            bubble.Size     `json:"size"`
	Visible         bool            `json:"visible"`
	Minimized       bool            `json:"minimized"`
	NeedsReposition bool            `json:"needs_reposition"`
	LastInteraction time.Time       `json:"last_interaction"`
	CreatedAt       time.Time       `json:"created_at"`
	Payload         bubble.Payload  `json:"payload"`
}

// ToView projects an entity into its serializable form.
func ToView(e bubble.Entity) BubbleView {
	return BubbleView{
		ID:              e.ID,
		Type:            e.Type,
		Position:        e.Position,
		Size:            e.Size,
		Visible:         e.Visible,
		Minimized:       e.Minimized,
		NeedsReposition: e.NeedsReposition,
		LastInteraction: e.LastInteraction,
		CreatedAt:       e.CreatedAt,
		Payload:         e.Payload,
	}
}

func toViews(entities []bubble.Entity) []BubbleView {
	views := make([]BubbleView, len(entities))
	for i, e := range entities {
		views[i] = ToView(e)
	}
	return views
}

// loadSession restores an orchestrator from the database. Auto-hide bubbles
// whose deadline passed between invocations are dropped at load time; live
// timers only cover long-running processes, not a sequence of CLI calls.
func loadSession(ctx context.Context, database *sql.DB) (*engine.Orchestrator, error) {
	entities, sess, err := db.LoadSnapshot(ctx, database)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	entities = dropExpired(entities, time.Now())
	return engine.Restore(entities, sess.KeyboardVisible, sess.LastCategory), nil
}

// dropExpired filters out entities whose auto-hide delay elapsed since their
// last interaction.
func dropExpired(entities []bubble.Entity, now time.Time) []bubble.Entity {
	out := make([]bubble.Entity, 0, len(entities))
	for _, e := range entities {
		delayMs := bubble.SpecFor(e.Type).AutoHideDelayMs
		if delayMs > 0 && now.Sub(e.LastInteraction) >= time.Duration(delayMs)*time.Millisecond {
			continue
		}
		out = append(out, e)
	}
	return out
}

// saveSession persists the orchestrator's current snapshot and releases its
// timers.
func saveSession(ctx context.Context, database *sql.DB, orch *engine.Orchestrator) error {
	snap := orch.Snapshot()
	orch.Close()
	sess := db.Session{
		KeyboardVisible: snap.KeyboardVisible,
		LastCategory:    snap.LastCategory,
	}
	if err := db.SaveSnapshot(ctx, database, snap.Entities, sess); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// parseType validates a caller-supplied bubble type string.
func parseType(s string) (bubble.TypeID, error) {
	t, ok := bubble.ParseType(s)
	if !ok {
		return "", errors.NewInvalidRequest("unknown bubble type: " + s)
	}
	return t, nil
}

// parseCategory validates a caller-supplied category string.
func parseCategory(s string) (classify.Category, error) {
	c, ok := classify.ParseCategory(s)
	if !ok {
		return "", errors.NewInvalidRequest("unknown content category: " + s)
	}
	return c, nil
}
