package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avelius/halo/internal/accum"
	"github.com/avelius/halo/internal/bubble"
	"github.com/avelius/halo/internal/classify"
)

// Session is the single-row overlay session state persisted alongside
// the bubbles.
type Session struct {
	KeyboardVisible bool
	LastCategory    classify.Category
	UpdatedAt       time.Time
}

// SaveSnapshot replaces the stored overlay state with the given entities
// and session state, atomically.
func SaveSnapshot(ctx context.Context, database *sql.DB, entities []bubble.Entity, sess Session) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM bubbles"); err != nil {
		return fmt.Errorf("failed to clear bubbles: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bubbles (id, type, x, y, width, height, visible, minimized,
		                     needs_reposition, last_interaction, created_at, payload_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entities {
		payloadJSON, err := marshalPayload(e.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload for %s: %w", e.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			e.ID, string(e.Type),
			e.Position.X, e.Position.Y,
			e.Size.Width, e.Size.Height,
			boolToInt(e.Visible), boolToInt(e.Minimized), boolToInt(e.NeedsReposition),
			e.LastInteraction.UnixMilli(), e.CreatedAt.UnixMilli(),
			payloadJSON)
		if err != nil {
			return fmt.Errorf("failed to insert bubble %s: %w", e.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO session (id, keyboard_visible, last_category, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  keyboard_visible = excluded.keyboard_visible,
		  last_category    = excluded.last_category,
		  updated_at       = excluded.updated_at`,
		boolToInt(sess.KeyboardVisible), string(sess.LastCategory), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the stored overlay state. A fresh database returns no
// entities and a default session.
func LoadSnapshot(ctx context.Context, database *sql.DB) ([]bubble.Entity, Session, error) {
	sess := Session{LastCategory: classify.CategoryUnknown}

	var kb int
	var cat string
	var updated int64
	err := database.QueryRowContext(ctx,
		"SELECT keyboard_visible, last_category, updated_at FROM session WHERE id = 1").
		Scan(&kb, &cat, &updated)
	switch {
	case err == sql.ErrNoRows:
		// fresh database
	case err != nil:
		return nil, sess, fmt.Errorf("failed to load session: %w", err)
	default:
		sess.KeyboardVisible = kb != 0
		if c, ok := classify.ParseCategory(cat); ok {
			sess.LastCategory = c
		}
		sess.UpdatedAt = time.UnixMilli(updated)
	}

	rows, err := database.QueryContext(ctx, `
		SELECT id, type, x, y, width, height, visible, minimized,
		       needs_reposition, last_interaction, created_at, payload_json
		FROM bubbles
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, sess, fmt.Errorf("failed to query bubbles: %w", err)
	}
	defer rows.Close()

	var entities []bubble.Entity
	for rows.Next() {
		var (
			e                       bubble.Entity
			typ, payloadJSON        string
			visible, min, reposn    int
			lastInteract, createdAt int64
		)
		err := rows.Scan(&e.ID, &typ,
			&e.Position.X, &e.Position.Y,
			&e.Size.Width, &e.Size.Height,
			&visible, &min, &reposn,
			&lastInteract, &createdAt, &payloadJSON)
		if err != nil {
			return nil, sess, fmt.Errorf("failed to scan bubble: %w", err)
		}
		t, ok := bubble.ParseType(typ)
		if !ok {
			// Unknown type from a newer schema; skip rather than fail the load.
			continue
		}
		e.Type = t
		e.Visible = visible != 0
		e.Minimized = min != 0
		e.NeedsReposition = reposn != 0
		e.LastInteraction = time.UnixMilli(lastInteract)
		e.CreatedAt = time.UnixMilli(createdAt)
		e.Payload, err = unmarshalPayload(t, payloadJSON)
		if err != nil {
			return nil, sess, fmt.Errorf("failed to decode payload for %s: %w", e.ID, err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, sess, fmt.Errorf("failed to iterate bubbles: %w", err)
	}
	return entities, sess, nil
}

func marshalPayload(p bubble.Payload) (string, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalPayload(t bubble.TypeID, data string) (bubble.Payload, error) {
	raw := []byte(data)
	switch t {
	case bubble.TypeTextPaste:
		var p bubble.TextPastePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case bubble.TypeToolbelt:
		var p bubble.ToolbeltPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case bubble.TypePinned:
		var p bubble.PinnedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case bubble.TypeSystem:
		var p bubble.SystemPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case bubble.TypeQuickAction:
		var p bubble.QuickActionPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case bubble.TypeAccumulator:
		var p bubble.AccumulatorPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		if p.State.Items == nil {
			p.State.Items = []accum.Item{}
		}
		return p, nil
	case bubble.TypeVoice:
		var p bubble.VoicePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case bubble.TypeCollaboration:
		var p bubble.CollaborationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown bubble type %q", t)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
