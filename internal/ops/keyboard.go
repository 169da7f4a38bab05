package ops

import (
	"context"
	"database/sql"
)

// KeyboardInput contains parameters for the Keyboard operation.
type KeyboardInput struct {
	Visible bool
}

// KeyboardOutput contains the result of the Keyboard operation.
type KeyboardOutput struct {
	KeyboardVisible bool         `json:"keyboard_visible"`
	Bubbles         []BubbleView `json:"bubbles"`
}

// Keyboard sets the keyboard visibility flag and re-derives every bubble's
// visibility, minimization, and reposition flag from the policy table.
func Keyboard(ctx context.Context, database *sql.DB, input KeyboardInput) (*KeyboardOutput, error) {
	orch, err := loadSession(ctx, database)
	if err != nil {
		return nil, err
	}
	defer orch.Close()

	orch.UpdateKeyboardState(input.Visible)

	if err := saveSession(ctx, database, orch); err != nil {
		return nil, err
	}
	snap := orch.Snapshot()
	return &KeyboardOutput{
		KeyboardVisible: snap.KeyboardVisible,
		Bubbles:         toViews(snap.Entities),
	}, nil
}
