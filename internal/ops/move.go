package ops

import (
	"context"
	"database/sql"

	"github.com/avelius/halo/internal/bubble"
	"github.com/avelius/halo/internal/errors"
)

// MoveInput contains parameters for the Move operation.
type MoveInput struct {
	ID   string // required
	X, Y int
}

// MoveOutput contains the result of the Move operation.
type MoveOutput struct {
	Bubble BubbleView `json:"bubble"`
}

// Move repositions a bubble and clears its pending-reposition flag. Moving
// counts as an interaction.
func Move(ctx context.Context, database *sql.DB, input MoveInput) (*MoveOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	orch, err := loadSession(ctx, database)
	if err != nil {
		return nil, err
	}
	defer orch.Close()

	if _, ok := orch.Snapshot().Find(input.ID); !ok {
		return nil, errors.NewNotFound(input.ID)
	}
	orch.UpdatePosition(input.ID, bubble.Position{X: input.X, Y: input.Y})

	if err := saveSession(ctx, database, orch); err != nil {
		return nil, err
	}
	e, _ := orch.Snapshot().Find(input.ID)
	return &MoveOutput{Bubble: ToView(e)}, nil
}
