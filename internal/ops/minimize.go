package ops

import (
	"context"
	"database/sql"

	"github.com/avelius/halo/internal/errors"
)

// MinimizeInput contains parameters for the Minimize operation.
type MinimizeInput struct {
	ID string // required
}

// MinimizeOutput contains the result of the Minimize operation.
type MinimizeOutput struct {
	Bubble BubbleView `json:"bubble"`
}

// Minimize toggles a bubble's minimized state. Minimizing counts as an
// interaction and refreshes the auto-hide deadline.
func Minimize(ctx context.Context, database *sql.DB, input MinimizeInput) (*MinimizeOutput, error) {
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
	orch.ToggleMinimized(input.ID)

	if err := saveSession(ctx, database, orch); err != nil {
		return nil, err
	}
	e, _ := orch.Snapshot().Find(input.ID)
	return &MinimizeOutput{Bubble: ToView(e)}, nil
}
