package ops

import (
	"context"
	"database/sql"

	"github.com/avelius/halo/internal/errors"
)

// InteractInput contains parameters for the Interact operation.
type InteractInput struct {
	ID string // required
	// Collecting, when set, starts or pauses an accumulator bubble's
	// collection alongside the interaction.
	Collecting *bool
}

// InteractOutput contains the result of the Interact operation.
type InteractOutput struct {
	Bubble BubbleView `json:"bubble"`
}

// Interact records a user interaction with a bubble, refreshing its
// auto-hide deadline and its ranking tie-break position.
func Interact(ctx context.Context, database *sql.DB, input InteractInput) (*InteractOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	orch, err := loadSession(ctx, database)
	if err != nil {
		return nil, err
	}
	defer orch.Close()

	e, ok := orch.Snapshot().Find(input.ID)
	if !ok {
		return nil, errors.NewNotFound(input.ID)
	}
	if input.Collecting != nil {
		if _, isAccum := e.Accumulator(); !isAccum {
			return nil, errors.NewInvalidRequest("bubble is not an accumulator: " + input.ID)
		}
		orch.SetCollecting(input.ID, *input.Collecting)
	} else {
		orch.WithInteraction(input.ID)
	}

	if err := saveSession(ctx, database, orch); err != nil {
		return nil, err
	}
	e, _ = orch.Snapshot().Find(input.ID)
	return &InteractOutput{Bubble: ToView(e)}, nil
}
