package ops

import (
	"context"
	"database/sql"

	"github.com/avelius/halo/internal/accum"
	"github.com/avelius/halo/internal/errors"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID string // required; must be an accumulator bubble
	// Reset empties the accumulator after exporting, keeping it collecting.
	Reset bool
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	ID       string        `json:"id"`
	Pattern  accum.Pattern `json:"pattern"`
	Items    int           `json:"items"`
	Exported string        `json:"exported"`
}

// Export joins an accumulator bubble's collected items with the pattern's
// delimiter.
func Export(ctx context.Context, database *sql.DB, input ExportInput) (*ExportOutput, error) {
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
	state, ok := e.Accumulator()
	if !ok {
		return nil, errors.NewInvalidRequest("bubble is not an accumulator: " + input.ID)
	}

	out := &ExportOutput{
		ID:       e.ID,
		Pattern:  state.Pattern,
		Items:    len(state.Items),
		Exported: accum.Export(state),
	}

	if input.Reset {
		orch.ResetAccumulator(input.ID)
	}
	if err := saveSession(ctx, database, orch); err != nil {
		return nil, err
	}
	return out, nil
}
