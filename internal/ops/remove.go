package ops

import (
	"context"
	"database/sql"

	"github.com/avelius/halo/internal/errors"
)

// RemoveInput contains parameters for the Remove operation.
type RemoveInput struct {
	ID string // required
}

// RemoveOutput contains the result of the Remove operation.
type RemoveOutput struct {
	ID      string `json:"id"`
	Removed bool   `json:"removed"`
}

// Remove deletes a bubble by id.
func Remove(ctx context.Context, database *sql.DB, input RemoveInput) (*RemoveOutput, error) {
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
	orch.Remove(input.ID)

	if err := saveSession(ctx, database, orch); err != nil {
		return nil, err
	}
	return &RemoveOutput{ID: input.ID, Removed: true}, nil
}
