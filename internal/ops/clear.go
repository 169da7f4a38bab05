package ops

import (
	"context"
	"database/sql"
)

// ClearInput contains parameters for the Clear operation.
type ClearInput struct {
	Type string // optional; empty clears every bubble
}

// ClearOutput contains the result of the Clear operation.
type ClearOutput struct {
	Cleared int `json:"cleared"`
}

// Clear removes every bubble, or every bubble of one type when Type is set.
func Clear(ctx context.Context, database *sql.DB, input ClearInput) (*ClearOutput, error) {
	orch, err := loadSession(ctx, database)
	if err != nil {
		return nil, err
	}
	defer orch.Close()

	before := len(orch.Snapshot().Entities)
	if input.Type != "" {
		t, err := parseType(input.Type)
		if err != nil {
			return nil, err
		}
		orch.ClearByType(t)
	} else {
		orch.ClearAll()
	}
	cleared := before - len(orch.Snapshot().Entities)

	if err := saveSession(ctx, database, orch); err != nil {
		return nil, err
	}
	return &ClearOutput{Cleared: cleared}, nil
}
