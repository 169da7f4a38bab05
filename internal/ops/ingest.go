package ops

import (
	"context"
	"database/sql"

	"github.com/avelius/halo/internal/bubble"
	"github.com/avelius/halo/internal/classify"
	"github.com/avelius/halo/internal/config"
	"github.com/avelius/halo/internal/errors"
)

// IngestInput contains parameters for the Ingest operation.
type IngestInput struct {
	Content string // required
	Source  string // optional provenance tag, e.g. "clipboard", "watch"
	// CreateBubble also adds a text_paste bubble for the sample, capacity
	// permitting. This mirrors the capture flow where every copied sample
	// becomes a bubble.
	CreateBubble bool
}

// IngestOutput contains the result of the Ingest operation.
type IngestOutput struct {
	Category classify.Category          `json:"category"`
	Actions  []classify.SuggestedAction `json:"actions"`
	// Accumulated is how many collecting accumulators received the sample.
	Accumulated int         `json:"accumulated"`
	Bubble      *BubbleView `json:"bubble,omitempty"`
	// BubbleRejected is set when CreateBubble was requested but the
	// text_paste cap was reached. The ingest itself still succeeds.
	BubbleRejected bool `json:"bubble_rejected,omitempty"`
}

// Ingest classifies a content sample, routes it into every collecting
// accumulator, and updates the session's last category for ranking.
func Ingest(ctx context.Context, database *sql.DB, cfg *config.Config, input IngestInput) (*IngestOutput, error) {
	if input.Content == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}
	if err := checkSampleSize(cfg, input.Content); err != nil {
		return nil, err
	}

	orch, err := loadSession(ctx, database)
	if err != nil {
		return nil, err
	}
	defer orch.Close()

	collecting := 0
	for _, e := range orch.Snapshot().Entities {
		if state, ok := e.Accumulator(); ok && state.Collecting {
			collecting++
		}
	}

	category := orch.IngestContent(input.Content, input.Source)

	out := &IngestOutput{
		Category:    category,
		Actions:     classify.Actions(category),
		Accumulated: collecting,
	}

	if input.CreateBubble {
		e := bubble.New(bubble.TypeTextPaste, bubble.TextPastePayload{
			Content:  input.Content,
			Category: category,
		})
		if orch.Add(e) {
			added, _ := orch.Snapshot().Find(e.ID)
			view := ToView(added)
			out.Bubble = &view
		} else {
			out.BubbleRejected = true
		}
	}

	if err := saveSession(ctx, database, orch); err != nil {
		return nil, err
	}
	return out, nil
}
