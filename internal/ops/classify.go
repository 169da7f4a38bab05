package ops

import (
	"github.com/avelius/halo/internal/classify"
	"github.com/avelius/halo/internal/config"
	"github.com/avelius/halo/internal/errors"
)

// ClassifyInput contains parameters for the Classify operation.
type ClassifyInput struct {
	Content string // required
}

// ClassifyOutput contains the result of the Classify operation.
type ClassifyOutput struct {
	Category classify.Category          `json:"category"`
	Actions  []classify.SuggestedAction `json:"actions"`
}

// Classify detects the content category of a sample without touching the
// overlay state. It is the dry-run counterpart of Ingest.
func Classify(cfg *config.Config, input ClassifyInput) (*ClassifyOutput, error) {
	if input.Content == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}
	if err := checkSampleSize(cfg, input.Content); err != nil {
		return nil, err
	}
	category := classify.Classify(input.Content)
	return &ClassifyOutput{
		Category: category,
		Actions:  classify.Actions(category),
	}, nil
}
