// Package bubble defines the overlay entity model: the bubble variants, the
// per-type policy table, and the small value types shared across the engine.
// Entities are plain values; every mutation returns a new value so readers
// holding a snapshot never observe shared mutable state.
package bubble

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/avelius/halo/internal/accum"
	"github.com/avelius/halo/internal/classify"
)

// Position is a screen coordinate owned by the caller's layout layer.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a bubble footprint in display units.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Entity is one live overlay bubble. Type discriminates the Payload variant.
type Entity struct {
	ID              string
	Type            TypeID
	Position        Position
	Size            Size
	Visible         bool
	Minimized       bool
	NeedsReposition bool
	LastInteraction time.Time
	CreatedAt       time.Time
	Payload         Payload
}

// Payload carries variant-specific state. Concrete types below; exhaustive
// switches over these are the Go rendering of the original sealed hierarchy.
type Payload interface {
	isPayload()
}

// TextPastePayload holds a captured text sample and its detected category.
type TextPastePayload struct {
	Content  string            `json:"content"`
	Category classify.Category `json:"category"`
}

// ToolbeltPayload holds the quick actions the toolbelt currently offers.
type ToolbeltPayload struct {
	Actions []classify.SuggestedAction `json:"actions"`
}

// PinnedPayload holds content the user pinned to keep around.
type PinnedPayload struct {
	Content string `json:"content"`
}

// SystemPayload is a transient system notification.
type SystemPayload struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// QuickActionPayload is a single-action shortcut bubble.
type QuickActionPayload struct {
	Action classify.SuggestedAction `json:"action"`
}

// AccumulatorPayload wraps a regex accumulator state machine.
type AccumulatorPayload struct {
	State accum.State `json:"state"`
}

// VoicePayload is a placeholder for the externally-driven voice bubble; the
// transcription engine itself is an external collaborator.
type VoicePayload struct {
	Recording  bool   `json:"recording"`
	Transcript string `json:"transcript"`
}

// CollaborationPayload is a placeholder for the externally-driven
// collaboration bubble; the transport is an external collaborator.
type CollaborationPayload struct {
	SessionName string `json:"session_name"`
	PeerCount   int    `json:"peer_count"`
}

func (TextPastePayload) isPayload()     {}
func (ToolbeltPayload) isPayload()      {}
func (PinnedPayload) isPayload()        {}
func (SystemPayload) isPayload()        {}
func (QuickActionPayload) isPayload()   {}
func (AccumulatorPayload) isPayload()   {}
func (VoicePayload) isPayload()         {}
func (CollaborationPayload) isPayload() {}

// New creates an entity of the given type with its spec defaults applied.
// Visibility and minimization are provisional until the orchestrator applies
// the current keyboard policy.
func New(t TypeID, payload Payload) Entity {
	spec := SpecFor(t)
	now := time.Now()
	return Entity{
		ID:              NewID(),
		Type:            t,
		Size:            spec.DefaultSize,
		Visible:         true,
		LastInteraction: now,
		CreatedAt:       now,
		Payload:         payload,
	}
}

// NewID generates a ULID for a bubble entity.
func NewID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		// rand.Reader does not fail in practice; fall back to a zero-entropy
		// timestamp ULID rather than propagating an impossible error.
		return ulid.Make().String()
	}
	return id.String()
}

// WithInteraction returns a copy with LastInteraction set to now.
func (e Entity) WithInteraction(now time.Time) Entity {
	e.LastInteraction = now
	return e
}

// WithPosition returns a copy moved to pos with the reposition flag cleared.
func (e Entity) WithPosition(pos Position) Entity {
	e.Position = pos
	e.NeedsReposition = false
	return e
}

// ApplyKeyboardPolicy returns a copy with visibility, minimization, size and
// the reposition flag re-derived from the policy table for the given
// keyboard state. The policy table is the single source of truth; nothing
// here re-derives the rules.
func (e Entity) ApplyKeyboardPolicy(keyboardVisible bool) Entity {
	spec := SpecFor(e.Type)
	e.Visible = spec.ShouldBeVisible(keyboardVisible)
	e.Minimized = spec.ShouldBeMinimized(keyboardVisible)
	e.Size = spec.EffectiveSize(e.Minimized, keyboardVisible)
	if spec.ShouldBeRepositioned(keyboardVisible) {
		e.NeedsReposition = true
	}
	return e
}

// Accumulator returns the accumulator state and true when the entity is a
// regex accumulator bubble.
func (e Entity) Accumulator() (accum.State, bool) {
	p, ok := e.Payload.(AccumulatorPayload)
	if !ok {
		return accum.State{}, false
	}
	return p.State, true
}
