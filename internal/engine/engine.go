// Package engine implements the bubble orchestrator: the single owner of
// the live overlay entity collection. It applies the per-type keyboard
// policy, enforces instance caps, routes ingested content into collecting
// accumulators, maintains the relevance ranking, and runs the auto-hide
// timers.
//
// Concurrency model: one mutex serializes all mutations (single writer);
// every mutation rebuilds an immutable snapshot published through an atomic
// pointer, so any number of concurrent readers always see a consistent
// collection without locking. Subscribers get snapshot fan-out over buffered
// channels with non-blocking sends.
package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/avelius/halo/internal/accum"
	"github.com/avelius/halo/internal/bubble"
	"github.com/avelius/halo/internal/classify"
)

// Snapshot is an immutable view of the orchestrator state. The entity slice
// is ordered by relevance (highest first) and must not be mutated by
// readers.
type Snapshot struct {
	Entities        []bubble.Entity
	KeyboardVisible bool
	LastCategory    classify.Category
	Taken           time.Time
}

// Visible returns the visible entities in relevance order, for the capped
// "visible slots" renderer. Ranking orders, visibility filters; the two stay
// orthogonal.
func (s *Snapshot) Visible() []bubble.Entity {
	out := make([]bubble.Entity, 0, len(s.Entities))
	for _, e := range s.Entities {
		if e.Visible {
			out = append(out, e)
		}
	}
	return out
}

// CountByType returns how many entities of the given type exist.
func (s *Snapshot) CountByType(t bubble.TypeID) int {
	n := 0
	for _, e := range s.Entities {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Find returns the entity with the given id, if present.
func (s *Snapshot) Find(id string) (bubble.Entity, bool) {
	for _, e := range s.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return bubble.Entity{}, false
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAutoHideOverride replaces the policy table's auto-hide delay for one
// type. Hosts use it for tuning; tests use it for short timers.
func WithAutoHideOverride(t bubble.TypeID, d time.Duration) Option {
	return func(o *Orchestrator) {
		o.autoHideOverride[t] = d
	}
}

// Orchestrator owns the authoritative entity collection and the keyboard
// flag. All methods are safe for concurrent use.
type Orchestrator struct {
	mu               sync.Mutex
	entities         []bubble.Entity
	keyboardVisible  bool
	lastCategory     classify.Category
	snap             atomic.Pointer[Snapshot]
	timers           map[string]*time.Timer
	subs             []*subscriber
	closed           bool
	autoHideOverride map[bubble.TypeID]time.Duration
}

// New creates an empty orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		timers:           make(map[string]*time.Timer),
		autoHideOverride: make(map[bubble.TypeID]time.Duration),
		lastCategory:     classify.CategoryUnknown,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.publishLocked()
	return o
}

// Restore creates an orchestrator seeded with persisted entities and session
// state. Keyboard policy is reapplied to every entity so the collection is
// consistent with the flag regardless of what was stored.
func Restore(entities []bubble.Entity, keyboardVisible bool, lastCategory classify.Category, opts ...Option) *Orchestrator {
	o := New(opts...)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.keyboardVisible = keyboardVisible
	if lastCategory != "" {
		o.lastCategory = lastCategory
	}
	next := make([]bubble.Entity, 0, len(entities))
	for _, e := range entities {
		e = e.ApplyKeyboardPolicy(keyboardVisible)
		next = append(next, e)
		o.scheduleLocked(e)
	}
	o.entities = next
	o.publishLocked()
	return o
}

// Snapshot returns the latest published snapshot. Never nil.
func (o *Orchestrator) Snapshot() *Snapshot {
	return o.snap.Load()
}

// Add inserts an entity unless its type is at the instance cap, in which
// case the call is a no-op (observable as an unchanged count) and false is
// returned. The current keyboard policy is applied to the newcomer
// immediately and its auto-hide timer starts.
func (o *Orchestrator) Add(e bubble.Entity) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}

	spec := bubble.SpecFor(e.Type)
	count := 0
	for _, existing := range o.entities {
		if existing.Type == e.Type {
			count++
		}
	}
	if count >= spec.MaxInstances {
		return false
	}

	e = e.ApplyKeyboardPolicy(o.keyboardVisible)

	next := make([]bubble.Entity, len(o.entities), len(o.entities)+1)
	copy(next, o.entities)
	o.entities = append(next, e)
	o.scheduleLocked(e)
	o.publishLocked()
	return true
}

// Remove deletes an entity by id. Removing an unknown id is a success
// no-op, keeping the operation idempotent under concurrent retries.
func (o *Orchestrator) Remove(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.removeLocked(id)
}

func (o *Orchestrator) removeLocked(id string) {
	if t, ok := o.timers[id]; ok {
		t.Stop()
		delete(o.timers, id)
	}
	next := make([]bubble.Entity, 0, len(o.entities))
	removed := false
	for _, e := range o.entities {
		if e.ID == id {
			removed = true
			continue
		}
		next = append(next, e)
	}
	if !removed {
		return
	}
	o.entities = next
	o.publishLocked()
}

// UpdateKeyboardState recomputes visibility and minimization for every
// entity from the policy table and flags repositioning types for layout
// recompute. The position itself is owned by the caller's layout layer.
func (o *Orchestrator) UpdateKeyboardState(visible bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.keyboardVisible = visible
	next := make([]bubble.Entity, len(o.entities))
	for i, e := range o.entities {
		next[i] = e.ApplyKeyboardPolicy(visible)
	}
	o.entities = next
	o.publishLocked()
}

// IngestContent classifies a content sample, routes it into every collecting
// regex accumulator, and republishes the ranking against the new category.
// The detected category is returned for the caller's action wiring.
func (o *Orchestrator) IngestContent(text, source string) classify.Category {
	category := classify.Classify(text)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return category
	}

	o.lastCategory = category
	next := make([]bubble.Entity, len(o.entities))
	for i, e := range o.entities {
		if state, ok := e.Accumulator(); ok && state.Collecting {
			state = accum.TryAccumulate(state, text, source)
			e.Payload = bubble.AccumulatorPayload{State: state}
			if !e.Minimized {
				spec := bubble.SpecFor(e.Type)
				w, h := accum.DynamicSize(state, spec.DefaultSize.Width, spec.DefaultSize.Height)
				e.Size = bubble.Size{Width: w, Height: h}
			}
		}
		next[i] = e
	}
	o.entities = next
	o.publishLocked()
	return category
}

// ToggleMinimized flips an entity's minimized state and re-derives its
// size. Unknown ids are a no-op.
func (o *Orchestrator) ToggleMinimized(id string) {
	o.mutateEntity(id, func(e bubble.Entity) bubble.Entity {
		spec := bubble.SpecFor(e.Type)
		e.Minimized = !e.Minimized
		e.Size = spec.EffectiveSize(e.Minimized, o.keyboardVisible)
		if !e.Minimized {
			if state, ok := e.Accumulator(); ok {
				w, h := accum.DynamicSize(state, spec.DefaultSize.Width, spec.DefaultSize.Height)
				e.Size = bubble.Size{Width: w, Height: h}
			}
		}
		return e.WithInteraction(time.Now())
	})
}

// UpdatePosition moves an entity. Unknown ids are a no-op.
func (o *Orchestrator) UpdatePosition(id string, pos bubble.Position) {
	o.mutateEntity(id, func(e bubble.Entity) bubble.Entity {
		return e.WithPosition(pos).WithInteraction(time.Now())
	})
}

// WithInteraction records a user interaction with an entity, refreshing its
// auto-hide deadline.
func (o *Orchestrator) WithInteraction(id string) {
	o.mutateEntity(id, func(e bubble.Entity) bubble.Entity {
		return e.WithInteraction(time.Now())
	})
}

// ResetAccumulator empties an accumulator bubble's collected items while
// keeping it collecting. Unknown ids and non-accumulator bubbles are a
// no-op.
func (o *Orchestrator) ResetAccumulator(id string) {
	o.mutateEntity(id, func(e bubble.Entity) bubble.Entity {
		state, ok := e.Accumulator()
		if !ok {
			return e
		}
		state.Items = nil
		e.Payload = bubble.AccumulatorPayload{State: state}
		if !e.Minimized {
			e.Size = bubble.SpecFor(e.Type).DefaultSize
		}
		return e.WithInteraction(time.Now())
	})
}

// SetCollecting starts or pauses an accumulator bubble's collection without
// touching its items. Unknown ids and non-accumulator bubbles are a no-op.
func (o *Orchestrator) SetCollecting(id string, collecting bool) {
	o.mutateEntity(id, func(e bubble.Entity) bubble.Entity {
		state, ok := e.Accumulator()
		if !ok {
			return e
		}
		state.Collecting = collecting
		e.Payload = bubble.AccumulatorPayload{State: state}
		return e.WithInteraction(time.Now())
	})
}

// mutateEntity applies fn to the entity with the given id under the write
// lock, by whole-collection replacement. Interaction-bearing mutations also
// push the auto-hide deadline forward.
func (o *Orchestrator) mutateEntity(id string, fn func(bubble.Entity) bubble.Entity) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	found := false
	next := make([]bubble.Entity, len(o.entities))
	for i, e := range o.entities {
		if e.ID == id {
			e = fn(e)
			found = true
			o.rescheduleLocked(e)
		}
		next[i] = e
	}
	if !found {
		return
	}
	o.entities = next
	o.publishLocked()
}

// ClearByType removes every entity of the given type.
func (o *Orchestrator) ClearByType(t bubble.TypeID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	next := make([]bubble.Entity, 0, len(o.entities))
	for _, e := range o.entities {
		if e.Type == t {
			if timer, ok := o.timers[e.ID]; ok {
				timer.Stop()
				delete(o.timers, e.ID)
			}
			continue
		}
		next = append(next, e)
	}
	o.entities = next
	o.publishLocked()
}

// ClearAll removes every entity.
func (o *Orchestrator) ClearAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	for id, timer := range o.timers {
		timer.Stop()
		delete(o.timers, id)
	}
	o.entities = nil
	o.publishLocked()
}

// Close cancels all timers and closes subscriber channels. The orchestrator
// is inert afterwards; snapshots remain readable.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	for id, timer := range o.timers {
		timer.Stop()
		delete(o.timers, id)
	}
	for _, sub := range o.subs {
		close(sub.ch)
	}
	o.subs = nil
}

// autoHideDelay resolves the effective auto-hide delay for a type.
// Zero means never.
func (o *Orchestrator) autoHideDelay(t bubble.TypeID) time.Duration {
	if d, ok := o.autoHideOverride[t]; ok {
		return d
	}
	return time.Duration(bubble.SpecFor(t).AutoHideDelayMs) * time.Millisecond
}

// scheduleLocked starts the auto-hide timer for a newly tracked entity.
func (o *Orchestrator) scheduleLocked(e bubble.Entity) {
	delay := o.autoHideDelay(e.Type)
	if delay <= 0 {
		return
	}
	id := e.ID
	o.timers[id] = time.AfterFunc(delay, func() { o.expire(id) })
}

// rescheduleLocked pushes an entity's timer out after an interaction.
func (o *Orchestrator) rescheduleLocked(e bubble.Entity) {
	delay := o.autoHideDelay(e.Type)
	if delay <= 0 {
		return
	}
	if timer, ok := o.timers[e.ID]; ok {
		timer.Reset(delay)
	}
}

// expire fires when an auto-hide timer elapses. The elapsed time since the
// last interaction is re-checked under the lock rather than trusting the
// original schedule: if an interaction landed after the timer was armed,
// the removal is skipped and the timer rearmed for the remainder. That makes
// a timer firing concurrently with an interaction safe: last writer wins on
// LastInteraction and the recheck decides.
func (o *Orchestrator) expire(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	var found *bubble.Entity
	for i := range o.entities {
		if o.entities[i].ID == id {
			found = &o.entities[i]
			break
		}
	}
	if found == nil {
		delete(o.timers, id)
		return
	}

	delay := o.autoHideDelay(found.Type)
	if delay <= 0 {
		delete(o.timers, id)
		return
	}

	elapsed := time.Since(found.LastInteraction)
	if elapsed < delay {
		if timer, ok := o.timers[id]; ok {
			timer.Reset(delay - elapsed)
		}
		return
	}

	o.removeLocked(id)
}

// publishLocked rebuilds and publishes the snapshot and fans it out to
// subscribers. Callers must hold the mutex.
func (o *Orchestrator) publishLocked() {
	ranked := make([]bubble.Entity, len(o.entities))
	copy(ranked, o.entities)
	rank(ranked, o.lastCategory, o.keyboardVisible)

	snap := &Snapshot{
		Entities:        ranked,
		KeyboardVisible: o.keyboardVisible,
		LastCategory:    o.lastCategory,
		Taken:           time.Now(),
	}
	o.snap.Store(snap)
	o.fanOutLocked(snap)
}
