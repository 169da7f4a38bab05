package engine

import (
	"sort"

	"github.com/avelius/halo/internal/bubble"
	"github.com/avelius/halo/internal/classify"
)

// tierWeight dominates any type priority (priorities stay below it by
// construction), so "tier" semantics hold: a relevance or keyboard tier
// always outranks a priority difference within the same tier.
const tierWeight = 1000

// score computes the ranking score for one entity: the type's z-index
// priority, plus a tier when the type's relevance predicate matches the
// last classified category, plus a tier when the keyboard is visible.
func score(e bubble.Entity, last classify.Category, keyboardVisible bool) int {
	spec := bubble.SpecFor(e.Type)
	s := spec.Priority
	if spec.IsRelevantTo(last) {
		s += tierWeight
	}
	if keyboardVisible {
		s += tierWeight
	}
	return s
}

// rank sorts entities in place, highest score first; ties break by the most
// recent interaction, then by id so the order is fully deterministic.
// Ranking never hides or deletes entities, it only orders them for the
// caller's capped visible-slots renderer.
func rank(entities []bubble.Entity, last classify.Category, keyboardVisible bool) {
	sort.SliceStable(entities, func(i, j int) bool {
		si, sj := score(entities[i], last, keyboardVisible), score(entities[j], last, keyboardVisible)
		if si != sj {
			return si > sj
		}
		if !entities[i].LastInteraction.Equal(entities[j].LastInteraction) {
			return entities[i].LastInteraction.After(entities[j].LastInteraction)
		}
		return entities[i].ID < entities[j].ID
	})
}
