// Package accum implements the regex accumulator: a pure state machine that
// extracts, deduplicates and bounds pattern matches from an unbounded stream
// of text samples. All transitions are value-in, value-out; a State is never
// mutated in place.
package accum

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// Delimiter selects how exported items are joined.
type Delimiter string

const (
	DelimiterNewline   Delimiter = "newline"
	DelimiterSpace     Delimiter = "space"
	DelimiterComma     Delimiter = "comma"
	DelimiterSemicolon Delimiter = "semicolon"
	DelimiterCustom    Delimiter = "custom"
)

// Pattern describes what an accumulator collects. The expression is compiled
// lazily through a process-wide cache; an invalid expression is expected user
// input and makes accumulation a silent no-op rather than an error.
type Pattern struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Expr        string    `json:"expr"`
	Description string    `json:"description,omitempty"`
	Delimiter   Delimiter `json:"delimiter"`
	CustomDelim string    `json:"custom_delim,omitempty"`
	MaxItems    int       `json:"max_items"` // 0 = unbounded
	Dedup       bool      `json:"dedup"`
}

// NewPattern builds a normalized Pattern: a non-positive max is unbounded
// and an unset delimiter defaults to newline.
func NewPattern(id, name, expr string, delim Delimiter, maxItems int, dedup bool) Pattern {
	if maxItems < 0 {
		maxItems = 0
	}
	if delim == "" {
		delim = DelimiterNewline
	}
	return Pattern{
		ID:        id,
		Name:      name,
		Expr:      expr,
		Delimiter: delim,
		MaxItems:  maxItems,
		Dedup:     dedup,
	}
}

// delimiterString resolves the join string for export.
func (p Pattern) delimiterString() string {
	switch p.Delimiter {
	case DelimiterSpace:
		return " "
	case DelimiterComma:
		return ", "
	case DelimiterSemicolon:
		return "; "
	case DelimiterCustom:
		return p.CustomDelim
	default:
		return "\n"
	}
}

// Item is one accumulated match.
type Item struct {
	Content   string    `json:"content"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the full accumulator state: the pattern, the collected items in
// insertion order, and whether the accumulator is currently collecting.
type State struct {
	Pattern    Pattern `json:"pattern"`
	Items      []Item  `json:"items"`
	Collecting bool    `json:"collecting"`
}

// NewState starts a collecting accumulator for the given pattern.
func NewState(p Pattern) State {
	return State{Pattern: p, Collecting: true}
}

// compileCache memoizes compiled expressions so Pattern stays a plain
// copyable value. Entries are never evicted; the set of distinct user
// patterns in a session is small.
var (
	compileMu    sync.RWMutex
	compileCache = map[string]*regexp.Regexp{}
	compileBad   = map[string]bool{}
)

// compile returns the compiled expression, or nil if it does not compile.
// Validity is checked once per distinct expression.
func compile(expr string) *regexp.Regexp {
	compileMu.RLock()
	re, ok := compileCache[expr]
	bad := compileBad[expr]
	compileMu.RUnlock()
	if ok {
		return re
	}
	if bad {
		return nil
	}

	compiled, err := regexp.Compile(expr)
	compileMu.Lock()
	defer compileMu.Unlock()
	if err != nil {
		compileBad[expr] = true
		return nil
	}
	compileCache[expr] = compiled
	return compiled
}

// Valid reports whether the pattern's expression compiles.
func (p Pattern) Valid() bool {
	return compile(p.Expr) != nil
}

// TryAccumulate feeds a text sample through the accumulator and returns the
// next state. Matches are collected left to right (non-overlapping); with
// dedup enabled, a match whose exact text already exists, in prior items or
// earlier in this batch, is skipped. After appending, the oldest items are
// evicted from the front until the bound holds. A paused accumulator or an
// invalid pattern returns the state unchanged.
func TryAccumulate(s State, text, source string) State {
	if !s.Collecting {
		return s
	}
	p := s.Pattern
	re := compile(p.Expr)
	if re == nil {
		return s
	}

	matches := re.FindAllString(text, -1)
	if len(matches) == 0 {
		return s
	}

	var seen map[string]bool
	if p.Dedup {
		seen = make(map[string]bool, len(s.Items)+len(matches))
		for _, it := range s.Items {
			seen[it.Content] = true
		}
	}

	items := make([]Item, len(s.Items), len(s.Items)+len(matches))
	copy(items, s.Items)

	now := time.Now()
	for _, m := range matches {
		if p.Dedup {
			if seen[m] {
				continue
			}
			seen[m] = true
		}
		items = append(items, Item{Content: m, Source: source, Timestamp: now})
	}

	// FIFO eviction, never by relevance.
	if p.MaxItems > 0 && len(items) > p.MaxItems {
		items = items[len(items)-p.MaxItems:]
	}

	s.Items = items
	return s
}

// Export joins the accumulated contents with the pattern's delimiter.
func Export(s State) string {
	if len(s.Items) == 0 {
		return ""
	}
	parts := make([]string, len(s.Items))
	for i, it := range s.Items {
		parts[i] = it.Content
	}
	return strings.Join(parts, s.Pattern.delimiterString())
}

// DynamicSize scales a base footprint as a step function of the item count.
// Purely a presentation hint; accumulation logic never consults it.
func DynamicSize(s State, baseWidth, baseHeight int) (int, int) {
	n := len(s.Items)
	switch {
	case n >= 50:
		return baseWidth * 18 / 10, baseHeight * 18 / 10
	case n >= 10:
		return baseWidth * 14 / 10, baseHeight * 14 / 10
	default:
		return baseWidth, baseHeight
	}
}

// HasNewContent reports whether any item arrived strictly after since. Lets
// the orchestrator flag a "new content" cue without rescanning per frame.
func HasNewContent(s State, since time.Time) bool {
	for i := len(s.Items) - 1; i >= 0; i-- {
		if s.Items[i].Timestamp.After(since) {
			return true
		}
	}
	return false
}
