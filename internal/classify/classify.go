// Package classify implements the content heuristics that decide what kind
// of text just arrived (URL, email, phone number, ...) and which actions a
// bubble should offer for it. Rules run in a fixed priority order and the
// first match wins; the classifier is tuned for precision over recall and is
// deliberately not a parser.
package classify

import "strings"

// Category is the detected kind of a content sample.
// Derived on every ingress event, never persisted.
type Category string

const (
	CategoryText    Category = "text"
	CategoryURL     Category = "url"
	CategoryEmail   Category = "email"
	CategoryPhone   Category = "phone"
	CategoryAddress Category = "address"
	CategoryJSON    Category = "json"
	CategoryCode    Category = "code"
	CategoryNumber  Category = "number"
	CategoryUnknown Category = "unknown"
)

// AllCategories lists every category in declaration order.
var AllCategories = []Category{
	CategoryText, CategoryURL, CategoryEmail, CategoryPhone,
	CategoryAddress, CategoryJSON, CategoryCode, CategoryNumber,
	CategoryUnknown,
}

// ParseCategory maps a stored category string back to a Category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range AllCategories {
		if string(c) == s {
			return c, true
		}
	}
	return CategoryUnknown, false
}

// Classify determines the content category of a text sample.
// It is pure, total, and O(len(text)): a single scan per rule, no I/O.
// Rule order is part of the contract; callers (ranking, action wiring)
// depend on the same heuristics, so the order must not be rearranged.
func Classify(text string) Category {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return CategoryText
	}

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return CategoryURL
	}

	if isEmail(trimmed) {
		return CategoryEmail
	}

	if isPhoneNumber(trimmed) {
		return CategoryPhone
	}

	// Broad catch-all for place-like strings: short, multi-word, and not
	// anything more specific. Low precision is intentional.
	if len(trimmed) >= 3 && len(trimmed) <= 100 && strings.Contains(trimmed, " ") {
		return CategoryAddress
	}

	return CategoryText
}

// isEmail reports whether s matches ^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+$.
// Implemented as a scan rather than a regexp so classification stays
// allocation-free on the hot path.
func isEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	for i := 0; i < at; i++ {
		if !isLocalByte(s[i]) {
			return false
		}
	}
	for i := at + 1; i < len(s); i++ {
		if !isDomainByte(s[i]) {
			return false
		}
	}
	// A second '@' would have failed the domain scan above.
	return true
}

func isLocalByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '+' || b == '_' || b == '.' || b == '-':
		return true
	}
	return false
}

func isDomainByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '.' || b == '-':
		return true
	}
	return false
}

// isPhoneNumber reports whether s looks like a phone number: only digits,
// spaces, parentheses, dashes and dots (with an optional leading '+'), and
// at least seven digit characters. There is intentionally no upper bound on
// digit count and separators may interleave arbitrarily; downstream action
// wiring depends on this exact shape. Digit-only strings shorter than seven
// digits fall through to Text so short numeric codes are not misread as
// phone numbers.
func isPhoneNumber(s string) bool {
	digits := 0
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= '0' && b <= '9':
			digits++
		case b == ' ' || b == '(' || b == ')' || b == '-' || b == '.':
			// separator
		case b == '+' && i == 0:
			// leading country-code marker only
		default:
			return false
		}
	}
	return digits >= 7
}
