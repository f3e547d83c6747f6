// Package classify assigns spending categories to free-text expense
// descriptions using keyword matching, and offers ranked category
// suggestions for partial input.
//
// The category set is closed and the keyword tables are immutable,
// package-level data. All functions are pure and safe for concurrent use.
package classify

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Category is one label of the fixed category set.
type Category string

const (
	FoodDining     Category = "Food & Dining"
	Groceries      Category = "Groceries"
	Transportation Category = "Transportation"
	Entertainment  Category = "Entertainment"
	Shopping       Category = "Shopping"
	Utilities      Category = "Utilities"
	Healthcare     Category = "Healthcare"
	Other          Category = "Other"
)

// maxSuggestions caps the number of ranked suggestions returned.
const maxSuggestions = 3

// Classify maps a description to exactly one category. It is total:
// empty input and input matching no keyword both resolve to Other.
//
// Categories are scanned in a fixed priority order (see classifyRules), so a
// description matching keywords from two categories resolves to the one
// scanned first. "pharmacy shopping" is Healthcare, not Shopping.
func Classify(description string) Category {
	text := strings.ToLower(strings.TrimSpace(description))
	if text == "" {
		return Other
	}
	for _, rule := range classifyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return Other
}

// Suggest returns up to three categories ranked for a partial description,
// best match first. Input shorter than two runes returns the full category
// set in declaration order.
//
// A category's score is the summed length of all of its keywords found in
// the input; categories without any match are excluded. Ties keep
// declaration order (the sort is stable over the declaration-ordered table).
func Suggest(partial string) []Category {
	text := strings.ToLower(strings.TrimSpace(partial))
	if utf8.RuneCountInString(text) < 2 {
		return All()
	}

	type scored struct {
		category Category
		score    int
	}
	var ranked []scored
	for _, cat := range categoryOrder {
		score := 0
		for _, kw := range keywordsFor(cat) {
			if strings.Contains(text, kw) {
				score += len(kw)
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{category: cat, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > maxSuggestions {
		ranked = ranked[:maxSuggestions]
	}
	out := make([]Category, len(ranked))
	for i, s := range ranked {
		out[i] = s.category
	}
	return out
}

// All returns the category set in declaration order. The returned slice is a
// copy and may be modified by the caller.
func All() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Valid reports whether s is a member of the category set.
func Valid(s string) bool {
	for _, cat := range categoryOrder {
		if Category(s) == cat {
			return true
		}
	}
	return false
}

func keywordsFor(cat Category) []string {
	for _, rule := range classifyRules {
		if rule.category == cat {
			return rule.keywords
		}
	}
	return nil
}
