// Package speech extracts a structured expense candidate from a free-text
// voice transcript. Parsing is best-effort English-only heuristics: a
// monetary amount, a human-readable description, and an approximate date.
//
// A transcript without a recognizable amount is a normal outcome, signaled
// by ErrNoAmount; the caller is expected to fall back to manual entry.
package speech

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"spendlog/internal/core"
)

// Candidate is the parser's tentative output, prior to user confirmation.
type Candidate struct {
	Amount      core.Money
	Description string
	SpentAt     time.Time
}

// ErrNoAmount is returned when no monetary amount could be extracted.
var ErrNoAmount = errors.New("no amount found in transcript")

// amountMatchers are tried in order against the lowercased transcript; the
// first one yielding a strictly positive decimal wins. Order matters:
// "spent 20" must beat a later "$5" elsewhere in the phrase.
var amountMatchers = []*regexp.Regexp{
	regexp.MustCompile(`spent\s+\$?(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`\$(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:dollars?|bucks?)`),
	regexp.MustCompile(`(?:paid|cost|was)\s+\$?(\d+(?:\.\d+)?)`),
}

// stripPhrases are removed from the description before individual words.
// Multi-word time phrases have to go first or their remnants survive.
var stripPhrases = []string{
	"this morning", "this afternoon", "this evening", "this night",
	"tonight", "today", "yesterday", "earlier",
}

var stripWords = []string{
	"spent", "paid", "cost", "was", "for", "bought", "purchased", "i",
	"dollars", "dollar", "bucks", "buck", "on",
}

// fallbackStopwords filters the original word list when stripping left too
// little behind.
var fallbackStopwords = map[string]bool{
	"spent": true, "paid": true, "cost": true, "was": true, "for": true,
	"on": true, "i": true, "dollars": true, "dollar": true, "bucks": true,
	"buck": true,
}

// Parse extracts an expense candidate from a transcript, using the current
// time as the reference for date inference.
func Parse(text string) (Candidate, error) {
	return ParseAt(text, time.Now())
}

// ParseAt is Parse with an explicit reference time.
func ParseAt(text string, now time.Time) (Candidate, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Candidate{}, ErrNoAmount
	}

	amountToken := ""
	var cents int64
	for _, re := range amountMatchers {
		m := re.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		v, err := core.ParseDecimalToCents(m[1])
		if err != nil {
			continue
		}
		amountToken = m[1]
		cents = v
		break
	}
	if amountToken == "" {
		return Candidate{}, ErrNoAmount
	}

	return Candidate{
		Amount:      core.Money{Cents: cents},
		Description: extractDescription(text, amountToken),
		SpentAt:     inferDate(normalized, now),
	}, nil
}

// Valid reports whether a candidate is well-formed enough to auto-confirm:
// amount strictly positive and below $10,000, description length in [1, 200).
// The bounds are product thresholds, enforced again by storage validation.
func (c Candidate) Valid() bool {
	if c.Amount.Cents <= 0 || c.Amount.Cents >= 1_000_000 {
		return false
	}
	return len(c.Description) >= 1 && len(c.Description) < 200
}

// extractDescription strips action verbs, the amount token, currency words,
// connectors and coarse time phrases from the original-case text.
func extractDescription(original, amountToken string) string {
	stripped := original
	for _, phrase := range stripPhrases {
		stripped = removeInsensitive(stripped, phrase)
	}
	stripped = removeInsensitive(stripped, "$"+amountToken)
	stripped = removeToken(stripped, amountToken)
	for _, word := range stripWords {
		stripped = removeWord(stripped, word)
	}
	stripped = collapseSpaces(stripped)

	if len(stripped) < 2 {
		stripped = rebuildFromWords(original)
	}
	if len(stripped) < 2 {
		stripped = "Expense"
	}
	return capitalizeFirst(stripped)
}

// rebuildFromWords reconstructs a description from the original word list,
// dropping amount-looking tokens and stopwords.
func rebuildFromWords(original string) string {
	var kept []string
	for _, word := range strings.Fields(original) {
		if word == "" {
			continue
		}
		first := rune(word[0])
		if unicode.IsDigit(first) || first == '$' {
			continue
		}
		if fallbackStopwords[strings.ToLower(word)] {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// inferDate resolves the approximate expense time against now. "yesterday"
// is checked first and wins over time-of-day phrases.
func inferDate(normalized string, now time.Time) time.Time {
	switch {
	case strings.Contains(normalized, "yesterday"):
		return now.Add(-24 * time.Hour)
	case strings.Contains(normalized, "this morning"):
		return atClock(now, 9)
	case strings.Contains(normalized, "this afternoon"):
		return atClock(now, 14)
	case strings.Contains(normalized, "this evening"), strings.Contains(normalized, "tonight"):
		return atClock(now, 19)
	}
	return now
}

func atClock(now time.Time, hour int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
}

func removeInsensitive(s, phrase string) string {
	if phrase == "" {
		return s
	}
	lower := strings.ToLower(s)
	target := strings.ToLower(phrase)
	for {
		i := strings.Index(lower, target)
		if i < 0 {
			return s
		}
		s = s[:i] + " " + s[i+len(target):]
		lower = lower[:i] + " " + lower[i+len(target):]
	}
}

// removeWord drops whole-word, case-insensitive occurrences.
func removeWord(s, word string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if strings.EqualFold(strings.Trim(f, ".,!?"), word) {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// removeToken drops standalone occurrences of the amount token ("25",
// "12.50") without touching digits embedded in other words.
func removeToken(s, token string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if strings.Trim(f, ".,!?$") == token {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
