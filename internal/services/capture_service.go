package services

import (
	"errors"
	"log/slog"
	"time"

	"spendlog/internal/classify"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/speech"
)

// ErrCandidateOutOfRange means the parsed amount or description falls
// outside the accepted bounds.
var ErrCandidateOutOfRange = errors.New("parsed expense out of range")

// CapturePreview is what a spoken phrase turns into before the user
// confirms it: the parsed candidate, the auto-assigned category and
// alternative category suggestions.
type CapturePreview struct {
	Candidate   speech.Candidate
	Category    classify.Category
	Suggestions []classify.Category
}

// PreviewCapture parses a transcript into an expense candidate and
// classifies it by its description.
func PreviewCapture(transcript string) (CapturePreview, error) {
	return previewCaptureAt(transcript, time.Now())
}

func previewCaptureAt(transcript string, now time.Time) (CapturePreview, error) {
	candidate, err := speech.ParseAt(transcript, now)
	if err != nil {
		return CapturePreview{}, err
	}
	if !candidate.Valid() {
		return CapturePreview{}, ErrCandidateOutOfRange
	}

	category := classify.Classify(candidate.Description)
	slog.Debug("Transcript parsed",
		applog.FieldOperation, applog.OpParse,
		applog.FieldTranscript, len(transcript),
		applog.FieldAmountCents, candidate.Amount.Cents,
		applog.FieldCategory, string(category))

	return CapturePreview{
		Candidate:   candidate,
		Category:    category,
		Suggestions: classify.Suggest(candidate.Description),
	}, nil
}

// ToExpense turns a confirmed preview into a storable expense. An explicit
// category overrides the classified one.
func (p CapturePreview) ToExpense(category string) core.Expense {
	cat := classify.Category(category)
	if category == "" || !classify.Valid(category) {
		cat = p.Category
	}
	return core.Expense{
		SpentAt:     p.Candidate.SpentAt,
		Description: p.Candidate.Description,
		Amount:      p.Candidate.Amount,
		Category:    string(cat),
	}
}
