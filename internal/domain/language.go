package domain

import (
	"context"
	"time"
)

// Period is a concrete instant range resolved from a relative phrase such as "this week".
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LanguageService is the natural-language collaborator. Implementations return errors wrapping
// ErrExtractionFailed, ErrValidationFailed or ErrUpstreamUnavailable.
type LanguageService interface {
	// ExtractEvent turns free text into an event draft, resolving relative dates against now.
	ExtractEvent(ctx context.Context, input string, now time.Time) (*EventDraft, error)
	// ResolvePeriod turns a period phrase into a concrete range, relative to now.
	ResolvePeriod(ctx context.Context, phrase string, now time.Time) (*Period, error)
	// ExplainConflict returns a one-sentence warning about candidate clashing with existing.
	ExplainConflict(ctx context.Context, candidate *EventDraft, existing *Event) (string, error)
}
