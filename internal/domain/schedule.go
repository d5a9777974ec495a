package domain

import (
	"context"
	"time"
)

// CreateStatus is the outcome of an event creation request.
type CreateStatus string

const (
	// CreateStatusCommitted means the event was stored.
	CreateStatusCommitted CreateStatus = "success"
	// CreateStatusConflict means creation was withheld because of conflicts.
	CreateStatusConflict CreateStatus = "conflict"
)

// Conflict is one existing event flagged against a candidate, with the warning text.
// ExplanationError is set when the warning could not be generated.
type Conflict struct {
	Event            *Event `json:"event"`
	Reason           string `json:"warning_message"`
	ExplanationError string `json:"explanation_error,omitempty"`
}

// CreateResult is returned by event creation. A conflict is a successful outcome, not an error.
type CreateResult struct {
	Status    CreateStatus `json:"status"`
	Event     *Event       `json:"event,omitempty"`
	Proposed  *EventDraft  `json:"proposed_event,omitempty"`
	Conflicts []Conflict   `json:"conflicts,omitempty"`
	// Degraded is true when at least one conflict is missing its warning text.
	Degraded bool `json:"degraded"`
}

// ScheduleService defines the caller-facing schedule operations.
type ScheduleService interface {
	// CreateEvent extracts a draft from free text and commits it unless it conflicts.
	CreateEvent(ctx context.Context, ownerID, input string) (*CreateResult, error)
	// CreateEventFromDraft runs the conflict check on an already structured draft. With force set
	// the draft is committed even when conflicts exist; the conflicts are still reported.
	CreateEventFromDraft(ctx context.Context, ownerID string, draft *EventDraft, force bool) (*CreateResult, error)
	// ListEvents resolves the period phrase and returns the owner's events starting inside it.
	ListEvents(ctx context.Context, ownerID, period string) ([]*Event, *Period, error)
	// ListEventsInRange returns the owner's events with start in [start, end], ascending.
	ListEventsInRange(ctx context.Context, ownerID string, start, end time.Time) ([]*Event, error)
	DeleteEvent(ctx context.Context, ownerID, eventID string) error
}
