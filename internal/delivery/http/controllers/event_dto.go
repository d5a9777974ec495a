package controllers

import (
	"fmt"
	"strings"
	"time"

	"nlschedule/internal/domain"
)

// WireLayout is the minute-precision layout used for event times on the wire, read and written
// in the server's configured time zone.
const WireLayout = "2006-01-02 15:04"

// EventResponse is an event as returned by the schedule endpoints.
type EventResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     string    `json:"start" example:"2025-05-30 10:00"`
	End       *string   `json:"end" example:"2025-05-30 11:00"`
	Type      string    `json:"type" example:"activity"`
	Priority  int       `json:"priority" example:"3"`
	IsAllDay  bool      `json:"is_all_day"`
	Category  []string  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// EventDraftDTO is an unsaved event proposal. It is returned with a conflict report and
// accepted back by the confirm endpoint.
type EventDraftDTO struct {
	Title    string   `json:"title"`
	Start    string   `json:"start" example:"2025-05-30 10:00"`
	End      *string  `json:"end,omitempty" example:"2025-05-30 11:00"`
	Type     string   `json:"type,omitempty" example:"activity"`
	Priority int      `json:"priority,omitempty" example:"3"`
	IsAllDay bool     `json:"is_all_day"`
	Category []string `json:"category"`
}

// ConflictResponse is one existing event that clashes with the proposal.
type ConflictResponse struct {
	Event            EventResponse `json:"event"`
	WarningMessage   string        `json:"warning_message"`
	ExplanationError string        `json:"explanation_error,omitempty"`
}

// CreateEventResponse is the data of add-event and confirm-event. Status is "success" when the
// event was stored and "conflict" when it was withheld.
type CreateEventResponse struct {
	Status        string             `json:"status" example:"success"`
	Event         *EventResponse     `json:"event,omitempty"`
	ProposedEvent *EventDraftDTO     `json:"proposed_event,omitempty"`
	Conflicts     []ConflictResponse `json:"conflicts,omitempty"`
	Degraded      bool               `json:"degraded"`
}

// PeriodResponse is a resolved period.
type PeriodResponse struct {
	Start string `json:"start" example:"2025-05-30 00:00"`
	End   string `json:"end" example:"2025-05-30 23:59"`
}

func formatWire(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(WireLayout)
}

// parseWire reads a wire time. RFC 3339 is accepted as well so clients may send offsets.
func parseWire(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(WireLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: time %q must use the format YYYY-MM-DD HH:MM", domain.ErrValidationFailed, s)
}

func newEventResponse(e *domain.Event, loc *time.Location) EventResponse {
	resp := EventResponse{
		ID:        e.ID,
		Title:     e.Title,
		Start:     formatWire(e.Start, loc),
		Type:      string(e.Kind),
		Priority:  e.Priority,
		IsAllDay:  e.IsAllDay,
		Category:  append([]string{}, e.Categories...),
		CreatedAt: e.CreatedAt,
	}
	if e.End != nil {
		end := formatWire(*e.End, loc)
		resp.End = &end
	}
	return resp
}

func newEventResponses(events []*domain.Event, loc *time.Location) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResponse(e, loc))
	}
	return out
}

func newDraftDTO(d *domain.EventDraft, loc *time.Location) *EventDraftDTO {
	dto := &EventDraftDTO{
		Title:    d.Title,
		Start:    formatWire(d.Start, loc),
		Type:     string(d.Kind),
		Priority: d.Priority,
		IsAllDay: d.IsAllDay,
		Category: append([]string{}, d.Categories...),
	}
	if d.End != nil {
		end := formatWire(*d.End, loc)
		dto.End = &end
	}
	return dto
}

// toDomain converts the DTO to a draft. Defaults for type and priority are filled by the service.
func (d *EventDraftDTO) toDomain(loc *time.Location) (*domain.EventDraft, error) {
	start, err := parseWire(d.Start, loc)
	if err != nil {
		return nil, err
	}
	draft := &domain.EventDraft{
		Title:      d.Title,
		Start:      start,
		Kind:       domain.Kind(strings.ToLower(strings.TrimSpace(d.Type))),
		Priority:   d.Priority,
		IsAllDay:   d.IsAllDay,
		Categories: domain.NewCategories(d.Category...),
	}
	if d.End != nil && strings.TrimSpace(*d.End) != "" {
		end, err := parseWire(*d.End, loc)
		if err != nil {
			return nil, err
		}
		draft.End = &end
	}
	return draft, nil
}

func newCreateEventResponse(res *domain.CreateResult, loc *time.Location) CreateEventResponse {
	out := CreateEventResponse{Status: string(res.Status), Degraded: res.Degraded}
	if res.Event != nil {
		ev := newEventResponse(res.Event, loc)
		out.Event = &ev
	}
	if res.Proposed != nil {
		out.ProposedEvent = newDraftDTO(res.Proposed, loc)
	}
	for _, c := range res.Conflicts {
		out.Conflicts = append(out.Conflicts, ConflictResponse{
			Event:            newEventResponse(c.Event, loc),
			WarningMessage:   c.Reason,
			ExplanationError: c.ExplanationError,
		})
	}
	return out
}
