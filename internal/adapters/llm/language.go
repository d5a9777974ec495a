package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nlschedule/internal/domain"
)

// WireLayout is the wall-clock format exchanged with the model.
const WireLayout = "2006-01-02 15:04"

var acceptedLayouts = []string{WireLayout, "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02T15:04:05"}

var _ domain.LanguageService = (*Client)(nil)

type draftReply struct {
	Title    string            `json:"title"`
	Start    *string           `json:"start_datetime"`
	End      *string           `json:"end_datetime"`
	Kind     string            `json:"event_type"`
	Priority json.Number       `json:"priority"`
	IsAllDay bool              `json:"is_all_day"`
	Category domain.Categories `json:"category"`
}

type periodReply struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (c *Client) ExtractEvent(ctx context.Context, input string, now time.Time) (*domain.EventDraft, error) {
	text, err := c.complete(ctx, extractPrompt(input, now.In(c.loc).Format(WireLayout)), 1000)
	if err != nil {
		return nil, fmt.Errorf("extract event: %w", err)
	}
	var reply draftReply
	if err := json.Unmarshal([]byte(unfence(text)), &reply); err != nil {
		return nil, fmt.Errorf("extract event: %w: %v", domain.ErrExtractionFailed, err)
	}

	if reply.Start == nil || strings.TrimSpace(*reply.Start) == "" {
		return nil, fmt.Errorf("extract event: %w: start is required", domain.ErrValidationFailed)
	}
	start, err := c.parseInstant(*reply.Start)
	if err != nil {
		return nil, fmt.Errorf("extract event: %w: start: %v", domain.ErrValidationFailed, err)
	}
	draft := &domain.EventDraft{
		Title:      reply.Title,
		Start:      start,
		Kind:       domain.Kind(strings.ToLower(strings.TrimSpace(reply.Kind))),
		IsAllDay:   reply.IsAllDay,
		Categories: reply.Category,
	}
	if reply.End != nil && strings.TrimSpace(*reply.End) != "" {
		end, err := c.parseInstant(*reply.End)
		if err != nil {
			return nil, fmt.Errorf("extract event: %w: end: %v", domain.ErrValidationFailed, err)
		}
		draft.End = &end
	}
	if reply.Priority != "" {
		p, err := reply.Priority.Int64()
		if err != nil {
			return nil, fmt.Errorf("extract event: %w: priority %q", domain.ErrValidationFailed, reply.Priority)
		}
		draft.Priority = int(p)
	}
	return draft, nil
}

func (c *Client) ResolvePeriod(ctx context.Context, phrase string, now time.Time) (*domain.Period, error) {
	text, err := c.complete(ctx, periodPrompt(phrase, now.In(c.loc).Format(WireLayout)), 500)
	if err != nil {
		return nil, fmt.Errorf("resolve period: %w", err)
	}
	var reply periodReply
	if err := json.Unmarshal([]byte(unfence(text)), &reply); err != nil {
		return nil, fmt.Errorf("resolve period: %w: %v", domain.ErrExtractionFailed, err)
	}
	start, err := c.parseInstant(reply.Start)
	if err != nil {
		return nil, fmt.Errorf("resolve period: %w: start: %v", domain.ErrExtractionFailed, err)
	}
	end, err := c.parseInstant(reply.End)
	if err != nil {
		return nil, fmt.Errorf("resolve period: %w: end: %v", domain.ErrExtractionFailed, err)
	}
	return &domain.Period{Start: start, End: end}, nil
}

func (c *Client) ExplainConflict(ctx context.Context, candidate *domain.EventDraft, existing *domain.Event) (string, error) {
	prompt := conflictPrompt(
		c.describe(candidate.Title, candidate.Start, candidate.End, candidate.Kind, candidate.IsAllDay, candidate.Categories),
		c.describe(existing.Title, existing.Start, existing.End, existing.Kind, existing.IsAllDay, existing.Categories),
	)
	text, err := c.complete(ctx, prompt, 200)
	if err != nil {
		return "", fmt.Errorf("explain conflict: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed instant %q", s)
}

func (c *Client) describe(title string, start time.Time, end *time.Time, kind domain.Kind, allDay bool, cats domain.Categories) eventFacts {
	f := eventFacts{
		Title:    title,
		Start:    start.In(c.loc).Format(WireLayout),
		End:      "undecided",
		Kind:     string(kind),
		AllDay:   allDay,
		Category: "none",
	}
	if end != nil {
		f.End = end.In(c.loc).Format(WireLayout)
	}
	if len(cats) > 0 {
		f.Category = strings.Join(cats, ", ")
	}
	return f
}
