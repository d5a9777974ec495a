package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Kind classifies an event for conflict purposes.
type Kind string

const (
	// KindActivity is a timed occurrence such as a meeting or a date.
	KindActivity Kind = "activity"
	// KindBlock is a multi-day span such as a training camp or an exam period.
	KindBlock Kind = "block"
	// KindDeadline is an instant marker with no duration.
	KindDeadline Kind = "deadline"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindActivity, KindBlock, KindDeadline:
		return true
	}
	return false
}

// Priority bounds. 1 is the most important.
const (
	PriorityHighest = 1
	PriorityLowest  = 5
	DefaultPriority = 3
)

// Categories is a set of free-text labels. Labels are NFKC-normalised and trimmed,
// empty labels are dropped, duplicates collapse, and the backing slice is kept sorted
// so two sets with the same members compare equal.
type Categories []string

// NewCategories builds a set from the given labels.
func NewCategories(labels ...string) Categories {
	seen := make(map[string]struct{}, len(labels))
	out := make(Categories, 0, len(labels))
	for _, l := range labels {
		l = normalizeLabel(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func normalizeLabel(l string) string {
	return strings.TrimSpace(norm.NFKC.String(l))
}

// Add inserts labels into the set.
func (c *Categories) Add(labels ...string) {
	*c = NewCategories(append(append([]string{}, (*c)...), labels...)...)
}

// Contains reports whether label is a member of the set.
func (c Categories) Contains(label string) bool {
	label = normalizeLabel(label)
	i := sort.SearchStrings(c, label)
	return i < len(c) && c[i] == label
}

// Intersects reports whether the two sets share at least one label.
func (c Categories) Intersects(other Categories) bool {
	if len(c) == 0 || len(other) == 0 {
		return false
	}
	small, large := c, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for _, l := range small {
		if large.Contains(l) {
			return true
		}
	}
	return false
}

// MarshalJSON encodes an empty set as [] rather than null.
func (c Categories) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(c))
}

// UnmarshalJSON accepts an array of labels, a single label string, or null.
func (c *Categories) UnmarshalJSON(b []byte) error {
	var labels []string
	if err := json.Unmarshal(b, &labels); err != nil {
		var single string
		if err2 := json.Unmarshal(b, &single); err2 != nil {
			return fmt.Errorf("categories: %w", err)
		}
		labels = []string{single}
	}
	*c = NewCategories(labels...)
	return nil
}

// TimeRange pairs a start instant with an optional end. A nil End means the range has
// no defined end.
type TimeRange struct {
	Start time.Time
	End   *time.Time
}

// Bounded reports whether the range has an end.
func (r TimeRange) Bounded() bool {
	return r.End != nil
}

// Overlaps reports a true interval overlap: r.Start < o.End and o.Start < r.End.
// Unbounded ranges never overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	if !r.Bounded() || !o.Bounded() {
		return false
	}
	return r.Start.Before(*o.End) && o.Start.Before(*r.End)
}

// StartsWithin reports whether t falls in [r.Start, r.End).
func (r TimeRange) StartsWithin(t time.Time) bool {
	if !r.Bounded() {
		return false
	}
	return !t.Before(r.Start) && t.Before(*r.End)
}

// Covers reports whether r fully contains o, end points included.
func (r TimeRange) Covers(o TimeRange) bool {
	if !r.Bounded() || !o.Bounded() {
		return false
	}
	return !r.Start.After(o.Start) && !r.End.Before(*o.End)
}

// ConflictProfile is the part of an event the conflict rules look at.
type ConflictProfile struct {
	Kind       Kind
	IsAllDay   bool
	Categories Categories
}

// Event is one stored calendar entry.
// swagger:model Event
type Event struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"user_id"`
	Title      string     `json:"title"`
	Start      time.Time  `json:"start"`
	End        *time.Time `json:"end"`
	Kind       Kind       `json:"type"`
	Priority   int        `json:"priority"`
	IsAllDay   bool       `json:"is_all_day"`
	Categories Categories `json:"category"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Range returns the event's time range.
func (e *Event) Range() TimeRange {
	return TimeRange{Start: e.Start, End: e.End}
}

// Profile returns the fields the conflict rules evaluate.
func (e *Event) Profile() ConflictProfile {
	return ConflictProfile{Kind: e.Kind, IsAllDay: e.IsAllDay, Categories: e.Categories}
}

// EventDraft is a structured event proposal produced by the language service, not yet stored.
// swagger:model EventDraft
type EventDraft struct {
	Title      string     `json:"title"`
	Start      time.Time  `json:"start"`
	End        *time.Time `json:"end"`
	Kind       Kind       `json:"type"`
	Priority   int        `json:"priority"`
	IsAllDay   bool       `json:"is_all_day"`
	Categories Categories `json:"category"`
}

// Normalize fills defaults: kind activity, priority 3, and a canonical category set.
func (d *EventDraft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	if d.Kind == "" {
		d.Kind = KindActivity
	}
	if d.Priority == 0 {
		d.Priority = DefaultPriority
	}
	d.Categories = NewCategories(d.Categories...)
}

// Validate checks the draft can become an Event. Inverted or zero-length ranges are accepted.
func (d *EventDraft) Validate() error {
	var errs []string
	if d.Title == "" {
		errs = append(errs, "title is required")
	}
	if d.Start.IsZero() {
		errs = append(errs, "start is required")
	}
	if !d.Kind.Valid() {
		errs = append(errs, fmt.Sprintf("unknown event type %q", d.Kind))
	}
	if d.Priority < PriorityHighest || d.Priority > PriorityLowest {
		errs = append(errs, fmt.Sprintf("priority must be between %d and %d", PriorityHighest, PriorityLowest))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(errs, "; "))
	}
	return nil
}

// Range returns the draft's time range.
func (d *EventDraft) Range() TimeRange {
	return TimeRange{Start: d.Start, End: d.End}
}

// Profile returns the fields the conflict rules evaluate.
func (d *EventDraft) Profile() ConflictProfile {
	return ConflictProfile{Kind: d.Kind, IsAllDay: d.IsAllDay, Categories: d.Categories}
}

// NewEvent returns an Event for ownerID built from the draft. ID is set by the repository on create.
func NewEvent(ownerID string, d *EventDraft, createdAt, updatedAt time.Time) *Event {
	var end *time.Time
	if d.End != nil {
		t := *d.End
		end = &t
	}
	return &Event{
		OwnerID:    ownerID,
		Title:      d.Title,
		Start:      d.Start,
		End:        end,
		Kind:       d.Kind,
		Priority:   d.Priority,
		IsAllDay:   d.IsAllDay,
		Categories: NewCategories(d.Categories...),
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

// EventRepository defines the interface for event storage. Every query is scoped to one owner.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	// ListOverlapping returns the owner's bounded events that may intersect [start, end).
	ListOverlapping(ctx context.Context, ownerID string, start, end time.Time) ([]*Event, error)
	// ListByStartRange returns the owner's events with start in [start, end], ascending by start.
	ListByStartRange(ctx context.Context, ownerID string, start, end time.Time) ([]*Event, error)
	// Delete removes the event only when it belongs to ownerID; otherwise ErrNotFound.
	Delete(ctx context.Context, id, ownerID string) error
}

// CalendarExporter renders events into a calendar interchange format.
type CalendarExporter interface {
	Export(events []*Event) ([]byte, error)
	ContentType() string
}
