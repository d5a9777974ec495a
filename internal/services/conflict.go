package services

import (
	"nlschedule/internal/domain"
)

// ShouldWarn decides whether an existing event that already overlaps the candidate in time
// should be reported as a conflict. Rules are evaluated top to bottom; the first that applies wins.
func ShouldWarn(candidate, existing domain.ConflictProfile) bool {
	// Co-categorised events are expected to co-occur.
	if candidate.Categories.Intersects(existing.Categories) {
		return false
	}

	if isTimedActivity(candidate) && isTimedActivity(existing) {
		return true
	}

	if candidate.IsAllDay != existing.IsAllDay {
		timed := existing
		if existing.IsAllDay {
			timed = candidate
		}
		if isTimedActivity(timed) {
			return true
		}
	}

	if candidate.Kind == domain.KindBlock || existing.Kind == domain.KindBlock {
		return true
	}

	return false
}

func isTimedActivity(p domain.ConflictProfile) bool {
	return p.Kind == domain.KindActivity && !p.IsAllDay
}

// FilterOverlapping keeps the existing events whose range could intersect candidate.
// A candidate without an end yields nothing, and existing events without an end are skipped.
func FilterOverlapping(candidate domain.TimeRange, existing []*domain.Event) []*domain.Event {
	if !candidate.Bounded() {
		return nil
	}
	var out []*domain.Event
	for _, e := range existing {
		r := e.Range()
		if !r.Bounded() {
			continue
		}
		if r.Overlaps(candidate) || candidate.StartsWithin(r.Start) || r.Covers(candidate) {
			out = append(out, e)
		}
	}
	return out
}

// DetectConflicts applies the overlap filter and then the policy to each remaining event.
// Conflicts are returned per event in input order.
func DetectConflicts(candidate *domain.EventDraft, existing []*domain.Event) []*domain.Event {
	profile := candidate.Profile()
	var conflicts []*domain.Event
	for _, e := range FilterOverlapping(candidate.Range(), existing) {
		if ShouldWarn(profile, e.Profile()) {
			conflicts = append(conflicts, e)
		}
	}
	return conflicts
}
