package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nlschedule/internal/domain"
)

type scheduleService struct {
	eventRepo      domain.EventRepository
	language       domain.LanguageService
	locks          *ownerLocks
	logger         *slog.Logger
	clock          func() time.Time
	contextTimeout time.Duration
}

// NewScheduleService returns the schedule service. timeout bounds each store interaction; the
// language service enforces its own deadline.
func NewScheduleService(eventRepo domain.EventRepository,
	language domain.LanguageService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ScheduleService {
	return &scheduleService{
		eventRepo:      eventRepo,
		language:       language,
		locks:          newOwnerLocks(),
		logger:         logger,
		clock:          time.Now,
		contextTimeout: timeout,
	}
}

func (s *scheduleService) CreateEvent(ctx context.Context, ownerID, input string) (*domain.CreateResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: event owner is required", domain.ErrValidationFailed)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: input is required", domain.ErrValidationFailed)
	}

	// Extraction happens before any lock is taken so a slow or failing upstream never blocks
	// other requests for the same owner.
	draft, err := s.language.ExtractEvent(ctx, input, s.clock())
	if err != nil {
		return nil, err
	}
	return s.intake(ctx, ownerID, draft, false)
}

func (s *scheduleService) CreateEventFromDraft(ctx context.Context, ownerID string, draft *domain.EventDraft, force bool) (*domain.CreateResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: event owner is required", domain.ErrValidationFailed)
	}
	if draft == nil {
		return nil, fmt.Errorf("%w: draft is required", domain.ErrValidationFailed)
	}
	return s.intake(ctx, ownerID, draft, force)
}

func (s *scheduleService) intake(ctx context.Context, ownerID string, draft *domain.EventDraft, force bool) (*domain.CreateResult, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	event, conflicts, err := s.checkAndCommit(ctx, ownerID, draft, force)
	if err != nil {
		return nil, err
	}

	if event == nil {
		s.logger.InfoContext(ctx, "event withheld", "owner", ownerID, "title", draft.Title, "conflicts", len(conflicts))
		result := &domain.CreateResult{Status: domain.CreateStatusConflict, Proposed: draft}
		result.Conflicts, result.Degraded = s.explain(ctx, draft, conflicts)
		return result, nil
	}

	s.logger.InfoContext(ctx, "event committed", "owner", ownerID, "event_id", event.ID, "forced_over", len(conflicts))
	result := &domain.CreateResult{Status: domain.CreateStatusCommitted, Event: event}
	if len(conflicts) > 0 {
		result.Conflicts, result.Degraded = s.explain(ctx, draft, conflicts)
	}
	return result, nil
}

// checkAndCommit runs filter, policy and commit under the owner's lock. It returns a nil event
// when creation was withheld because of conflicts.
func (s *scheduleService) checkAndCommit(ctx context.Context, ownerID string, draft *domain.EventDraft, force bool) (*domain.Event, []*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	unlock, err := s.locks.Lock(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire owner lock: %w", err)
	}
	defer unlock()

	var conflicts []*domain.Event
	if draft.End != nil {
		candidates, err := s.eventRepo.ListOverlapping(ctx, ownerID, draft.Start, *draft.End)
		if err != nil {
			return nil, nil, fmt.Errorf("list overlapping: %w", err)
		}
		conflicts = DetectConflicts(draft, candidates)
	}
	if len(conflicts) > 0 && !force {
		return nil, conflicts, nil
	}

	now := s.clock()
	event := domain.NewEvent(ownerID, draft, now, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("create event: %w", err)
	}
	return event, conflicts, nil
}

// explain decorates each conflict with a warning. A failed explanation leaves the reason empty
// and marks the result degraded; it never drops the conflict.
func (s *scheduleService) explain(ctx context.Context, draft *domain.EventDraft, conflicts []*domain.Event) ([]domain.Conflict, bool) {
	out := make([]domain.Conflict, 0, len(conflicts))
	degraded := false
	for _, existing := range conflicts {
		c := domain.Conflict{Event: existing}
		reason, err := s.language.ExplainConflict(ctx, draft, existing)
		if err != nil {
			s.logger.WarnContext(ctx, "conflict explanation failed", "event_id", existing.ID, "err", err)
			c.ExplanationError = err.Error()
			degraded = true
		} else {
			c.Reason = reason
		}
		out = append(out, c)
	}
	return out, degraded
}

func (s *scheduleService) ListEvents(ctx context.Context, ownerID, phrase string) ([]*domain.Event, *domain.Period, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return nil, nil, fmt.Errorf("%w: period is required", domain.ErrValidationFailed)
	}
	period, err := s.language.ResolvePeriod(ctx, phrase, s.clock())
	if err != nil {
		return nil, nil, err
	}
	if period == nil {
		return nil, nil, fmt.Errorf("%w: period %q resolved to nothing", domain.ErrExtractionFailed, phrase)
	}
	if period.End.Before(period.Start) {
		return nil, nil, fmt.Errorf("%w: period %q resolved to an inverted range", domain.ErrExtractionFailed, phrase)
	}
	events, err := s.ListEventsInRange(ctx, ownerID, period.Start, period.End)
	if err != nil {
		return nil, nil, err
	}
	return events, period, nil
}

func (s *scheduleService) ListEventsInRange(ctx context.Context, ownerID string, start, end time.Time) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ownerID == "" {
		return nil, fmt.Errorf("%w: event owner is required", domain.ErrValidationFailed)
	}
	events, err := s.eventRepo.ListByStartRange(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *scheduleService) DeleteEvent(ctx context.Context, ownerID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, eventID, ownerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.logger.InfoContext(ctx, "event deleted", "owner", ownerID, "event_id", eventID)
	return nil
}
