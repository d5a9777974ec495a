package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"nlschedule/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventRepo is an in-memory EventRepository for tests. It is safe for concurrent use;
// listDelay widens the read-then-write window so races would surface.
type fakeEventRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Event
	nextID    int
	listDelay time.Duration
	createErr error
	listErr   error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) ListOverlapping(ctx context.Context, ownerID string, start, end time.Time) ([]*domain.Event, error) {
	if f.listDelay > 0 {
		time.Sleep(f.listDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OwnerID == ownerID && e.End != nil {
			out = append(out, e)
		}
	}
	sortByStart(out)
	return out, nil
}

func (f *fakeEventRepo) ListByStartRange(ctx context.Context, ownerID string, start, end time.Time) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OwnerID == ownerID && !e.Start.Before(start) && !e.Start.After(end) {
			out = append(out, e)
		}
	}
	sortByStart(out)
	return out, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok || e.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func sortByStart(events []*domain.Event) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
}

// fakeLanguage returns canned drafts keyed by input text.
type fakeLanguage struct {
	mu         sync.Mutex
	drafts     map[string]*domain.EventDraft
	periods    map[string]*domain.Period
	extractErr error
	explainErr error
	explained  int
	lastNow    time.Time
}

func newFakeLanguage() *fakeLanguage {
	return &fakeLanguage{
		drafts:  make(map[string]*domain.EventDraft),
		periods: make(map[string]*domain.Period),
	}
}

func (f *fakeLanguage) ExtractEvent(ctx context.Context, input string, now time.Time) (*domain.EventDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastNow = now
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	d, ok := f.drafts[input]
	if !ok {
		return nil, fmt.Errorf("%w: no event in %q", domain.ErrExtractionFailed, input)
	}
	cp := *d
	return &cp, nil
}

func (f *fakeLanguage) ResolvePeriod(ctx context.Context, phrase string, now time.Time) (*domain.Period, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastNow = now
	p, ok := f.periods[phrase]
	if !ok {
		return nil, fmt.Errorf("%w: unknown period %q", domain.ErrExtractionFailed, phrase)
	}
	return p, nil
}

func (f *fakeLanguage) ExplainConflict(ctx context.Context, candidate *domain.EventDraft, existing *domain.Event) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.explained++
	if f.explainErr != nil {
		return "", f.explainErr
	}
	return fmt.Sprintf("%s clashes with %s", candidate.Title, existing.Title), nil
}

var fixedNow = time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC)

func newTestScheduleService(repo *fakeEventRepo, lang *fakeLanguage) *scheduleService {
	svc := NewScheduleService(repo, lang, slog.New(slog.NewTextHandler(io.Discard, nil)), 5*time.Second).(*scheduleService)
	svc.clock = func() time.Time { return fixedNow }
	return svc
}

func seed(t *testing.T, repo *fakeEventRepo, owner string, d *domain.EventDraft) *domain.Event {
	t.Helper()
	d.Normalize()
	e := domain.NewEvent(owner, d, fixedNow, fixedNow)
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func TestScheduleService_CreateEvent_Committed(t *testing.T) {
	repo := newFakeEventRepo()
	lang := newFakeLanguage()
	lang.drafts["dinner tomorrow at 6"] = &domain.EventDraft{
		Title: " dinner ", Start: ts(1, 18, 0), End: tp(ts(1, 19, 0)),
	}
	svc := newTestScheduleService(repo, lang)

	res, err := svc.CreateEvent(context.Background(), "user-1", "  dinner tomorrow at 6 ")
	require.NoError(t, err)
	assert.Equal(t, domain.CreateStatusCommitted, res.Status)
	require.NotNil(t, res.Event)
	assert.NotEmpty(t, res.Event.ID)
	assert.Equal(t, "user-1", res.Event.OwnerID)
	assert.Equal(t, "dinner", res.Event.Title)
	assert.Equal(t, domain.KindActivity, res.Event.Kind)
	assert.Equal(t, domain.DefaultPriority, res.Event.Priority)
	assert.Equal(t, fixedNow, res.Event.CreatedAt)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, fixedNow, lang.lastNow)
	assert.Equal(t, 1, repo.count())
}

func TestScheduleService_CreateEvent_Validation(t *testing.T) {
	svc := newTestScheduleService(newFakeEventRepo(), newFakeLanguage())

	_, err := svc.CreateEvent(context.Background(), "", "dinner")
	assert.True(t, errors.Is(err, domain.ErrValidationFailed))

	_, err = svc.CreateEvent(context.Background(), "user-1", "   ")
	assert.True(t, errors.Is(err, domain.ErrValidationFailed))
}

func TestScheduleService_CreateEvent_ExtractionErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"malformed reply", fmt.Errorf("%w: not json", domain.ErrExtractionFailed)},
		{"upstream down", fmt.Errorf("%w: 503", domain.ErrUpstreamUnavailable)},
		{"missing start", fmt.Errorf("%w: start is required", domain.ErrValidationFailed)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			lang := newFakeLanguage()
			lang.extractErr = tt.err
			svc := newTestScheduleService(repo, lang)

			res, err := svc.CreateEvent(context.Background(), "user-1", "something")
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.err))
			assert.Equal(t, 0, repo.count(), "nothing may be stored on failure")
		})
	}
}

func TestScheduleService_CreateEvent_DraftMissingTitle(t *testing.T) {
	repo := newFakeEventRepo()
	lang := newFakeLanguage()
	lang.drafts["at 6"] = &domain.EventDraft{Start: ts(1, 18, 0)}
	svc := newTestScheduleService(repo, lang)

	_, err := svc.CreateEvent(context.Background(), "user-1", "at 6")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidationFailed))
	assert.Equal(t, 0, repo.count())
}

func TestScheduleService_CreateEvent_ConflictWithheld(t *testing.T) {
	repo := newFakeEventRepo()
	lang := newFakeLanguage()
	existing := seed(t, repo, "user-1", &domain.EventDraft{Title: "meeting", Start: ts(1, 18, 30), End: tp(ts(1, 19, 30))})
	lang.drafts["dinner"] = &domain.EventDraft{Title: "dinner", Start: ts(1, 18, 0), End: tp(ts(1, 19, 0))}
	svc := newTestScheduleService(repo, lang)

	res, err := svc.CreateEvent(context.Background(), "user-1", "dinner")
	require.NoError(t, err)
	assert.Equal(t, domain.CreateStatusConflict, res.Status)
	assert.Nil(t, res.Event)
	require.NotNil(t, res.Proposed)
	assert.Equal(t, "dinner", res.Proposed.Title)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, existing.ID, res.Conflicts[0].Event.ID)
	assert.Equal(t, "dinner clashes with meeting", res.Conflicts[0].Reason)
	assert.False(t, res.Degraded)
	assert.Equal(t, 1, repo.count())
}

func TestScheduleService_CreateEvent_OtherOwnerIgnored(t *testing.T) {
	repo := newFakeEventRepo()
	lang := newFakeLanguage()
	seed(t, repo, "user-2", &domain.EventDraft{Title: "meeting", Start: ts(1, 18, 30), End: tp(ts(1, 19, 30))})
	lang.drafts["dinner"] = &domain.EventDraft{Title: "dinner", Start: ts(1, 18, 0), End: tp(ts(1, 19, 0))}
	svc := newTestScheduleService(repo, lang)

	res, err := svc.CreateEvent(context.Background(), "user-1", "dinner")
	require.NoError(t, err)
	assert.Equal(t, domain.CreateStatusCommitted, res.Status)
}

func TestScheduleService_CreateEvent_Scenarios(t *testing.T) {
	camp := func() *domain.EventDraft {
		return &domain.EventDraft{Title: "training camp", Kind: domain.KindBlock, IsAllDay: true,
			Categories: domain.NewCategories("camp"), Start: ts(10, 0, 0), End: tp(ts(14, 23, 59))}
	}
	tests := []struct {
		name     string
		existing *domain.EventDraft
		input    *domain.EventDraft
		want     domain.CreateStatus
	}{
		{
			name:     "shared category suppresses warning",
			existing: &domain.EventDraft{Title: "camp practice", Categories: domain.NewCategories("camp"), Start: ts(12, 10, 0), End: tp(ts(12, 11, 0))},
			input:    camp(),
			want:     domain.CreateStatusCommitted,
		},
		{
			name:     "block over a meeting warns",
			existing: &domain.EventDraft{Title: "meeting", Categories: domain.NewCategories("meeting"), Start: ts(12, 10, 0), End: tp(ts(12, 11, 0))},
			input:    camp(),
			want:     domain.CreateStatusConflict,
		},
		{
			name:     "candidate without end skips the check",
			existing: &domain.EventDraft{Title: "meeting", Start: ts(1, 17, 0), End: tp(ts(1, 20, 0))},
			input:    &domain.EventDraft{Title: "call", Start: ts(1, 18, 0)},
			want:     domain.CreateStatusCommitted,
		},
		{
			name:     "adjacent events do not conflict",
			existing: &domain.EventDraft{Title: "meeting", Start: ts(1, 17, 0), End: tp(ts(1, 18, 0))},
			input:    &domain.EventDraft{Title: "dinner", Start: ts(1, 18, 0), End: tp(ts(1, 19, 0))},
			want:     domain.CreateStatusCommitted,
		},
		{
			name:     "deadlines never clash with activities",
			existing: &domain.EventDraft{Title: "meeting", Start: ts(1, 17, 0), End: tp(ts(1, 19, 0))},
			input:    &domain.EventDraft{Title: "report due", Kind: domain.KindDeadline, Start: ts(1, 18, 0), End: tp(ts(1, 18, 0))},
			want:     domain.CreateStatusCommitted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			lang := newFakeLanguage()
			seed(t, repo, "user-1", tt.existing)
			lang.drafts["input"] = tt.input
			svc := newTestScheduleService(repo, lang)

			res, err := svc.CreateEvent(context.Background(), "user-1", "input")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Status)
		})
	}
}

func TestScheduleService_CreateEventFromDraft_Force(t *testing.T) {
	repo := newFakeEventRepo()
	lang := newFakeLanguage()
	existing := seed(t, repo, "user-1", &domain.EventDraft{Title: "meeting", Start: ts(1, 18, 30), End: tp(ts(1, 19, 30))})
	svc := newTestScheduleService(repo, lang)

	draft := &domain.EventDraft{Title: "dinner", Start: ts(1, 18, 0), End: tp(ts(1, 19, 0))}
	res, err := svc.CreateEventFromDraft(context.Background(), "user-1", draft, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CreateStatusConflict, res.Status)

	res, err = svc.CreateEventFromDraft(context.Background(), "user-1", draft, true)
	require.NoError(t, err)
	assert.Equal(t, domain.CreateStatusCommitted, res.Status)
	require.NotNil(t, res.Event)
	require.Len(t, res.Conflicts, 1, "forced commits still report what they override")
	assert.Equal(t, existing.ID, res.Conflicts[0].Event.ID)
	assert.Equal(t, 2, repo.count())
}

func TestScheduleService_CreateEventFromDraft_NilDraft(t *testing.T) {
	svc := newTestScheduleService(newFakeEventRepo(), newFakeLanguage())
	_, err := svc.CreateEventFromDraft(context.Background(), "user-1", nil, false)
	assert.True(t, errors.Is(err, domain.ErrValidationFailed))
}

func TestScheduleService_ExplanationFailureDegrades(t *testing.T) {
	repo := newFakeEventRepo()
	lang := newFakeLanguage()
	lang.explainErr = fmt.Errorf("%w: timeout", domain.ErrUpstreamUnavailable)
	seed(t, repo, "user-1", &domain.EventDraft{Title: "meeting", Start: ts(1, 18, 30), End: tp(ts(1, 19, 30))})
	seed(t, repo, "user-1", &domain.EventDraft{Title: "gym", Start: ts(1, 18, 45), End: tp(ts(1, 19, 45))})
	svc := newTestScheduleService(repo, lang)

	draft := &domain.EventDraft{Title: "dinner", Start: ts(1, 18, 0), End: tp(ts(1, 19, 0))}
	res, err := svc.CreateEventFromDraft(context.Background(), "user-1", draft, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CreateStatusConflict, res.Status)
	assert.True(t, res.Degraded)
	require.Len(t, res.Conflicts, 2, "conflicts are kept even without explanations")
	for _, c := range res.Conflicts {
		assert.Empty(t, c.Reason)
		assert.NotEmpty(t, c.ExplanationError)
	}
	assert.Equal(t, 2, lang.explained)
}

func TestScheduleService_StoreErrors(t *testing.T) {
	repo := newFakeEventRepo()
	repo.listErr = errors.New("connection reset")
	svc := newTestScheduleService(repo, newFakeLanguage())

	draft := &domain.EventDraft{Title: "dinner", Start: ts(1, 18, 0), End: tp(ts(1, 19, 0))}
	_, err := svc.CreateEventFromDraft(context.Background(), "user-1", draft, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list overlapping")

	repo.listErr = nil
	repo.createErr = errors.New("disk full")
	_, err = svc.CreateEventFromDraft(context.Background(), "user-1", draft, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create event")

	// the lock must have been released on both failure paths
	assert.Equal(t, 0, svc.locks.size())
}

func TestScheduleService_ConcurrentCreatesSameOwner(t *testing.T) {
	repo := newFakeEventRepo()
	repo.listDelay = 10 * time.Millisecond
	svc := newTestScheduleService(repo, newFakeLanguage())

	const n = 8
	results := make([]*domain.CreateResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			draft := &domain.EventDraft{Title: fmt.Sprintf("dinner-%d", i), Start: ts(1, 18, 0), End: tp(ts(1, 19, 0))}
			res, err := svc.CreateEventFromDraft(context.Background(), "user-1", draft, false)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	committed := 0
	for _, r := range results {
		require.NotNil(t, r)
		if r.Status == domain.CreateStatusCommitted {
			committed++
		}
	}
	assert.Equal(t, 1, committed, "exactly one of the overlapping requests may commit")
	assert.Equal(t, 1, repo.count())
}

func TestScheduleService_ListEvents(t *testing.T) {
	repo := newFakeEventRepo()
	lang := newFakeLanguage()
	late := seed(t, repo, "user-1", &domain.EventDraft{Title: "late", Start: ts(2, 20, 0)})
	early := seed(t, repo, "user-1", &domain.EventDraft{Title: "early", Start: ts(2, 8, 0), End: tp(ts(2, 9, 0))})
	seed(t, repo, "user-1", &domain.EventDraft{Title: "next day", Start: ts(3, 8, 0)})
	seed(t, repo, "user-2", &domain.EventDraft{Title: "someone else", Start: ts(2, 10, 0)})
	lang.periods["today"] = &domain.Period{Start: ts(2, 0, 0), End: ts(2, 23, 59)}
	svc := newTestScheduleService(repo, lang)

	events, period, err := svc.ListEvents(context.Background(), "user-1", "today")
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.Equal(t, ts(2, 0, 0), period.Start)
	require.Len(t, events, 2)
	assert.Equal(t, early.ID, events[0].ID)
	assert.Equal(t, late.ID, events[1].ID)
}

func TestScheduleService_ListEvents_Errors(t *testing.T) {
	lang := newFakeLanguage()
	lang.periods["backwards"] = &domain.Period{Start: ts(3, 0, 0), End: ts(2, 0, 0)}
	lang.periods["empty reply"] = nil
	svc := newTestScheduleService(newFakeEventRepo(), lang)

	_, _, err := svc.ListEvents(context.Background(), "user-1", "")
	assert.True(t, errors.Is(err, domain.ErrValidationFailed))

	_, _, err = svc.ListEvents(context.Background(), "user-1", "gibberish")
	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))

	_, _, err = svc.ListEvents(context.Background(), "user-1", "backwards")
	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))

	_, _, err = svc.ListEvents(context.Background(), "user-1", "empty reply")
	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))
}

func TestScheduleService_ListEventsInRange_EmptyIsNotNil(t *testing.T) {
	svc := newTestScheduleService(newFakeEventRepo(), newFakeLanguage())
	events, err := svc.ListEventsInRange(context.Background(), "user-1", ts(1, 0, 0), ts(2, 0, 0))
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestScheduleService_DeleteEvent(t *testing.T) {
	repo := newFakeEventRepo()
	e := seed(t, repo, "user-1", &domain.EventDraft{Title: "meeting", Start: ts(1, 18, 0)})
	svc := newTestScheduleService(repo, newFakeLanguage())

	err := svc.DeleteEvent(context.Background(), "user-2", e.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "another owner's event is invisible")
	assert.Equal(t, 1, repo.count())

	require.NoError(t, svc.DeleteEvent(context.Background(), "user-1", e.ID))
	assert.Equal(t, 0, repo.count())

	err = svc.DeleteEvent(context.Background(), "user-1", e.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
