package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nlschedule/internal/delivery/http/controllers"
	"nlschedule/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type staticVerifier struct{}

func (staticVerifier) Verify(token string) (string, error) {
	if token == "good" {
		return "user-1", nil
	}
	return "", errors.New("bad token")
}

// recordingSchedule records which operation the router dispatched to.
type recordingSchedule struct {
	called string
	owner  string
	id     string
}

func (s *recordingSchedule) CreateEvent(_ context.Context, owner, _ string) (*domain.CreateResult, error) {
	s.called, s.owner = "create", owner
	return &domain.CreateResult{Status: domain.CreateStatusConflict, Proposed: &domain.EventDraft{}}, nil
}

func (s *recordingSchedule) CreateEventFromDraft(_ context.Context, owner string, _ *domain.EventDraft, _ bool) (*domain.CreateResult, error) {
	s.called, s.owner = "confirm", owner
	return &domain.CreateResult{Status: domain.CreateStatusCommitted, Event: &domain.Event{ID: "ev-1"}}, nil
}

func (s *recordingSchedule) ListEvents(_ context.Context, owner, _ string) ([]*domain.Event, *domain.Period, error) {
	s.called, s.owner = "list", owner
	return []*domain.Event{}, &domain.Period{}, nil
}

func (s *recordingSchedule) ListEventsInRange(_ context.Context, owner string, _, _ time.Time) ([]*domain.Event, error) {
	s.called, s.owner = "range", owner
	return []*domain.Event{}, nil
}

func (s *recordingSchedule) DeleteEvent(_ context.Context, owner, id string) error {
	s.called, s.owner, s.id = "delete", owner, id
	return nil
}

type nopExporter struct{}

func (nopExporter) Export([]*domain.Event) ([]byte, error) { return []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), nil }
func (nopExporter) ContentType() string { return "text/calendar" }

type nopAuth struct{}

func (nopAuth) Register(context.Context, string, string, string) (*domain.User, string, error) {
	return &domain.User{ID: "user-1"}, "tok", nil
}

func (nopAuth) Login(context.Context, string, string) (*domain.User, string, error) {
	return nil, "", domain.ErrInvalidCredentials
}

func (nopAuth) Me(_ context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

func TestRouter(t *testing.T) {
	sched := &recordingSchedule{}
	mux := NewRouter(
		controllers.NewScheduleController(discard, sched, nopExporter{}, time.UTC),
		controllers.NewAuthController(discard, nopAuth{}),
		staticVerifier{},
		discard,
	)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		token      string
		wantStatus int
		wantCall   string
	}{
		{"add-event", http.MethodPost, "/api/schedule/add-event", `{"input":"x"}`, "good", http.StatusOK, "create"},
		{"confirm-event", http.MethodPost, "/api/schedule/confirm-event", `{"draft":{"title":"x","start":"2025-05-30 10:00"}}`, "good", http.StatusCreated, "confirm"},
		{"get-events", http.MethodPost, "/api/schedule/get-events", `{"period":"today"}`, "good", http.StatusOK, "list"},
		{"range", http.MethodGet, "/api/schedule/events?start=2025-05-30+00:00&end=2025-05-31+00:00", "", "good", http.StatusOK, "range"},
		{"ics", http.MethodGet, "/api/schedule/events.ics", "", "good", http.StatusOK, "list"},
		{"delete", http.MethodDelete, "/api/schedule/events/ev-9", "", "good", http.StatusOK, "delete"},
		{"no token", http.MethodPost, "/api/schedule/add-event", `{"input":"x"}`, "", http.StatusUnauthorized, ""},
		{"bad token", http.MethodGet, "/api/schedule/events.ics", "", "bad", http.StatusUnauthorized, ""},
		{"register is public", http.MethodPost, "/auth/register", `{"username":"a","email":"a@example.com","password":"longenough"}`, "", http.StatusCreated, ""},
		{"login failure", http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"x"}`, "", http.StatusUnauthorized, ""},
		{"me", http.MethodGet, "/auth/me", "", "good", http.StatusOK, ""},
		{"health", http.MethodGet, "/health", "", "", http.StatusOK, ""},
		{"wrong method", http.MethodGet, "/api/schedule/add-event", "", "good", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*sched = recordingSchedule{}
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantCall, sched.called)
			if tt.wantCall != "" {
				assert.Equal(t, "user-1", sched.owner)
			}
		})
	}
}

func TestRouter_DeletePathValue(t *testing.T) {
	sched := &recordingSchedule{}
	mux := NewRouter(
		controllers.NewScheduleController(discard, sched, nopExporter{}, time.UTC),
		controllers.NewAuthController(discard, nopAuth{}),
		staticVerifier{},
		discard,
	)
	req := httptest.NewRequest(http.MethodDelete, "/api/schedule/events/ev-9", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ev-9", sched.id)
}
