package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nlschedule/internal/delivery/http/helpers"
	"nlschedule/internal/delivery/http/middleware"
	"nlschedule/internal/domain"
)

// DefaultPeriod is used when get-events is called without a period ("today").
const DefaultPeriod = "今日"

// maxInputRunes bounds the free-text sent to the language service.
const maxInputRunes = 2000

// AddEventRequest is the request body for POST /api/schedule/add-event.
type AddEventRequest struct {
	Input string `json:"input" example:"明日の15時から1時間、田中さんと打ち合わせ"`
}

// Validate implements Validator.
func (a AddEventRequest) Validate() []string {
	input := strings.TrimSpace(a.Input)
	if input == "" {
		return []string{"input is required"}
	}
	if len([]rune(input)) > maxInputRunes {
		return []string{fmt.Sprintf("input must be at most %d characters", maxInputRunes)}
	}
	return nil
}

// ConfirmEventRequest is the request body for POST /api/schedule/confirm-event.
type ConfirmEventRequest struct {
	Draft *EventDraftDTO `json:"draft"`
	Force bool           `json:"force"`
}

// Validate implements Validator.
func (c ConfirmEventRequest) Validate() []string {
	if c.Draft == nil {
		return []string{"draft is required"}
	}
	var errs []string
	if strings.TrimSpace(c.Draft.Title) == "" {
		errs = append(errs, "draft.title is required")
	}
	if strings.TrimSpace(c.Draft.Start) == "" {
		errs = append(errs, "draft.start is required")
	}
	return errs
}

// GetEventsRequest is the request body for POST /api/schedule/get-events.
type GetEventsRequest struct {
	Period string `json:"period" example:"今週"`
}

// GetEventsResponse is the data of get-events.
type GetEventsResponse struct {
	Period PeriodResponse  `json:"period"`
	Events []EventResponse `json:"events"`
}

// CreateEventSuccessResponse is the success envelope for add-event and confirm-event.
type CreateEventSuccessResponse struct {
	Data  CreateEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// GetEventsSuccessResponse is the success envelope for get-events.
type GetEventsSuccessResponse struct {
	Data  GetEventsResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsSuccessResponse is the success envelope for the range query.
type ListEventsSuccessResponse struct {
	Data  []EventResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteEventResponse is the data of a successful delete.
type DeleteEventResponse struct {
	ID string `json:"id"`
}

type ScheduleController struct {
	Logger   *slog.Logger
	Service  domain.ScheduleService
	Exporter domain.CalendarExporter
	Location *time.Location
}

func NewScheduleController(logger *slog.Logger, svc domain.ScheduleService, exporter domain.CalendarExporter, loc *time.Location) *ScheduleController {
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleController{
		Logger:   logger,
		Service:  svc,
		Exporter: exporter,
		Location: loc,
	}
}

// AddEvent godoc
// @Summary Add an event from free text
// @Description Extracts an event from a natural-language sentence and stores it unless it conflicts with the caller's schedule. A conflict is reported with status "conflict", the proposed event and one warning per clashing event; nothing is stored.
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddEventRequest true "Free-text event description"
// @Success 201 {object} controllers.CreateEventSuccessResponse "status success: data.event is the stored event"
// @Success 200 {object} controllers.CreateEventSuccessResponse "status conflict: data.proposed_event and data.conflicts"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 422 {object} helpers.APIResponse "error.code: extraction_failed"
// @Failure 503 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/schedule/add-event [post]
func (c *ScheduleController) AddEvent(w http.ResponseWriter, r *http.Request) {
	var req AddEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	res, err := c.Service.CreateEvent(r.Context(), ownerID, req.Input)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.writeCreateResult(w, res)
}

// ConfirmEvent godoc
// @Summary Store a reviewed draft
// @Description Runs the conflict check on a structured draft, typically the proposed_event of an earlier conflict report. With force set the draft is stored even when it conflicts; the conflicts are still reported.
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ConfirmEventRequest true "Draft and force flag"
// @Success 201 {object} controllers.CreateEventSuccessResponse "status success"
// @Success 200 {object} controllers.CreateEventSuccessResponse "status conflict"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/schedule/confirm-event [post]
func (c *ScheduleController) ConfirmEvent(w http.ResponseWriter, r *http.Request) {
	var req ConfirmEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	draft, err := req.Draft.toDomain(c.Location)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	res, err := c.Service.CreateEventFromDraft(r.Context(), ownerID, draft, req.Force)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.writeCreateResult(w, res)
}

func (c *ScheduleController) writeCreateResult(w http.ResponseWriter, res *domain.CreateResult) {
	status := http.StatusOK
	if res.Status == domain.CreateStatusCommitted {
		status = http.StatusCreated
	}
	helpers.WriteJSONSuccess(w, status, newCreateEventResponse(res, c.Location))
}

// GetEvents godoc
// @Summary List events for a period phrase
// @Description Resolves a period phrase such as "today", "this week" or "next month" and returns the caller's events starting inside it, ordered by start. An empty body or period means today.
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GetEventsRequest false "Period phrase"
// @Success 200 {object} controllers.GetEventsSuccessResponse "data.period and data.events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 422 {object} helpers.APIResponse "error.code: extraction_failed"
// @Failure 503 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/schedule/get-events [post]
func (c *ScheduleController) GetEvents(w http.ResponseWriter, r *http.Request) {
	var req GetEventsRequest
	if !helpers.DecodeOptional(w, r, &req) {
		return
	}
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	phrase := strings.TrimSpace(req.Period)
	if phrase == "" {
		phrase = DefaultPeriod
	}
	events, period, err := c.Service.ListEvents(r.Context(), ownerID, phrase)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, GetEventsResponse{
		Period: PeriodResponse{Start: formatWire(period.Start, c.Location), End: formatWire(period.End, c.Location)},
		Events: newEventResponses(events, c.Location),
	})
}

// ListEventsInRange godoc
// @Summary List events in an explicit range
// @Description Returns the caller's events whose start lies in [start, end], ordered by start. Does not call the language service.
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param start query string true "Range start, YYYY-MM-DD HH:MM"
// @Param end query string true "Range end, YYYY-MM-DD HH:MM"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/schedule/events [get]
func (c *ScheduleController) ListEventsInRange(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start and end are required")
		return
	}
	start, err := parseWire(q.Get("start"), c.Location)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	end, err := parseWire(q.Get("end"), c.Location)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	events, err := c.Service.ListEventsInRange(r.Context(), ownerID, start, end)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponses(events, c.Location))
}

// ExportICS godoc
// @Summary Export a period as iCalendar
// @Description Resolves the period phrase (default today) and returns the caller's events in it as a text/calendar document.
// @Tags schedule
// @Produce text/calendar
// @Security BearerAuth
// @Param period query string false "Period phrase"
// @Success 200 {string} string "iCalendar document"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 422 {object} helpers.APIResponse "error.code: extraction_failed"
// @Failure 503 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/schedule/events.ics [get]
func (c *ScheduleController) ExportICS(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	phrase := strings.TrimSpace(r.URL.Query().Get("period"))
	if phrase == "" {
		phrase = DefaultPeriod
	}
	events, _, err := c.Service.ListEvents(r.Context(), ownerID, phrase)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	body, err := c.Exporter.Export(events)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, fmt.Errorf("export calendar: %w", err))
		return
	}
	w.Header().Set("Content-Type", c.Exporter.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes one of the caller's events. Events owned by someone else are reported as not found.
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data.id is the deleted event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/schedule/events/{eventID} [delete]
func (c *ScheduleController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := strings.TrimSpace(r.PathValue("eventID"))
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), ownerID, eventID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{ID: eventID})
}
