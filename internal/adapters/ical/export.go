// Package ical renders stored events as an iCalendar (RFC 5545) document.
package ical

import (
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"

	"nlschedule/internal/domain"
)

const (
	productID   = "-//nlschedule//schedule export//EN"
	contentType = "text/calendar; charset=utf-8"
	uidDomain   = "nlschedule"
)

// Exporter implements domain.CalendarExporter.
type Exporter struct {
	name string
	loc  *time.Location
	now  func() time.Time
}

// NewExporter returns an exporter whose calendars carry the given display name. All-day events
// are written as DATE values in loc.
func NewExporter(name string, loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{name: name, loc: loc, now: time.Now}
}

func (x *Exporter) ContentType() string { return contentType }

// Export writes one VEVENT per event. Deadlines and other events without an end get DTSTART only.
func (x *Exporter) Export(events []*domain.Event) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if x.name != "" {
		cal.SetXWRCalName(x.name)
	}
	cal.SetXWRTimezone(x.loc.String())

	stamp := x.now().UTC()
	for _, e := range events {
		ve := cal.AddEvent(e.ID + "@" + uidDomain)
		ve.SetDtStampTime(stamp)
		ve.SetCreatedTime(e.CreatedAt)
		if !e.UpdatedAt.IsZero() {
			ve.SetModifiedAt(e.UpdatedAt)
		}
		ve.SetSummary(e.Title)
		x.setTimes(ve, e)
		ve.SetProperty(ics.ComponentPropertyPriority, strconv.Itoa(icalPriority(e.Priority)))
		for _, c := range e.Categories {
			ve.AddProperty(ics.ComponentPropertyCategories, c)
		}
		ve.SetProperty(ics.ComponentProperty("X-NLSCHEDULE-TYPE"), string(e.Kind))
	}
	return []byte(cal.Serialize()), nil
}

func (x *Exporter) setTimes(ve *ics.VEvent, e *domain.Event) {
	if e.IsAllDay {
		start := dateIn(e.Start, x.loc)
		ve.SetAllDayStartAt(start)
		end := start.AddDate(0, 0, 1)
		if e.End != nil {
			// DTEND is exclusive for DATE values.
			if last := dateIn(*e.End, x.loc).AddDate(0, 0, 1); last.After(end) {
				end = last
			}
		}
		ve.SetAllDayEndAt(end)
		return
	}
	ve.SetStartAt(e.Start.UTC())
	if e.End != nil {
		ve.SetEndAt(e.End.UTC())
	}
}

func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// icalPriority maps 1 (highest) .. 5 (lowest) onto the RFC 5545 scale, where 1 is highest and 9
// lowest.
func icalPriority(p int) int {
	if p < domain.PriorityHighest || p > domain.PriorityLowest {
		p = domain.DefaultPriority
	}
	return 2*p - 1
}
