// Package ics renders schedules as an iCalendar feed.
package ics

import (
	"fmt"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/teamboard/schedule-engine/internal/core/calendar"
	"github.com/teamboard/schedule-engine/internal/core/domain"
)

const (
	ProductID   = "-//teamboard//schedule-engine//EN"
	ContentType = "text/calendar; charset=utf-8"

	PropertyProgress = ical.ComponentProperty("X-TEAMBOARD-PROGRESS")
	PropertyColor    = ical.ComponentProperty("COLOR")

	propertyCreated      = ical.ComponentProperty("CREATED")
	propertyLastModified = ical.ComponentProperty("LAST-MODIFIED")
)

// Filename is the attachment name offered for a team's month feed.
func Filename(teamID string, ym calendar.YearMonth) string {
	return fmt.Sprintf("schedules-%s-%s.ics", teamID, ym)
}

// ExportMonth serializes schedules as a VCALENDAR with one VEVENT each.
// Deleted schedules are skipped.
func ExportMonth(teamID string, ym calendar.YearMonth, schedules []*domain.Schedule) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, s := range schedules {
		if s.DeletedAt != nil {
			continue
		}

		ev := cal.AddEvent(s.ID + "@" + teamID)
		ev.SetDtStampTime(s.UpdatedAt.UTC())
		ev.SetProperty(propertyCreated, Stamp(s.CreatedAt))
		ev.SetProperty(propertyLastModified, Stamp(s.UpdatedAt))
		ev.SetProperty(ical.ComponentPropertySequence, strconv.Itoa(s.Version))
		ev.SetStartAt(s.StartTime.UTC())
		ev.SetEndAt(s.EndTime.UTC())
		ev.SetSummary(s.Title)
		if s.Description != "" {
			ev.SetDescription(s.Description)
		}
		ev.SetProperty(PropertyColor, s.Color)
		if s.TotalTasks > 0 {
			ev.SetProperty(PropertyProgress, fmt.Sprintf("%d/%d", s.CompletedTasks, s.TotalTasks))
		}
	}

	return cal.Serialize()
}

// Stamp formats t the way DTSTART and DTEND are written.
func Stamp(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}
