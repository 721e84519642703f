package calendar

import "strings"

const ReasonMissingTimestamp = "missing start or end timestamp"

// Warning flags an event that was left off the grid because of bad data.
type Warning struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
}

type PositionedEvent struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Color             string  `json:"color"`
	StartIdx          int     `json:"start_idx"`
	EndIdx            int     `json:"end_idx"`
	Span              int     `json:"span"`
	ContinuesLeft     bool    `json:"continues_left"`
	ContinuesRight    bool    `json:"continues_right"`
	SlotIndex         int     `json:"slot_index"`
	FillPercent       float64 `json:"fill_percent"`
	CompletionPercent int     `json:"completion_percent"`
	ShowLabel         bool    `json:"show_label"`
}

// LabelAt reports whether a renderer painting day by day should print the
// title and percentage in column day: only at the bar's left edge.
func (p PositionedEvent) LabelAt(day int) bool {
	return p.ShowLabel && day == p.StartIdx
}

type WeekLayout struct {
	StartDate  string               `json:"start_date"`
	Days       [DaysPerWeek]DayCell `json:"days"`
	Events     []PositionedEvent    `json:"events"`
	TotalSlots int                  `json:"total_slots"`
}

type MonthLayout struct {
	Year      int          `json:"year"`
	Month     int          `json:"month"`
	WeekStart string       `json:"week_start"`
	Weeks     []WeekLayout `json:"weeks"`
	Warnings  []Warning    `json:"warnings,omitempty"`
}

// BuildMonth lays out events on the month grid of ym.
//
// Events with a missing timestamp are skipped and reported in Warnings. An
// event that breaks its invariants (ends before it starts, bad unit counts)
// aborts the whole pass with an error wrapping ErrInvalidEvent.
func BuildMonth(ym YearMonth, events []Event, opts Options) (*MonthLayout, error) {
	var warnings []Warning
	usable := make([]Event, 0, len(events))

	for _, ev := range events {
		if !ev.hasTimestamps() {
			warnings = append(warnings, Warning{EventID: ev.ID, Reason: ReasonMissingTimestamp})
			continue
		}
		if err := ev.Validate(); err != nil {
			return nil, err
		}
		usable = append(usable, ev)
	}

	grid := MonthGrid(ym, opts)
	layout := &MonthLayout{
		Year:      ym.Year,
		Month:     int(ym.Month),
		WeekStart: strings.ToLower(opts.WeekStart.String()),
		Weeks:     make([]WeekLayout, 0, len(grid)),
		Warnings:  warnings,
	}

	for _, week := range grid {
		layout.Weeks = append(layout.Weeks, buildWeek(week, usable, opts))
	}

	return layout, nil
}

func buildWeek(week WeekWindow, events []Event, opts Options) WeekLayout {
	placements, totalSlots := AssignSlots(week, SelectWeek(week, events, opts), opts)

	wl := WeekLayout{
		StartDate:  week.Days[0].Date,
		Days:       week.Days,
		Events:     make([]PositionedEvent, 0, len(placements)),
		TotalSlots: totalSlots,
	}

	for _, p := range placements {
		wl.Events = append(wl.Events, PositionedEvent{
			ID:                p.Event.ID,
			Title:             p.Event.Title,
			Color:             p.Event.color(),
			StartIdx:          p.StartIdx,
			EndIdx:            p.EndIdx,
			Span:              p.Span(),
			ContinuesLeft:     p.ContinuesLeft,
			ContinuesRight:    p.ContinuesRight,
			SlotIndex:         p.SlotIndex,
			FillPercent:       FillPercent(p.Event, week, p.StartIdx, p.EndIdx),
			CompletionPercent: CompletionPercent(p.Event),
			ShowLabel:         !p.ContinuesLeft || p.StartIdx == 0,
		})
	}

	return wl
}
