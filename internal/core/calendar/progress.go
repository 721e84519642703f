package calendar

import (
	"math"
	"time"
)

// CompletionRatio is completed/total, or 0 when there is nothing to complete.
func CompletionRatio(ev Event) float64 {
	if ev.TotalUnits <= 0 {
		return 0
	}
	return float64(ev.CompletedUnits) / float64(ev.TotalUnits)
}

// CompletionPercent is the ratio rounded to a whole percentage, for labels.
func CompletionPercent(ev Event) int {
	return int(math.Round(CompletionRatio(ev) * 100))
}

// FillPercent returns how much of the event's bar in this week is drawn as
// done, from 0 to 100.
//
// A fully completed event is always 100, whatever its dates. Otherwise the
// completion ratio is mapped to a point in time between start and end, and
// the fill is the position of that point within the week-clipped day range
// [startIdx 00:00, endIdx 23:59:59.999]. Each week segment of a multi-week
// event therefore fills independently.
func FillPercent(ev Event, week WeekWindow, startIdx, endIdx int) float64 {
	if ev.TotalUnits > 0 && ev.CompletedUnits == ev.TotalUnits {
		return 100
	}

	ratio := CompletionRatio(ev)
	progress := ev.Start.Add(time.Duration(float64(ev.Duration()) * ratio))

	clipStart := week.Day(startIdx)
	clipEnd := endOfDay(week.Day(endIdx))

	switch {
	case progress.Before(clipStart):
		return 0
	case progress.After(clipEnd):
		return 100
	}
	return float64(progress.Sub(clipStart)) / float64(clipEnd.Sub(clipStart)) * 100
}
