package calendar

// SelectWeek keeps the events whose day range touches the week. Both ends are
// widened to whole days first, so an event covering any hour of a day counts
// as occupying that day. The returned events keep their original timestamps.
//
// Events without a start or end are never selected.
func SelectWeek(week WeekWindow, events []Event, opts Options) []Event {
	loc := opts.location()
	weekEnd := week.End()

	selected := make([]Event, 0, len(events))
	for _, ev := range events {
		if !ev.hasTimestamps() {
			continue
		}

		start := startOfDay(ev.Start, loc)
		end := endOfDay(startOfDay(ev.End, loc))
		if !start.After(weekEnd) && !end.Before(week.Start) {
			selected = append(selected, ev)
		}
	}
	return selected
}
