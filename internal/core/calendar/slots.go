package calendar

import "sort"

// Placement is an event's lane and week-clipped column span.
type Placement struct {
	Event          Event
	StartIdx       int
	EndIdx         int
	ContinuesLeft  bool
	ContinuesRight bool
	SlotIndex      int
}

func (p Placement) Span() int {
	return p.EndIdx - p.StartIdx + 1
}

// AssignSlots packs the week's events into horizontal lanes and returns the
// placements in processing order together with the lane count.
//
// Events are ordered by start time, then by longer duration first, then by
// their position in events. Each one takes the lowest lane whose last
// occupant ends strictly before the event's first column; sharing a day counts
// as overlap. With that order the lane count equals the largest number of
// events covering any single column of the week.
func AssignSlots(week WeekWindow, events []Event, opts Options) ([]Placement, int) {
	loc := opts.location()

	ordered := make([]Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Duration() > b.Duration()
	})

	placements := make([]Placement, 0, len(ordered))
	var laneEnd []int

	for _, ev := range ordered {
		startIdx := daysBetween(week.Start, startOfDay(ev.Start, loc))
		endIdx := daysBetween(week.Start, startOfDay(ev.End, loc))

		p := Placement{
			Event:          ev,
			ContinuesLeft:  startIdx < 0,
			ContinuesRight: endIdx > DaysPerWeek-1,
			StartIdx:       max(startIdx, 0),
			EndIdx:         min(endIdx, DaysPerWeek-1),
			SlotIndex:      -1,
		}

		for lane, end := range laneEnd {
			if end < p.StartIdx {
				p.SlotIndex = lane
				laneEnd[lane] = p.EndIdx
				break
			}
		}
		if p.SlotIndex < 0 {
			p.SlotIndex = len(laneEnd)
			laneEnd = append(laneEnd, p.EndIdx)
		}

		placements = append(placements, p)
	}

	return placements, len(laneEnd)
}
