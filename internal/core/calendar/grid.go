package calendar

import "time"

type DayCell struct {
	Date           string `json:"date"`
	Day            int    `json:"day"`
	IsCurrentMonth bool   `json:"is_current_month"`
}

// WeekWindow is seven consecutive days starting at 00:00 of a week-start day.
type WeekWindow struct {
	Start time.Time
	Days  [DaysPerWeek]DayCell
}

// Day returns 00:00 of the day in column idx.
func (w WeekWindow) Day(idx int) time.Time {
	return w.Start.AddDate(0, 0, idx)
}

// End returns 23:59:59.999 of the last day of the week.
func (w WeekWindow) End() time.Time {
	return endOfDay(w.Day(DaysPerWeek - 1))
}

// GridRange returns the first and last instant shown by the month grid,
// including the padding days borrowed from adjacent months.
func GridRange(ym YearMonth, opts Options) (time.Time, time.Time) {
	first, last := gridDays(ym, opts)
	return first, endOfDay(last)
}

func gridDays(ym YearMonth, opts Options) (time.Time, time.Time) {
	first := ym.First(opts.location())
	last := first.AddDate(0, 1, -1)

	gridStart := first.AddDate(0, 0, -opts.weekdayIndex(first))
	gridEnd := last.AddDate(0, 0, DaysPerWeek-1-opts.weekdayIndex(last))
	return gridStart, gridEnd
}

// MonthGrid returns the whole weeks covering ym, padded with days from the
// previous and next month so every week has exactly seven days.
func MonthGrid(ym YearMonth, opts Options) []WeekWindow {
	gridStart, gridEnd := gridDays(ym, opts)
	numWeeks := (daysBetween(gridStart, gridEnd) + 1) / DaysPerWeek

	weeks := make([]WeekWindow, 0, numWeeks)
	for w := 0; w < numWeeks; w++ {
		week := WeekWindow{Start: gridStart.AddDate(0, 0, w*DaysPerWeek)}
		for i := range week.Days {
			d := week.Day(i)
			week.Days[i] = DayCell{
				Date:           d.Format(dateLayout),
				Day:            d.Day(),
				IsCurrentMonth: d.Year() == ym.Year && d.Month() == ym.Month,
			}
		}
		weeks = append(weeks, week)
	}
	return weeks
}
