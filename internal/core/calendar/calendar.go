// Package calendar lays out time-ranged events on a month grid.
//
// Every function in this package is pure: the same events and options always
// produce the same layout, and no input is mutated. Callers own the event list
// and decide when to recompute; Memo offers an explicit cache for that.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DaysPerWeek  = 7
	DefaultColor = "#6366F1"
	dateLayout   = "2006-01-02"
)

var (
	ErrInvalidEvent = errors.New("invalid calendar event")
	ErrInvalidMonth = errors.New("invalid year/month")
)

// Event is a single time-ranged item to place on the grid.
type Event struct {
	ID             string
	Title          string
	Start          time.Time
	End            time.Time
	Color          string
	CompletedUnits int
	TotalUnits     int
}

func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

func (e Event) hasTimestamps() bool {
	return !e.Start.IsZero() && !e.End.IsZero()
}

// Validate reports broken invariants. Events that reach the layout engine in
// this state are a bug upstream, not something to render around.
func (e Event) Validate() error {
	if e.End.Before(e.Start) {
		return fmt.Errorf("%w: event %q ends before it starts", ErrInvalidEvent, e.ID)
	}
	if e.CompletedUnits < 0 || e.TotalUnits < 0 {
		return fmt.Errorf("%w: event %q has negative units", ErrInvalidEvent, e.ID)
	}
	if e.CompletedUnits > e.TotalUnits {
		return fmt.Errorf("%w: event %q has %d of %d units completed", ErrInvalidEvent, e.ID, e.CompletedUnits, e.TotalUnits)
	}
	return nil
}

func (e Event) color() string {
	if e.Color == "" {
		return DefaultColor
	}
	return e.Color
}

// Options controls how days are cut and where weeks begin.
type Options struct {
	WeekStart time.Weekday
	// Location is used only to truncate timestamps to day boundaries.
	// A nil Location means UTC.
	Location *time.Location
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// weekdayIndex is the column of t in a week starting on o.WeekStart.
func (o Options) weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) - int(o.WeekStart) + DaysPerWeek) % DaysPerWeek
}

// ParseWeekStart accepts "sunday" or "monday", case-insensitively.
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	default:
		return time.Sunday, fmt.Errorf("unsupported week start %q (must be sunday or monday)", s)
	}
}

type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func NewYearMonth(year, month int) (YearMonth, error) {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("%w: %d-%d", ErrInvalidMonth, year, month)
	}
	return YearMonth{Year: year, Month: time.Month(month)}, nil
}

func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) First(loc *time.Location) time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, loc)
}

func (ym YearMonth) Next() YearMonth {
	return MonthOf(time.Date(ym.Year, ym.Month+1, 1, 0, 0, 0, 0, time.UTC))
}

func (ym YearMonth) Prev() YearMonth {
	return MonthOf(time.Date(ym.Year, ym.Month-1, 1, 0, 0, 0, 0, time.UTC))
}

// Before reports whether ym is an earlier month than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// MonthRange returns 00:00 of the first day and 23:59:59.999 of the last day.
func MonthRange(ym YearMonth, opts Options) (time.Time, time.Time) {
	first := ym.First(opts.location())
	return first, endOfDay(first.AddDate(0, 1, -1))
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// endOfDay expects a midnight produced by startOfDay.
func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}
