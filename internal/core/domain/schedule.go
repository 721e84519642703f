package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/teamboard/schedule-engine/internal/core/calendar"
)

var (
	ErrScheduleTitleEmpty    = errors.New("schedule title cannot be empty")
	ErrScheduleTitleTooLong  = errors.New("schedule title is too long (max 100 chars)")
	ErrScheduleDescTooLong   = errors.New("schedule description is too long (max 500 chars)")
	ErrScheduleInvalidTeamID = errors.New("invalid team id")
	ErrInvalidColor          = errors.New("invalid color format (must be #RRGGBB)")
	ErrMissingTime           = errors.New("start_time and end_time are required")
	ErrInvalidTimeRange      = errors.New("end_time cannot be before start_time")
	ErrInvalidProgress       = errors.New("invalid progress (0 <= completed <= total)")
	ErrScheduleDeleted       = errors.New("cannot modify a deleted schedule")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	MaxTitleLen = 100
	MaxDescLen  = 500
)

type Schedule struct {
	ID          string `json:"id" db:"id"`
	TeamID      string `json:"team_id" db:"team_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Color       string `json:"color" db:"color"`

	StartTime time.Time `json:"start_time" db:"start_time"`
	EndTime   time.Time `json:"end_time" db:"end_time"`

	CompletedTasks int `json:"completed_tasks" db:"completed_tasks"`
	TotalTasks     int `json:"total_tasks" db:"total_tasks"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func validateAndNormalize(title, desc, color string, start, end time.Time) (string, string, string, error) {
	cleanTitle := strings.TrimSpace(title)
	if cleanTitle == "" {
		return "", "", "", ErrScheduleTitleEmpty
	}
	if utf8.RuneCountInString(cleanTitle) > MaxTitleLen {
		return "", "", "", ErrScheduleTitleTooLong
	}

	cleanDesc := strings.TrimSpace(desc)
	if utf8.RuneCountInString(cleanDesc) > MaxDescLen {
		return "", "", "", ErrScheduleDescTooLong
	}

	cleanColor := strings.TrimSpace(color)
	if cleanColor == "" {
		cleanColor = calendar.DefaultColor
	}
	if !colorRegex.MatchString(cleanColor) {
		return "", "", "", ErrInvalidColor
	}

	if start.IsZero() || end.IsZero() {
		return "", "", "", ErrMissingTime
	}
	if end.Before(start) {
		return "", "", "", ErrInvalidTimeRange
	}

	return cleanTitle, cleanDesc, strings.ToUpper(cleanColor), nil
}

func NewSchedule(teamID, title, description, color string, start, end time.Time) (*Schedule, error) {
	if strings.TrimSpace(teamID) == "" {
		return nil, ErrScheduleInvalidTeamID
	}

	cleanTitle, cleanDesc, cleanColor, err := validateAndNormalize(title, description, color, start, end)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Schedule{
		ID:          uuid.NewString(),
		TeamID:      teamID,
		Title:       cleanTitle,
		Description: cleanDesc,
		Color:       cleanColor,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *Schedule) Update(title, description, color string, start, end time.Time) error {
	if s.DeletedAt != nil {
		return ErrScheduleDeleted
	}

	cleanTitle, cleanDesc, cleanColor, err := validateAndNormalize(title, description, color, start, end)
	if err != nil {
		return err
	}

	s.Title = cleanTitle
	s.Description = cleanDesc
	s.Color = cleanColor
	s.StartTime = start.UTC()
	s.EndTime = end.UTC()
	s.UpdatedAt = time.Now().UTC()

	return nil
}

func (s *Schedule) SetProgress(completed, total int) error {
	if s.DeletedAt != nil {
		return ErrScheduleDeleted
	}
	if completed < 0 || total < 0 || completed > total {
		return ErrInvalidProgress
	}

	s.CompletedTasks = completed
	s.TotalTasks = total
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Event is the read-only view the layout engine works on.
func (s *Schedule) Event() calendar.Event {
	return calendar.Event{
		ID:             s.ID,
		Title:          s.Title,
		Start:          s.StartTime,
		End:            s.EndTime,
		Color:          s.Color,
		CompletedUnits: s.CompletedTasks,
		TotalUnits:     s.TotalTasks,
	}
}

func Events(schedules []*Schedule) []calendar.Event {
	events := make([]calendar.Event, 0, len(schedules))
	for _, s := range schedules {
		events = append(events, s.Event())
	}
	return events
}

// IsValidationError reports whether err comes from schedule input checks.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrScheduleTitleEmpty,
		ErrScheduleTitleTooLong,
		ErrScheduleDescTooLong,
		ErrScheduleInvalidTeamID,
		ErrInvalidColor,
		ErrMissingTime,
		ErrInvalidTimeRange,
		ErrInvalidProgress,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
