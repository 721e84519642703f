package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teamboard/schedule-engine/internal/core/calendar"
	"github.com/teamboard/schedule-engine/internal/core/domain"
)

// LayoutInvalidator is told which cached months a schedule change touched.
type LayoutInvalidator interface {
	Enqueue(teamID string, months ...calendar.YearMonth)
}

type ScheduleService struct {
	repo    domain.ScheduleRepository
	layouts LayoutInvalidator
	opts    calendar.Options
}

func NewScheduleService(repo domain.ScheduleRepository, layouts LayoutInvalidator, opts calendar.Options) *ScheduleService {
	return &ScheduleService{
		repo:    repo,
		layouts: layouts,
		opts:    opts,
	}
}

type CreateScheduleInput struct {
	TeamID         string
	Title          string
	Description    string
	Color          string
	StartTime      time.Time
	EndTime        time.Time
	CompletedTasks int
	TotalTasks     int
}

type UpdateScheduleInput struct {
	ID          string
	TeamID      string
	Title       string
	Description string
	Color       string
	StartTime   time.Time
	EndTime     time.Time
	Version     int
}

type UpdateProgressInput struct {
	ID             string
	TeamID         string
	CompletedTasks int
	TotalTasks     int
	Version        int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func mergeTime(newVal, oldVal time.Time) time.Time {
	if newVal.IsZero() {
		return oldVal
	}
	return newVal
}

func (s *ScheduleService) Create(ctx context.Context, input CreateScheduleInput) (*domain.Schedule, error) {
	schedule, err := domain.NewSchedule(input.TeamID, input.Title, input.Description, input.Color, input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}

	if input.TotalTasks != 0 || input.CompletedTasks != 0 {
		if err := schedule.SetProgress(input.CompletedTasks, input.TotalTasks); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, err
	}

	s.notify(schedule.TeamID, schedule)
	return schedule, nil
}

// ListByMonth returns the team's schedules intersecting the calendar month.
func (s *ScheduleService) ListByMonth(ctx context.Context, teamID string, ym calendar.YearMonth) ([]*domain.Schedule, error) {
	from, to := calendar.MonthRange(ym, s.opts)
	return s.repo.ListByRange(ctx, teamID, from, to)
}

func (s *ScheduleService) GetDelta(ctx context.Context, teamID string, lastSync time.Time) ([]*domain.Schedule, error) {
	return s.repo.GetChanges(ctx, teamID, lastSync)
}

func (s *ScheduleService) Update(ctx context.Context, input UpdateScheduleInput) (*domain.Schedule, error) {
	schedule, err := s.owned(ctx, input.ID, input.TeamID, input.Version)
	if err != nil {
		return nil, err
	}
	before := *schedule

	err = schedule.Update(
		mergeString(input.Title, schedule.Title),
		mergeString(input.Description, schedule.Description),
		mergeString(input.Color, schedule.Color),
		mergeTime(input.StartTime, schedule.StartTime),
		mergeTime(input.EndTime, schedule.EndTime),
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, err
	}

	s.notify(schedule.TeamID, &before, schedule)
	return schedule, nil
}

func (s *ScheduleService) UpdateProgress(ctx context.Context, input UpdateProgressInput) (*domain.Schedule, error) {
	schedule, err := s.owned(ctx, input.ID, input.TeamID, input.Version)
	if err != nil {
		return nil, err
	}

	if err := schedule.SetProgress(input.CompletedTasks, input.TotalTasks); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, err
	}

	s.notify(schedule.TeamID, schedule)
	return schedule, nil
}

func (s *ScheduleService) Delete(ctx context.Context, id string, teamID string) error {
	schedule, err := s.owned(ctx, id, teamID, 0)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, teamID); err != nil {
		return err
	}

	s.notify(teamID, schedule)
	return nil
}

// owned loads a schedule and hides it from other teams. A positive version
// must match the stored one.
func (s *ScheduleService) owned(ctx context.Context, id, teamID string, version int) (*domain.Schedule, error) {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if schedule.TeamID != teamID {
		return nil, domain.ErrScheduleNotFound
	}

	if version > 0 && schedule.Version != version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrScheduleConflict, version, schedule.Version)
	}

	return schedule, nil
}

func (s *ScheduleService) notify(teamID string, schedules ...*domain.Schedule) {
	if s.layouts == nil {
		return
	}

	months := AffectedMonths(s.opts, schedules...)
	if len(months) > 0 {
		s.layouts.Enqueue(teamID, months...)
	}
}

// AffectedMonths is the ordered union of the month grids showing any of the
// given schedules.
func AffectedMonths(opts calendar.Options, schedules ...*domain.Schedule) []calendar.YearMonth {
	seen := make(map[calendar.YearMonth]bool)
	var months []calendar.YearMonth

	for _, sc := range schedules {
		for _, ym := range calendar.AffectedMonths(sc.Event(), opts) {
			if !seen[ym] {
				seen[ym] = true
				months = append(months, ym)
			}
		}
	}
	return months
}
