package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/teamboard/schedule-engine/internal/core/calendar"
	"github.com/teamboard/schedule-engine/internal/core/domain"
)

// LayoutService serves month layouts, rebuilding them only when the set of
// schedules shown on the month grid changed.
type LayoutService struct {
	repo  domain.ScheduleRepository
	cache domain.LayoutCache
	opts  calendar.Options
}

func NewLayoutService(repo domain.ScheduleRepository, cache domain.LayoutCache, opts calendar.Options) *LayoutService {
	return &LayoutService{
		repo:  repo,
		cache: cache,
		opts:  opts,
	}
}

func (s *LayoutService) Options() calendar.Options {
	return s.opts
}

func (s *LayoutService) MonthLayout(ctx context.Context, teamID string, ym calendar.YearMonth) (*calendar.MonthLayout, error) {
	from, to := calendar.GridRange(ym, s.opts)

	schedules, err := s.repo.ListByRange(ctx, teamID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list schedules for %s: %w", ym, err)
	}

	events := domain.Events(schedules)
	fp := calendar.Fingerprint(events)

	cached, err := s.cache.Get(ctx, teamID, ym, fp)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		log.Printf("[CACHE] Layout read error for team %s %s: %v", teamID, ym, err)
	}

	layout, err := calendar.BuildMonth(ym, events, s.opts)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, teamID, ym, fp, layout); err != nil {
		log.Printf("[CACHE] Layout write error for team %s %s: %v", teamID, ym, err)
	}

	return layout, nil
}

// Warm rebuilds and stores the layouts of months.
func (s *LayoutService) Warm(ctx context.Context, teamID string, months ...calendar.YearMonth) error {
	var errs []error
	for _, ym := range months {
		if _, err := s.MonthLayout(ctx, teamID, ym); err != nil {
			errs = append(errs, fmt.Errorf("warm %s: %w", ym, err))
		}
	}
	return errors.Join(errs...)
}

func (s *LayoutService) Invalidate(ctx context.Context, teamID string, months ...calendar.YearMonth) error {
	return s.cache.Invalidate(ctx, teamID, months...)
}
