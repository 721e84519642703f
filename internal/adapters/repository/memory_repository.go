package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/teamboard/schedule-engine/internal/core/domain"
)

var _ domain.ScheduleRepository = (*InMemoryScheduleRepository)(nil)

// InMemoryScheduleRepository keeps schedules in process memory. It hands out
// copies so callers can never mutate stored state.
type InMemoryScheduleRepository struct {
	store map[string]*domain.Schedule

	mu sync.RWMutex
}

func NewInMemoryScheduleRepository() *InMemoryScheduleRepository {
	return &InMemoryScheduleRepository{
		store: make(map[string]*domain.Schedule),
	}
}

func clone(s *domain.Schedule) *domain.Schedule {
	c := *s
	if s.DeletedAt != nil {
		deletedAt := *s.DeletedAt
		c.DeletedAt = &deletedAt
	}
	return &c
}

func sortByStart(list []*domain.Schedule) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].StartTime.Equal(list[j].StartTime) {
			return list[i].StartTime.Before(list[j].StartTime)
		}
		return list[i].ID < list[j].ID
	})
}

func (r *InMemoryScheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[schedule.ID]; exists {
		return domain.ErrScheduleConflict
	}
	if schedule.Version == 0 {
		schedule.Version = 1
	}

	r.store[schedule.ID] = clone(schedule)
	return nil
}

func (r *InMemoryScheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.store[id]
	if !ok || s.DeletedAt != nil {
		return nil, domain.ErrScheduleNotFound
	}
	return clone(s), nil
}

func (r *InMemoryScheduleRepository) ListByRange(ctx context.Context, teamID string, from, to time.Time) ([]*domain.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := []*domain.Schedule{}
	for _, s := range r.store {
		if s.TeamID != teamID || s.DeletedAt != nil {
			continue
		}
		if s.StartTime.After(to) || s.EndTime.Before(from) {
			continue
		}
		list = append(list, clone(s))
	}

	sortByStart(list)
	return list, nil
}

func (r *InMemoryScheduleRepository) Update(ctx context.Context, schedule *domain.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.store[schedule.ID]
	if !ok || current.DeletedAt != nil {
		return domain.ErrScheduleNotFound
	}
	if current.Version != schedule.Version {
		return domain.ErrScheduleConflict
	}

	schedule.Version++
	schedule.UpdatedAt = time.Now().UTC()
	r.store[schedule.ID] = clone(schedule)
	return nil
}

func (r *InMemoryScheduleRepository) Delete(ctx context.Context, id string, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.store[id]
	if !ok || s.TeamID != teamID || s.DeletedAt != nil {
		return domain.ErrScheduleNotFound
	}

	now := time.Now().UTC()
	s.DeletedAt = &now
	s.UpdatedAt = now
	s.Version++
	return nil
}

func (r *InMemoryScheduleRepository) GetChanges(ctx context.Context, teamID string, since time.Time) ([]*domain.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	changes := []*domain.Schedule{}
	for _, s := range r.store {
		if s.TeamID == teamID && s.UpdatedAt.After(since) {
			changes = append(changes, clone(s))
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].UpdatedAt.Before(changes[j].UpdatedAt)
	})
	return changes, nil
}
