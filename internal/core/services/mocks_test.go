package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/teamboard/schedule-engine/internal/core/calendar"
	"github.com/teamboard/schedule-engine/internal/core/domain"
)

type MockRepo struct {
	store         map[string]*domain.Schedule
	simulateError error
	listCalls     int
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		store: make(map[string]*domain.Schedule),
	}
}

func (m *MockRepo) Create(ctx context.Context, s *domain.Schedule) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	if _, exists := m.store[s.ID]; exists {
		return domain.ErrScheduleConflict
	}
	clone := *s
	m.store[s.ID] = &clone
	return nil
}

func (m *MockRepo) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	s, ok := m.store[id]
	if !ok || s.DeletedAt != nil {
		return nil, domain.ErrScheduleNotFound
	}
	clone := *s
	return &clone, nil
}

func (m *MockRepo) ListByRange(ctx context.Context, teamID string, from, to time.Time) ([]*domain.Schedule, error) {
	m.listCalls++
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	list := []*domain.Schedule{}
	for _, s := range m.store {
		if s.TeamID != teamID || s.DeletedAt != nil || s.StartTime.After(to) || s.EndTime.Before(from) {
			continue
		}
		clone := *s
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].StartTime.Equal(list[j].StartTime) {
			return list[i].StartTime.Before(list[j].StartTime)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (m *MockRepo) Update(ctx context.Context, s *domain.Schedule) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	current, ok := m.store[s.ID]
	if !ok {
		return domain.ErrScheduleNotFound
	}
	if current.Version != s.Version {
		return domain.ErrScheduleConflict
	}
	s.Version++
	clone := *s
	m.store[s.ID] = &clone
	return nil
}

func (m *MockRepo) Delete(ctx context.Context, id string, teamID string) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	s, ok := m.store[id]
	if !ok || s.TeamID != teamID {
		return domain.ErrScheduleNotFound
	}
	now := time.Now().UTC()
	s.DeletedAt = &now
	s.UpdatedAt = now
	s.Version++
	return nil
}

func (m *MockRepo) GetChanges(ctx context.Context, teamID string, since time.Time) ([]*domain.Schedule, error) {
	var changes []*domain.Schedule
	for _, s := range m.store {
		if s.TeamID == teamID && s.UpdatedAt.After(since) {
			clone := *s
			changes = append(changes, &clone)
		}
	}
	return changes, nil
}

type enqueued struct {
	teamID string
	months []calendar.YearMonth
}

type RecordingInvalidator struct {
	mu   sync.Mutex
	jobs []enqueued
}

func (r *RecordingInvalidator) Enqueue(teamID string, months ...calendar.YearMonth) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, enqueued{teamID: teamID, months: months})
}

func (r *RecordingInvalidator) Last() enqueued {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.jobs) == 0 {
		return enqueued{}
	}
	return r.jobs[len(r.jobs)-1]
}

type MockLayoutCache struct {
	mock.Mock
}

func (m *MockLayoutCache) Get(ctx context.Context, teamID string, ym calendar.YearMonth, fp uint64) (*calendar.MonthLayout, error) {
	args := m.Called(ctx, teamID, ym, fp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calendar.MonthLayout), args.Error(1)
}

func (m *MockLayoutCache) Set(ctx context.Context, teamID string, ym calendar.YearMonth, fp uint64, layout *calendar.MonthLayout) error {
	args := m.Called(ctx, teamID, ym, fp, layout)
	return args.Error(0)
}

func (m *MockLayoutCache) Invalidate(ctx context.Context, teamID string, months ...calendar.YearMonth) error {
	args := m.Called(ctx, teamID, months)
	return args.Error(0)
}
