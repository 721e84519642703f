package domain

import (
	"context"
	"errors"
	"time"

	"github.com/teamboard/schedule-engine/internal/core/calendar"
)

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrScheduleConflict = errors.New("schedule version conflict")
	ErrCacheMiss        = errors.New("layout cache miss")
)

type ScheduleRepository interface {
	// Create persists a new schedule.
	Create(ctx context.Context, schedule *Schedule) error

	// GetByID retrieves a single active (non-deleted) schedule.
	GetByID(ctx context.Context, id string) (*Schedule, error)

	// ListByRange returns the team's active schedules intersecting [from, to],
	// ordered by start time and then id.
	ListByRange(ctx context.Context, teamID string, from, to time.Time) ([]*Schedule, error)

	// Update persists changes to an existing schedule.
	// Implementations bump Version and reject stale writes with ErrScheduleConflict.
	Update(ctx context.Context, schedule *Schedule) error

	// Delete performs a soft delete scoped to the owning team.
	Delete(ctx context.Context, id string, teamID string) error

	// GetChanges [SYNC] returns creations, updates and soft-deletes after since.
	GetChanges(ctx context.Context, teamID string, since time.Time) ([]*Schedule, error)
}

// LayoutCache stores month layouts keyed by team, month and event-set
// fingerprint. A stored layout is only returned for the fingerprint it was
// built from.
type LayoutCache interface {
	Get(ctx context.Context, teamID string, ym calendar.YearMonth, fingerprint uint64) (*calendar.MonthLayout, error)
	Set(ctx context.Context, teamID string, ym calendar.YearMonth, fingerprint uint64, layout *calendar.MonthLayout) error
	Invalidate(ctx context.Context, teamID string, months ...calendar.YearMonth) error
}
