package cache

import (
	"context"
	"sync"

	"github.com/teamboard/schedule-engine/internal/core/calendar"
	"github.com/teamboard/schedule-engine/internal/core/domain"
)

var _ domain.LayoutCache = (*MemoryLayoutCache)(nil)

// MemoryLayoutCache keeps one calendar.Memo per team. It is used when Redis
// is not configured or not reachable.
type MemoryLayoutCache struct {
	mu    sync.Mutex
	opts  calendar.Options
	teams map[string]*calendar.Memo
}

func NewMemoryLayoutCache(opts calendar.Options) *MemoryLayoutCache {
	return &MemoryLayoutCache{
		opts:  opts,
		teams: make(map[string]*calendar.Memo),
	}
}

func (c *MemoryLayoutCache) memo(teamID string) *calendar.Memo {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.teams[teamID]
	if !ok {
		m = calendar.NewMemo(c.opts)
		c.teams[teamID] = m
	}
	return m
}

func (c *MemoryLayoutCache) Get(_ context.Context, teamID string, ym calendar.YearMonth, fingerprint uint64) (*calendar.MonthLayout, error) {
	layout, ok := c.memo(teamID).Get(ym, fingerprint)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return layout, nil
}

func (c *MemoryLayoutCache) Set(_ context.Context, teamID string, ym calendar.YearMonth, fingerprint uint64, layout *calendar.MonthLayout) error {
	c.memo(teamID).Put(ym, fingerprint, layout)
	return nil
}

func (c *MemoryLayoutCache) Invalidate(_ context.Context, teamID string, months ...calendar.YearMonth) error {
	c.memo(teamID).Invalidate(months...)
	return nil
}
