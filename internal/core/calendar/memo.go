package calendar

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes every field of events that can change a layout. List
// order is part of the hash because it breaks ties between identical events.
func Fingerprint(events []Event) uint64 {
	d := xxhash.New()
	var buf [8]byte

	writeInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = d.Write(buf[:])
	}
	writeString := func(s string) {
		writeInt(int64(len(s)))
		_, _ = d.WriteString(s)
	}

	writeInt(int64(len(events)))
	for _, ev := range events {
		writeString(ev.ID)
		writeString(ev.Title)
		writeString(ev.Color)
		writeInt(ev.Start.UnixNano())
		writeInt(ev.End.UnixNano())
		writeInt(int64(ev.CompletedUnits))
		writeInt(int64(ev.TotalUnits))
	}
	return d.Sum64()
}

// AffectedMonths lists every month whose padded grid shows some day of ev, in
// chronological order. Events without timestamps affect no month.
func AffectedMonths(ev Event, opts Options) []YearMonth {
	if !ev.hasTimestamps() {
		return nil
	}
	loc := opts.location()
	start := startOfDay(ev.Start, loc)
	end := endOfDay(startOfDay(ev.End, loc))

	var months []YearMonth
	last := MonthOf(end).Next()
	for ym := MonthOf(start).Prev(); !last.Before(ym); ym = ym.Next() {
		gridStart, gridEnd := GridRange(ym, opts)
		if !start.After(gridEnd) && !end.Before(gridStart) {
			months = append(months, ym)
		}
	}
	return months
}

type memoEntry struct {
	fingerprint uint64
	layout      *MonthLayout
}

// Memo caches one layout per month, valid only for the event-set fingerprint
// it was built from. It is safe for concurrent use.
type Memo struct {
	mu      sync.RWMutex
	opts    Options
	entries map[YearMonth]memoEntry
}

func NewMemo(opts Options) *Memo {
	return &Memo{
		opts:    opts,
		entries: make(map[YearMonth]memoEntry),
	}
}

func (m *Memo) Get(ym YearMonth, fingerprint uint64) (*MonthLayout, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[ym]
	if !ok || entry.fingerprint != fingerprint {
		return nil, false
	}
	return entry.layout, true
}

func (m *Memo) Put(ym YearMonth, fingerprint uint64, layout *MonthLayout) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[ym] = memoEntry{fingerprint: fingerprint, layout: layout}
}

// Layout returns the cached layout for events or builds and stores a new one.
func (m *Memo) Layout(ym YearMonth, events []Event) (*MonthLayout, error) {
	fp := Fingerprint(events)
	if layout, ok := m.Get(ym, fp); ok {
		return layout, nil
	}

	layout, err := BuildMonth(ym, events, m.opts)
	if err != nil {
		return nil, err
	}
	m.Put(ym, fp, layout)
	return layout, nil
}

func (m *Memo) Invalidate(months ...YearMonth) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ym := range months {
		delete(m.entries, ym)
	}
}

func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[YearMonth]memoEntry)
}

func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
