package store

import (
	"cmp"
	"slices"
	"sync"

	"github.com/theirongolddev/unitecon/internal/model"
)

// Backend persists snapshots for one session. It is append-only: there is no
// way to change or remove a snapshot once inserted.
type Backend interface {
	// Insert adds snap, returning *model.DuplicateMonthError when its month
	// is already present.
	Insert(snap model.MonthlySnapshot) error
	// Lookup returns the snapshot for month, if any.
	Lookup(month int) (model.MonthlySnapshot, bool, error)
	// List returns every snapshot ordered by month.
	List() ([]model.MonthlySnapshot, error)
	Close() error
}

// Memory is a map-backed Backend.
type Memory struct {
	mu    sync.RWMutex
	byMon map[int]model.MonthlySnapshot
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{byMon: make(map[int]model.MonthlySnapshot)}
}

// Insert stores snap unless its month is already taken.
func (m *Memory) Insert(snap model.MonthlySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byMon[snap.Month]; ok {
		return &model.DuplicateMonthError{Month: snap.Month}
	}
	m.byMon[snap.Month] = snap
	return nil
}

// Lookup returns the snapshot for month, if any.
func (m *Memory) Lookup(month int) (model.MonthlySnapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.byMon[month]
	return snap, ok, nil
}

// List returns every snapshot ordered by month.
func (m *Memory) List() ([]model.MonthlySnapshot, error) {
	m.mu.RLock()
	out := make([]model.MonthlySnapshot, 0, len(m.byMon))
	for _, s := range m.byMon {
		out = append(out, s)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.MonthlySnapshot) int {
		return cmp.Compare(a.Month, b.Month)
	})
	return out, nil
}

// Close is a no-op; the snapshots go away with the Memory.
func (m *Memory) Close() error { return nil }
