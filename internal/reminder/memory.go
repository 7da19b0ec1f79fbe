package reminder

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore is a map-backed Store. It serializes access to records with a
// single mutex, which satisfies the single-writer-per-record guarantee.
type MemStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]Reminder
}

func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, rows: map[int64]Reminder{}}
}

func (m *MemStore) Get(_ context.Context, id int64) (Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return Reminder{}, ErrNotFound
	}
	return r, nil
}

func (m *MemStore) All(_ context.Context) ([]Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(func(Reminder) bool { return true }), nil
}

func (m *MemStore) AllForOwner(_ context.Context, owner int64) ([]Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(func(r Reminder) bool { return r.Owner == owner }), nil
}

func (m *MemStore) Due(_ context.Context, now time.Time) ([]Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(func(r Reminder) bool { return r.Due(now) }), nil
}

// sortedLocked keeps iteration order deterministic per call (by id), since
// Go map order is randomized.
func (m *MemStore) sortedLocked(keep func(Reminder) bool) []Reminder {
	out := make([]Reminder, 0, len(m.rows))
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemStore) Put(_ context.Context, r *Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		r.ID = m.nextID
		m.nextID++
	}
	m.rows[r.ID] = *r
	return nil
}

func (m *MemStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *MemStore) Close() error { return nil }
