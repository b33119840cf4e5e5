// Package store provides the RecordStore backends used by resource pages:
// an in-process list for mock mode, a REST client for remote mode, and
// LevelDB and PostgreSQL stores for persistent local deployments.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

// Memory is an ordered, in-process record list. Every operation is
// synchronous and immediately visible. Ids come from a monotonic counter
// that starts after the largest seeded id, so an id is never reused even
// after the record holding it is deleted.
type Memory struct {
	mu      sync.Mutex
	records []resource.Record
	last    int64
}

// NewMemory returns a store seeded with the given fixtures.
func NewMemory(seed ...resource.Record) *Memory {
	m := &Memory{records: make([]resource.Record, 0, len(seed))}
	for _, r := range seed {
		m.records = append(m.records, r.Clone())
		if r.ID > m.last {
			m.last = r.ID
		}
	}
	return m
}

func (m *Memory) List(_ context.Context) ([]resource.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]resource.Record, len(m.records))
	for i, r := range m.records {
		out[i] = r.Clone()
	}
	return out, nil
}

func (m *Memory) Create(_ context.Context, r resource.Record) (resource.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last++
	rec := r.Clone()
	rec.ID = m.last
	m.records = append(m.records, rec)
	return rec.Clone(), nil
}

func (m *Memory) Update(_ context.Context, r resource.Record) (resource.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(r.ID)
	if i < 0 {
		return resource.Record{}, fmt.Errorf("id %d: %w", r.ID, resource.ErrNotFound)
	}
	m.records[i] = r.Clone()
	return r.Clone(), nil
}

func (m *Memory) Patch(_ context.Context, id int64, fields map[string]any) (resource.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return resource.Record{}, fmt.Errorf("id %d: %w", id, resource.ErrNotFound)
	}
	rec := m.records[i].Clone()
	for k, v := range fields {
		rec.Fields[k] = v
	}
	m.records[i] = rec
	return rec.Clone(), nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("id %d: %w", id, resource.ErrNotFound)
	}
	m.records = append(m.records[:i:i], m.records[i+1:]...)
	return nil
}

func (m *Memory) indexOf(id int64) int {
	for i, r := range m.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
