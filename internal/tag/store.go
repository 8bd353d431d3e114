package tag

import (
	"context"
	"math"
	"sync"
)

// Store is the read/write contract every component uses to reach process
// variables. Implementations return *TransportError wrapping one of the
// package sentinels.
type Store interface {
	Read(ctx context.Context, id ID) (float64, error)
	Write(ctx context.Context, id ID, value float64) error
}

// Memory is the in-process store. The mutex only guards the map itself; a
// read followed by a write is never atomic, so concurrent writers race with
// last-writer-wins semantics exactly as on a shared panel.
type Memory struct {
	mu     sync.Mutex
	defs   map[ID]Definition
	values map[ID]float64
}

// NewMemory creates a store seeded with the catalog defaults.
func NewMemory() *Memory {
	return NewMemoryFrom(Catalog)
}

// NewMemoryFrom creates a store for an explicit tag table.
func NewMemoryFrom(defs []Definition) *Memory {
	m := &Memory{
		defs:   make(map[ID]Definition, len(defs)),
		values: make(map[ID]float64, len(defs)),
	}
	for _, d := range defs {
		m.defs[d.ID] = d
		m.values[d.ID] = d.Default
	}
	return m
}

// Read returns the current value of id.
func (m *Memory) Read(_ context.Context, id ID) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[id]
	if !ok {
		return 0, &TransportError{Op: "read", Tag: id, Err: ErrTagNotFound}
	}
	return v, nil
}

// Write replaces the value of id.
func (m *Memory) Write(_ context.Context, id ID, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	def, ok := m.defs[id]
	if !ok {
		return &TransportError{Op: "write", Tag: id, Err: ErrWriteRejected}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &TransportError{Op: "write", Tag: id, Err: ErrWriteRejected}
	}
	if def.Kind == Boolean && value != 0 && value != 1 {
		return &TransportError{Op: "write", Tag: id, Err: ErrWriteRejected}
	}

	m.values[id] = value
	return nil
}

// Snapshot copies all current values.
func (m *Memory) Snapshot() map[ID]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[ID]float64, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Reset restores every tag to its default.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, d := range m.defs {
		m.values[id] = d.Default
	}
}
