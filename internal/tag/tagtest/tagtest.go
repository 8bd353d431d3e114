// Package tagtest provides tag.Store doubles for tests: a recorder that counts
// writes and a store that injects failures per tag.
package tagtest

import (
	"context"
	"sync"

	"github.com/Amir23156/BottleAsec/internal/tag"
)

// WriteOp is one recorded write.
type WriteOp struct {
	Tag   tag.ID
	Value float64
}

// Store wraps a tag.Memory, records writes, and fails operations on demand.
type Store struct {
	*tag.Memory

	mu         sync.Mutex
	writes     []WriteOp
	readFails  map[tag.ID]error
	writeFails map[tag.ID]error
}

// New returns a recording store seeded with the catalog defaults.
func New() *Store {
	return &Store{
		Memory:     tag.NewMemory(),
		readFails:  make(map[tag.ID]error),
		writeFails: make(map[tag.ID]error),
	}
}

// FailRead makes reads of id fail with err (nil clears).
func (s *Store) FailRead(id tag.ID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.readFails, id)
		return
	}
	s.readFails[id] = err
}

// FailWrite makes writes of id fail with err (nil clears).
func (s *Store) FailWrite(id tag.ID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.writeFails, id)
		return
	}
	s.writeFails[id] = err
}

func (s *Store) Read(ctx context.Context, id tag.ID) (float64, error) {
	s.mu.Lock()
	err := s.readFails[id]
	s.mu.Unlock()
	if err != nil {
		return 0, &tag.TransportError{Op: "read", Tag: id, Err: err}
	}
	return s.Memory.Read(ctx, id)
}

func (s *Store) Write(ctx context.Context, id tag.ID, value float64) error {
	s.mu.Lock()
	err := s.writeFails[id]
	s.mu.Unlock()
	if err != nil {
		return &tag.TransportError{Op: "write", Tag: id, Err: err}
	}
	if err := s.Memory.Write(ctx, id, value); err != nil {
		return err
	}
	s.mu.Lock()
	s.writes = append(s.writes, WriteOp{Tag: id, Value: value})
	s.mu.Unlock()
	return nil
}

// Writes returns the successful writes since the last ClearWrites.
func (s *Store) Writes() []WriteOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]WriteOp, len(s.writes))
	copy(out, s.writes)
	return out
}

// ClearWrites drops the write history.
func (s *Store) ClearWrites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = nil
}

// Set writes a value directly into the backing memory without recording it.
func (s *Store) Set(id tag.ID, value float64) {
	_ = s.Memory.Write(context.Background(), id, value)
}
