package store

import (
	"iter"
	"sync"

	"github.com/itohio/gotemp/pkg/convert"
)

// Synchronized guards a Store with a single mutex so that a producer and
// readers on other goroutines can share it.
type Synchronized struct {
	mu    sync.Mutex
	store *Store
}

// NewSynchronized creates a locked store holding capacity records.
func NewSynchronized(capacity int) *Synchronized {
	return &Synchronized{store: New(capacity)}
}

// Cap returns the fixed number of slots.
func (s *Synchronized) Cap() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Cap()
}

// Written returns the total number of appends since creation.
func (s *Synchronized) Written() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Written()
}

// Append writes a record at the cursor and advances the cursor.
func (s *Synchronized) Append(sensor1, sensor2 convert.Reading, timestamp uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Append(sensor1, sensor2, timestamp)
}

// LatestIndex returns the slot written by the most recent Append, or -1.
func (s *Synchronized) LatestIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.LatestIndex()
}

// Latest returns the most recently appended record.
func (s *Synchronized) Latest() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Latest()
}

// All iterates over a snapshot taken when iteration starts, so the lock is
// not held while the caller's loop body runs.
func (s *Synchronized) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i, rec := range s.Snapshot() {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Snapshot returns a copy of all slots in index order.
func (s *Synchronized) Snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}
