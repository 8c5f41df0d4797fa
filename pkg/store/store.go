package store

import (
	"iter"

	"github.com/itohio/gotemp/pkg/convert"
)

// DefaultCapacity is the number of records kept when no capacity is given.
const DefaultCapacity = 10

// Record is one tick worth of telemetry from both sensors.
type Record struct {
	Sensor1   convert.Reading `json:"sensor1"`
	Sensor2   convert.Reading `json:"sensor2"`
	Timestamp uint32          `json:"timestamp"` // Monotonic milliseconds, wraps at 2^32
}

// Telemetry is the set of operations shared by Store and Synchronized.
type Telemetry interface {
	Append(sensor1, sensor2 convert.Reading, timestamp uint32)
	LatestIndex() int
	All() iter.Seq2[int, Record]
	Snapshot() []Record
}

var (
	_ Telemetry = (*Store)(nil)
	_ Telemetry = (*Synchronized)(nil)
)

// Store is a fixed-capacity ring of records.
//
// Appends go to the slot at the cursor, which then advances and wraps, so once
// the ring is full every append overwrites the oldest record. Slots that were
// never written hold the zero Record.
//
// Store is not safe for concurrent use; see Synchronized.
type Store struct {
	records []Record
	cursor  int
	written uint64
}

// New creates a store holding capacity records. A non-positive capacity
// selects DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		records: make([]Record, capacity),
	}
}

// Cap returns the fixed number of slots.
func (s *Store) Cap() int {
	return len(s.records)
}

// Written returns the total number of appends since creation.
func (s *Store) Written() uint64 {
	return s.written
}

// Append writes a record at the cursor and advances the cursor.
func (s *Store) Append(sensor1, sensor2 convert.Reading, timestamp uint32) {
	s.records[s.cursor] = Record{
		Sensor1:   sensor1,
		Sensor2:   sensor2,
		Timestamp: timestamp,
	}
	s.cursor = (s.cursor + 1) % len(s.records)
	s.written++
}

// LatestIndex returns the slot written by the most recent Append, or -1 if
// nothing has been appended yet.
func (s *Store) LatestIndex() int {
	if s.written == 0 {
		return -1
	}
	return (s.cursor + len(s.records) - 1) % len(s.records)
}

// Latest returns the most recently appended record.
func (s *Store) Latest() (Record, bool) {
	idx := s.LatestIndex()
	if idx < 0 {
		return Record{}, false
	}
	return s.records[idx], true
}

// At returns the record in slot i. It panics if i is outside [0, Cap()).
func (s *Store) At(i int) Record {
	return s.records[i]
}

// All yields every slot in index order 0..Cap()-1, which is not creation
// order once the ring has wrapped.
func (s *Store) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i := range s.records {
			if !yield(i, s.records[i]) {
				return
			}
		}
	}
}

// Snapshot returns a copy of all slots in index order.
func (s *Store) Snapshot() []Record {
	result := make([]Record, len(s.records))
	copy(result, s.records)
	return result
}
