package store

import (
	"testing"

	"github.com/itohio/gotemp/pkg/convert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reading builds a distinguishable reading for tick n.
func reading(n int) convert.Reading {
	c := float64(n)
	return convert.Reading{Celsius: c, Fahrenheit: convert.Fahrenheit(c)}
}

// appendTicks appends ticks from..to inclusive; sensor 2 is offset by 100.
func appendTicks(s *Store, from, to int) {
	for n := from; n <= to; n++ {
		s.Append(reading(n), reading(n+100), uint32(n)*20000)
	}
}

func record(n int) Record {
	return Record{Sensor1: reading(n), Sensor2: reading(n + 100), Timestamp: uint32(n) * 20000}
}

func TestNew(t *testing.T) {
	s := New(5)
	assert.Equal(t, 5, s.Cap())
	assert.Equal(t, uint64(0), s.Written())
	assert.Equal(t, -1, s.LatestIndex())

	_, ok := s.Latest()
	assert.False(t, ok)

	for _, rec := range s.Snapshot() {
		assert.Equal(t, Record{}, rec)
	}
}

func TestNew_Defaults(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New(0).Cap())
	assert.Equal(t, DefaultCapacity, New(-3).Cap())
}

func TestAppend_BeforeWrap(t *testing.T) {
	s := New(10)
	appendTicks(s, 1, 3)

	assert.Equal(t, 2, s.LatestIndex())
	assert.Equal(t, record(1), s.At(0))
	assert.Equal(t, record(3), s.At(2))

	// Unwritten tail stays zero-valued.
	for i := 3; i < 10; i++ {
		assert.Equal(t, Record{}, s.At(i), "slot %d", i)
	}
}

func TestAppend_ExactlyFull(t *testing.T) {
	s := New(10)
	appendTicks(s, 1, 10)

	assert.Equal(t, 9, s.LatestIndex())
	count := 0
	for i, rec := range s.All() {
		assert.NotEqual(t, Record{}, rec, "slot %d still zero", i)
		assert.Equal(t, record(i+1), rec)
		count++
	}
	assert.Equal(t, 10, count)
}

func TestAppend_Overwrite(t *testing.T) {
	const capacity = 10

	for k := 1; k <= 2*capacity+3; k++ {
		s := New(capacity)
		appendTicks(s, 1, capacity+k)

		newest := (k - 1) % capacity
		assert.Equal(t, newest, s.LatestIndex(), "k=%d", k)
		assert.Equal(t, record(capacity+k), s.At(newest), "k=%d", k)

		// Count how many of the first capacity records survived.
		survivors := 0
		for _, rec := range s.All() {
			if rec.Sensor1.Celsius >= 1 && rec.Sensor1.Celsius <= capacity {
				survivors++
			}
		}
		overwritten := min(k, capacity)
		assert.Equal(t, capacity-overwritten, survivors, "k=%d", k)
		assert.Equal(t, uint64(capacity+k), s.Written())
	}
}

func TestLatestIndex_TracksLastWrite(t *testing.T) {
	s := New(4)
	for n := 1; n <= 9; n++ {
		s.Append(reading(n), reading(n), uint32(n))
		idx := s.LatestIndex()
		assert.Equal(t, (n-1)%4, idx)
		assert.Equal(t, uint32(n), s.At(idx).Timestamp)

		latest, ok := s.Latest()
		require.True(t, ok)
		assert.Equal(t, uint32(n), latest.Timestamp)
	}
}

func TestAll_FifteenAppends(t *testing.T) {
	s := New(10)
	appendTicks(s, 1, 15)

	expected := []Record{
		record(11), record(12), record(13), record(14), record(15),
		record(6), record(7), record(8), record(9), record(10),
	}

	var got []Record
	for i, rec := range s.All() {
		assert.Equal(t, len(got), i)
		got = append(got, rec)
	}
	assert.Equal(t, expected, got)
	assert.Equal(t, 4, s.LatestIndex())

	// Slot order is not creation order: slot 5 is older than slot 4.
	assert.Less(t, got[5].Timestamp, got[4].Timestamp)
}

func TestAll_Restartable(t *testing.T) {
	s := New(3)
	appendTicks(s, 1, 2)

	seq := s.All()
	var first, second []Record
	for _, rec := range seq {
		first = append(first, rec)
	}
	for _, rec := range seq {
		second = append(second, rec)
	}
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestAll_EarlyBreak(t *testing.T) {
	s := New(10)
	appendTicks(s, 1, 10)

	visited := 0
	for i := range s.All() {
		visited++
		if i == 2 {
			break
		}
	}
	assert.Equal(t, 3, visited)
}

func TestAll_Lazy(t *testing.T) {
	s := New(3)
	seq := s.All()
	appendTicks(s, 1, 1)

	// The sequence reads slots when iterated, not when created.
	for i, rec := range seq {
		if i == 0 {
			assert.Equal(t, record(1), rec)
		}
	}
}

func TestSnapshot_IsCopy(t *testing.T) {
	s := New(3)
	appendTicks(s, 1, 1)

	snap := s.Snapshot()
	snap[0] = Record{}
	assert.Equal(t, record(1), s.At(0))
}

func TestAppend_TimestampWrap(t *testing.T) {
	s := New(3)
	s.Append(reading(1), reading(1), 0xFFFFFFF0)
	s.Append(reading(2), reading(2), 0x00000010)

	assert.Equal(t, uint32(0xFFFFFFF0), s.At(0).Timestamp)
	assert.Equal(t, uint32(0x10), s.At(1).Timestamp)
	assert.Equal(t, 1, s.LatestIndex())
}
