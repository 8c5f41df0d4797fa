package monitor

import (
	"bytes"
	"errors"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/itohio/gotemp/pkg/clock"
	"github.com/itohio/gotemp/pkg/convert"
	"github.com/itohio/gotemp/pkg/report"
	"github.com/itohio/gotemp/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource returns samples from a fixed script, one pair per tick.
type scriptedSource struct {
	mu    sync.Mutex
	pairs [][2]uint16
	reads int
	err   error
}

func (s *scriptedSource) ReadRaw(channel int) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return 0, s.err
	}
	pair := s.pairs[(s.reads/2)%len(s.pairs)]
	s.reads++
	return pair[channel], nil
}

// recordingSink keeps everything it was asked to render.
type recordingSink struct {
	mu      sync.Mutex
	latest  []int
	records []store.Record
	dumps   [][]store.Record
	err     error
}

func (r *recordingSink) Latest(index int, rec store.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = append(r.latest, index)
	r.records = append(r.records, rec)
	return r.err
}

func (r *recordingSink) Dump(records iter.Seq2[int, store.Record]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var dump []store.Record
	for _, rec := range records {
		dump = append(dump, rec)
	}
	r.dumps = append(r.dumps, dump)
	return r.err
}

func (r *recordingSink) ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dumps)
}

func newTestMonitor(t *testing.T, src Source, clk Clock, sink report.Sink, st store.Telemetry) *Monitor {
	t.Helper()
	m, err := New(Options{
		Source:    src,
		Clock:     clk,
		Converter: convert.New(convert.DefaultCalibration()),
		Store:     st,
		Sink:      sink,
		Channels:  [2]int{0, 1},
		Interval:  20 * time.Second,
	})
	require.NoError(t, err)
	return m
}

func TestNew_Validation(t *testing.T) {
	src := &scriptedSource{pairs: [][2]uint16{{0, 0}}}
	clk := clock.NewManual(0)
	st := store.New(10)
	sink := &recordingSink{}

	tests := []struct {
		name string
		opts Options
	}{
		{"missing source", Options{Clock: clk, Store: st, Sink: sink}},
		{"missing clock", Options{Source: src, Store: st, Sink: sink}},
		{"missing store", Options{Source: src, Clock: clk, Sink: sink}},
		{"missing sink", Options{Source: src, Clock: clk, Store: st}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.opts)
			assert.Error(t, err)
			assert.Nil(t, m)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	m, err := New(Options{
		Source: &scriptedSource{pairs: [][2]uint16{{0, 0}}},
		Clock:  clock.NewManual(0),
		Store:  store.New(10),
		Sink:   &recordingSink{},
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultInterval, m.Interval())
	assert.Equal(t, convert.DefaultCalibration(), m.conv.Calibration())
}

func TestTick(t *testing.T) {
	conv := convert.New(convert.DefaultCalibration())
	src := &scriptedSource{pairs: [][2]uint16{{153, 102}}}
	clk := clock.NewManual(20000)
	st := store.New(10)
	sink := &recordingSink{}
	m := newTestMonitor(t, src, clk, sink, st)

	require.NoError(t, m.Tick())

	want := store.Record{Sensor1: conv.Reading(153), Sensor2: conv.Reading(102), Timestamp: 20000}
	assert.Equal(t, []int{0}, sink.latest)
	assert.Equal(t, []store.Record{want}, sink.records)
	require.Len(t, sink.dumps, 1)
	assert.Len(t, sink.dumps[0], 10)
	assert.Equal(t, want, sink.dumps[0][0])
	assert.Equal(t, store.Record{}, sink.dumps[0][1])
}

func TestTick_ChannelMapping(t *testing.T) {
	conv := convert.New(convert.DefaultCalibration())
	src := &scriptedSource{pairs: [][2]uint16{{153, 102}}}
	st := store.New(10)
	m, err := New(Options{
		Source:    src,
		Clock:     clock.NewManual(0),
		Converter: conv,
		Store:     st,
		Sink:      &recordingSink{},
		Channels:  [2]int{1, 0},
	})
	require.NoError(t, err)

	require.NoError(t, m.Tick())
	rec := st.At(0)
	assert.Equal(t, conv.Reading(102), rec.Sensor1)
	assert.Equal(t, conv.Reading(153), rec.Sensor2)
}

func TestTick_Wraparound(t *testing.T) {
	src := &scriptedSource{pairs: [][2]uint16{{100, 200}, {110, 210}, {120, 220}}}
	clk := clock.NewManual(0)
	st := store.New(10)
	sink := &recordingSink{}
	m := newTestMonitor(t, src, clk, sink, st)

	for range 15 {
		clk.Advance(20 * time.Second)
		require.NoError(t, m.Tick())
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 0, 1, 2, 3, 4}, sink.latest)

	// The latest report always matches the newest slot in the dump that follows.
	for i, idx := range sink.latest {
		assert.Equal(t, sink.records[i], sink.dumps[i][idx])
		assert.Equal(t, uint32(i+1)*20000, sink.records[i].Timestamp)
	}

	last := sink.dumps[14]
	for i, rec := range last {
		tick := i + 1 // ticks 1..10 went to slots 0..9
		if i < 5 {
			tick += 10 // ticks 11..15 overwrote slots 0..4
		}
		assert.Equal(t, uint32(tick)*20000, rec.Timestamp, "slot %d", i)
	}
}

func TestTick_SourceError(t *testing.T) {
	src := &scriptedSource{err: errors.New("no frame")}
	st := store.New(10)
	sink := &recordingSink{}
	m := newTestMonitor(t, src, clock.NewManual(0), sink, st)

	err := m.Tick()
	assert.ErrorContains(t, err, "no frame")
	assert.Equal(t, -1, st.LatestIndex(), "nothing appended")
	assert.Empty(t, sink.latest)
}

func TestTick_SinkError(t *testing.T) {
	src := &scriptedSource{pairs: [][2]uint16{{1, 2}}}
	st := store.New(10)
	sink := &recordingSink{err: errors.New("port closed")}
	m := newTestMonitor(t, src, clock.NewManual(0), sink, st)

	err := m.Tick()
	assert.ErrorContains(t, err, "port closed")
	assert.Equal(t, 0, st.LatestIndex(), "record stored before reporting")
}

func TestOnUpdate(t *testing.T) {
	src := &scriptedSource{pairs: [][2]uint16{{1, 2}}}
	m := newTestMonitor(t, src, clock.NewManual(0), &recordingSink{}, store.New(3))

	var calls []int
	var lastRecords []store.Record
	m.OnUpdate(func(latest int, records []store.Record) {
		calls = append(calls, latest)
		lastRecords = records
	})
	m.OnUpdate(nil)

	for range 4 {
		require.NoError(t, m.Tick())
	}

	assert.Equal(t, []int{0, 1, 2, 0}, calls)
	assert.Len(t, lastRecords, 3)
}

func TestTick_TextReport(t *testing.T) {
	var buf bytes.Buffer
	src := &scriptedSource{pairs: [][2]uint16{{0, 256}}}
	m := newTestMonitor(t, src, clock.NewManual(20000), report.NewText(&buf, report.DefaultLabels()), store.New(2))

	require.NoError(t, m.Tick())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Sending data to telemetry server\n"))
	assert.Contains(t, out, "Sensor 1 (Motor) - Temperature (°C): -50.00, Temperature (°F): -58.00\n")
	assert.Contains(t, out, "Record 1 - Sensor 1 (Motor) - Celsius: -50.00, Fahrenheit: -58.00 | Sensor 2 (Brakes) - Celsius: 75.00, Fahrenheit: 167.00, Timestamp: 20000\n")
	assert.Contains(t, out, "Record 2 - Sensor 1 (Motor) - Celsius: 0.00")
}
