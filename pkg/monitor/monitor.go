package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/itohio/gotemp/pkg/convert"
	"github.com/itohio/gotemp/pkg/report"
	"github.com/itohio/gotemp/pkg/store"
)

// DefaultInterval is the delay between ticks.
const DefaultInterval = 20 * time.Second

// Source provides raw ADC samples for numbered channels.
type Source interface {
	ReadRaw(channel int) (uint16, error)
}

// Clock is a monotonic millisecond counter.
type Clock interface {
	NowMillis() uint32
}

// UpdateFunc receives the slot just written and a snapshot of every slot.
type UpdateFunc func(latest int, records []store.Record)

// Options wires a Monitor to its collaborators.
type Options struct {
	Source    Source
	Clock     Clock
	Converter convert.Converter
	Store     store.Telemetry
	Sink      report.Sink
	Channels  [2]int        // ADC channels of sensor 1 and sensor 2
	Interval  time.Duration // Delay after each tick
}

// Monitor runs the sampling cycle: read both channels, convert, append one
// record, report the record and then the whole store.
type Monitor struct {
	src      Source
	clk      Clock
	conv     convert.Converter
	store    store.Telemetry
	sink     report.Sink
	channels [2]int
	interval time.Duration

	callbacks []UpdateFunc
	cbMu      sync.RWMutex
}

// New creates a Monitor. Source, Clock, Store and Sink are required; a zero
// Converter selects the default calibration.
func New(opts Options) (*Monitor, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("missing sample source")
	}
	if opts.Clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("missing telemetry store")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("missing report sink")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Converter.Calibration().Resolution == 0 {
		opts.Converter = convert.New(convert.DefaultCalibration())
	}

	return &Monitor{
		src:      opts.Source,
		clk:      opts.Clock,
		conv:     opts.Converter,
		store:    opts.Store,
		sink:     opts.Sink,
		channels: opts.Channels,
		interval: opts.Interval,
	}, nil
}

// Interval returns the delay between ticks.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// OnUpdate registers a callback invoked after every successful append.
// Callbacks run on the ticking goroutine and should return quickly.
func (m *Monitor) OnUpdate(callback UpdateFunc) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// Tick runs one cycle. When a sample cannot be read nothing is appended.
// A report error is returned after the record has been stored.
func (m *Monitor) Tick() error {
	raw1, err := m.src.ReadRaw(m.channels[0])
	if err != nil {
		return fmt.Errorf("failed to read sensor 1: %w", err)
	}
	raw2, err := m.src.ReadRaw(m.channels[1])
	if err != nil {
		return fmt.Errorf("failed to read sensor 2: %w", err)
	}

	m.store.Append(m.conv.Reading(raw1), m.conv.Reading(raw2), m.clk.NowMillis())

	latest := m.store.LatestIndex()
	records := m.store.Snapshot()
	m.notifyCallbacks(latest, records)

	if err := m.sink.Latest(latest, records[latest]); err != nil {
		return err
	}
	return m.sink.Dump(m.store.All())
}

// Run ticks immediately and then once per interval until ctx is cancelled.
// Tick errors are logged and do not stop the loop.
func (m *Monitor) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			if err := m.Tick(); err != nil {
				log.Printf("Tick failed: %v", err)
			}
			timer.Reset(m.interval)
		}
	}
}

// notifyCallbacks invokes all registered callbacks without holding the lock.
func (m *Monitor) notifyCallbacks(latest int, records []store.Record) {
	m.cbMu.RLock()
	callbacks := make([]UpdateFunc, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(latest, records)
		}
	}
}
