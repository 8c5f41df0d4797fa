package sensor

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/gotemp/pkg/clock"
	"github.com/itohio/gotemp/pkg/convert"
)

// MockChannel describes the simulated temperature of one sensor.
type MockChannel struct {
	BaseCelsius float64 // Mean temperature (°C)
	Swing       float64 // Amplitude of the slow oscillation (°C)
}

// MockOptions configures the simulated sensors.
type MockOptions struct {
	Channels   []MockChannel
	Period     time.Duration // Period of the slow oscillation
	NoiseLevel float64       // Peak noise (°C)
}

// DefaultMockOptions simulates a warm engine and cooler brakes.
func DefaultMockOptions() MockOptions {
	return MockOptions{
		Channels: []MockChannel{
			{BaseCelsius: 85, Swing: 10},
			{BaseCelsius: 40, Swing: 15},
		},
		Period:     5 * time.Minute,
		NoiseLevel: 0.5,
	}
}

// Mock produces raw samples from a deterministic temperature model driven by
// a clock. The model is evaluated in single precision as it would be on the
// board.
type Mock struct {
	opts MockOptions
	conv convert.Converter
	clk  clock.Clock
}

// NewMock creates a simulated source. conv maps simulated temperatures back
// to raw samples.
func NewMock(opts MockOptions, conv convert.Converter, clk clock.Clock) *Mock {
	if len(opts.Channels) == 0 {
		opts.Channels = DefaultMockOptions().Channels
	}
	if opts.Period <= 0 {
		opts.Period = DefaultMockOptions().Period
	}
	return &Mock{opts: opts, conv: conv, clk: clk}
}

// ReadRaw returns the simulated sample of channel at the current clock reading.
func (m *Mock) ReadRaw(channel int) (uint16, error) {
	if err := checkChannel(channel, len(m.opts.Channels)); err != nil {
		return 0, err
	}
	return m.conv.Raw(float64(m.temperature(channel))), nil
}

// temperature evaluates the model for channel in °C.
func (m *Mock) temperature(channel int) float32 {
	ch := m.opts.Channels[channel]
	t := float32(m.clk.NowMillis()) / 1000
	period := float32(m.opts.Period.Seconds())

	// Channels are a quarter period apart.
	phase := 2*math32.Pi*t/period + float32(channel)*math32.Pi/2
	temp := float32(ch.BaseCelsius) + float32(ch.Swing)*math32.Sin(phase)

	noise := (math32.Sin(t*7.3+float32(channel)) + math32.Cos(t*13.1)) * 0.5
	return temp + noise*float32(m.opts.NoiseLevel)
}
