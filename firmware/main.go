//go:build tinygo

//go:generate tinygo flash -target=arduino-mega2560

package main

import (
	"context"
	"fmt"
	"machine"
	"time"

	"github.com/itohio/gotemp/pkg/clock"
	"github.com/itohio/gotemp/pkg/convert"
	"github.com/itohio/gotemp/pkg/monitor"
	"github.com/itohio/gotemp/pkg/report"
	"github.com/itohio/gotemp/pkg/store"
)

var uart = machine.Serial

// adcSource reads the two sensor pins.
type adcSource struct {
	adcs [2]machine.ADC
}

// ReadRaw returns the sample of channel scaled down to ADC_BITS.
func (s *adcSource) ReadRaw(channel int) (uint16, error) {
	if channel < 0 || channel >= len(s.adcs) {
		return 0, fmt.Errorf("invalid channel %d", channel)
	}
	// Get always returns a 16-bit scaled value.
	return s.adcs[channel].Get() >> (16 - ADC_BITS), nil
}

func main() {
	// Configure UART for reports
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Configure ADC pins
	machine.InitADC()
	SENSOR_PIN_1.Configure(machine.PinConfig{Mode: machine.PinInput})
	SENSOR_PIN_2.Configure(machine.PinConfig{Mode: machine.PinInput})

	src := &adcSource{
		adcs: [2]machine.ADC{
			{Pin: SENSOR_PIN_1},
			{Pin: SENSOR_PIN_2},
		},
	}
	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_BITS,
	}
	for i := range src.adcs {
		src.adcs[i].Configure(adcConfig)
	}

	clk := clock.NewMonotonic()

	// The host reads every line as a frame in raw mode, so no banner.
	if RAW_STREAM {
		streamRaw(src, clk)
	}

	fmt.Fprint(uart, "Starting temperature monitoring system...\r\n")

	conv := convert.New(convert.Calibration{
		VoltageRef:       ADC_REFERENCE_MV / 1000.0,
		Resolution:       1 << ADC_BITS,
		SensorOffset:     SENSOR_OFFSET_V,
		ConversionFactor: CONVERSION_FACTOR,
	})

	m, err := monitor.New(monitor.Options{
		Source:    src,
		Clock:     clk,
		Converter: conv,
		Store:     store.New(MAX_RECORDS),
		Sink:      report.NewText(uart, report.DefaultLabels()),
		Channels:  [2]int{0, 1},
		Interval:  SAMPLE_INTERVAL,
	})
	if err != nil {
		for {
			fmt.Fprintf(uart, "monitor setup error: %v\r\n", err)
			time.Sleep(time.Second)
		}
	}

	// Runs until reset or power loss.
	m.Run(context.Background())
}

// streamRaw prints raw samples for the host until reset.
// Output format: "millis,raw1,raw2\n"
func streamRaw(src *adcSource, clk clock.Clock) {
	for {
		raw1, _ := src.ReadRaw(0)
		raw2, _ := src.ReadRaw(1)
		fmt.Fprintf(uart, "%d,%d,%d\n", clk.NowMillis(), raw1, raw2)
		time.Sleep(SAMPLE_INTERVAL)
	}
}
