package report

import (
	"bufio"
	"fmt"
	"io"
	"iter"

	"github.com/itohio/gotemp/pkg/store"
)

// textBufferSize holds one report line. The default bufio size is too large
// for small boards.
const textBufferSize = 256

// Text writes human readable reports in the serial console layout.
// Temperatures are printed with two decimals.
type Text struct {
	w      io.Writer
	labels Labels
}

// NewText creates a text sink writing to w.
func NewText(w io.Writer, labels Labels) *Text {
	if labels.Sensor1 == "" {
		labels.Sensor1 = DefaultLabels().Sensor1
	}
	if labels.Sensor2 == "" {
		labels.Sensor2 = DefaultLabels().Sensor2
	}
	return &Text{w: w, labels: labels}
}

// Latest writes the upload banner followed by both sensors and the timestamp.
func (t *Text) Latest(index int, rec store.Record) error {
	bw := bufio.NewWriterSize(t.w, textBufferSize)
	fmt.Fprintln(bw, "Sending data to telemetry server")
	fmt.Fprintf(bw, "Sensor 1 (%s) - Temperature (°C): %.2f, Temperature (°F): %.2f\n",
		t.labels.Sensor1, rec.Sensor1.Celsius, rec.Sensor1.Fahrenheit)
	fmt.Fprintf(bw, "Sensor 2 (%s) - Temperature (°C): %.2f, Temperature (°F): %.2f\n",
		t.labels.Sensor2, rec.Sensor2.Celsius, rec.Sensor2.Fahrenheit)
	fmt.Fprintf(bw, "Timestamp: %d\n", rec.Timestamp)

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write latest record %d: %w", index, err)
	}
	return nil
}

// Dump writes one line per slot, numbered from 1.
func (t *Text) Dump(records iter.Seq2[int, store.Record]) error {
	bw := bufio.NewWriterSize(t.w, textBufferSize)
	fmt.Fprintln(bw, "Telemetry data:")
	for i, rec := range records {
		fmt.Fprintf(bw, "Record %d - Sensor 1 (%s) - Celsius: %.2f, Fahrenheit: %.2f | Sensor 2 (%s) - Celsius: %.2f, Fahrenheit: %.2f, Timestamp: %d\n",
			i+1,
			t.labels.Sensor1, rec.Sensor1.Celsius, rec.Sensor1.Fahrenheit,
			t.labels.Sensor2, rec.Sensor2.Celsius, rec.Sensor2.Fahrenheit,
			rec.Timestamp)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write telemetry dump: %w", err)
	}
	return nil
}
