package report

import (
	"iter"

	"github.com/itohio/gotemp/pkg/store"
)

const (
	// FormatText renders the serial console layout.
	FormatText = "text"
	// FormatJSON renders one JSON object per line.
	FormatJSON = "json"
)

// Sink renders telemetry to an external channel.
type Sink interface {
	// Latest renders the record just written at slot index.
	Latest(index int, rec store.Record) error
	// Dump renders every slot of the store.
	Dump(records iter.Seq2[int, store.Record]) error
}

var _ Sink = (*Text)(nil)

// Labels names the two sensors in reports.
type Labels struct {
	Sensor1 string
	Sensor2 string
}

// DefaultLabels returns the labels of the engine and brake sensors.
func DefaultLabels() Labels {
	return Labels{
		Sensor1: "Motor",
		Sensor2: "Brakes",
	}
}
