//go:build !tinygo

package report

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/itohio/gotemp/pkg/store"
)

// Column indices of the tabular layout.
const (
	ColSlot = iota
	ColSensor1C
	ColSensor1F
	ColSensor2C
	ColSensor2F
	ColTimestamp
	NumColumns
)

// Headers returns the column titles of the tabular layout.
func Headers(labels Labels) []string {
	return []string{
		"Slot",
		fmt.Sprintf("%s °C", labels.Sensor1),
		fmt.Sprintf("%s °F", labels.Sensor1),
		fmt.Sprintf("%s °C", labels.Sensor2),
		fmt.Sprintf("%s °F", labels.Sensor2),
		"Timestamp (ms)",
	}
}

// Cell formats one column of the record in slot index. The most recent
// record is marked with an asterisk.
func Cell(rec store.Record, index, col int, latest bool) string {
	switch col {
	case ColSlot:
		if latest {
			return fmt.Sprintf("%d *", index+1)
		}
		return fmt.Sprintf("%d", index+1)
	case ColSensor1C:
		return fmt.Sprintf("%.2f", rec.Sensor1.Celsius)
	case ColSensor1F:
		return fmt.Sprintf("%.2f", rec.Sensor1.Fahrenheit)
	case ColSensor2C:
		return fmt.Sprintf("%.2f", rec.Sensor2.Celsius)
	case ColSensor2F:
		return fmt.Sprintf("%.2f", rec.Sensor2.Fahrenheit)
	case ColTimestamp:
		return humanize.Comma(int64(rec.Timestamp))
	default:
		return ""
	}
}
