package view

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gotemp/pkg/report"
	"github.com/itohio/gotemp/pkg/store"
)

// Table is a Fyne widget showing every slot of the telemetry store in slot
// order, with the most recent record marked.
type Table struct {
	*widget.Table

	headers []string

	// Data (protected by mu)
	mu      sync.RWMutex
	records []store.Record
	latest  int
}

// NewTable creates a table for a store of the given capacity.
func NewTable(labels report.Labels, capacity int) *Table {
	t := &Table{
		headers: report.Headers(labels),
		records: make([]store.Record, capacity),
		latest:  -1,
	}

	t.Table = widget.NewTable(
		t.size,
		func() fyne.CanvasObject {
			// Template text sizes the cells.
			return widget.NewLabel("Timestamp (ms) 0000")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(t.cell(id.Row, id.Col))
		},
	)
	t.Table.ShowHeaderRow = true
	t.Table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabel("")
	}
	t.Table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		if id.Col >= 0 && id.Col < len(t.headers) {
			obj.(*widget.Label).SetText(t.headers[id.Col])
		}
	}

	return t
}

// Update replaces the displayed records and refreshes the table.
// This should be called on the Fyne main thread using fyne.Do().
func (t *Table) Update(latest int, records []store.Record) {
	t.mu.Lock()
	t.records = records
	t.latest = latest
	t.mu.Unlock()

	// Refresh outside the lock; it calls back into size and cell.
	t.Table.Refresh()
}

func (t *Table) size() (int, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records), report.NumColumns
}

func (t *Table) cell(row, col int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if row < 0 || row >= len(t.records) {
		return ""
	}
	return report.Cell(t.records[row], row, col, row == t.latest)
}
