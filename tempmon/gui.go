package main

import (
	"context"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/itohio/gotemp/pkg/store"
	"github.com/itohio/gotemp/pkg/view"
)

// runGUI shows the telemetry table and runs the monitor until the window is
// closed or ctx is cancelled.
func runGUI(ctx context.Context, t *tempmon) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	application := app.NewWithID("com.itohio.gotemp")
	window := application.NewWindow("Temperature Telemetry")
	window.Resize(fyne.NewSize(900, 420))
	window.CenterOnScreen()

	table := view.NewTable(t.cfg.Labels(), t.cfg.Store.MaxRecords)
	window.SetContent(table.Table)

	// Register before starting so the first tick is shown.
	t.monitor.OnUpdate(func(latest int, records []store.Record) {
		fyne.Do(func() {
			table.Update(latest, records)
		})
	})

	done := make(chan error, 1)
	go func() {
		done <- t.monitor.Run(ctx)
	}()

	// Close the window on Ctrl+C as well.
	go func() {
		<-ctx.Done()
		fyne.Do(application.Quit)
	}()

	window.ShowAndRun()

	cancel()
	waitTimeout(done, 5*time.Second)
}
