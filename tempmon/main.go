package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/gotemp/pkg/clock"
	"github.com/itohio/gotemp/pkg/config"
	"github.com/itohio/gotemp/pkg/convert"
	"github.com/itohio/gotemp/pkg/monitor"
	"github.com/itohio/gotemp/pkg/report"
	"github.com/itohio/gotemp/pkg/sensor"
	"github.com/itohio/gotemp/pkg/store"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	var (
		portFlag     = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag     = flag.Bool("mock", false, "Use simulated sensors instead of serial port")
		intervalFlag = flag.Duration("interval", 0, "Sampling interval (overrides config)")
		formatFlag   = flag.String("format", "", "Report format: text or json (overrides config)")
		guiFlag      = flag.Bool("gui", false, "Show the telemetry table in a window")
		portsFlag    = flag.Bool("ports", false, "List serial ports and exit")
	)
	flag.Parse()

	if *portsFlag {
		listPorts()
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *intervalFlag > 0 {
		cfg.Schedule.Interval = *intervalFlag
	}
	if *formatFlag != "" {
		cfg.Report.Format = *formatFlag
	}

	if closer := setupLogging(cfg.Log); closer != nil {
		defer closer.Close()
	}

	app, err := newApp(cfg, *mockFlag, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Starting temperature monitoring system...")

	if *guiFlag {
		runGUI(ctx, app)
		return
	}

	if err := app.monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Monitor stopped: %v", err)
	}
}

// tempmon ties the monitor to its source so the source can be closed on exit.
type tempmon struct {
	cfg     *config.Config
	store   *store.Synchronized
	monitor *monitor.Monitor
	serial  *sensor.Serial // nil when simulated
}

// newApp builds the sampling pipeline from configuration. Reports are written to out.
func newApp(cfg *config.Config, useMock bool, out io.Writer) (*tempmon, error) {
	conv := convert.New(cfg.Calibration.Converter())
	clk := clock.NewMonotonic()

	app := &tempmon{
		cfg:   cfg,
		store: store.NewSynchronized(cfg.Store.MaxRecords),
	}

	var src sensor.Source
	if useMock {
		src = sensor.NewMock(cfg.Mock.Options(), conv, clk)
		log.Printf("Using simulated sensors")
	} else {
		dev := sensor.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.Calibration.Resolution)
		if err := dev.Connect(); err != nil {
			return nil, err
		}
		app.serial = dev
		src = dev
		log.Printf("Connected to serial port: %s", cfg.Serial.Port)
	}

	sink, err := report.New(cfg.Report.Format, out, cfg.Labels())
	if err != nil {
		app.Close()
		return nil, err
	}

	app.monitor, err = monitor.New(monitor.Options{
		Source:    sensor.NewBounded(src, cfg.Calibration.Resolution),
		Clock:     clk,
		Converter: conv,
		Store:     app.store,
		Sink:      sink,
		Channels:  cfg.Channels(),
		Interval:  cfg.Schedule.Interval,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// Close releases the serial port, if any.
func (a *tempmon) Close() error {
	if a.serial == nil {
		return nil
	}
	return a.serial.Close()
}

// setupLogging sends log output to a rotating file when one is configured.
func setupLogging(cfg config.LogConfig) io.Closer {
	if cfg.File == "" {
		return nil
	}

	logger := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	log.SetOutput(logger)
	return logger
}

func listPorts() {
	ports, err := sensor.Ports()
	if err != nil {
		log.Fatalf("Failed to list ports: %v", err)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return
	}
	for _, port := range ports {
		fmt.Printf("%s\t%s\n", port.Name, port.Description)
	}
}

// waitTimeout waits for done or gives up after d.
func waitTimeout(done <-chan error, d time.Duration) {
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Monitor stopped: %v", err)
		}
	case <-time.After(d):
		log.Printf("Monitor did not stop within %s", d)
	}
}
