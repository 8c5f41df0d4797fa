package sensor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate matches the firmware UART configuration.
	DefaultBaudRate = 9600
	// Channels is the number of ADC channels in each frame.
	Channels = 2
)

// Frame is one line of the raw stream: "millis,raw1,raw2".
type Frame struct {
	Timestamp uint32
	Raw       [Channels]uint16
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Serial reads raw sample frames streamed by the firmware and serves the most
// recent value of each channel.
type Serial struct {
	port       string
	baudRate   int
	resolution int

	mu        sync.RWMutex
	conn      io.ReadCloser
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
	latest    Frame
	received  bool
}

// NewSerial creates a serial source. Zero values select DefaultBaudRate and a
// 10-bit resolution.
func NewSerial(port string, baudRate int, resolution int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if resolution == 0 {
		resolution = 1024
	}
	return &Serial{
		port:       port,
		baudRate:   baudRate,
		resolution: resolution,
	}
}

// Connect opens the serial port and starts reading frames.
func (d *Serial) Connect() error {
	port, err := serial.Open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	if err := d.start(port); err != nil {
		port.Close()
		return err
	}
	return nil
}

// start begins reading frames from conn.
func (d *Serial) start(conn io.ReadCloser) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.conn = conn
	d.cancel = cancel
	d.done = make(chan struct{})
	d.connected = true
	d.received = false

	go d.readFrames(ctx, conn, d.done)

	return nil
}

// Close closes the port and waits for the reader to stop.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}

	d.cancel()
	var closeErr error
	if err := d.conn.Close(); err != nil {
		closeErr = fmt.Errorf("failed to close serial port %s: %w", d.port, err)
	}
	d.conn = nil
	d.connected = false
	done := d.done
	d.mu.Unlock()

	<-done
	return closeErr
}

// IsConnected returns whether the port is open.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Done returns a channel closed when the reader goroutine exits, or nil if
// the source was never connected.
func (d *Serial) Done() <-chan struct{} {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.done
}

// Latest returns the most recent frame.
func (d *Serial) Latest() (Frame, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.latest, d.received
}

// ReadRaw returns the most recent sample of channel.
func (d *Serial) ReadRaw(channel int) (uint16, error) {
	if err := checkChannel(channel, Channels); err != nil {
		return 0, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return 0, fmt.Errorf("serial port %s is not connected", d.port)
	}
	if !d.received {
		return 0, fmt.Errorf("no frame received from %s", d.port)
	}
	return d.latest.Raw[channel], nil
}

// readFrames parses lines from conn until it fails or ctx is cancelled.
// When the stream ends on its own the port is released and the last frame
// dropped, so ReadRaw fails until Connect is called again.
func (d *Serial) readFrames(ctx context.Context, conn io.ReadCloser, done chan struct{}) {
	defer close(done)
	defer d.streamEnded(conn)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if !isFrameLine(line) {
			// Blank lines and board messages such as the startup banner.
			continue
		}

		frame, err := parseLine(line, d.resolution)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}

		d.mu.Lock()
		d.latest = frame
		d.received = true
		d.mu.Unlock()
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Printf("Error reading from serial port %s: %v", d.port, err)
	}
}

// streamEnded marks the source disconnected unless Close already did.
func (d *Serial) streamEnded(conn io.ReadCloser) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != conn {
		return
	}

	log.Printf("Serial stream from %s ended", d.port)
	d.cancel()
	if err := conn.Close(); err != nil {
		log.Printf("Failed to close serial port %s: %v", d.port, err)
	}
	d.conn = nil
	d.connected = false
	d.received = false
}

// isFrameLine reports whether line looks like a raw stream frame.
func isFrameLine(line string) bool {
	return line != "" && line[0] >= '0' && line[0] <= '9'
}

// parseLine parses a raw stream line.
// Format: millis,raw1,raw2
// Example: 20000,153,102
func parseLine(line string, resolution int) (Frame, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 1+Channels {
		return Frame{}, fmt.Errorf("invalid line format: expected %d comma-separated values, got %d", 1+Channels, len(parts))
	}

	timestamp, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Frame{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	frame := Frame{Timestamp: uint32(timestamp)}
	for i := range Channels {
		raw, err := strconv.ParseUint(parts[i+1], 10, 16)
		if err != nil {
			return Frame{}, fmt.Errorf("invalid sample %d: %w", i+1, err)
		}
		if raw >= uint64(resolution) {
			return Frame{}, fmt.Errorf("sample %d out of range: %d (max %d)", i+1, raw, resolution-1)
		}
		frame.Raw[i] = uint16(raw)
	}

	return frame, nil
}
