package config

import (
	"fmt"
	"os"
	"time"

	"github.com/itohio/gotemp/pkg/convert"
	"github.com/itohio/gotemp/pkg/report"
	"github.com/itohio/gotemp/pkg/sensor"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Store       StoreConfig       `yaml:"store"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Sensors     []SensorConfig    `yaml:"sensors"`
	Report      ReportConfig      `yaml:"report"`
	Mock        MockConfig        `yaml:"mock"`
	Log         LogConfig         `yaml:"log"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// CalibrationConfig contains the sensor calibration constants.
type CalibrationConfig struct {
	VoltageRef       float64 `yaml:"voltage_ref"`       // Reference voltage (V)
	Resolution       int     `yaml:"resolution"`        // ADC steps
	SensorOffset     float64 `yaml:"sensor_offset"`     // Sensor output at 0 °C (V)
	ConversionFactor float64 `yaml:"conversion_factor"` // °C per volt
}

// StoreConfig contains telemetry store parameters.
type StoreConfig struct {
	MaxRecords int `yaml:"max_records"`
}

// ScheduleConfig contains the sampling schedule.
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// SensorConfig names a sensor and the ADC channel it is wired to.
type SensorConfig struct {
	Name    string `yaml:"name"`
	Channel int    `yaml:"channel"`
}

// ReportConfig selects the report format ("text" or "json").
type ReportConfig struct {
	Format string `yaml:"format"`
}

// MockConfig contains simulated sensor configuration.
type MockConfig struct {
	Channels   []MockChannelConfig `yaml:"channels"`
	Period     time.Duration       `yaml:"period"`      // Oscillation period
	NoiseLevel float64             `yaml:"noise_level"` // Peak noise (°C)
}

// MockChannelConfig describes one simulated sensor.
type MockChannelConfig struct {
	BaseCelsius float64 `yaml:"base_celsius"`
	Swing       float64 `yaml:"swing"`
}

// LogConfig contains log output configuration. An empty File logs to stderr.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	cal := convert.DefaultCalibration()
	mock := sensor.DefaultMockOptions()
	labels := report.DefaultLabels()

	mockChannels := make([]MockChannelConfig, 0, len(mock.Channels))
	for _, ch := range mock.Channels {
		mockChannels = append(mockChannels, MockChannelConfig{BaseCelsius: ch.BaseCelsius, Swing: ch.Swing})
	}

	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: sensor.DefaultBaudRate,
		},
		Calibration: CalibrationConfig{
			VoltageRef:       cal.VoltageRef,
			Resolution:       cal.Resolution,
			SensorOffset:     cal.SensorOffset,
			ConversionFactor: cal.ConversionFactor,
		},
		Store: StoreConfig{
			MaxRecords: 10,
		},
		Schedule: ScheduleConfig{
			Interval: 20 * time.Second,
		},
		Sensors: []SensorConfig{
			{Name: labels.Sensor1, Channel: 0},
			{Name: labels.Sensor2, Channel: 1},
		},
		Report: ReportConfig{
			Format: report.FormatText,
		},
		Mock: MockConfig{
			Channels:   mockChannels,
			Period:     mock.Period,
			NoiseLevel: mock.NoiseLevel,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Calibration.Resolution < 2 || c.Calibration.Resolution > 65536 {
		return fmt.Errorf("invalid calibration resolution: %d", c.Calibration.Resolution)
	}
	if c.Calibration.ConversionFactor == 0 {
		return fmt.Errorf("invalid calibration conversion factor: 0")
	}
	if len(c.Sensors) != sensor.Channels {
		return fmt.Errorf("expected %d sensors, got %d", sensor.Channels, len(c.Sensors))
	}
	for i, s := range c.Sensors {
		if s.Channel < 0 || s.Channel >= sensor.Channels {
			return fmt.Errorf("sensor %d: invalid channel %d", i+1, s.Channel)
		}
	}
	switch c.Report.Format {
	case report.FormatText, report.FormatJSON:
	default:
		return fmt.Errorf("unknown report format: %q", c.Report.Format)
	}
	return nil
}

// Converter returns the calibration as used by the unit converter.
func (c CalibrationConfig) Converter() convert.Calibration {
	return convert.Calibration{
		VoltageRef:       c.VoltageRef,
		Resolution:       c.Resolution,
		SensorOffset:     c.SensorOffset,
		ConversionFactor: c.ConversionFactor,
	}
}

// Labels returns the sensor names for reports.
func (c *Config) Labels() report.Labels {
	var labels report.Labels
	if len(c.Sensors) > 0 {
		labels.Sensor1 = c.Sensors[0].Name
	}
	if len(c.Sensors) > 1 {
		labels.Sensor2 = c.Sensors[1].Name
	}
	return labels
}

// Channels returns the ADC channels of sensor 1 and sensor 2.
func (c *Config) Channels() [2]int {
	channels := [2]int{0, 1}
	for i := range min(len(c.Sensors), 2) {
		channels[i] = c.Sensors[i].Channel
	}
	return channels
}

// Options returns the simulated sensor options.
func (c MockConfig) Options() sensor.MockOptions {
	opts := sensor.MockOptions{
		Period:     c.Period,
		NoiseLevel: c.NoiseLevel,
	}
	for _, ch := range c.Channels {
		opts.Channels = append(opts.Channels, sensor.MockChannel{BaseCelsius: ch.BaseCelsius, Swing: ch.Swing})
	}
	return opts
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Calibration.VoltageRef == 0 {
		c.Calibration.VoltageRef = def.Calibration.VoltageRef
	}
	if c.Calibration.Resolution == 0 {
		c.Calibration.Resolution = def.Calibration.Resolution
	}
	if c.Calibration.ConversionFactor == 0 {
		c.Calibration.ConversionFactor = def.Calibration.ConversionFactor
	}
	// SensorOffset may legitimately be 0 (LM35), so it is not defaulted here.

	if c.Store.MaxRecords <= 0 {
		c.Store.MaxRecords = def.Store.MaxRecords
	}

	if c.Schedule.Interval <= 0 {
		c.Schedule.Interval = def.Schedule.Interval
	}

	if len(c.Sensors) == 0 {
		c.Sensors = def.Sensors
	}
	for i := range c.Sensors {
		if c.Sensors[i].Name == "" && i < len(def.Sensors) {
			c.Sensors[i].Name = def.Sensors[i].Name
		}
	}

	if c.Report.Format == "" {
		c.Report.Format = def.Report.Format
	}

	// Every sensor needs a simulated channel.
	for i := len(c.Mock.Channels); i < len(def.Mock.Channels); i++ {
		c.Mock.Channels = append(c.Mock.Channels, def.Mock.Channels[i])
	}
	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}

	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = def.Log.MaxSizeMB
	}
}
