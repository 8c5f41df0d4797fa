package convert

const (
	// DefaultVoltageRef is the ADC reference voltage in volts.
	DefaultVoltageRef = 5.0
	// DefaultResolution is the number of ADC steps (10-bit).
	DefaultResolution = 1024
	// DefaultSensorOffset is the sensor output at 0 °C in volts.
	DefaultSensorOffset = 0.5
	// DefaultConversionFactor is the sensor slope in °C per volt (10 mV/°C).
	DefaultConversionFactor = 100.0
)

// Calibration describes the voltage-to-temperature relationship of the sensors.
type Calibration struct {
	VoltageRef       float64 // Reference voltage (V)
	Resolution       int     // ADC steps
	SensorOffset     float64 // Sensor output at 0 °C (V)
	ConversionFactor float64 // °C per volt
}

// DefaultCalibration returns the calibration of a TMP36-style sensor on a 5V 10-bit ADC.
func DefaultCalibration() Calibration {
	return Calibration{
		VoltageRef:       DefaultVoltageRef,
		Resolution:       DefaultResolution,
		SensorOffset:     DefaultSensorOffset,
		ConversionFactor: DefaultConversionFactor,
	}
}

// Reading is a single temperature in both units.
type Reading struct {
	Celsius    float64 `json:"celsius"`
	Fahrenheit float64 `json:"fahrenheit"`
}

// Converter maps raw ADC samples to temperatures using a fixed calibration.
type Converter struct {
	cal  Calibration
	step float64 // volts per ADC step
}

// New creates a Converter for the given calibration.
func New(cal Calibration) Converter {
	return Converter{
		cal:  cal,
		step: cal.VoltageRef / float64(cal.Resolution),
	}
}

// Calibration returns the calibration the converter was built with.
func (c Converter) Calibration() Calibration {
	return c.cal
}

// Celsius converts a raw sample to °C. Samples outside the ADC range are not
// rejected and yield out-of-range temperatures.
func (c Converter) Celsius(sample uint16) float64 {
	voltage := float64(sample) * c.step
	return (voltage - c.cal.SensorOffset) * c.cal.ConversionFactor
}

// Reading converts a raw sample to both units.
func (c Converter) Reading(sample uint16) Reading {
	celsius := c.Celsius(sample)
	return Reading{
		Celsius:    celsius,
		Fahrenheit: Fahrenheit(celsius),
	}
}

// Raw converts a temperature back to the nearest raw sample, clamped to the ADC range.
func (c Converter) Raw(celsius float64) uint16 {
	voltage := celsius/c.cal.ConversionFactor + c.cal.SensorOffset
	raw := voltage/c.step + 0.5 // Round to nearest
	if raw < 0 {
		return 0
	}
	if top := float64(c.cal.Resolution - 1); raw > top {
		return uint16(top)
	}
	return uint16(raw)
}

// Fahrenheit converts °C to °F.
func Fahrenheit(celsius float64) float64 {
	return celsius*1.8 + 32
}
