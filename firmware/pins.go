//go:build tinygo

package main

import (
	"machine"
	"time"
)

const (
	// Sensor pins (analog)
	SENSOR_PIN_1 = machine.ADC0 // Engine
	SENSOR_PIN_2 = machine.ADC1 // Brakes

	// ADC configuration
	ADC_REFERENCE_MV = 5000 // Reference voltage in millivolts (5V)
	ADC_BITS         = 10   // ADC resolution in bits (10-bit = 0-1023)

	// Sensor calibration (TMP36: 500 mV at 0 °C, 10 mV/°C)
	SENSOR_OFFSET_V   = 0.5
	CONVERSION_FACTOR = 100.0

	// Telemetry
	MAX_RECORDS     = 10               // Ring buffer capacity
	SAMPLE_INTERVAL = 20 * time.Second // Delay between readings

	// RAW_STREAM makes the board print "millis,raw1,raw2" lines for the host
	// program instead of running the pipeline locally.
	RAW_STREAM = false

	// Serial configuration
	// A full report is ~12 lines of <=130 bytes every 20s; 9600 baud moves
	// 960 bytes/sec, so a report takes under 2s.
	UART_BAUD_RATE = 9600
)
