package convert

import (
	"time"

	"github.com/itohio/adcmon/pkg/config"
)

// Raw is one scan of the three monitored channels.
type Raw struct {
	Timestamp     time.Time
	Potentiometer uint16 // 12-bit ADC counts (0-4095)
	Temperature   uint16 // 12-bit ADC counts (0-4095)
	InternalVRef  uint16 // 12-bit ADC counts (0-4095)
}

// Reading is a scan converted to physical units.
type Reading struct {
	Raw

	PotentiometerVoltage float64 // V
	TemperatureVoltage   float64 // V
	TemperatureC         float64 // °C
	TemperatureF         float64 // °F
	InternalVRefVoltage  float64 // V
}

// Converter maps raw counts to physical units.
type Converter struct {
	VRef        float64
	FullScale   float64
	Calibration config.TemperatureConfig
}

// NewConverter creates a converter from the ADC and temperature configuration.
func NewConverter(cfg *config.Config) Converter {
	return Converter{
		VRef:        cfg.ADC.VRef,
		FullScale:   cfg.ADC.FullScale,
		Calibration: cfg.Temperature,
	}
}

// Convert converts a scan to a Reading.
func (c Converter) Convert(raw Raw) Reading {
	r := Reading{
		Raw:                  raw,
		PotentiometerVoltage: Voltage(raw.Potentiometer, c.VRef, c.FullScale),
		TemperatureVoltage:   Voltage(raw.Temperature, c.VRef, c.FullScale),
		InternalVRefVoltage:  Voltage(raw.InternalVRef, c.VRef, c.FullScale),
	}
	r.TemperatureC = Celsius(r.TemperatureVoltage, c.Calibration)
	r.TemperatureF = Fahrenheit(r.TemperatureC)
	return r
}

// Voltage converts ADC counts to voltage.
// Formula: V = counts * V_ref / full_scale
func Voltage(counts uint16, vref, fullScale float64) float64 {
	return (float64(counts) * vref) / fullScale
}

// Celsius converts the temperature sensor voltage to degrees Celsius.
// Formula: C = (V - V_offset) / V_per_degree - cal_offset
func Celsius(v float64, cal config.TemperatureConfig) float64 {
	return ((v - cal.VOffset) / cal.VPerDegree) - cal.CalOffset
}

// Fahrenheit converts degrees Celsius to degrees Fahrenheit.
func Fahrenheit(c float64) float64 {
	return ((c * 9.0) / 5.0) + 32.0
}

// VoltageForCelsius is the inverse of Celsius.
func VoltageForCelsius(c float64, cal config.TemperatureConfig) float64 {
	return (c+cal.CalOffset)*cal.VPerDegree + cal.VOffset
}

// CountsForVoltage is the inverse of Voltage, rounded and clamped to [0, full_scale].
func CountsForVoltage(v, vref, fullScale float64) uint16 {
	counts := (v/vref)*fullScale + 0.5
	if counts < 0 {
		return 0
	}
	if counts > fullScale {
		counts = fullScale
	}
	return uint16(counts)
}
