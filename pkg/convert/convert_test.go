package convert

import (
	"testing"
	"time"

	"github.com/itohio/adcmon/pkg/config"
	"github.com/stretchr/testify/assert"
)

var defaultCal = config.TemperatureConfig{VOffset: 1.24, VPerDegree: 0.0041, CalOffset: 25.0}

func TestVoltage(t *testing.T) {
	tests := []struct {
		name   string
		counts uint16
		want   float64
	}{
		{"zero", 0, 0.0},
		{"full scale", 4095, 3.3},
		{"mid scale", 2048, 1.6504},
		{"temperature sample", 1500, 1.2088},
		{"reference sample", 4000, 3.2234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Voltage(tt.counts, 3.3, 4095)
			assert.InDelta(t, tt.want, got, 0.00005, "Voltage(%d) = %f, want %f", tt.counts, got, tt.want)
		})
	}
}

func TestVoltage_Linear(t *testing.T) {
	for c := 0; c <= 4095; c += 91 {
		assert.InDelta(t, float64(c)*3.3/4095, Voltage(uint16(c), 3.3, 4095), 1e-12)
	}
	assert.Equal(t, 0.0, Voltage(0, 3.3, 4095))
}

func TestCelsius(t *testing.T) {
	assert.InDelta(t, -25.0, Celsius(1.24, defaultCal), 1e-9)
	assert.InDelta(t, 0.0, Celsius(1.24+25*0.0041, defaultCal), 1e-9)
	assert.InDelta(t, -32.61, Celsius(Voltage(1500, 3.3, 4095), defaultCal), 0.005)
}

func TestFahrenheit(t *testing.T) {
	tests := []struct {
		c, f float64
	}{
		{0, 32},
		{100, 212},
		{-40, -40},
		{-32.6119, -26.7014},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.f, Fahrenheit(tt.c), 0.01)
	}
}

func TestInverses(t *testing.T) {
	for _, c := range []float64{-25, 0, 28, 85} {
		assert.InDelta(t, c, Celsius(VoltageForCelsius(c, defaultCal), defaultCal), 1e-9)
	}

	assert.Equal(t, uint16(0), CountsForVoltage(-1, 3.3, 4095))
	assert.Equal(t, uint16(4095), CountsForVoltage(5, 3.3, 4095))
	assert.Equal(t, uint16(2048), CountsForVoltage(Voltage(2048, 3.3, 4095), 3.3, 4095))
}

func TestConverter_Convert(t *testing.T) {
	conv := NewConverter(config.Default())
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	r := conv.Convert(Raw{Timestamp: ts, Potentiometer: 2048, Temperature: 1500, InternalVRef: 4000})

	assert.Equal(t, ts, r.Timestamp)
	assert.Equal(t, uint16(2048), r.Potentiometer)
	assert.Equal(t, uint16(1500), r.Temperature)
	assert.Equal(t, uint16(4000), r.InternalVRef)
	assert.InDelta(t, 1.6504, r.PotentiometerVoltage, 0.00005)
	assert.InDelta(t, 1.2088, r.TemperatureVoltage, 0.00005)
	assert.InDelta(t, 3.2234, r.InternalVRefVoltage, 0.00005)
	assert.InDelta(t, -32.61, r.TemperatureC, 0.005)
	assert.InDelta(t, -26.70, r.TemperatureF, 0.01)
}
