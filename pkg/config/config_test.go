package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, "mock", cfg.ADC.Driver)
	assert.Equal(t, float64(3.3), cfg.ADC.VRef)
	assert.Equal(t, float64(4095), cfg.ADC.FullScale)
	assert.Equal(t, Channels{Potentiometer: 0, Temperature: 28, InternalVRef: 29}, cfg.ADC.Channels)
	assert.Equal(t, float64(1.24), cfg.Temperature.VOffset)
	assert.Equal(t, float64(0.0041), cfg.Temperature.VPerDegree)
	assert.Equal(t, float64(25.0), cfg.Temperature.CalOffset)
	assert.Equal(t, uint64(120000), cfg.Timer.TicksPerMs)
	assert.Equal(t, uint64(100), cfg.Timer.DelayMs)
	assert.True(t, cfg.Display.VT100)
	assert.Equal(t, "", cfg.MQTT.Server)
}

func TestDelayTicks(t *testing.T) {
	cfg := Default()
	assert.Equal(t, uint64(100*120000), cfg.DelayTicks())

	cfg.Timer.TicksPerMs = 10
	cfg.Timer.DelayMs = 5
	assert.Equal(t, uint64(50), cfg.DelayTicks())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, uint64(100), cfg.Timer.DelayMs)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
  baud_rate: 9600

adc:
  driver: ads1115
  vref: 4.096
  channels:
    potentiometer: 1
    temperature: 2
    internal_vref: 3

temperature:
  v_offset: 0.5
  v_per_degree: 0.01
  cal_offset: 0

timer:
  ticks_per_ms: 1000
  delay_ms: 250

display:
  title: "Bench"
  vt100: false

mock:
  ambient_c: 40
  pot_period: 2s

ads1115:
  bus: "2"
  address: 73
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, "ads1115", cfg.ADC.Driver)
	assert.Equal(t, float64(4.096), cfg.ADC.VRef)
	assert.Equal(t, float64(4095), cfg.ADC.FullScale) // default
	assert.Equal(t, Channels{Potentiometer: 1, Temperature: 2, InternalVRef: 3}, cfg.ADC.Channels)
	assert.Equal(t, float64(0.5), cfg.Temperature.VOffset)
	assert.Equal(t, float64(0.01), cfg.Temperature.VPerDegree)
	assert.Equal(t, float64(0), cfg.Temperature.CalOffset)
	assert.Equal(t, uint64(1000), cfg.Timer.TicksPerMs)
	assert.Equal(t, uint64(250), cfg.Timer.DelayMs)
	assert.Equal(t, "Bench", cfg.Display.Title)
	assert.False(t, cfg.Display.VT100)
	assert.Equal(t, float64(40), cfg.Mock.AmbientC)
	assert.Equal(t, 2*time.Second, cfg.Mock.PotPeriod)
	assert.Equal(t, "2", cfg.ADS1115.Bus)
	assert.Equal(t, uint16(73), cfg.ADS1115.Address)
	assert.Equal(t, 128, cfg.ADS1115.SampleRate) // default
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_UnknownDriver(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("adc:\n  driver: spi\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, float64(3.3), cfg.ADC.VRef)
	assert.Equal(t, float64(25.0), cfg.Temperature.CalOffset)
	assert.True(t, cfg.Display.VT100)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero vref", func(c *Config) { c.ADC.VRef = 0 }, true},
		{"negative full scale", func(c *Config) { c.ADC.FullScale = -1 }, true},
		{"zero slope", func(c *Config) { c.Temperature.VPerDegree = 0 }, true},
		{"ads1115 driver", func(c *Config) { c.ADC.Driver = "ads1115" }, false},
		{"unknown driver", func(c *Config) { c.ADC.Driver = "dma" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Timer.DelayMs = 500
	cfg.Display.VT100 = false

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, uint64(500), loaded.Timer.DelayMs)
	assert.False(t, loaded.Display.VT100)
}
