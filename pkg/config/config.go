package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	ADC         ADCConfig         `yaml:"adc"`
	Temperature TemperatureConfig `yaml:"temperature"`
	Timer       TimerConfig       `yaml:"timer"`
	Display     DisplayConfig     `yaml:"display"`
	Mock        MockConfig        `yaml:"mock"`
	ADS1115     ADS1115Config     `yaml:"ads1115"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
}

// SerialConfig contains serial port configuration.
// An empty port writes to standard output instead.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// ADCConfig contains the converter scale and the scanned channels.
type ADCConfig struct {
	Driver    string   `yaml:"driver"` // "mock" or "ads1115"
	VRef      float64  `yaml:"vref"`
	FullScale float64  `yaml:"full_scale"`
	Channels  Channels `yaml:"channels"`
}

// Channels maps the three monitored signals to ADC channel numbers.
type Channels struct {
	Potentiometer int `yaml:"potentiometer"`
	Temperature   int `yaml:"temperature"`
	InternalVRef  int `yaml:"internal_vref"`
}

// TemperatureConfig contains the on-die temperature sensor calibration.
// These are device specific constants.
type TemperatureConfig struct {
	VOffset    float64 `yaml:"v_offset"`     // Sensor voltage at the reference point (V)
	VPerDegree float64 `yaml:"v_per_degree"` // Sensor slope (V/°C)
	CalOffset  float64 `yaml:"cal_offset"`   // Reference point temperature (°C)
}

// TimerConfig contains the free running counter settings.
type TimerConfig struct {
	TicksPerMs uint64 `yaml:"ticks_per_ms"`
	DelayMs    uint64 `yaml:"delay_ms"`
}

// DisplayConfig contains terminal output settings.
type DisplayConfig struct {
	Title string `yaml:"title"`
	VT100 bool   `yaml:"vt100"`
}

// MockConfig contains simulated ADC configuration.
type MockConfig struct {
	AmbientC    float64       `yaml:"ambient_c"`    // Simulated die temperature (°C)
	VRefVoltage float64       `yaml:"vref_voltage"` // Simulated internal reference (V)
	PotPeriod   time.Duration `yaml:"pot_period"`   // Potentiometer sweep period
	NoiseCounts int           `yaml:"noise_counts"` // Peak noise added to every channel
	ScanPolls   int           `yaml:"scan_polls"`   // Status polls before a scan completes
}

// ADS1115Config contains the external I2C converter configuration.
type ADS1115Config struct {
	Bus        string `yaml:"bus"`
	Address    uint16 `yaml:"address"`
	SampleRate int    `yaml:"sample_rate"`
}

// MQTTConfig contains the optional MQTT publisher configuration.
// Publishing is disabled when Server is empty.
type MQTTConfig struct {
	Server         string `yaml:"server"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	ClientID       string `yaml:"client_id"`
	StateTopic     string `yaml:"state_topic"`
	DiscoveryTopic string `yaml:"discovery_topic"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "",
			BaudRate: 115200,
		},
		ADC: ADCConfig{
			Driver:    "mock",
			VRef:      3.3,
			FullScale: 4095,
			Channels: Channels{
				Potentiometer: 0,
				Temperature:   28,
				InternalVRef:  29,
			},
		},
		Temperature: TemperatureConfig{
			VOffset:    1.24,
			VPerDegree: 0.0041,
			CalOffset:  25.0,
		},
		Timer: TimerConfig{
			TicksPerMs: 120_000, // 120 MHz peripheral clock
			DelayMs:    100,
		},
		Display: DisplayConfig{
			Title: "Lesson 008: ADC",
			VT100: true,
		},
		Mock: MockConfig{
			AmbientC:    28.0,
			VRefVoltage: 1.2,
			PotPeriod:   10 * time.Second,
			NoiseCounts: 2,
			ScanPolls:   3,
		},
		ADS1115: ADS1115Config{
			Bus:        "",
			Address:    0x48,
			SampleRate: 128,
		},
		MQTT: MQTTConfig{
			ClientID:   "adcmon",
			StateTopic: "adcmon/state",
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

// Validate rejects values that would make a conversion or the delay meaningless.
func (c *Config) Validate() error {
	if c.ADC.VRef <= 0 {
		return fmt.Errorf("adc.vref must be > 0, got %v", c.ADC.VRef)
	}
	if c.ADC.FullScale <= 0 {
		return fmt.Errorf("adc.full_scale must be > 0, got %v", c.ADC.FullScale)
	}
	if c.Temperature.VPerDegree == 0 {
		return fmt.Errorf("temperature.v_per_degree must not be 0")
	}
	switch c.ADC.Driver {
	case "mock", "ads1115":
	default:
		return fmt.Errorf("unknown adc driver %q", c.ADC.Driver)
	}
	return nil
}

// DelayTicks returns the number of timer ticks the loop waits between scans.
func (c *Config) DelayTicks() uint64 {
	return c.Timer.DelayMs * c.Timer.TicksPerMs
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.ADC.Driver == "" {
		c.ADC.Driver = def.ADC.Driver
	}
	if c.ADC.VRef == 0 {
		c.ADC.VRef = def.ADC.VRef
	}
	if c.ADC.FullScale == 0 {
		c.ADC.FullScale = def.ADC.FullScale
	}

	if c.Temperature.VOffset == 0 {
		c.Temperature.VOffset = def.Temperature.VOffset
	}
	if c.Temperature.VPerDegree == 0 {
		c.Temperature.VPerDegree = def.Temperature.VPerDegree
	}

	if c.Timer.TicksPerMs == 0 {
		c.Timer.TicksPerMs = def.Timer.TicksPerMs
	}
	if c.Timer.DelayMs == 0 {
		c.Timer.DelayMs = def.Timer.DelayMs
	}

	if c.Display.Title == "" {
		c.Display.Title = def.Display.Title
	}

	if c.Mock.VRefVoltage == 0 {
		c.Mock.VRefVoltage = def.Mock.VRefVoltage
	}
	if c.Mock.PotPeriod == 0 {
		c.Mock.PotPeriod = def.Mock.PotPeriod
	}
	if c.Mock.ScanPolls == 0 {
		c.Mock.ScanPolls = def.Mock.ScanPolls
	}

	if c.ADS1115.Address == 0 {
		c.ADS1115.Address = def.ADS1115.Address
	}
	if c.ADS1115.SampleRate == 0 {
		c.ADS1115.SampleRate = def.ADS1115.SampleRate
	}

	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.MQTT.StateTopic == "" {
		c.MQTT.StateTopic = def.MQTT.StateTopic
	}
}
