package hal

import (
	"fmt"
	"sync"
	"time"

	"github.com/itohio/adcmon/pkg/config"
	"github.com/itohio/adcmon/pkg/convert"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	ads1115PointerConv   = 0x00
	ads1115PointerConfig = 0x01

	// ads1115FullScale is the PGA range used for every conversion (±4.096V).
	ads1115FullScale = 4.096
)

// ADS1115 scans the single-ended inputs of an ADS1115 over I2C. Results are
// rescaled to the counts of the configured reference and full scale so the
// rest of the pipeline sees the same count domain as the on-chip converter.
type ADS1115 struct {
	cfg       config.ADS1115Config
	vref      float64
	fullScale float64

	mu      sync.Mutex
	bus     i2c.BusCloser
	dev     *i2c.Dev
	scan    []int
	results map[int]uint16
	done    chan struct{}
	err     error
}

// NewADS1115 creates an ADS1115 driver from configuration.
func NewADS1115(cfg *config.Config) *ADS1115 {
	return &ADS1115{
		cfg:       cfg.ADS1115,
		vref:      cfg.ADC.VRef,
		fullScale: cfg.ADC.FullScale,
		results:   make(map[int]uint16),
	}
}

// Open initializes the host and opens the I2C bus.
func (a *ADS1115) Open() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dev != nil {
		return ErrAlreadyOpen
	}
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(a.cfg.Bus)
	if err != nil {
		return fmt.Errorf("open i2c: %w", err)
	}
	a.bus = bus
	a.dev = &i2c.Dev{Addr: a.cfg.Address, Bus: bus}
	return nil
}

// ScanConfigure selects the inputs (0-3) converted by each scan.
func (a *ADS1115) ScanConfigure(channels []int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dev == nil {
		return ErrNotOpen
	}
	if len(channels) == 0 {
		return fmt.Errorf("scan needs at least one channel")
	}
	for _, ch := range channels {
		if _, _, err := ads1115Config(ch, a.cfg.SampleRate); err != nil {
			return err
		}
	}
	a.scan = append([]int(nil), channels...)
	return nil
}

// ScanStart converts every configured input in the background.
func (a *ADS1115) ScanStart() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dev == nil {
		return ErrNotOpen
	}
	if len(a.scan) == 0 {
		return fmt.Errorf("scan not configured")
	}
	if a.done != nil {
		select {
		case <-a.done:
		default:
			return ErrScanInProgress
		}
	}

	done := make(chan struct{})
	a.done = done
	a.err = nil
	go a.convertAll(a.dev, append([]int(nil), a.scan...), done)
	return nil
}

// ScanStatus reports whether the last scan has completed, or its error.
func (a *ADS1115) ScanStatus() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done == nil {
		return ErrNoScan
	}
	select {
	case <-a.done:
		return a.err
	default:
		return ErrScanInProgress
	}
}

// Read returns the rescaled counts of an input from the last scan.
func (a *ADS1115) Read(channel int) (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, ok := a.results[channel]
	if !ok {
		return 0, fmt.Errorf("read channel %d: %w", channel, ErrUnknownChannel)
	}
	return v, nil
}

// Close closes the I2C bus.
func (a *ADS1115) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.dev = nil
	if a.bus != nil {
		err := a.bus.Close()
		a.bus = nil
		return err
	}
	return nil
}

func (a *ADS1115) convertAll(dev *i2c.Dev, channels []int, done chan struct{}) {
	defer close(done)

	for _, ch := range channels {
		raw, err := a.convert(dev, ch)
		if err != nil {
			a.mu.Lock()
			a.err = err
			a.mu.Unlock()
			return
		}
		volts := float64(raw) * ads1115FullScale / 32768.0
		a.mu.Lock()
		a.results[ch] = convert.CountsForVoltage(volts, a.vref, a.fullScale)
		a.mu.Unlock()
	}
}

// convert runs one single-shot conversion.
func (a *ADS1115) convert(dev *i2c.Dev, channel int) (int16, error) {
	msb, lsb, err := ads1115Config(channel, a.cfg.SampleRate)
	if err != nil {
		return 0, err
	}
	if err := dev.Tx([]byte{ads1115PointerConfig, msb, lsb}, nil); err != nil {
		return 0, fmt.Errorf("write config: %w", err)
	}

	// wait for conversion
	delayMs := int(1000.0/float64(a.cfg.SampleRate)) + 2
	time.Sleep(time.Duration(delayMs) * time.Millisecond)

	readBuf := make([]byte, 2)
	if err := dev.Tx([]byte{ads1115PointerConv}, readBuf); err != nil {
		return 0, fmt.Errorf("read conv: %w", err)
	}
	return int16(readBuf[0])<<8 | int16(readBuf[1]), nil
}

// ads1115Config builds the config register for a single-shot conversion of a
// single-ended input.
func ads1115Config(channel, sampleRate int) (byte, byte, error) {
	if channel < 0 || channel > 3 {
		return 0, 0, fmt.Errorf("invalid ads1115 channel %d", channel)
	}
	mux := byte(0x4 + channel)
	// PGA: ±4.096V -> bits 001
	pga := byte(0x1)
	var dr byte
	switch sampleRate {
	case 8:
		dr = 0x0
	case 16:
		dr = 0x1
	case 32:
		dr = 0x2
	case 64:
		dr = 0x3
	case 128:
		dr = 0x4
	case 250:
		dr = 0x5
	case 475:
		dr = 0x6
	case 860:
		dr = 0x7
	default:
		dr = 0x4
	}
	var reg uint16 = 0x8000 // OS = 1 (start single conversion)
	reg |= uint16(mux) << 12
	reg |= uint16(pga) << 9
	reg |= 1 << 8 // single-shot mode
	reg |= uint16(dr) << 5
	// comparator disabled
	reg |= 0x3
	return byte(reg >> 8), byte(reg & 0xFF), nil
}
