package hal

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/adcmon/pkg/config"
	"github.com/itohio/adcmon/pkg/convert"
)

// SimADC simulates a 12-bit scanning ADC wired to a potentiometer, the
// on-die temperature sensor and the internal voltage reference.
type SimADC struct {
	cfg       config.MockConfig
	channels  config.Channels
	vref      float64
	fullScale float64
	cal       config.TemperatureConfig
	now       func() time.Time
	rng       *rand.Rand

	mu        sync.Mutex
	open      bool
	start     time.Time
	scan      []int
	results   map[int]uint16
	started   bool
	remaining int
}

// NewSimADC creates a simulated ADC. A nil config uses the defaults.
func NewSimADC(cfg *config.Config) *SimADC {
	if cfg == nil {
		cfg = config.Default()
	}

	return &SimADC{
		cfg:       cfg.Mock,
		channels:  cfg.ADC.Channels,
		vref:      cfg.ADC.VRef,
		fullScale: cfg.ADC.FullScale,
		cal:       cfg.Temperature,
		now:       time.Now,
		rng:       rand.New(rand.NewSource(1)),
		results:   make(map[int]uint16),
	}
}

// Open powers up the simulated converter.
func (a *SimADC) Open() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.open {
		return ErrAlreadyOpen
	}
	a.open = true
	a.start = a.now()
	return nil
}

// ScanConfigure selects the channels converted by each scan.
func (a *SimADC) ScanConfigure(channels []int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.open {
		return ErrNotOpen
	}
	if len(channels) == 0 {
		return fmt.Errorf("scan needs at least one channel")
	}
	a.scan = append([]int(nil), channels...)
	a.started = false
	return nil
}

// ScanStart samples every configured channel. The results become readable
// after ScanPolls calls to ScanStatus.
func (a *SimADC) ScanStart() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.open {
		return ErrNotOpen
	}
	if len(a.scan) == 0 {
		return fmt.Errorf("scan not configured")
	}

	now := a.now()
	for _, ch := range a.scan {
		a.results[ch] = a.sample(ch, now)
	}
	a.started = true
	a.remaining = a.cfg.ScanPolls
	return nil
}

// ScanStatus reports whether the last scan has completed.
func (a *SimADC) ScanStatus() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.open {
		return ErrNotOpen
	}
	if !a.started {
		return ErrNoScan
	}
	if a.remaining > 0 {
		a.remaining--
		return ErrScanInProgress
	}
	return nil
}

// Read returns the counts of a channel from the last completed scan.
func (a *SimADC) Read(channel int) (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.open {
		return 0, ErrNotOpen
	}
	v, ok := a.results[channel]
	if !ok {
		return 0, fmt.Errorf("read channel %d: %w", channel, ErrUnknownChannel)
	}
	return v, nil
}

// Close powers down the simulated converter.
func (a *SimADC) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.open = false
	a.started = false
	clear(a.results)
	return nil
}

// sample generates the counts of a channel at time now.
func (a *SimADC) sample(channel int, now time.Time) uint16 {
	var v float64
	switch channel {
	case a.channels.Potentiometer:
		v = a.potentiometerVoltage(now.Sub(a.start))
	case a.channels.Temperature:
		v = convert.VoltageForCelsius(a.cfg.AmbientC, a.cal)
	case a.channels.InternalVRef:
		v = a.cfg.VRefVoltage
	default:
		return 0
	}

	counts := int(convert.CountsForVoltage(v, a.vref, a.fullScale))
	if n := a.cfg.NoiseCounts; n > 0 {
		counts += a.rng.Intn(2*n+1) - n
	}
	if counts < 0 {
		counts = 0
	} else if counts > int(a.fullScale) {
		counts = int(a.fullScale)
	}
	return uint16(counts)
}

// potentiometerVoltage sweeps the full input range once per PotPeriod.
func (a *SimADC) potentiometerVoltage(elapsed time.Duration) float64 {
	if a.cfg.PotPeriod <= 0 {
		return a.vref / 2
	}
	phase := float32(elapsed%a.cfg.PotPeriod) / float32(a.cfg.PotPeriod)
	return float64(float32(a.vref) * 0.5 * (1 + math32.Sin(2*math32.Pi*phase)))
}
