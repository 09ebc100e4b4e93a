// Package acquire runs the scan, convert, publish and delay cycle.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/itohio/adcmon/pkg/config"
	"github.com/itohio/adcmon/pkg/convert"
	"github.com/itohio/adcmon/pkg/hal"
	"github.com/itohio/adcmon/pkg/output"
)

// Loop samples the potentiometer, temperature and internal reference
// channels and hands every converted scan to its outputs.
type Loop struct {
	adc        hal.ADC
	timer      hal.Timer
	channels   config.Channels
	conv       convert.Converter
	delayTicks uint64
	outputs    []output.Output

	now func() time.Time
}

// New creates a loop. Outputs are published to in order.
func New(cfg *config.Config, adc hal.ADC, timer hal.Timer, outputs ...output.Output) *Loop {
	return &Loop{
		adc:        adc,
		timer:      timer,
		channels:   cfg.ADC.Channels,
		conv:       convert.NewConverter(cfg),
		delayTicks: cfg.DelayTicks(),
		outputs:    outputs,
		now:        time.Now,
	}
}

// Open opens the timer and the ADC, configures the scan and starts every output.
func (l *Loop) Open() error {
	if err := l.timer.Open(); err != nil {
		return fmt.Errorf("open timer: %w", err)
	}
	if err := l.adc.Open(); err != nil {
		return fmt.Errorf("open adc: %w", err)
	}
	scan := []int{l.channels.Potentiometer, l.channels.Temperature, l.channels.InternalVRef}
	if err := l.adc.ScanConfigure(scan); err != nil {
		return fmt.Errorf("configure scan: %w", err)
	}
	for _, out := range l.outputs {
		if err := out.Start(); err != nil {
			return fmt.Errorf("start output: %w", err)
		}
	}
	return nil
}

// Close closes outputs and drivers, logging failures.
func (l *Loop) Close() error {
	var errs []error
	for _, out := range l.outputs {
		if err := out.Close(); err != nil {
			log.Printf("Error closing output: %v", err)
			errs = append(errs, err)
		}
	}
	if err := l.adc.Close(); err != nil {
		log.Printf("Error closing adc: %v", err)
		errs = append(errs, err)
	}
	if err := l.timer.Close(); err != nil {
		log.Printf("Error closing timer: %v", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Run repeats Step until ctx is cancelled or a driver fails. Cancellation
// returns nil.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Step runs one cycle: scan, convert, publish, delay.
func (l *Loop) Step(ctx context.Context) error {
	raw, err := l.Scan(ctx)
	if err != nil {
		return err
	}

	reading := l.conv.Convert(raw)
	for _, out := range l.outputs {
		if err := out.Publish(reading); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}

	return Delay(ctx, l.timer, l.delayTicks)
}

// Scan starts a conversion, waits for it and reads the potentiometer,
// temperature and internal reference channels in that order.
func (l *Loop) Scan(ctx context.Context) (convert.Raw, error) {
	if err := l.adc.ScanStart(); err != nil {
		return convert.Raw{}, fmt.Errorf("start scan: %w", err)
	}

	for {
		err := l.adc.ScanStatus()
		if err == nil {
			break
		}
		if !errors.Is(err, hal.ErrScanInProgress) {
			return convert.Raw{}, fmt.Errorf("scan status: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return convert.Raw{}, err
		}
		runtime.Gosched()
	}

	raw := convert.Raw{Timestamp: l.now()}
	var err error
	if raw.Potentiometer, err = l.read(l.channels.Potentiometer); err != nil {
		return convert.Raw{}, err
	}
	if raw.Temperature, err = l.read(l.channels.Temperature); err != nil {
		return convert.Raw{}, err
	}
	if raw.InternalVRef, err = l.read(l.channels.InternalVRef); err != nil {
		return convert.Raw{}, err
	}
	return raw, nil
}

func (l *Loop) read(channel int) (uint16, error) {
	v, err := l.adc.Read(channel)
	if err != nil {
		return 0, fmt.Errorf("read channel %d: %w", channel, err)
	}
	return v, nil
}

// Delay resets timer and polls it until the counter exceeds threshold, then
// resets it again.
func Delay(ctx context.Context, timer hal.Timer, threshold uint64) error {
	if err := timer.Reset(); err != nil {
		return fmt.Errorf("reset timer: %w", err)
	}
	for {
		counts, err := timer.Counter()
		if err != nil {
			return fmt.Errorf("read timer: %w", err)
		}
		if counts > threshold {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		runtime.Gosched()
	}
	if err := timer.Reset(); err != nil {
		return fmt.Errorf("reset timer: %w", err)
	}
	return nil
}
