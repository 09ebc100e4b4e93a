//go:build tinygo

package main

import (
	"fmt"
	"machine"

	"github.com/itohio/adcmon/pkg/hal"
)

var (
	_ hal.UART = (*boardUART)(nil)
	_ hal.ADC  = (*boardADC)(nil)
)

// boardUART transmits on UART0. machine.UART.Write returns once the bytes
// are in the transmit register, which is reported as completion.
type boardUART struct {
	uart *machine.UART
	cb   hal.UARTCallback
}

func (u *boardUART) Open(cb hal.UARTCallback) error {
	u.uart = machine.UART0
	if err := u.uart.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE}); err != nil {
		return err
	}
	u.cb = cb
	return nil
}

func (u *boardUART) Write(p []byte) error {
	if u.uart == nil {
		return hal.ErrNotOpen
	}
	if _, err := u.uart.Write(p); err != nil {
		u.cb(hal.EventError)
		return err
	}
	u.cb(hal.EventTxComplete)
	return nil
}

func (u *boardUART) Close() error { return nil }

// boardADC converts the configured pins one after another on ScanStart.
type boardADC struct {
	adcs    map[int]machine.ADC
	scan    []int
	results map[int]uint16
	done    bool
}

func newBoardADC() *boardADC {
	return &boardADC{
		adcs:    make(map[int]machine.ADC),
		results: make(map[int]uint16),
	}
}

func (a *boardADC) Open() error {
	machine.InitADC()
	for ch, pin := range channelPins {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		adc := machine.ADC{Pin: pin}
		adc.Configure(machine.ADCConfig{
			Reference:  ADC_REFERENCE_MV,
			Resolution: ADC_RESOLUTION,
		})
		a.adcs[ch] = adc
	}
	return nil
}

func (a *boardADC) ScanConfigure(channels []int) error {
	for _, ch := range channels {
		if _, ok := a.adcs[ch]; !ok {
			return fmt.Errorf("no pin for channel %d", ch)
		}
	}
	a.scan = channels
	return nil
}

func (a *boardADC) ScanStart() error {
	for _, ch := range a.scan {
		// machine.ADC.Get is scaled to 16 bits
		a.results[ch] = a.adcs[ch].Get() >> 4
	}
	a.done = true
	return nil
}

func (a *boardADC) ScanStatus() error {
	if !a.done {
		return hal.ErrNoScan
	}
	return nil
}

func (a *boardADC) Read(channel int) (uint16, error) {
	v, ok := a.results[channel]
	if !ok {
		return 0, hal.ErrUnknownChannel
	}
	return v, nil
}

func (a *boardADC) Close() error { return nil }
