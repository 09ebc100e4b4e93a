// Package hal defines the peripheral drivers the monitor is built on and
// provides host, simulated and I2C implementations of them.
package hal

import "errors"

var (
	// ErrNotOpen is returned when a driver is used before Open.
	ErrNotOpen = errors.New("driver not open")
	// ErrAlreadyOpen is returned when Open is called twice.
	ErrAlreadyOpen = errors.New("driver already open")
	// ErrScanInProgress is returned by ADC.ScanStatus until the scan completes.
	ErrScanInProgress = errors.New("scan in progress")
	// ErrNoScan is returned when ADC.ScanStatus is polled without a started scan.
	ErrNoScan = errors.New("no scan started")
	// ErrUnknownChannel is returned when reading a channel that is not part of the scan.
	ErrUnknownChannel = errors.New("channel not configured for scan")
)

// UARTEvent is the kind of event reported through a UARTCallback.
type UARTEvent int

const (
	EventRxChar UARTEvent = iota
	EventTxDataEmpty
	EventTxComplete
	EventError
)

func (e UARTEvent) String() string {
	switch e {
	case EventRxChar:
		return "rx-char"
	case EventTxDataEmpty:
		return "tx-data-empty"
	case EventTxComplete:
		return "tx-complete"
	case EventError:
		return "error"
	}
	return "unknown"
}

// UARTCallback receives driver events. It may be called from another goroutine.
type UARTCallback func(UARTEvent)

// UART is a byte oriented serial transmitter. Write only starts the
// transmission; completion is reported with EventTxComplete.
type UART interface {
	Open(cb UARTCallback) error
	Write(p []byte) error
	Close() error
}

// Timer is a free running tick counter.
type Timer interface {
	Open() error
	Reset() error
	Counter() (uint64, error)
	Close() error
}

// ADC is a scanning analog to digital converter.
type ADC interface {
	Open() error
	ScanConfigure(channels []int) error
	ScanStart() error
	// ScanStatus returns nil once the started scan is complete and
	// ErrScanInProgress before that.
	ScanStatus() error
	Read(channel int) (uint16, error)
	Close() error
}

var (
	_ UART  = (*SerialUART)(nil)
	_ UART  = (*WriterUART)(nil)
	_ Timer = (*ClockTimer)(nil)
	_ ADC   = (*SimADC)(nil)
	_ ADC   = (*ADS1115)(nil)
)
