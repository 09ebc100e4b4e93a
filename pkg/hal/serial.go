package hal

import (
	"fmt"
	"io"
	"log"
	"sync"

	"go.bug.st/serial"
)

// DefaultBaudRate is the default terminal baud rate.
const DefaultBaudRate = 115200

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// SerialUART transmits over a host serial port.
type SerialUART struct {
	port     string
	baudRate int

	mu   sync.Mutex
	conn serial.Port
	cb   UARTCallback
}

// NewSerialUART creates a UART for the given port. A zero baud rate selects DefaultBaudRate.
func NewSerialUART(port string, baudRate int) *SerialUART {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &SerialUART{
		port:     port,
		baudRate: baudRate,
	}
}

// Open opens the serial port and registers the event callback.
func (u *SerialUART) Open(cb UARTCallback) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.conn != nil {
		return ErrAlreadyOpen
	}

	mode := &serial.Mode{
		BaudRate: u.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	conn, err := serial.Open(u.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", u.port, err)
	}

	u.conn = conn
	u.cb = cb

	return nil
}

// Write writes p to the port and reports EventTxComplete once the output
// buffer has drained.
func (u *SerialUART) Write(p []byte) error {
	u.mu.Lock()
	conn, cb := u.conn, u.cb
	u.mu.Unlock()

	if conn == nil {
		return ErrNotOpen
	}

	if _, err := conn.Write(p); err != nil {
		return fmt.Errorf("failed to write to serial port: %w", err)
	}

	go func() {
		if err := conn.Drain(); err != nil {
			log.Printf("Error draining serial port: %v", err)
			notify(cb, EventError)
			return
		}
		notify(cb, EventTxComplete)
	}()

	return nil
}

// Close closes the serial port.
func (u *SerialUART) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.conn == nil {
		return nil
	}

	err := u.conn.Close()
	u.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// WriterUART transmits to an io.Writer, e.g. the process's stdout.
type WriterUART struct {
	w io.Writer

	mu sync.Mutex
	cb UARTCallback
}

// NewWriterUART creates a UART writing to w.
func NewWriterUART(w io.Writer) *WriterUART {
	return &WriterUART{w: w}
}

// Open registers the event callback.
func (u *WriterUART) Open(cb UARTCallback) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.cb != nil {
		return ErrAlreadyOpen
	}
	if cb == nil {
		cb = func(UARTEvent) {}
	}
	u.cb = cb
	return nil
}

// Write writes p and reports EventTxComplete from another goroutine.
func (u *WriterUART) Write(p []byte) error {
	u.mu.Lock()
	cb := u.cb
	u.mu.Unlock()

	if cb == nil {
		return ErrNotOpen
	}

	if _, err := u.w.Write(p); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}

	go notify(cb, EventTxComplete)
	return nil
}

// Close unregisters the callback.
func (u *WriterUART) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.cb = nil
	return nil
}

func notify(cb UARTCallback, ev UARTEvent) {
	if cb != nil {
		cb(ev)
	}
}
