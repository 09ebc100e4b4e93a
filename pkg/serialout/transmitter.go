// Package serialout sends text to a hal.UART one byte at a time.
package serialout

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/itohio/adcmon/pkg/hal"
)

// Transmitter is a blocking io.Writer over a UART. Each byte is sent on its
// own and the next one only after the UART reported EventTxComplete.
type Transmitter struct {
	ctx  context.Context
	uart hal.UART

	complete atomic.Bool
	wake     chan struct{}
}

// NewTransmitter creates a transmitter for uart. ctx only ends pending waits
// when the process shuts down; a UART that never completes blocks forever otherwise.
func NewTransmitter(ctx context.Context, uart hal.UART) *Transmitter {
	return &Transmitter{
		ctx:  ctx,
		uart: uart,
		wake: make(chan struct{}, 1),
	}
}

// Open opens the UART with OnEvent as its callback.
func (t *Transmitter) Open() error {
	if err := t.uart.Open(t.OnEvent); err != nil {
		return fmt.Errorf("open uart: %w", err)
	}
	return nil
}

// Close closes the UART.
func (t *Transmitter) Close() error {
	return t.uart.Close()
}

// OnEvent is the UART completion callback.
func (t *Transmitter) OnEvent(ev hal.UARTEvent) {
	switch ev {
	case hal.EventTxComplete:
		t.complete.Store(true)
		select {
		case t.wake <- struct{}{}:
		default:
		}
	default:
	}
}

// Write sends p byte by byte and returns the number of bytes sent.
func (t *Transmitter) Write(p []byte) (int, error) {
	sent := 0
	for i := range p {
		t.complete.Store(false)
		if err := t.uart.Write(p[i : i+1]); err != nil {
			return sent, fmt.Errorf("uart write: %w", err)
		}
		if err := t.wait(); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// wait blocks until the completion flag is set.
func (t *Transmitter) wait() error {
	for !t.complete.Load() {
		select {
		case <-t.wake:
		case <-t.ctx.Done():
			return t.ctx.Err()
		}
	}
	// drop a wake-up left over from this byte
	select {
	case <-t.wake:
	default:
	}
	return nil
}
