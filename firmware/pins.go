//go:build tinygo

package main

import "machine"

const (
	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Serial configuration
	UART_BAUD_RATE = 115200
)

// Channel numbers as seen by the acquisition loop, mapped to pins below.
const (
	CHANNEL_POT  = 0
	CHANNEL_TEMP = 1
	CHANNEL_VREF = 2
)

var channelPins = map[int]machine.Pin{
	CHANNEL_POT:  machine.A0,
	CHANNEL_TEMP: machine.A1,
	CHANNEL_VREF: machine.A2,
}
