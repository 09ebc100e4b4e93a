//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"

	"github.com/itohio/adcmon/pkg/acquire"
	"github.com/itohio/adcmon/pkg/config"
	"github.com/itohio/adcmon/pkg/hal"
	"github.com/itohio/adcmon/pkg/output/terminal"
	"github.com/itohio/adcmon/pkg/serialout"
)

func main() {
	cfg := config.Default()
	cfg.ADC.Channels = config.Channels{
		Potentiometer: CHANNEL_POT,
		Temperature:   CHANNEL_TEMP,
		InternalVRef:  CHANNEL_VREF,
	}
	cfg.ADC.VRef = float64(ADC_REFERENCE_MV) / 1000

	ctx := context.Background()

	tx := serialout.NewTransmitter(ctx, &boardUART{})
	if err := tx.Open(); err != nil {
		halt(err)
	}

	term := terminal.New(tx, cfg.Display.Title, cfg.Display.VT100)
	loop := acquire.New(cfg, newBoardADC(), hal.NewClockTimer(cfg.Timer.TicksPerMs), term)
	if err := loop.Open(); err != nil {
		halt(err)
	}
	if err := loop.Run(ctx); err != nil {
		halt(err)
	}
}

// halt reports a fatal error on the debug console and stops.
func halt(err error) {
	println("adcmon:", err.Error())
	select {}
}
