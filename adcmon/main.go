package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/adcmon/pkg/acquire"
	"github.com/itohio/adcmon/pkg/config"
	"github.com/itohio/adcmon/pkg/hal"
	"github.com/itohio/adcmon/pkg/output"
	"github.com/itohio/adcmon/pkg/output/mqtt"
	"github.com/itohio/adcmon/pkg/output/terminal"
	"github.com/itohio/adcmon/pkg/serialout"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port for the terminal (e.g., COM3 or /dev/ttyUSB0); stdout when empty")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use the simulated ADC regardless of configuration")
		vt100Flag  = flag.String("vt100", "", "Redraw values in place: true|false (overrides config)")
		mqttFlag   = flag.String("mqtt", "", "MQTT broker URL (e.g., tcp://localhost:1883), overrides config")
		listFlag   = flag.Bool("list", false, "List serial ports and exit")
	)
	flag.Parse()

	if *listFlag {
		if err := listPorts(); err != nil {
			log.Fatalf("Failed to list ports: %v", err)
		}
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *mockFlag {
		cfg.ADC.Driver = "mock"
	}
	switch *vt100Flag {
	case "":
	case "true", "1":
		cfg.Display.VT100 = true
	case "false", "0":
		cfg.Display.VT100 = false
	default:
		log.Fatalf("Invalid -vt100 value %q", *vt100Flag)
	}
	if *mqttFlag != "" {
		cfg.MQTT.Server = *mqttFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Monitor stopped: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	tx := serialout.NewTransmitter(ctx, newUART(cfg))
	if err := tx.Open(); err != nil {
		return err
	}
	defer tx.Close()

	outputs := []output.Output{terminal.New(tx, cfg.Display.Title, cfg.Display.VT100)}
	if cfg.MQTT.Server != "" {
		outputs = append(outputs, mqtt.New(cfg.MQTT))
	}

	loop := acquire.New(cfg, newADC(cfg), hal.NewClockTimer(cfg.Timer.TicksPerMs), outputs...)
	defer loop.Close()

	if err := loop.Open(); err != nil {
		return err
	}
	return loop.Run(ctx)
}

func newUART(cfg *config.Config) hal.UART {
	if cfg.Serial.Port == "" {
		return hal.NewWriterUART(os.Stdout)
	}
	return hal.NewSerialUART(cfg.Serial.Port, cfg.Serial.BaudRate)
}

func newADC(cfg *config.Config) hal.ADC {
	switch cfg.ADC.Driver {
	case "ads1115":
		return hal.NewADS1115(cfg)
	default:
		return hal.NewSimADC(cfg)
	}
}

func listPorts() error {
	ports, err := hal.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Printf("%s\t%s\n", p.Name, p.Description)
	}
	return nil
}
