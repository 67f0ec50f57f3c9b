// Command proxy-usb-hid attaches to a USB Device Controller through
// /dev/raw-gadget and impersonates a composite USB HID device exposing
// two 8-axis/128-button joysticks, built from whatever physical evdev
// input devices this machine has attached and the persisted mapping
// between them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/McTechFly/proxy-usb-hid/control"
	"github.com/McTechFly/proxy-usb-hid/gadget"
	"github.com/McTechFly/proxy-usb-hid/mapping"
	"github.com/McTechFly/proxy-usb-hid/rawgadget"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

const (
	defaultDeviceName = "dummy_udc.0"
	defaultDriverName = "dummy_udc"
)

func main() {
	deviceName := defaultDeviceName
	driverName := defaultDriverName
	if len(os.Args) > 1 {
		deviceName = os.Args[1]
	}
	if len(os.Args) > 2 {
		driverName = os.Args[2]
	}

	devices, err := mapping.InitPhysicalDevices()
	if err != nil {
		log.Fatal().Err(err).Msg("mapping.InitPhysicalDevices")
	}
	if len(devices) == 0 {
		log.Error().Msg("no joysticks found")
		os.Exit(1)
	}
	log.Info().Int("devices", len(devices)).Msg("physical input devices mapped")

	dev, err := rawgadget.Open()
	if err != nil {
		log.Fatal().Err(err).Msg("rawgadget.Open")
	}
	defer dev.Close()

	if err := dev.Init(gadget.SpeedHigh, driverName, deviceName); err != nil {
		log.Fatal().Err(err).Msg("rawgadget.Init")
	}
	if err := dev.Run(); err != nil {
		log.Fatal().Err(err).Msg("rawgadget.Run")
	}
	log.Info().Str("driver", driverName).Str("device", deviceName).Msg("gadget attached")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	server := control.NewServer(dev, devices)
	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("control.Run")
	}
}
