// Package main is the entry point of the SensorBridge.
// It loads the configuration, opens the sensor board and forwards every
// reading to the remote logging endpoint until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"SensorBridge/internal/core"
	"SensorBridge/internal/device"
	"SensorBridge/internal/model"
	"SensorBridge/internal/util"
)

func main() {
	util.SetupLogger()

	cfgPath := flag.String("c", "", "path to configuration file (defaults are used when empty)")
	port := flag.String("port", "", "serial port of the sensor board (skips auto-detection)")
	flag.Parse()

	cfg, err := model.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Serial.Device = *port
	}
	if *cfgPath != "" {
		log.Printf("[Main] Using config: %s", *cfgPath)
	}

	sys, err := core.NewSystem(cfg, device.OpenSensorBoard)
	if err != nil {
		log.Fatalf("failed to create system: %v", err)
	}

	// wait for Ctrl+C or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	util.Info("bridge starting, forwarding to %s", cfg.Forward.URL)
	if err := sys.Run(ctx); err != nil {
		if errors.Is(err, core.ErrOpen) {
			util.Error("%v", err)
			stop()
			os.Exit(1)
		}
		log.Fatalf("bridge stopped: %v", err)
	}
	util.Info("bridge stopped cleanly")
}
