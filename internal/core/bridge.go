// Package core contains the main runtime logic of the SensorBridge.
// It defines the Bridge polling loop, the HTTP Forwarder, the optional
// Monitor and MQTT mirror, and the System that wires them together.
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"SensorBridge/internal/device"
	"SensorBridge/internal/metrics"
	"SensorBridge/internal/model"
	"SensorBridge/internal/parser"
)

// ErrOpen marks the one unrecoverable failure: the serial port could not be opened.
var ErrOpen = errors.New("failed to open serial port")

// State is the lifecycle state of a Bridge.
type State int32

const (
	StateIdle State = iota
	StateConnected
	StatePolling
	StateFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StatePolling:
		return "polling"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Bridge reads lines from the sensor board and hands parsed readings to a Sink.
// It is strictly sequential: read, parse, deliver, sleep.
type Bridge struct {
	Config  model.Config
	Open    device.OpenFunc
	Ports   device.PortLister
	Sink    Sink
	Metrics *metrics.Metrics

	state atomic.Int32
}

// NewBridge constructs a Bridge. A nil metrics set gets a fresh one.
func NewBridge(cfg model.Config, open device.OpenFunc, sink Sink, m *metrics.Metrics) *Bridge {
	if m == nil {
		m = metrics.New()
	}
	return &Bridge{
		Config:  cfg,
		Open:    open,
		Ports:   device.SystemPorts,
		Sink:    sink,
		Metrics: m,
	}
}

// State returns the current lifecycle state.
func (b *Bridge) State() State { return State(b.state.Load()) }

func (b *Bridge) setState(s State) { b.state.Store(int32(s)) }

// Port returns the configured port, or the auto-detected one when none is set.
func (b *Bridge) Port() string {
	if b.Config.Serial.Device != "" {
		return b.Config.Serial.Device
	}
	ports := b.Ports
	if ports == nil {
		ports = device.SystemPorts
	}
	return device.LocatePort(ports, b.Config.Serial.Identifiers, b.Config.Serial.FallbackPort)
}

// Run opens the board and polls it until ctx is cancelled.
// A failed open returns an error wrapping ErrOpen before any read happens.
func (b *Bridge) Run(ctx context.Context) error {
	b.setState(StateIdle)
	port := b.Port()
	dev, err := b.Open(port, b.Config.Serial.Baud)
	if err != nil {
		b.setState(StateFailed)
		return fmt.Errorf("%w %s: %w", ErrOpen, port, err)
	}
	defer func() {
		if cerr := dev.Close(); cerr != nil {
			log.Printf("[bridge] warning: failed to close %s: %v", port, cerr)
		}
	}()
	b.setState(StateConnected)
	log.Printf("[bridge] Serial port %s opened successfully.", port)

	if b.Config.Loop.Warmup > 0 {
		log.Printf("[bridge] Waiting %s for the board to initialize", b.Config.Loop.Warmup)
	}
	if !sleep(ctx, b.Config.Loop.Warmup) {
		b.setState(StateStopped)
		return nil
	}

	b.setState(StatePolling)
	for {
		b.poll(ctx, dev)
		if !sleep(ctx, b.Config.Loop.PollInterval) {
			b.setState(StateStopped)
			log.Printf("[bridge] polling stopped")
			return nil
		}
	}
}

// poll runs one iteration. Every failure here is logged and dropped.
func (b *Bridge) poll(ctx context.Context, dev device.Device) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[bridge] Parsing error: %v", r)
		}
	}()

	raw, err := dev.ReadLine(b.Config.Serial.ReadTimeout)
	if err != nil && !errors.Is(err, device.ErrReadTimeout) {
		b.Metrics.ReadErrors.Inc()
		log.Printf("[SERIAL] read error: %v", err)
		return
	}
	b.Metrics.LinesRead.Inc()
	line := parser.Clean(raw)
	log.Printf("[SERIAL] Raw data: %s", line)

	reading, err := parser.ParseReading(line)
	if errors.Is(err, parser.ErrMalformed) {
		b.Metrics.LinesMalformed.Inc()
		log.Printf("[SERIAL] Ignoring malformed line: %s", line)
		return
	}
	if err != nil {
		b.Metrics.LinesMalformed.Inc()
		log.Printf("[bridge] Parsing error: %v", err)
		return
	}

	log.Printf("[bridge] Sending → Temp: %s, Humidity: %s, Gases: %s, Wet: %s",
		reading.Temperature, reading.Humidity, reading.Gases, reading.Rain)
	if b.Sink == nil {
		return
	}
	if err := b.Sink.Deliver(ctx, reading); err != nil {
		b.Metrics.DeliveryFailures.Inc()
		log.Printf("[bridge] delivery failed: %v", err)
		return
	}
	b.Metrics.Delivered.Inc()
}

// sleep waits d or until ctx is done. It reports whether the wait completed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
