package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"

	"SensorBridge/internal/device"
	"SensorBridge/internal/metrics"
	"SensorBridge/internal/model"
)

// System owns the bridge and the sinks built from configuration.
type System struct {
	cfg     model.Config
	Bridge  *Bridge
	Monitor *Monitor
	Metrics *metrics.Metrics

	mirror *MQTTMirror
	wg     sync.WaitGroup
}

// NewSystem builds the bridge from cfg. The HTTP forwarder is always the
// first sink; the MQTT mirror and the monitor are added when configured.
func NewSystem(cfg model.Config, open device.OpenFunc) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if open == nil {
		open = device.OpenSensorBoard
	}

	s := &System{cfg: cfg, Metrics: metrics.New()}

	client := &http.Client{Timeout: cfg.Forward.Timeout}
	sinks := Sinks{{Name: "forward", Sink: NewForwarder(cfg.Forward.URL, cfg.Forward.Operation, client, os.Stdout)}}

	if cfg.MQTT.Broker != "" {
		mirror := NewMQTTMirror(cfg.MQTT)
		s.mirror = mirror
		sinks = append(sinks, NamedSink{Name: "mqtt", Sink: mirror})
	}

	s.Bridge = NewBridge(cfg, open, nil, s.Metrics)
	if cfg.Monitor.Addr != "" {
		s.Monitor = NewMonitor(cfg.Monitor.Addr, s.Metrics.Registry, s.Bridge.State)
		sinks = append(sinks, NamedSink{Name: "monitor", Sink: s.Monitor})
	}
	s.Bridge.Sink = sinks
	return s, nil
}

// Run starts the monitor in the background and runs the bridge until ctx is
// cancelled or the serial port cannot be opened.
func (s *System) Run(ctx context.Context) error {
	if s.Monitor != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.Monitor.Start(); err != nil {
				log.Printf("[monitor] server error: %v", err)
			}
		}()
	}
	defer s.Stop()

	err := s.Bridge.Run(ctx)
	if errors.Is(err, ErrOpen) {
		return err
	}
	if err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	return nil
}

// Stop releases the monitor and the MQTT connection.
func (s *System) Stop() {
	if s.Monitor != nil {
		s.Monitor.Stop()
	}
	s.wg.Wait()
	if s.mirror != nil {
		s.mirror.Close()
		s.mirror = nil
	}
}
