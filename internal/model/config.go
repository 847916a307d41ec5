// Package model defines shared configuration structures used to initialize the SensorBridge.
// It includes serial, forwarding, loop timing, monitor and MQTT settings.
package model

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultForwardURL is the logging endpoint the sensor board has always reported to.
const DefaultForwardURL = "https://script.google.com/macros/s/AKfycbxNLkNEAT9pJltLzODtYa03Jrc7o5pO0mMtY_p_TwohW-R9SVDhbYIgbsJI8rCvkZi7Vw/exec"

// Config represents the root structure loaded from configs/config.yml.
// Every field has a default, so the file is optional.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Forward ForwardConfig `yaml:"forward"`
	Loop    LoopConfig    `yaml:"loop"`
	Monitor MonitorConfig `yaml:"monitor"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
}

// SerialConfig describes how the sensor board is found and opened.
type SerialConfig struct {
	Device       string        `yaml:"device"` // explicit port, skips auto-detection
	Baud         int           `yaml:"baud"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	Identifiers  []string      `yaml:"identifiers"` // substrings matched against the port description
	FallbackPort string        `yaml:"fallback_port"`
}

// ForwardConfig describes the remote logging endpoint.
type ForwardConfig struct {
	URL       string        `yaml:"url"`
	Operation string        `yaml:"operation"` // value of the sts query parameter
	Timeout   time.Duration `yaml:"timeout"`   // 0 keeps the transport default
}

// LoopConfig holds the polling loop delays.
type LoopConfig struct {
	Warmup       time.Duration `yaml:"warmup"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// MonitorConfig enables the local monitor server when Addr is set.
type MonitorConfig struct {
	Addr string `yaml:"addr"`
}

// MQTTConfig enables mirroring readings to an MQTT broker when Broker is set.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

// DefaultConfig returns the settings the bridge runs with when no file is given.
func DefaultConfig() Config {
	return Config{
		Serial: SerialConfig{
			Baud:         9600,
			ReadTimeout:  1 * time.Second,
			Identifiers:  []string{"Arduino", "CH340"},
			FallbackPort: defaultFallbackPort(),
		},
		Forward: ForwardConfig{
			URL:       DefaultForwardURL,
			Operation: "write",
		},
		Loop: LoopConfig{
			Warmup:       40 * time.Second,
			PollInterval: 15 * time.Second,
		},
		MQTT: MQTTConfig{
			ClientID: "sensor-bridge",
			Topic:    "sensors/readings",
		},
	}
}

func defaultFallbackPort() string {
	if runtime.GOOS == "windows" {
		return "COM4"
	}
	return "/dev/ttyUSB0"
}

// LoadConfig reads the YAML file at path on top of DefaultConfig.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the bridge cannot run with.
func (c Config) Validate() error {
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", c.Serial.Baud)
	}
	if c.Serial.ReadTimeout <= 0 {
		return fmt.Errorf("serial.read_timeout must be positive, got %s", c.Serial.ReadTimeout)
	}
	if c.Forward.URL == "" {
		return fmt.Errorf("forward.url is required")
	}
	if c.Loop.Warmup < 0 || c.Loop.PollInterval < 0 {
		return fmt.Errorf("loop delays must not be negative")
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return fmt.Errorf("mqtt.topic is required when mqtt.broker is set")
	}
	return nil
}
