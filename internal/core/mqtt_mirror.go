package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"SensorBridge/internal/model"
)

// MQTTMirror publishes every reading to an MQTT topic, next to the HTTP forward.
type MQTTMirror struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// NewMQTTMirror starts connecting to the broker described by cfg. It does
// not wait for the connection: paho keeps retrying in the background and
// readings published while the broker is down fail as ordinary sink errors.
func NewMQTTMirror(cfg model.MQTTConfig) *MQTTMirror {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(10 * time.Second).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Printf("[mqtt] connected to %s, mirroring to %s", cfg.Broker, cfg.Topic)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("[mqtt] connection to %s lost: %v", cfg.Broker, err)
		})
	client := mqtt.NewClient(opts)
	log.Printf("[mqtt] connecting to %s", cfg.Broker)
	client.Connect()
	return newMQTTMirror(client, cfg.Topic)
}

func newMQTTMirror(client mqtt.Client, topic string) *MQTTMirror {
	return &MQTTMirror{client: client, topic: topic, timeout: 5 * time.Second}
}

// Deliver publishes the reading as JSON with QoS 0.
func (m *MQTTMirror) Deliver(_ context.Context, r model.Reading) error {
	payload, err := json.Marshal(ReadingEvent{Reading: r, ReceivedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if !m.client.IsConnectionOpen() {
		return fmt.Errorf("mqtt not connected, reading not mirrored to %s", m.topic)
	}
	token := m.client.Publish(m.topic, 0, false, payload)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("publish to %s timed out", m.topic)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (m *MQTTMirror) Close() {
	m.client.Disconnect(250)
	log.Printf("[mqtt] disconnected")
}
