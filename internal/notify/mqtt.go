// Package notify publishes scan events to an MQTT broker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"silo_scanner/internal/logger"
	"silo_scanner/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	qosAtLeastOnce    = 1
	disconnectQuiesce = 250 // ms
)

type MQTTConfig struct {
	Broker   string // host:port or a full tcp:// URL
	ClientID string
	Topic    string
	Username string
	Password string
}

// MQTTPublisher sends every scan event to <topic>/<event type>.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	log    *logger.Logger
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(cfg MQTTConfig, log *logger.Logger) (*MQTTPublisher, error) {
	broker := cfg.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		log.Infow("mqtt_connected", "broker", broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Errorw("mqtt_connection_lost", "err", err)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt %s: %w", broker, token.Error())
	}
	return newPublisher(client, cfg.Topic, log), nil
}

func newPublisher(client mqtt.Client, topic string, log *logger.Logger) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: strings.TrimSuffix(topic, "/"), log: log}
}

// Publish sends ev as JSON and waits for the broker ack or ctx.
func (p *MQTTPublisher) Publish(ctx context.Context, ev models.ScanEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	topic := p.topic + "/" + strings.ToLower(ev.Type)
	token := p.client.Publish(topic, qosAtLeastOnce, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(disconnectQuiesce)
}
