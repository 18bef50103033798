package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTT defaults.
const (
	DefaultClientID    = "tilecalc"
	DefaultTopicPrefix = "tilecalc"
	publishTimeout     = 2 * time.Second
	connectTimeout     = 10 * time.Second
)

// MQTTConfig configures NewMQTT.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// Client is the part of mqtt.Client used for publishing.
type Client interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes events to <prefix>/calculations/<type>.
type MQTT struct {
	client Client
	prefix string
	qos    byte
	logger *log.Logger
}

// NewMQTT connects to the broker and returns a publisher.
func NewMQTT(cfg MQTTConfig, logger *log.Logger) (*MQTT, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt: broker not set")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt: connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect to %s: %w", cfg.Broker, err)
	}
	return NewMQTTFromClient(client, cfg.TopicPrefix, cfg.QoS, logger), nil
}

// NewMQTTFromClient wraps a connected client.
func NewMQTTFromClient(client Client, prefix string, qos byte, logger *log.Logger) *MQTT {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &MQTT{client: client, prefix: prefix, qos: qos, logger: logger}
}

// Topic returns the topic for an event type.
func (m *MQTT) Topic(t EventType) string {
	return fmt.Sprintf("%s/calculations/%s", m.prefix, t)
}

// Publish sends e. It waits up to two seconds or until ctx is done.
func (m *MQTT) Publish(ctx context.Context, e Event) error {
	if m.client == nil || !m.client.IsConnected() {
		return fmt.Errorf("mqtt: client not connected")
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("mqtt: marshal event: %w", err)
	}

	topic := m.Topic(e.Type)
	token := m.client.Publish(topic, m.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("mqtt: publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: publish to %s: %w", topic, err)
	}
	m.logger.Debug("published event", "topic", topic, "id", e.ID)
	return nil
}

// Close disconnects after letting in-flight messages finish.
func (m *MQTT) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}

var _ Notifier = (*MQTT)(nil)
