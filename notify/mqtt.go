package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttPublishTimeout = 10 * time.Second

// MQTT publishes notifications to a fixed topic with QoS 1. The broker
// connection is established lazily on first send and kept open.
type MQTT struct {
	BrokerURL string
	Topic     string
	ClientID  string

	mu     sync.Mutex
	client pahomqtt.Client
}

func NewMQTT(brokerURL, topic, clientID string) *MQTT {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		clientID = "ev-ai-notify"
	}
	return &MQTT{
		BrokerURL: strings.TrimSpace(brokerURL),
		Topic:     strings.TrimSpace(topic),
		ClientID:  clientID,
	}
}

func (m *MQTT) Name() string { return "mqtt" }

func (m *MQTT) Send(ctx context.Context, subject, body string) error {
	if m == nil || m.BrokerURL == "" || m.Topic == "" {
		return fmt.Errorf("mqtt broker url or topic is not configured")
	}
	client, err := m.connect()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]string{
		"subject": subject,
		"body":    body,
	})
	if err != nil {
		return fmt.Errorf("marshal mqtt payload: %w", err)
	}

	token := client.Publish(m.Topic, 1, false, payload)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
	case <-time.After(mqttPublishTimeout):
		return fmt.Errorf("mqtt publish timed out after %s", mqttPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	return nil
}

func (m *MQTT) connect() (pahomqtt.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil && m.client.IsConnectionOpen() {
		return m.client, nil
	}
	opts := pahomqtt.NewClientOptions().
		AddBroker(m.BrokerURL).
		SetClientID(m.ClientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	m.client = client
	return client, nil
}

func (m *MQTT) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil && m.client.IsConnectionOpen() {
		m.client.Disconnect(250)
	}
	m.client = nil
}
