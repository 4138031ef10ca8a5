//go:build !rp2040 && !rp2350

package swinput

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"servolink-go/types"
)

// MQTTSource holds virtual switches set over an MQTT command topic.
// Payloads are JSON objects mapping switch id to 0 or 1. Malformed
// payloads are dropped without mutating state; unknown ids within a
// well-formed payload are ignored.
type MQTTSource struct {
	mu    sync.Mutex
	state *types.SwitchState
	offer func(*types.SwitchState) bool
}

// NewMQTTSource creates the virtual switch set; offer receives each
// accepted snapshot.
func NewMQTTSource(ids []string, offer func(*types.SwitchState) bool) *MQTTSource {
	return &MQTTSource{
		state: types.NewSwitchState(ids),
		offer: offer,
	}
}

// Read returns the latest received snapshot.
func (m *MQTTSource) Read() *types.SwitchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// HandleMessage is the paho message handler for the command topic.
func (m *MQTTSource) HandleMessage(_ paho.Client, msg paho.Message) {
	var req map[string]int
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		return
	}
	for _, v := range req {
		if v != 0 && v != 1 {
			return
		}
	}

	m.mu.Lock()
	changed := false
	for id, v := range req {
		if m.state.Set(id, v == 1) {
			changed = true
		}
	}
	snapshot := m.state.Clone()
	m.mu.Unlock()

	if changed && m.offer != nil {
		m.offer(snapshot)
	}
}

// ConnectMQTT connects to the broker and subscribes the source to the
// command topic. The returned client is owned by the caller.
func ConnectMQTT(broker, clientID, topic string, src *MQTTSource) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	sub := client.Subscribe(topic, 1, src.HandleMessage)
	if !sub.WaitTimeout(10 * time.Second) {
		client.Disconnect(250)
		return nil, fmt.Errorf("subscribe timeout")
	}
	if err := sub.Error(); err != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return client, nil
}
