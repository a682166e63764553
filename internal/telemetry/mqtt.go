// Package telemetry publishes interpreter snapshots to an MQTT broker for
// remote monitoring. It is entirely optional: a Publisher with an empty
// broker address is a no-op, so deployments without a broker pay no cost.
package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/darkroom/agitator/internal/interpreter"
)

// Config configures the MQTT publisher.
type Config struct {
	Broker   string
	ClientID string
	DeviceID string
}

// Publisher publishes Snapshot values under agitator/<device-id>/status,
// and WaitUser messages separately under agitator/<device-id>/waituser so
// subscribers can alert on a confirmation gate without polling status.
type Publisher struct {
	cfg Config

	mu        sync.RWMutex
	client    mqtt.Client
	connected bool
}

// NewPublisher connects to the configured broker. If cfg.Broker is empty,
// it returns a Publisher whose Publish calls are no-ops.
func NewPublisher(cfg Config) (*Publisher, error) {
	p := &Publisher{cfg: cfg}
	if cfg.Broker == "" {
		return p, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(c mqtt.Client) {
		p.mu.Lock()
		p.connected = true
		p.mu.Unlock()
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		p.mu.Lock()
		p.connected = false
		p.mu.Unlock()
	})

	p.client = mqtt.NewClient(opts)
	token := p.client.Connect()
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("telemetry: failed to connect to broker: %w", token.Error())
	}

	return p, nil
}

type statusPayload struct {
	ProcessName    string `json:"process_name"`
	StepIndex      int    `json:"step_index"`
	StepName       string `json:"step_name"`
	StepCount      int    `json:"step_count"`
	MovementKind   string `json:"movement_kind"`
	TicksRemaining uint32 `json:"ticks_remaining"`
	LoopDepth      int    `json:"loop_depth"`
	Result         string `json:"result"`
	Fault          string `json:"fault,omitempty"`
}

// Publish sends the current snapshot to the status topic, and additionally
// to the waituser topic when the interpreter is parked on a confirmation
// gate. Publish failures are swallowed after being attempted once; callers
// that need delivery guarantees should retain their own run history via
// runlog instead.
func (p *Publisher) Publish(snap interpreter.Snapshot) {
	if p.client == nil {
		return
	}
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	if !connected {
		return
	}

	payload := statusPayload{
		ProcessName:    snap.ProcessName,
		StepIndex:      snap.StepIndex,
		StepName:       snap.StepName,
		StepCount:      snap.StepCount,
		MovementKind:   snap.MovementKind.String(),
		TicksRemaining: uint32(snap.TicksRemaining),
		LoopDepth:      snap.LoopDepth,
		Result:         snap.Result.String(),
	}
	if snap.Fault != nil {
		payload.Fault = snap.Fault.Error()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	statusTopic := fmt.Sprintf("agitator/%s/status", p.cfg.DeviceID)
	p.client.Publish(statusTopic, 0, false, body)

	if snap.AwaitingMessage != "" {
		waitTopic := fmt.Sprintf("agitator/%s/waituser", p.cfg.DeviceID)
		p.client.Publish(waitTopic, 1, true, []byte(snap.AwaitingMessage))
	}
}

// Close disconnects from the broker, if connected.
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
