//go:build linux

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"divafw/core"
)

// StatusEvent is one connection or lifecycle change
type StatusEvent struct {
	Event string    `json:"event"`
	State string    `json:"state"`
	Tick  uint32    `json:"tick"`
	Time  time.Time `json:"time"`
}

// FormatStatus encodes an event as the MQTT payload
func FormatStatus(ev StatusEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// Publisher sends status events somewhere off the board
type Publisher interface {
	Publish(ev StatusEvent) error
	Close() error
}

// mqttPublisher publishes status events to a broker
type mqttPublisher struct {
	client paho.Client
	topic  string
}

func newMQTTPublisher(cfg MQTTConfig) (*mqttPublisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
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

	return &mqttPublisher{client: client, topic: cfg.Topic}, nil
}

// Publish sends one event. Reboot events use QoS 1 since nothing follows them.
func (p *mqttPublisher) Publish(ev StatusEvent) error {
	payload, err := FormatStatus(ev)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	qos := byte(0)
	if ev.Event == "reboot" {
		qos = 1
	}
	token := p.client.Publish(p.topic, qos, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker
func (p *mqttPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}

// statusQueueSize bounds events waiting for the publisher
const statusQueueSize = 16

// statusReporter hands events from the main loop to a publisher goroutine.
// Enqueueing never blocks; events are dropped when the queue is full.
type statusReporter struct {
	pub   Publisher
	now   func() uint32
	queue chan StatusEvent
	log   *slog.Logger
}

func newStatusReporter(pub Publisher, log *slog.Logger) *statusReporter {
	return &statusReporter{
		pub:   pub,
		now:   func() uint32 { return 0 },
		queue: make(chan StatusEvent, statusQueueSize),
		log:   log,
	}
}

// Run publishes queued events until ctx is done
func (r *statusReporter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.queue:
			if err := r.pub.Publish(ev); err != nil {
				r.log.Warn("publish status", "event", ev.Event, "error", err)
			}
		}
	}
}

// event stamps a status event
func (r *statusReporter) event(event string, state core.ConnState) StatusEvent {
	return StatusEvent{
		Event: event,
		State: state.String(),
		Tick:  r.now(),
		Time:  time.Now().UTC(),
	}
}

// Report queues an event
func (r *statusReporter) Report(event string, state core.ConnState) {
	ev := r.event(event, state)
	select {
	case r.queue <- ev:
	default:
		r.log.Debug("status queue full", "event", event)
	}
}

// PublishNow sends an event synchronously, for events nothing will follow
func (r *statusReporter) PublishNow(event string, state core.ConnState) {
	if err := r.pub.Publish(r.event(event, state)); err != nil {
		r.log.Warn("publish status", "event", event, "error", err)
	}
}

// statusCallbacks forwards device callbacks and reports each change
type statusCallbacks struct {
	next     core.DeviceCallbacks
	reporter *statusReporter
}

func (s *statusCallbacks) Mount() {
	s.next.Mount()
	s.reporter.Report("mount", core.Mounted)
}

func (s *statusCallbacks) Unmount() {
	s.next.Unmount()
	s.reporter.Report("unmount", core.NotMounted)
}

func (s *statusCallbacks) Suspend(remoteWakeup bool) {
	s.next.Suspend(remoteWakeup)
	s.reporter.Report("suspend", core.Suspended)
}

func (s *statusCallbacks) Resume() {
	s.next.Resume()
	s.reporter.Report("resume", core.Mounted)
}

func (s *statusCallbacks) LineStateChanged(dtr, rts bool) {
	s.next.LineStateChanged(dtr, rts)
}

// statusTransport wraps a transport so the callbacks it delivers are reported
type statusTransport struct {
	core.Transport
	reporter *statusReporter
}

func (t *statusTransport) SetCallbacks(cb core.DeviceCallbacks) {
	t.Transport.SetCallbacks(&statusCallbacks{next: cb, reporter: t.reporter})
}
