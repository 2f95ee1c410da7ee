package host

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Topic suffixes under the configured prefix.
const (
	TopicState  = "state"  // retained HostState from the extension
	TopicEvent  = "event"  // one message per user interaction
	TopicNotify = "notify" // notices for the extension to display
	TopicStatus = "status" // daemon lifecycle and status snapshots
)

// HostState is the editor snapshot the extension publishes (retained) whenever
// the active document changes or its contents are edited.
type HostState struct {
	Project    *ProjectInfo          `json:"project"`
	Schematic  *DocumentInfo         `json:"schematic"`
	PCB        *DocumentInfo         `json:"pcb"`
	Primitives map[PrimitiveKind]int `json:"primitives"`

	// Error is set when the editor's project API threw.
	Error string `json:"error,omitempty"`
}

// NoticePayload is the JSON body published on the notify topic.
type NoticePayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Bridge is a Host backed by the EasyEDA extension over MQTT.
type Bridge struct {
	client paho.Client
	prefix string

	mu       sync.RWMutex
	state    *HostState
	handlers []func()

	outMu   sync.Mutex
	pending *outbox
}

// NewBridge connects to broker and subscribes to the extension's topics.
// The connection retries in the background; a broker that is not up yet is
// logged, not returned as an error.
func NewBridge(broker, prefix string) (*Bridge, error) {
	b := &Bridge{prefix: prefix, pending: newOutbox(outboxCapacity)}

	willPayload, _ := json.Marshal(map[string]map[string]string{"status": {"event": "OFFLINE"}})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("easyeda-wakatime-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(b.topic(TopicStatus), string(willPayload), 1, true).
		SetOnConnectHandler(b.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("host: connection lost: %v", err)
		})

	b.client = paho.NewClient(opts)
	token := b.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("host: broker %s not reachable yet, retrying in background", broker)
		return b, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return b, nil
}

// onConnect (re)subscribes; called by paho after every successful connect.
func (b *Bridge) onConnect(c paho.Client) {
	log.Printf("host: connected, subscribing under %s/", b.prefix)

	if t := c.Subscribe(b.topic(TopicState), 1, func(_ paho.Client, m paho.Message) {
		b.handleState(m.Payload())
	}); t.WaitTimeout(5*time.Second) && t.Error() != nil {
		log.Printf("host: subscribe state: %v", t.Error())
	}

	if t := c.Subscribe(b.topic(TopicEvent), 0, func(_ paho.Client, _ paho.Message) {
		b.handleEvent()
	}); t.WaitTimeout(5*time.Second) && t.Error() != nil {
		log.Printf("host: subscribe event: %v", t.Error())
	}

	b.flush(c)
}

// flush publishes messages queued while the broker was unreachable.
func (b *Bridge) flush(c paho.Client) {
	b.outMu.Lock()
	msgs := b.pending.drain()
	b.outMu.Unlock()

	if len(msgs) > 0 {
		log.Printf("host: replaying %d queued messages", len(msgs))
	}
	for _, m := range msgs {
		t := c.Publish(m.topic, m.qos, m.retained, m.payload)
		if t.WaitTimeout(5*time.Second) && t.Error() != nil {
			log.Printf("host: replay %s: %v", m.topic, t.Error())
		}
	}
}

// publish sends now when the connection is open and queues otherwise.
// paho's IsConnected stays true while reconnecting, so the open check is used.
func (b *Bridge) publish(topic string, qos byte, retained bool, payload []byte) error {
	if b.client == nil || !b.client.IsConnectionOpen() {
		b.outMu.Lock()
		b.pending.push(pendingMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		b.outMu.Unlock()
		return nil
	}

	token := b.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timeout")
	}
	return token.Error()
}

// Pending returns the number of messages waiting for a connection.
func (b *Bridge) Pending() int {
	b.outMu.Lock()
	defer b.outMu.Unlock()
	return b.pending.len()
}

func (b *Bridge) topic(suffix string) string {
	return b.prefix + "/" + suffix
}

// handleState replaces the cached editor snapshot. Malformed payloads are
// logged and the previous snapshot is kept.
func (b *Bridge) handleState(payload []byte) {
	var st HostState
	if err := json.Unmarshal(payload, &st); err != nil {
		log.Printf("host: bad state payload: %v", err)
		return
	}
	b.mu.Lock()
	b.state = &st
	b.mu.Unlock()
}

func (b *Bridge) handleEvent() {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()
	for _, fn := range handlers {
		fn()
	}
}

func (b *Bridge) snapshot() (*HostState, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.state == nil {
		return nil, ErrNoState
	}
	return b.state, nil
}

// ProjectInfo returns the project from the last reported state.
func (b *Bridge) ProjectInfo() (*ProjectInfo, error) {
	st, err := b.snapshot()
	if err != nil {
		return nil, err
	}
	if st.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrProjectAPI, st.Error)
	}
	return st.Project, nil
}

// SchematicInfo returns the schematic from the last reported state.
func (b *Bridge) SchematicInfo() (*DocumentInfo, error) {
	st, err := b.snapshot()
	if err != nil {
		return nil, err
	}
	return st.Schematic, nil
}

// PCBInfo returns the board from the last reported state.
func (b *Bridge) PCBInfo() (*DocumentInfo, error) {
	st, err := b.snapshot()
	if err != nil {
		return nil, err
	}
	return st.PCB, nil
}

// Primitives returns the count for kind from the last reported state.
func (b *Bridge) Primitives(kind PrimitiveKind) (int, error) {
	st, err := b.snapshot()
	if err != nil {
		return 0, err
	}
	n, ok := st.Primitives[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrPrimitiveUnavailable, kind)
	}
	return n, nil
}

// OnInteraction registers fn for every message on the event topic.
func (b *Bridge) OnInteraction(fn func()) error {
	b.mu.Lock()
	b.handlers = append(append([]func(){}, b.handlers...), fn)
	b.mu.Unlock()
	return nil
}

// Notify asks the extension to show a message box.
func (b *Bridge) Notify(title, body string) error {
	payload, err := json.Marshal(NoticePayload{Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("format notice: %w", err)
	}

	// QoS 1 (at-least-once): a dropped notice leaves the user with no hint.
	if err := b.publish(b.topic(TopicNotify), 1, false, payload); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// PublishStatus sends a daemon status event to the status topic.
func (b *Bridge) PublishStatus(event StatusEvent) error {
	if err := b.publish(b.topic(TopicStatus), 1, event.Retained, event.Payload); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (b *Bridge) IsConnected() bool {
	return b.client != nil && b.client.IsConnected()
}

// Close disconnects from the broker.
func (b *Bridge) Close() error {
	if n := b.Pending(); n > 0 {
		log.Printf("host: closing with %d undelivered messages", n)
	}
	b.client.Disconnect(1000) // 1 second quiesce
	return nil
}

var (
	_ Host             = (*Bridge)(nil)
	_ StatusPublisher  = (*Bridge)(nil)
	_ ConnectionStatus = (*Bridge)(nil)
)
