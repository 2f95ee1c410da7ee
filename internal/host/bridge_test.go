package host

import (
	"errors"
	"testing"
)

func newTestBridge() *Bridge {
	return &Bridge{prefix: "easyeda/wakatime", pending: newOutbox(outboxCapacity)}
}

func TestBridgeNoStateYet(t *testing.T) {
	b := newTestBridge()

	if _, err := b.ProjectInfo(); !errors.Is(err, ErrNoState) {
		t.Errorf("ProjectInfo: got %v, want ErrNoState", err)
	}
	if _, err := b.SchematicInfo(); !errors.Is(err, ErrNoState) {
		t.Errorf("SchematicInfo: got %v, want ErrNoState", err)
	}
	if _, err := b.PCBInfo(); !errors.Is(err, ErrNoState) {
		t.Errorf("PCBInfo: got %v, want ErrNoState", err)
	}
	if _, err := b.Primitives(PrimitiveWire); !errors.Is(err, ErrNoState) {
		t.Errorf("Primitives: got %v, want ErrNoState", err)
	}
}

func TestBridgeHandleState(t *testing.T) {
	b := newTestBridge()
	b.handleState([]byte(`{
		"project": {"friendlyName": "Synth", "uuid": "p1"},
		"schematic": {"name": "Main"},
		"pcb": null,
		"primitives": {"Component": 12, "Wire": 30}
	}`))

	p, err := b.ProjectInfo()
	if err != nil {
		t.Fatalf("ProjectInfo: %v", err)
	}
	if p.FriendlyName != "Synth" {
		t.Errorf("FriendlyName: got %q, want Synth", p.FriendlyName)
	}

	s, err := b.SchematicInfo()
	if err != nil || s == nil || s.Name != "Main" {
		t.Errorf("SchematicInfo: got %+v err=%v", s, err)
	}

	pcb, err := b.PCBInfo()
	if err != nil || pcb != nil {
		t.Errorf("PCBInfo: expected absent, got %+v err=%v", pcb, err)
	}

	n, err := b.Primitives(PrimitiveWire)
	if err != nil || n != 30 {
		t.Errorf("Primitives(Wire): got %d err=%v, want 30", n, err)
	}
	if _, err := b.Primitives(PrimitiveBus); !errors.Is(err, ErrPrimitiveUnavailable) {
		t.Errorf("Primitives(Bus): got %v, want ErrPrimitiveUnavailable", err)
	}
}

func TestBridgeProjectAPIError(t *testing.T) {
	b := newTestBridge()
	b.handleState([]byte(`{"error": "getCurrentProjectInfo threw"}`))

	_, err := b.ProjectInfo()
	if !errors.Is(err, ErrProjectAPI) {
		t.Errorf("ProjectInfo: got %v, want ErrProjectAPI", err)
	}
}

func TestBridgeBadStateKeepsPrevious(t *testing.T) {
	b := newTestBridge()
	b.handleState([]byte(`{"project": {"friendlyName": "Keep"}}`))
	b.handleState([]byte(`not json`))

	p, err := b.ProjectInfo()
	if err != nil || p.FriendlyName != "Keep" {
		t.Errorf("expected previous state kept, got %+v err=%v", p, err)
	}
}

func TestBridgeEventFiresHandlers(t *testing.T) {
	b := newTestBridge()
	var a, c int
	b.OnInteraction(func() { a++ })
	b.OnInteraction(func() { c++ })

	b.handleEvent()
	b.handleEvent()

	if a != 2 || c != 2 {
		t.Errorf("handler calls: got %d and %d, want 2 and 2", a, c)
	}
}

func TestBridgeTopics(t *testing.T) {
	b := newTestBridge()
	if got := b.topic(TopicNotify); got != "easyeda/wakatime/notify" {
		t.Errorf("notify topic: got %q", got)
	}
	if b.IsConnected() {
		t.Error("bridge without client should not report connected")
	}
}

func TestBridgeQueuesWhileDisconnected(t *testing.T) {
	b := newTestBridge()

	if err := b.Notify("EasyEDA WakaTime", "API key missing"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := b.PublishStatus(StatusEvent{Payload: []byte(`{}`), Retained: true}); err != nil {
		t.Fatalf("PublishStatus: %v", err)
	}
	if got := b.Pending(); got != 2 {
		t.Fatalf("pending: got %d, want 2", got)
	}

	msgs := b.pending.drain()
	if msgs[0].topic != "easyeda/wakatime/notify" || msgs[0].retained {
		t.Errorf("first queued: got %+v", msgs[0])
	}
	if msgs[1].topic != "easyeda/wakatime/status" || !msgs[1].retained {
		t.Errorf("second queued: got %+v", msgs[1])
	}
}
