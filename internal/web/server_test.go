package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tobycm/easyeda-wakatime/internal/logic"
	"github.com/tobycm/easyeda-wakatime/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker, *Server) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		IntervalMs:   15000,
		InactivityMs: 30000,
		Broker:       "tcp://192.168.1.200:1883",
		HTTPAddr:     "127.0.0.1:8765",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr, srv
}

func getStatus(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.RecordTick(logic.TickSent)
	tr.RecordTick(logic.TickInactive)
	tr.SetMQTTConnected(true)
	tr.SetCredentials(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	sj := getStatus(t, ts.URL)

	if sj.Status.State != "IDLE" {
		t.Errorf("State: got %q, want IDLE", sj.Status.State)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Sent != 1 || sj.Status.Counts.Inactive != 1 {
		t.Errorf("Counts: got %+v", sj.Status.Counts)
	}
	if sj.Status.Config.IntervalMs != 15000 {
		t.Errorf("Config.IntervalMs: got %d, want 15000", sj.Status.Config.IntervalMs)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.SetHeartbeat(time.Now(), logic.ProjectContext{FriendlyName: "Synth", EditorType: logic.EditorPCB, EntityName: "Board"}, "sent (201)")

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "Synth") {
		t.Error("page should show the project name")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr, _ := newTestServer(t)

	if sj := getStatus(t, ts.URL); sj.Status.Ready {
		t.Error("expected Ready=false initially")
	}

	tr.SetCredentials(true)
	tr.RecordTick(logic.TickFailed)

	sj := getStatus(t, ts.URL)
	if !sj.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if sj.Status.LastOutcome != "FAILED" {
		t.Errorf("LastOutcome: got %q, want FAILED", sj.Status.LastOutcome)
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readStatus(t *testing.T, conn *websocket.Conn) status.StatusJSON {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var sj status.StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return sj
}

func TestWebsocketInitialAndPublish(t *testing.T) {
	ts, tr, srv := newTestServer(t)
	conn := dialWS(t, ts)

	first := readStatus(t, conn)
	if first.Status.Counts.Total != 0 {
		t.Errorf("initial Total: got %d, want 0", first.Status.Counts.Total)
	}
	if srv.Clients() != 1 {
		t.Errorf("Clients: got %d, want 1", srv.Clients())
	}

	tr.RecordTick(logic.TickSent)
	srv.Publish()

	next := readStatus(t, conn)
	if next.Status.Counts.Sent != 1 {
		t.Errorf("published Sent: got %d, want 1", next.Status.Counts.Sent)
	}
}

func TestWebsocketDisconnectRemovesClient(t *testing.T) {
	ts, _, srv := newTestServer(t)
	conn := dialWS(t, ts)
	readStatus(t, conn)

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Clients() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Clients() != 0 {
		t.Errorf("Clients after disconnect: got %d, want 0", srv.Clients())
	}
}

func TestPublishWithoutClients(t *testing.T) {
	_, tr, srv := newTestServer(t)
	tr.RecordTick(logic.TickInactive)
	srv.Publish()
}

func TestStalledClientIsDropped(t *testing.T) {
	ts, _, srv := newTestServer(t)
	dialWS(t, ts) // never read from

	deadline := time.Now().Add(2 * time.Second)
	for srv.Clients() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	payload := []byte(strings.Repeat("x", 1<<20))
	for i := 0; i < 64 && srv.Clients() > 0; i++ {
		done := make(chan struct{})
		go func() {
			srv.hub.Broadcast(payload)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(writeWait + 3*time.Second):
			t.Fatalf("broadcast %d blocked on a client that does not read", i)
		}
	}
	if srv.Clients() != 0 {
		t.Fatalf("Clients: got %d, want 0 after stalled writes", srv.Clients())
	}

	done := make(chan struct{})
	go func() {
		srv.Publish()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked after the stalled client was dropped")
	}
}
