// Package journal mirrors every delivery attempt into a search index for
// later inspection. It is optional; failures never affect delivery.
package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/tobycm/easyeda-wakatime/internal/logic"
)

// DefaultIndex is used when no index name is configured.
const DefaultIndex = "easyeda-heartbeats"

// Journal records heartbeats together with the delivery outcome.
type Journal interface {
	Record(ctx context.Context, heartbeats []logic.Heartbeat, outcome string) error
}

// Document is one indexed heartbeat.
type Document struct {
	logic.Heartbeat
	Outcome    string `json:"outcome"`
	RecordedAt string `json:"recorded_at"`
}

// Elastic writes documents to Elasticsearch.
type Elastic struct {
	client *elasticsearch.Client
	index  string
	now    func() time.Time
}

// NewElastic connects to the given addresses. No request is made until the
// first Record.
func NewElastic(addresses []string, index string) (*Elastic, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	if index == "" {
		index = DefaultIndex
	}
	return &Elastic{client: es, index: index, now: time.Now}, nil
}

// Record indexes one document per heartbeat.
func (e *Elastic) Record(ctx context.Context, heartbeats []logic.Heartbeat, outcome string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	recorded := e.now().UTC().Format(time.RFC3339)
	for _, hb := range heartbeats {
		data, err := json.Marshal(Document{Heartbeat: hb, Outcome: outcome, RecordedAt: recorded})
		if err != nil {
			return err
		}

		res, err := e.client.Index(
			e.index,
			bytes.NewReader(data),
			e.client.Index.WithContext(ctx),
		)
		if err != nil {
			return fmt.Errorf("indexing to %s: %w", e.index, err)
		}
		res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("indexing to %s: %s", e.index, res.Status())
		}
	}
	return nil
}

// Nop discards everything.
type Nop struct{}

// Record implements Journal.
func (Nop) Record(context.Context, []logic.Heartbeat, string) error { return nil }

// Entry is one Record call captured by Memory.
type Entry struct {
	Heartbeats []logic.Heartbeat
	Outcome    string
}

// Memory keeps records in process. Err, if set, is returned from Record.
type Memory struct {
	mu      sync.Mutex
	Entries []Entry
	Err     error
}

// Record implements Journal.
func (m *Memory) Record(_ context.Context, heartbeats []logic.Heartbeat, outcome string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, Entry{Heartbeats: heartbeats, Outcome: outcome})
	return nil
}

// Len returns the number of recorded entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries)
}

var (
	_ Journal = (*Elastic)(nil)
	_ Journal = Nop{}
	_ Journal = (*Memory)(nil)
)
