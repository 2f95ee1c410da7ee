package wakatime

import (
	"context"
	"sync"

	"github.com/tobycm/easyeda-wakatime/internal/credentials"
	"github.com/tobycm/easyeda-wakatime/internal/logic"
)

// SentBatch records one call to FakeSender.Send.
type SentBatch struct {
	Heartbeats  []logic.Heartbeat
	Credentials credentials.Credentials
}

// FakeSender records every batch and returns Outcome (Success by default).
type FakeSender struct {
	mu      sync.Mutex
	Outcome Outcome
	Batches []SentBatch
}

// Send implements Sender.
func (f *FakeSender) Send(_ context.Context, heartbeats []logic.Heartbeat, creds credentials.Credentials) Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]logic.Heartbeat, len(heartbeats))
	copy(cp, heartbeats)
	f.Batches = append(f.Batches, SentBatch{Heartbeats: cp, Credentials: creds})
	if f.Outcome.Kind == Success && f.Outcome.Status == 0 {
		return Outcome{Kind: Success, Status: 201}
	}
	return f.Outcome
}

// SetOutcome changes the scripted result for subsequent calls.
func (f *FakeSender) SetOutcome(o Outcome) {
	f.mu.Lock()
	f.Outcome = o
	f.mu.Unlock()
}

// Calls returns the number of Send calls made.
func (f *FakeSender) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Batches)
}

// Last returns the most recent batch.
func (f *FakeSender) Last() (SentBatch, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Batches) == 0 {
		return SentBatch{}, false
	}
	return f.Batches[len(f.Batches)-1], true
}

var (
	_ Sender = (*Client)(nil)
	_ Sender = (*FakeSender)(nil)
)
