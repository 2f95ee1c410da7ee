// Package status provides a thread-safe status tracker for the easyeda-wakatime daemon.
// It is read by the HTTP handlers and the MQTT status publisher.
package status

import (
	"sync"
	"time"

	"github.com/tobycm/easyeda-wakatime/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	IntervalMs   int64
	InactivityMs int64
	Broker       string
	HTTPAddr     string
	Journal      bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State          logic.State
	LastOutcome    logic.TickOutcome
	Counts         logic.TickCounts
	LastEvent      time.Time // zero = no interaction seen
	LastHeartbeat  time.Time // zero = nothing sent yet
	LastDelivery   string
	Project        logic.ProjectContext
	CredentialsSet bool
	StartTime      time.Time
	Now            time.Time
	MQTTConnected  bool
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     logic.StateIdle,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetState records the scheduler's current state.
func (t *Tracker) SetState(s logic.State) {
	t.mu.Lock()
	t.snap.State = s
	t.mu.Unlock()
}

// RecordTick counts a finished tick and returns the scheduler to IDLE.
func (t *Tracker) RecordTick(outcome logic.TickOutcome) {
	t.mu.Lock()
	t.snap.Counts.Record(outcome)
	t.snap.LastOutcome = outcome
	t.snap.State = logic.StateIdle
	t.mu.Unlock()
}

// SetLastEvent records the time of the latest user interaction.
func (t *Tracker) SetLastEvent(at time.Time) {
	t.mu.Lock()
	t.snap.LastEvent = at
	t.mu.Unlock()
}

// SetHeartbeat records a delivery attempt for ctx and its result.
func (t *Tracker) SetHeartbeat(at time.Time, ctx logic.ProjectContext, delivery string) {
	t.mu.Lock()
	t.snap.LastHeartbeat = at
	t.snap.Project = ctx
	t.snap.LastDelivery = delivery
	t.mu.Unlock()
}

// SetCredentials records whether both credentials are configured.
func (t *Tracker) SetCredentials(set bool) {
	t.mu.Lock()
	t.snap.CredentialsSet = set
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
