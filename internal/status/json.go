package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	State         string       `json:"state"`
	LastOutcome   string       `json:"last_outcome,omitempty"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	LastEvent     string       `json:"last_event,omitempty"`
	LastHeartbeat string       `json:"last_heartbeat,omitempty"`
	LastDelivery  string       `json:"last_delivery,omitempty"`
	Project       *ProjectJSON `json:"project,omitempty"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"tick_counts"`
	Config        ConfigJSON   `json:"config"`
}

// ProjectJSON is the context of the last heartbeat.
type ProjectJSON struct {
	Name   string `json:"name"`
	Editor string `json:"editor"`
	Entity string `json:"entity"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of tick counts.
type CountsJSON struct {
	Inactive      int `json:"inactive"`
	NoCredentials int `json:"no_credentials"`
	NoContext     int `json:"no_context"`
	Sent          int `json:"sent"`
	Failed        int `json:"failed"`
	Total         int `json:"total"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	IntervalMs   int64  `json:"interval_ms"`
	InactivityMs int64  `json:"inactivity_ms"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
	Journal      bool   `json:"journal"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	inner := StatusInner{
		State:         state,
		LastOutcome:   string(snap.LastOutcome),
		Ready:         snap.CredentialsSet,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		LastEvent:     formatTime(snap.LastEvent),
		LastHeartbeat: formatTime(snap.LastHeartbeat),
		LastDelivery:  snap.LastDelivery,
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Inactive:      snap.Counts.Inactive,
			NoCredentials: snap.Counts.NoCredentials,
			NoContext:     snap.Counts.NoContext,
			Sent:          snap.Counts.Sent,
			Failed:        snap.Counts.Failed,
			Total:         snap.Counts.Total(),
		},
		Config: ConfigJSON{
			IntervalMs:   snap.Config.IntervalMs,
			InactivityMs: snap.Config.InactivityMs,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
			Journal:      snap.Config.Journal,
		},
	}
	if snap.Project.FriendlyName != "" {
		inner.Project = &ProjectJSON{
			Name:   snap.Project.FriendlyName,
			Editor: string(snap.Project.EditorType),
			Entity: snap.Project.EntityName,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
