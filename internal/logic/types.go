// Package logic contains pure business logic for heartbeat scheduling.
// This package has NO external dependencies (no MQTT, HTTP, storage, or time.Sleep).
// Time is always injectable via time.Time and time.Duration parameters.
package logic

// EditorType is the category of document currently open in the host editor.
type EditorType string

const (
	EditorSchematic EditorType = "Schematic"
	EditorPCB       EditorType = "PCB"
	EditorProject   EditorType = "Project"
	EditorUnknown   EditorType = "Unknown"
)

// Tracked reports whether heartbeats for this editor type carry a content metric.
func (e EditorType) Tracked() bool {
	switch e {
	case EditorSchematic, EditorPCB, EditorProject:
		return true
	}
	return false
}

// TrackedEditors lists every editor type that owns a previous-count record.
var TrackedEditors = []EditorType{EditorSchematic, EditorPCB, EditorProject}

// ProjectContext describes what the user is working on at the moment of a tick.
// It is built fresh for every heartbeat attempt and never mutated.
type ProjectContext struct {
	FriendlyName string     `json:"friendlyName"`
	EditorType   EditorType `json:"editorType"`
	EntityName   string     `json:"entity"`
}

// ContentMetric is a count of structural primitives standing in for
// "lines of code" on the current editor surface.
type ContentMetric struct {
	Count         int
	PredictedType EditorType
}

// LineDelta is the change in content count between two ticks.
type LineDelta struct {
	Additions int
	Deletions int
}

// Heartbeat is the wire record sent to the time-tracking backend.
// Field names are fixed by the remote API.
type Heartbeat struct {
	Category        string  `json:"category"`
	Entity          string  `json:"entity"`
	Type            string  `json:"type"`
	Language        string  `json:"language"`
	Project         string  `json:"project"`
	Time            float64 `json:"time"`
	UserAgent       string  `json:"user_agent"`
	Editor          string  `json:"editor"`
	OperatingSystem string  `json:"operating_system"`
	Lines           *int    `json:"lines,omitempty"`
	LineAdditions   *int    `json:"line_additions,omitempty"`
	LineDeletions   *int    `json:"line_deletions,omitempty"`
}

// SetLines attaches an absolute count and its delta to the heartbeat.
func (h *Heartbeat) SetLines(count int, delta LineDelta) {
	lines, add, del := count, delta.Additions, delta.Deletions
	h.Lines = &lines
	h.LineAdditions = &add
	h.LineDeletions = &del
}

// State is the scheduler's position in its tick cycle.
type State string

const (
	StateIdle      State = "IDLE"
	StateChecking  State = "CHECKING"
	StateReporting State = "REPORTING"
)

// TickOutcome is how a single tick ended.
type TickOutcome string

const (
	TickInactive      TickOutcome = "INACTIVE"
	TickNoCredentials TickOutcome = "NO_CREDENTIALS"
	TickNoContext     TickOutcome = "NO_CONTEXT"
	TickSent          TickOutcome = "SENT"
	TickFailed        TickOutcome = "FAILED"
)

// TickCounts tracks the number of each tick outcome since startup.
type TickCounts struct {
	Inactive      int
	NoCredentials int
	NoContext     int
	Sent          int
	Failed        int
}

// Total returns the number of ticks counted.
func (c TickCounts) Total() int {
	return c.Inactive + c.NoCredentials + c.NoContext + c.Sent + c.Failed
}

// Record increments the counter for outcome.
func (c *TickCounts) Record(outcome TickOutcome) {
	switch outcome {
	case TickInactive:
		c.Inactive++
	case TickNoCredentials:
		c.NoCredentials++
	case TickNoContext:
		c.NoContext++
	case TickSent:
		c.Sent++
	case TickFailed:
		c.Failed++
	}
}
