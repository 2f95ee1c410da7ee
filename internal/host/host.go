// Package host abstracts the editor the user works in.
// The real implementation talks to the EasyEDA extension over MQTT.
// The fake implementation allows testing without an editor.
package host

import "errors"

// Errors returned by Host implementations.
var (
	// ErrNoState is returned before the editor has reported any state.
	ErrNoState = errors.New("host: no editor state received")

	// ErrProjectAPI is returned when the editor reported its project API failing.
	ErrProjectAPI = errors.New("host: project API failed")

	// ErrPrimitiveUnavailable is returned when a primitive category cannot be enumerated.
	ErrPrimitiveUnavailable = errors.New("host: primitive category unavailable")
)

// PrimitiveKind is a category of structural element on an editor surface.
type PrimitiveKind string

const (
	PrimitiveComponent PrimitiveKind = "Component"
	PrimitiveWire      PrimitiveKind = "Wire"
	PrimitiveText      PrimitiveKind = "Text"
	PrimitiveBus       PrimitiveKind = "Bus"
	PrimitivePin       PrimitiveKind = "Pin"
	PrimitiveLine      PrimitiveKind = "Line"
	PrimitiveArc       PrimitiveKind = "Arc"
	PrimitiveVia       PrimitiveKind = "Via"
	PrimitivePad       PrimitiveKind = "Pad"
)

// ProjectInfo identifies the open project.
type ProjectInfo struct {
	FriendlyName string `json:"friendlyName"`
	UUID         string `json:"uuid,omitempty"`
}

// DocumentInfo identifies an open schematic or board.
type DocumentInfo struct {
	Name string `json:"name"`
	UUID string `json:"uuid,omitempty"`
}

// Host is the set of editor capabilities the daemon consumes.
// Every query is independently fallible; a nil result with a nil error means
// the editor answered but has nothing open of that kind.
type Host interface {
	// ProjectInfo returns the currently open project.
	ProjectInfo() (*ProjectInfo, error)

	// SchematicInfo returns the schematic open in the active tab, if any.
	SchematicInfo() (*DocumentInfo, error)

	// PCBInfo returns the board open in the active tab, if any.
	PCBInfo() (*DocumentInfo, error)

	// Primitives returns how many primitives of kind exist on the active surface.
	Primitives(kind PrimitiveKind) (int, error)

	// Notify shows an informational message to the user.
	Notify(title, body string) error

	// OnInteraction registers fn to be called on every user interaction.
	// fn may be called from any goroutine.
	OnInteraction(fn func()) error
}

// StatusEvent is a daemon lifecycle or status message (STARTUP, HEARTBEAT, SHUTDOWN).
type StatusEvent struct {
	Event    string
	Payload  []byte // Pre-formatted JSON
	Retained bool   // Whether the message should be retained by the broker
}

// StatusPublisher publishes daemon status where the editor extension can read it.
type StatusPublisher interface {
	PublishStatus(event StatusEvent) error
}

// ConnectionStatus reports whether the link to the editor is up.
type ConnectionStatus interface {
	IsConnected() bool
}
