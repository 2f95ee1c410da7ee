// Package store provides the key-value configuration store that holds
// credentials, the fallback project name, and per-editor previous counts.
package store

import "github.com/tobycm/easyeda-wakatime/internal/logic"

// Well-known keys.
const (
	KeyAPIURL        = "apiURL"
	KeyAPIKey        = "apiKey"
	KeyProjectName   = "projectName"
	KeyLastEventTime = "lastPcbEventTime"
)

// Store reads and writes string values by key.
type Store interface {
	// Get returns the value for key. ok=false means the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// PreviousLinesKey returns the key holding the previous content count for an editor type.
func PreviousLinesKey(editor logic.EditorType) string {
	return "previousLines:" + string(editor)
}
