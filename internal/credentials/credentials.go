// Package credentials reads the WakaTime endpoint and API key from the store.
package credentials

import (
	"log"
	"strings"

	"github.com/tobycm/easyeda-wakatime/internal/store"
)

// Title is shown on every user-facing notice.
const Title = "EasyEDA Wakatime"

// MissingMessage is shown when either credential is absent.
const MissingMessage = "Please set your Wakatime API URL and API Key in the settings. " +
	"You can do this with easyeda-wakatime -set-api-url and -set-api-key. " +
	"After you do that, please enable EasyEDA Wakatime again."

// Notifier shows a message to the user.
type Notifier interface {
	Notify(title, body string) error
}

// Credentials are the two secrets required to talk to the API.
type Credentials struct {
	APIURL string
	APIKey string
}

// Load reads both credentials. Returns ok=false if either is absent, empty or
// unreadable. Never prompts; callers decide whether to notify.
func Load(s store.Store) (Credentials, bool) {
	url, ok := get(s, store.KeyAPIURL)
	if !ok {
		return Credentials{}, false
	}
	key, ok := get(s, store.KeyAPIKey)
	if !ok {
		return Credentials{}, false
	}
	return Credentials{
		APIURL: strings.TrimRight(url, "/"),
		APIKey: key,
	}, true
}

// Check is Load for activation entry points: when credentials are missing it
// shows a single notice through n.
func Check(s store.Store, n Notifier) (Credentials, bool) {
	creds, ok := Load(s)
	if ok {
		return creds, true
	}
	if n != nil {
		if err := n.Notify(Title, MissingMessage); err != nil {
			log.Printf("credentials: notify failed: %v", err)
		}
	}
	return Credentials{}, false
}

// Save writes whichever fields of c are non-empty.
func Save(s store.Store, c Credentials) error {
	if c.APIURL != "" {
		if err := s.Set(store.KeyAPIURL, strings.TrimRight(c.APIURL, "/")); err != nil {
			return err
		}
	}
	if c.APIKey != "" {
		if err := s.Set(store.KeyAPIKey, c.APIKey); err != nil {
			return err
		}
	}
	return nil
}

func get(s store.Store, key string) (string, bool) {
	v, ok, err := s.Get(key)
	if err != nil {
		log.Printf("credentials: read %s: %v", key, err)
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
