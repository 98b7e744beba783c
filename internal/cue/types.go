// Package cue plays audio cues for hit events through external cue programs.
//
// A cue program is an executable in its own directory next to a cue.json
// manifest. It receives a JSON Request on stdin and answers with a JSON
// Response on stdout.
package cue

import "encoding/json"

// Event identifies what triggered a cue.
type Event string

const (
	// EventHitStarted fires on the rising edge of a hit.
	EventHitStarted Event = "hit_started"
	// EventBlinker fires when a hit is scored in the blinker tier.
	EventBlinker Event = "blinker"
)

// Manifest describes a cue program's metadata and the events it handles.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []Event         `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Handles reports whether the manifest lists e. An empty list handles every event.
func (m Manifest) Handles(e Event) bool {
	if len(m.Events) == 0 {
		return true
	}
	for _, ev := range m.Events {
		if ev == e {
			return true
		}
	}
	return false
}

// Request is sent to a cue program on stdin.
type Request struct {
	Event  Event           `json:"event"`
	Config json.RawMessage `json:"config,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is read from a cue program's stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Program is a discovered cue program with its manifest and location.
type Program struct {
	Manifest   Manifest
	Path       string
	Executable string
}
