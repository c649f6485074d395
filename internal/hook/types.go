// Package hook runs external programs when the carousel is navigated, so a
// turntable controller, lighting script or player can follow along.
package hook

import "encoding/json"

// Manifest describes a hook's metadata and which commands it reacts to.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Executable  string `json:"executable"`
	// Commands lists the navigation commands the hook wants; empty means all.
	Commands []string        `json:"commands"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// Wants reports whether the hook subscribes to command.
func (m Manifest) Wants(command string) bool {
	if len(m.Commands) == 0 {
		return true
	}
	for _, c := range m.Commands {
		if c == command {
			return true
		}
	}
	return false
}

// Event is written as JSON to the hook's stdin.
type Event struct {
	Command  string          `json:"command"`
	Source   string          `json:"source"`
	Selected int             `json:"selected"`
	Total    int             `json:"total"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// Response is the JSON a hook prints on stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}
