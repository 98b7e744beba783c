// Package main provides the chime cue program.
// It plays a short system sound for hit events using the platform's audio player.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Request represents the input from the cue executor.
type Request struct {
	Event  string          `json:"event"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the cue executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Config selects the sound file per event. Missing entries use the platform default.
type Config struct {
	Sounds map[string]string `json:"sounds"`
}

// defaultSounds maps GOOS to event sounds shipped with the OS.
var defaultSounds = map[string]map[string]string{
	"darwin": {
		"hit_started": "/System/Library/Sounds/Tink.aiff",
		"blinker":     "/System/Library/Sounds/Glass.aiff",
	},
	"linux": {
		"hit_started": "/usr/share/sounds/freedesktop/stereo/message.oga",
		"blinker":     "/usr/share/sounds/freedesktop/stereo/complete.oga",
	},
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to parse config: %v", err))
			return
		}
	}

	sound := cfg.Sounds[req.Event]
	if sound == "" {
		sound = defaultSounds[runtime.GOOS][req.Event]
	}
	if sound == "" {
		writeErrorResponse(fmt.Sprintf("no sound for event %q on %s", req.Event, runtime.GOOS))
		return
	}

	if err := play(sound); err != nil {
		writeErrorResponse(fmt.Sprintf("event %s failed: %v", req.Event, err))
		return
	}

	writeSuccessResponse()
}

// play runs the platform audio player on path and waits for it to finish.
func play(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("afplay", path)
	case "linux":
		cmd = exec.Command("paplay", path)
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
