package config

// DefaultTemplate returns a commented config file listing every key with its default.
func DefaultTemplate() string {
	return `# Blinker configuration. Uncomment a key to override its default.

[camera]
# device = 0          # negative runs the demo clip
# alt_device = 1      # used by "switch camera"
# fps = 30
# width = 640
# height = 480

[detection]
# window_start_x = 0.3
# window_end_x = 0.7
# window_start_y = 0.6
# window_end_y = 0.9
# stride = 2
# calibration_samples = 30
# calibration_max_attempts = 300

[scoring]
# mode = "tiered"     # or "classic"
# min_hit_seconds = 1.0
# max_hit_seconds = 30.0

[server]
# addr = "127.0.0.1:8080"   # empty disables the dashboard
# static_dir = ""
# stream_fps = 15

[cue]
# dir = ""            # defaults to $XDG_DATA_HOME/blinker/cues
# program = "chime"   # empty disables audio cues
# timeout_ms = 3000

[ui]
# username = ""
# face_guide = false
# tray = true

[store]
# path = ""           # defaults to $XDG_DATA_HOME/blinker/blinker.db
`
}
