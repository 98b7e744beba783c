// Package config resolves Blinker's settings from built-in defaults, the TOML
// config file and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/blinker/internal/capture"
	"github.com/ayusman/blinker/internal/detector"
	"github.com/ayusman/blinker/internal/hit"
)

// Defaults not owned by another package.
const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultStreamFPS    = 15
	DefaultCueTimeoutMs = 3000
	DefaultCameraWidth  = 640
	DefaultCameraHeight = 480
	DefaultAltCameraID  = 1
	DefaultCueProgram   = "chime"
)

// Config is the fully resolved configuration.
type Config struct {
	Camera    CameraConfig
	Detection DetectionConfig
	Scoring   hit.Config
	Server    ServerConfig
	Cue       CueConfig
	UI        UIConfig
	DBPath    string

	// Explicit records which user-adjustable settings were given in the file or by a flag
	// rather than left at their defaults.
	Explicit Explicit
}

// Explicit flags settings the operator chose for this run.
type Explicit struct {
	ScoringMode bool
	FaceGuide   bool
	Window      bool
}

// CameraConfig selects and sizes the capture device. A negative Device runs the
// built-in demo clip instead of a camera.
type CameraConfig struct {
	Device    int
	AltDevice int
	FPS       int
	Width     int
	Height    int
}

// Demo reports whether the demo clip replaces the camera.
func (c CameraConfig) Demo() bool {
	return c.Device < 0
}

// DetectionConfig holds the search window and calibration budget.
type DetectionConfig struct {
	Window      detector.SearchWindow
	Stride      int
	Calibration detector.CalibrationConfig
}

// ServerConfig configures the local HTTP server. An empty Addr disables it.
type ServerConfig struct {
	Addr      string
	StaticDir string
	StreamFPS int
}

// CueConfig selects the audio cue program. An empty Program disables cues.
type CueConfig struct {
	Dir       string
	Program   string
	TimeoutMs int
}

// UIConfig holds presentation options.
type UIConfig struct {
	Username  string
	FaceGuide bool
	Tray      bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			Device:    0,
			AltDevice: DefaultAltCameraID,
			FPS:       capture.DefaultFPS,
			Width:     DefaultCameraWidth,
			Height:    DefaultCameraHeight,
		},
		Detection: DetectionConfig{
			Window:      detector.DefaultWindow(),
			Stride:      detector.LiveStride,
			Calibration: detector.DefaultCalibrationConfig(),
		},
		Scoring: hit.DefaultConfig(),
		Server: ServerConfig{
			Addr:      DefaultAddr,
			StreamFPS: DefaultStreamFPS,
		},
		Cue: CueConfig{
			Dir:       DefaultCueDir(),
			Program:   DefaultCueProgram,
			TimeoutMs: DefaultCueTimeoutMs,
		},
		UI: UIConfig{
			Tray: true,
		},
		DBPath: DefaultDBPath(),
	}
}

// Load returns the defaults overlaid with the file at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	fc, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	cfg.Apply(fc)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Apply overlays every key set in fc.
func (c *Config) Apply(fc FileConfig) {
	setInt(&c.Camera.Device, fc.Camera.Device)
	setInt(&c.Camera.AltDevice, fc.Camera.AltDevice)
	setInt(&c.Camera.FPS, fc.Camera.FPS)
	setInt(&c.Camera.Width, fc.Camera.Width)
	setInt(&c.Camera.Height, fc.Camera.Height)

	d := fc.Detection
	if d.WindowStartX != nil || d.WindowEndX != nil || d.WindowStartY != nil || d.WindowEndY != nil {
		c.Explicit.Window = true
	}
	setFloat(&c.Detection.Window.StartX, fc.Detection.WindowStartX)
	setFloat(&c.Detection.Window.EndX, fc.Detection.WindowEndX)
	setFloat(&c.Detection.Window.StartY, fc.Detection.WindowStartY)
	setFloat(&c.Detection.Window.EndY, fc.Detection.WindowEndY)
	setInt(&c.Detection.Stride, fc.Detection.Stride)
	setInt(&c.Detection.Calibration.SampleTarget, fc.Detection.CalibrationSamples)
	setInt(&c.Detection.Calibration.MaxAttempts, fc.Detection.CalibrationMax)

	if fc.Scoring.Mode != nil {
		c.Explicit.ScoringMode = true
		c.Scoring.Mode = hit.Mode(strings.ToLower(strings.TrimSpace(*fc.Scoring.Mode)))
	}
	setFloat(&c.Scoring.MinHitSeconds, fc.Scoring.MinHitSeconds)
	setFloat(&c.Scoring.MaxHitSeconds, fc.Scoring.MaxHitSeconds)

	setString(&c.Server.Addr, fc.Server.Addr)
	setString(&c.Server.StaticDir, fc.Server.StaticDir)
	setInt(&c.Server.StreamFPS, fc.Server.StreamFPS)

	setString(&c.Cue.Dir, fc.Cue.Dir)
	setString(&c.Cue.Program, fc.Cue.Program)
	setInt(&c.Cue.TimeoutMs, fc.Cue.TimeoutMs)

	setString(&c.UI.Username, fc.UI.Username)
	if fc.UI.FaceGuide != nil {
		c.Explicit.FaceGuide = true
	}
	setBool(&c.UI.FaceGuide, fc.UI.FaceGuide)
	setBool(&c.UI.Tray, fc.UI.Tray)

	setString(&c.DBPath, fc.Store.Path)
}

// Validate reports every invalid value at once.
func (c Config) Validate() error {
	var errs []error

	if c.Camera.FPS <= 0 || c.Camera.FPS > 120 {
		errs = append(errs, fmt.Errorf("camera.fps must be in 1-120, got %d", c.Camera.FPS))
	}
	if c.Camera.Width < 0 || c.Camera.Height < 0 {
		errs = append(errs, fmt.Errorf("camera size must not be negative, got %dx%d", c.Camera.Width, c.Camera.Height))
	}
	if err := c.Detection.Window.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detection window: %w", err))
	}
	if c.Detection.Stride <= 0 {
		errs = append(errs, fmt.Errorf("detection.stride must be positive, got %d", c.Detection.Stride))
	}
	if c.Detection.Calibration.SampleTarget <= 0 {
		errs = append(errs, fmt.Errorf("detection.calibration_samples must be positive, got %d", c.Detection.Calibration.SampleTarget))
	}
	if c.Detection.Calibration.MaxAttempts < c.Detection.Calibration.SampleTarget {
		errs = append(errs, fmt.Errorf("detection.calibration_max_attempts %d below calibration_samples %d",
			c.Detection.Calibration.MaxAttempts, c.Detection.Calibration.SampleTarget))
	}
	if _, err := hit.NewPolicy(c.Scoring); err != nil {
		errs = append(errs, fmt.Errorf("scoring: %w", err))
	}
	if c.Server.StreamFPS <= 0 {
		errs = append(errs, fmt.Errorf("server.stream_fps must be positive, got %d", c.Server.StreamFPS))
	}
	if c.Cue.TimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("cue.timeout_ms must be positive, got %d", c.Cue.TimeoutMs))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("store path is empty"))
	}

	return errors.Join(errs...)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
