package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Pointer fields distinguish
// unset keys, which keep their defaults, from explicit zero values.
type FileConfig struct {
	Camera    CameraFile    `toml:"camera"`
	Detection DetectionFile `toml:"detection"`
	Scoring   ScoringFile   `toml:"scoring"`
	Server    ServerFile    `toml:"server"`
	Cue       CueFile       `toml:"cue"`
	UI        UIFile        `toml:"ui"`
	Store     StoreFile     `toml:"store"`
}

// CameraFile maps the [camera] section.
type CameraFile struct {
	Device    *int `toml:"device"`
	AltDevice *int `toml:"alt_device"`
	FPS       *int `toml:"fps"`
	Width     *int `toml:"width"`
	Height    *int `toml:"height"`
}

// DetectionFile maps the [detection] section.
type DetectionFile struct {
	WindowStartX       *float64 `toml:"window_start_x"`
	WindowEndX         *float64 `toml:"window_end_x"`
	WindowStartY       *float64 `toml:"window_start_y"`
	WindowEndY         *float64 `toml:"window_end_y"`
	Stride             *int     `toml:"stride"`
	CalibrationSamples *int     `toml:"calibration_samples"`
	CalibrationMax     *int     `toml:"calibration_max_attempts"`
}

// ScoringFile maps the [scoring] section.
type ScoringFile struct {
	Mode          *string  `toml:"mode"`
	MinHitSeconds *float64 `toml:"min_hit_seconds"`
	MaxHitSeconds *float64 `toml:"max_hit_seconds"`
}

// ServerFile maps the [server] section.
type ServerFile struct {
	Addr      *string `toml:"addr"`
	StaticDir *string `toml:"static_dir"`
	StreamFPS *int    `toml:"stream_fps"`
}

// CueFile maps the [cue] section.
type CueFile struct {
	Dir       *string `toml:"dir"`
	Program   *string `toml:"program"`
	TimeoutMs *int    `toml:"timeout_ms"`
}

// UIFile maps the [ui] section.
type UIFile struct {
	Username  *string `toml:"username"`
	FaceGuide *bool   `toml:"face_guide"`
	Tray      *bool   `toml:"tray"`
}

// StoreFile maps the [store] section.
type StoreFile struct {
	Path *string `toml:"path"`
}

// LoadFile reads a TOML config from the given path. Missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
