package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/ayusman/blinker/internal/app"
	"github.com/ayusman/blinker/internal/capture"
	"github.com/ayusman/blinker/internal/config"
	"github.com/ayusman/blinker/internal/cue"
	"github.com/ayusman/blinker/internal/detector"
	"github.com/ayusman/blinker/internal/observe"
	"github.com/ayusman/blinker/internal/store"
)

// demoHitSeconds is how long the LED stays lit in the demo clip.
const demoHitSeconds = 12.5

func openStore(cfg config.Config) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

// cameraFactory returns a constructor that opens real devices and serves the demo
// clip for negative IDs. The demo opens with enough lit frames to finish calibration.
func cameraFactory(cfg config.Config) func(int) capture.Camera {
	cam := cfg.Camera
	return func(id int) capture.Camera {
		if id < 0 {
			w, h := cam.Width, cam.Height
			if w <= 0 || h <= 0 {
				w, h = config.DefaultCameraWidth, config.DefaultCameraHeight
			}
			mock := capture.NewMockCamera(capture.DemoSequence(w, h, cam.FPS, demoHitSeconds), true)
			mock.SetIntro(capture.DemoIntro(w, h, cfg.Detection.Calibration.SampleTarget))
			return mock
		}
		return capture.NewCameraWithSize(id, cam.Width, cam.Height)
	}
}

func appConfig(cfg config.Config, st *store.Store, m *observe.Metrics) app.Config {
	return app.Config{
		Store:       st,
		Username:    cfg.UI.Username,
		CameraID:    cfg.Camera.Device,
		AltCameraID: cfg.Camera.AltDevice,
		FPS:         cfg.Camera.FPS,
		Detection: detector.Config{
			Window: cfg.Detection.Window,
			Stride: cfg.Detection.Stride,
		},
		Calibration: cfg.Detection.Calibration,
		Scoring:     cfg.Scoring,
		FaceGuide:   cfg.UI.FaceGuide,
		Pinned: app.Pinned{
			ScoringMode: cfg.Explicit.ScoringMode,
			FaceGuide:   cfg.Explicit.FaceGuide,
			Window:      cfg.Explicit.Window,
		},
		NewCamera: cameraFactory(cfg),
		Cue:       cue.NewPlayer(cfg.Cue.Dir, cfg.Cue.Program, cfg.Cue.TimeoutMs),
		Metrics:   m,
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
