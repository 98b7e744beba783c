package server

import (
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/blinker/internal/app"
	"github.com/ayusman/blinker/internal/capture"
	"github.com/ayusman/blinker/internal/clock"
	"github.com/ayusman/blinker/internal/detector"
	"github.com/ayusman/blinker/internal/store"
)

func litFrame() *capture.Frame {
	return capture.SyntheticFrame(100, 100, 20, capture.Spot{Rect: image.Rect(42, 68, 47, 70), Level: 230})
}

// newTestApp returns an opened, calibrated App whose camera replays frames after
// the calibration frame.
func newTestApp(t *testing.T, frames ...*capture.Frame) (*app.App, *clock.Mock) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cam := capture.NewMockCamera(append([]*capture.Frame{litFrame()}, frames...), false)
	clk := clock.NewMock(time.Date(2024, 3, 8, 20, 0, 0, 0, time.UTC))
	a, err := app.New(app.Config{
		Store:       s,
		Username:    "tester",
		Calibration: detector.CalibrationConfig{SampleTarget: 1, MaxAttempts: 1},
		Clock:       clk,
		NewCamera:   func(int) capture.Camera { return cam },
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	if err := a.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(a.Stop)

	clk.Advance(100 * time.Millisecond)
	if !a.Tick() {
		t.Fatal("calibration tick processed no frame")
	}
	return a, clk
}
