package api

import (
	"bytes"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/blinker/internal/app"
	"github.com/ayusman/blinker/internal/capture"
	"github.com/ayusman/blinker/internal/clock"
	"github.com/ayusman/blinker/internal/detector"
	"github.com/ayusman/blinker/internal/store"
)

var testEpoch = time.Date(2024, 3, 8, 20, 0, 0, 0, time.UTC)

type testApp struct {
	*app.App
	store  *store.Store
	camera *capture.MockCamera
	clock  *clock.Mock
}

// newTestApp creates an App over a temporary store whose camera plays frames once.
func newTestApp(t *testing.T, frames []*capture.Frame) *testApp {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cam := capture.NewMockCamera(frames, false)
	clk := clock.NewMock(testEpoch)
	a, err := app.New(app.Config{
		Store:       s,
		Username:    "tester",
		AltCameraID: 1,
		Calibration: detector.CalibrationConfig{SampleTarget: 1, MaxAttempts: 1},
		Clock:       clk,
		NewCamera:   func(int) capture.Camera { return cam },
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	return &testApp{App: a, store: s, camera: cam, clock: clk}
}

// playHit runs a calibrated session with one lit run of n frames at 100ms per frame.
func (a *testApp) playHit(t *testing.T, n int) {
	t.Helper()
	lit := capture.SyntheticFrame(100, 100, 20, capture.Spot{Rect: image.Rect(42, 68, 47, 70), Level: 230})
	dark := capture.SyntheticFrame(100, 100, 20)

	frames := []*capture.Frame{lit}
	frames = append(frames, capture.Repeat(lit, n)...)
	frames = append(frames, dark)
	a.camera.SetFrames(frames)

	if err := a.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	for range frames {
		a.clock.Advance(100 * time.Millisecond)
		a.Tick()
	}
}

func do(t *testing.T, h http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}
