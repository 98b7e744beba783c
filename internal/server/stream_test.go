package server

import (
	"bytes"
	"context"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/blinker/internal/app"
	"github.com/ayusman/blinker/internal/capture"
	"github.com/ayusman/blinker/internal/detector"
)

type staticSource struct {
	frame *capture.Frame
	state app.OverlayState
}

func (s staticSource) LatestFrame() *capture.Frame { return s.frame }
func (s staticSource) Overlay() app.OverlayState   { return s.state }

func TestEncodeFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV test in short mode")
	}

	fg := detector.FaceGuideWindow()
	st := app.OverlayState{
		Message:   app.MessageLEDDetected,
		Window:    detector.DefaultWindow(),
		FaceGuide: &fg,
		Tracking:  true,
	}
	st.Detection.Detected = true
	st.Detection.Position.X, st.Detection.Position.Y = 42, 68

	jpg, err := EncodeFrame(litFrame(), st)
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(jpg))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("bounds = %v, want 100x100", b)
	}
}

func TestEncodeFrame_Empty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV test in short mode")
	}
	if _, err := EncodeFrame(&capture.Frame{}, app.OverlayState{}); err == nil {
		t.Error("expected error for empty frame")
	}
}

func TestStreamHandler(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV test in short mode")
	}

	h := NewStreamHandler(staticSource{frame: litFrame(), state: app.OverlayState{Window: detector.DefaultWindow()}}, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("Content-Type = %s", ct)
	}
	// The same frame pointer is only sent once.
	if n := strings.Count(rec.Body.String(), "--frame\r\n"); n != 1 {
		t.Errorf("frames = %d, want 1", n)
	}
}

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	h := NewStreamHandler(staticSource{}, 0)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stream", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
