package server

import (
	"fmt"
	"image"
	"image/color"
	"net/http"
	"time"

	"github.com/ayusman/blinker/internal/app"
	"github.com/ayusman/blinker/internal/capture"
	"github.com/ayusman/blinker/internal/detector"
	"gocv.io/x/gocv"
)

// DefaultStreamFPS is the preview rate when none is configured.
const DefaultStreamFPS = 15

var (
	windowColor = color.RGBA{G: 255, A: 255}
	guideColor  = color.RGBA{R: 80, G: 160, B: 255, A: 255}
	markerColor = color.RGBA{R: 255, A: 255}
	textColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// FrameSource provides the latest captured frame and its overlay state.
type FrameSource interface {
	LatestFrame() *capture.Frame
	Overlay() app.OverlayState
}

// StreamHandler serves the annotated preview as MJPEG.
type StreamHandler struct {
	source   FrameSource
	interval time.Duration
}

// NewStreamHandler creates a StreamHandler reading from source at fps frames per second.
func NewStreamHandler(source FrameSource, fps int) *StreamHandler {
	if fps <= 0 {
		fps = DefaultStreamFPS
	}
	return &StreamHandler{source: source, interval: time.Second / time.Duration(fps)}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last *capture.Frame
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		frame := h.source.LatestFrame()
		if frame == nil || frame == last {
			continue
		}
		last = frame

		jpg, err := EncodeFrame(frame, h.source.Overlay())
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpg))
		if _, err := w.Write(jpg); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

// EncodeFrame draws the overlay onto a copy of frame and encodes it as JPEG.
func EncodeFrame(frame *capture.Frame, st app.OverlayState) ([]byte, error) {
	mat, err := frame.ToMat()
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	Annotate(&mat, st)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Annotate draws the search window, the optional face guide, the detection marker and
// the status line onto img.
func Annotate(img *gocv.Mat, st app.OverlayState) {
	w, h := img.Cols(), img.Rows()

	gocv.Rectangle(img, st.Window.Resolve(w, h), windowColor, 2)
	if st.FaceGuide != nil {
		gocv.Rectangle(img, st.FaceGuide.Resolve(w, h), guideColor, 1)
	}

	if st.Detection.Detected {
		gocv.Circle(img, st.Detection.Position, detector.SpotRadius, markerColor, 2)
	}

	label := st.Message
	if st.Tracking {
		label = fmt.Sprintf("%s %.1fs", label, st.LiveSeconds)
	}
	gocv.PutText(img, label, image.Point{X: 10, Y: 24}, gocv.FontHersheyPlain, 1.4, textColor, 2)
}
