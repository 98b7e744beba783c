package detector

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidWindow is returned when a SearchWindow violates its bounds invariant.
var ErrInvalidWindow = errors.New("invalid search window")

// SearchWindow is a rectangle expressed as fractions of the frame width and height.
type SearchWindow struct {
	StartX float64 `json:"startX" toml:"start_x"`
	EndX   float64 `json:"endX" toml:"end_x"`
	StartY float64 `json:"startY" toml:"start_y"`
	EndY   float64 `json:"endY" toml:"end_y"`
}

// DefaultWindow returns the region below the face centre where the LED is expected.
func DefaultWindow() SearchWindow {
	return SearchWindow{StartX: 0.3, EndX: 0.7, StartY: 0.6, EndY: 0.9}
}

// FaceGuideWindow is the fixed region the overlay outlines when the face guide is on.
// It is drawn only; nothing is detected inside it.
func FaceGuideWindow() SearchWindow {
	return SearchWindow{StartX: 0.3, EndX: 0.7, StartY: 0.15, EndY: 0.6}
}

// Validate checks that all bounds lie in [0,1] and that start < end on both axes.
func (w SearchWindow) Validate() error {
	for _, v := range []float64{w.StartX, w.EndX, w.StartY, w.EndY} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: bound %v outside [0,1]", ErrInvalidWindow, v)
		}
	}
	if w.StartX >= w.EndX {
		return fmt.Errorf("%w: startX %v >= endX %v", ErrInvalidWindow, w.StartX, w.EndX)
	}
	if w.StartY >= w.EndY {
		return fmt.Errorf("%w: startY %v >= endY %v", ErrInvalidWindow, w.StartY, w.EndY)
	}
	return nil
}

// Resolve converts the window to pixel coordinates for a frame of the given size.
// The result is clipped to the frame and may be empty.
func (w SearchWindow) Resolve(width, height int) image.Rectangle {
	if width <= 0 || height <= 0 {
		return image.Rectangle{}
	}
	r := image.Rect(
		int(math.Floor(float64(width)*w.StartX)),
		int(math.Floor(float64(height)*w.StartY)),
		int(math.Floor(float64(width)*w.EndX)),
		int(math.Floor(float64(height)*w.EndY)),
	)
	return r.Intersect(image.Rect(0, 0, width, height))
}
