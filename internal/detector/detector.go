// Package detector finds a small bright LED inside a search window of a video frame
// and derives its detection thresholds from the scene.
package detector

import "image"

// Scan strides. Calibration trades accuracy for throughput.
const (
	LiveStride        = 2
	CalibrationStride = 4
)

// DetectionResult is the outcome of scanning one frame.
type DetectionResult struct {
	Detected   bool        `json:"detected"`
	Confidence float64     `json:"confidence"`
	Position   image.Point `json:"position"`
	Brightness float64     `json:"brightness"`
	Extent     int         `json:"extent"`
}

// Options controls a single window scan.
type Options struct {
	// Stride is the pixel step between sampled seeds on both axes (default: LiveStride).
	Stride int

	// NoSensitivityGate reports Detected whenever any candidate was found.
	NoSensitivityGate bool
}

// Detect scans the window of frame for the highest-confidence spot candidate.
//
// Seeds are visited row-major with the configured stride and the first candidate
// wins ties. The sensitivity gate is applied once to the winner after the scan, so a
// weaker candidate is never promoted when the strongest one fails the gate.
func Detect(f Frame, window SearchWindow, t DetectionThresholds, opts Options) DetectionResult {
	s := NewSampler(f, window)
	if s.Empty() {
		return DetectionResult{}
	}

	stride := opts.Stride
	if stride <= 0 {
		stride = LiveStride
	}

	var (
		best  SpotCandidate
		found bool
	)
	r := s.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y += stride {
		for x := r.Min.X; x < r.Max.X; x += stride {
			c, ok := Score(s, x, y, t.BrightnessThreshold)
			if !ok {
				continue
			}
			if !found || c.Confidence > best.Confidence {
				best = c
				found = true
			}
		}
	}

	if !found {
		return DetectionResult{}
	}

	detected := best.Confidence > t.Sensitivity
	if opts.NoSensitivityGate {
		detected = true
	}

	return DetectionResult{
		Detected:   detected,
		Confidence: best.Confidence,
		Position:   best.Position,
		Brightness: best.Brightness,
		Extent:     best.PixelExtent,
	}
}

// Detector defines the interface for per-frame LED detection implementations.
type Detector interface {
	// Detect scans one frame using the detector's current thresholds.
	Detect(f Frame) DetectionResult
}

// Config holds configuration options for live detection.
type Config struct {
	// Window is the fractional search region.
	Window SearchWindow

	// Stride is the live scan stride (default: LiveStride).
	Stride int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Window: DefaultWindow(),
		Stride: LiveStride,
	}
}

// SpotDetector applies Detect with thresholds read from a shared ThresholdStore.
type SpotDetector struct {
	config     Config
	thresholds *ThresholdStore
}

// NewSpotDetector creates a detector reading thresholds from ts on every frame.
func NewSpotDetector(config Config, ts *ThresholdStore) *SpotDetector {
	if config.Stride <= 0 {
		config.Stride = LiveStride
	}
	return &SpotDetector{config: config, thresholds: ts}
}

// Detect scans f with a consistent snapshot of the thresholds.
func (d *SpotDetector) Detect(f Frame) DetectionResult {
	return Detect(f, d.config.Window, d.thresholds.Get(), Options{Stride: d.config.Stride})
}

// Window returns the configured search window.
func (d *SpotDetector) Window() SearchWindow {
	return d.config.Window
}
