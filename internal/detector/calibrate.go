package detector

import (
	"context"
	"log"

	"gonum.org/v1/gonum/stat"
)

// Calibration constants.
const (
	// CalibrationBrightness is the relaxed seed threshold used before real thresholds exist.
	CalibrationBrightness = 100
	// DefaultSampleTarget is the number of matched frames calibration averages over.
	DefaultSampleTarget = 30
	// DefaultMaxAttempts caps the frames inspected when the scene has no LED in view.
	DefaultMaxAttempts = 300
)

// Clamp ranges applied to calibrated thresholds.
const (
	minCalibratedBrightness  = 150
	maxCalibratedBrightness  = 250
	minCalibratedSensitivity = 50
	maxCalibratedSensitivity = 95
)

// CalibrationConfig holds configuration options for a calibration run.
type CalibrationConfig struct {
	// Window is the search region scanned on each frame.
	Window SearchWindow

	// SampleTarget is the number of frames with a candidate needed to finish (default: 30).
	SampleTarget int

	// MaxAttempts is the safety ceiling on inspected frames (default: 300).
	MaxAttempts int
}

// DefaultCalibrationConfig returns a CalibrationConfig with sensible default values.
func DefaultCalibrationConfig() CalibrationConfig {
	return CalibrationConfig{
		Window:       DefaultWindow(),
		SampleTarget: DefaultSampleTarget,
		MaxAttempts:  DefaultMaxAttempts,
	}
}

// CalibrationReport summarises a finished calibration.
type CalibrationReport struct {
	Thresholds    DetectionThresholds `json:"thresholds"`
	Attempts      int                 `json:"attempts"`
	Matched       int                 `json:"matched"`
	AvgBrightness float64             `json:"avgBrightness"`
	AvgConfidence float64             `json:"avgConfidence"`
	Fallback      bool                `json:"fallback"`
}

// Calibration accumulates per-frame samples. It is fed one frame per tick by the
// pipeline and is not safe for concurrent use.
type Calibration struct {
	config     CalibrationConfig
	brightness []float64
	confidence []float64
	attempts   int
}

// NewCalibration starts an empty calibration.
func NewCalibration(config CalibrationConfig) *Calibration {
	if config.SampleTarget <= 0 {
		config.SampleTarget = DefaultSampleTarget
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.MaxAttempts < config.SampleTarget {
		config.MaxAttempts = config.SampleTarget
	}
	return &Calibration{
		config:     config,
		brightness: make([]float64, 0, config.SampleTarget),
		confidence: make([]float64, 0, config.SampleTarget),
	}
}

// Feed scans one frame and reports whether calibration is complete.
// Frames without a candidate count as attempts but contribute no sample.
func (c *Calibration) Feed(f Frame) bool {
	if c.Done() {
		return true
	}
	c.attempts++

	res := Detect(f, c.config.Window,
		DetectionThresholds{BrightnessThreshold: CalibrationBrightness},
		Options{Stride: CalibrationStride, NoSensitivityGate: true},
	)
	if res.Detected {
		c.brightness = append(c.brightness, res.Brightness)
		c.confidence = append(c.confidence, res.Confidence)
	}

	return c.Done()
}

// Done reports whether the sample target or the attempt ceiling has been reached.
func (c *Calibration) Done() bool {
	return len(c.brightness) >= c.config.SampleTarget || c.attempts >= c.config.MaxAttempts
}

// Window returns the search window being sampled.
func (c *Calibration) Window() SearchWindow {
	return c.config.Window
}

// Progress returns the matched sample count and the target.
func (c *Calibration) Progress() (matched, target int) {
	return len(c.brightness), c.config.SampleTarget
}

// Result derives thresholds from the samples collected so far.
// With no samples it falls back to DefaultThresholds.
func (c *Calibration) Result() CalibrationReport {
	report := CalibrationReport{
		Attempts: c.attempts,
		Matched:  len(c.brightness),
	}

	if report.Matched == 0 {
		report.Thresholds = DefaultThresholds()
		report.Fallback = true
		return report
	}

	report.AvgBrightness = stat.Mean(c.brightness, nil)
	report.AvgConfidence = stat.Mean(c.confidence, nil)
	report.Thresholds = DetectionThresholds{
		BrightnessThreshold: clamp(report.AvgBrightness-10, minCalibratedBrightness, maxCalibratedBrightness),
		Sensitivity:         clamp(report.AvgConfidence-5, minCalibratedSensitivity, maxCalibratedSensitivity),
	}
	return report
}

// Calibrate pulls frames from next until the calibration completes.
// A frame source error ends the run early with whatever was collected; context
// cancellation abandons it and returns ctx.Err().
func Calibrate(ctx context.Context, next func() (Frame, error), config CalibrationConfig) (CalibrationReport, error) {
	c := NewCalibration(config)

	for !c.Done() {
		if err := ctx.Err(); err != nil {
			return CalibrationReport{}, err
		}

		f, err := next()
		if err != nil {
			log.Printf("Calibration stopped after %d frames: %v", c.attempts, err)
			break
		}
		c.Feed(f)
	}

	return c.Result(), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
