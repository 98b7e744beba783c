package detector

import "sync"

// Fallback thresholds used until calibration succeeds.
const (
	DefaultBrightnessThreshold = 200
	DefaultSensitivity         = 85
)

// DetectionThresholds are the acceptance limits applied to every frame.
type DetectionThresholds struct {
	// BrightnessThreshold is the minimum seed brightness, 0-255.
	BrightnessThreshold float64 `json:"brightnessThreshold"`

	// Sensitivity is the confidence a candidate must exceed, 0-100.
	Sensitivity float64 `json:"sensitivity"`
}

// DefaultThresholds returns the documented fallback thresholds.
func DefaultThresholds() DetectionThresholds {
	return DetectionThresholds{
		BrightnessThreshold: DefaultBrightnessThreshold,
		Sensitivity:         DefaultSensitivity,
	}
}

// ThresholdStore guards the thresholds shared between the detection loop and readers
// such as the HTTP API. Writers replace the whole value, so a scan never sees a
// half-updated pair.
type ThresholdStore struct {
	mu         sync.RWMutex
	thresholds DetectionThresholds
	calibrated bool
}

// NewThresholdStore returns a store holding t.
func NewThresholdStore(t DetectionThresholds) *ThresholdStore {
	return &ThresholdStore{thresholds: t}
}

// Get returns the current thresholds.
func (s *ThresholdStore) Get() DetectionThresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thresholds
}

// Set replaces the thresholds and records whether they came from calibration.
func (s *ThresholdStore) Set(t DetectionThresholds, calibrated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds = t
	s.calibrated = calibrated
}

// Calibrated reports whether the current thresholds were derived from the scene.
func (s *ThresholdStore) Calibrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calibrated
}
