package app

import (
	"time"

	"github.com/ayusman/blinker/internal/detector"
	"github.com/ayusman/blinker/internal/hit"
)

// Status describes what the capture session is doing.
type Status string

const (
	// StatusIdle means capture has not been started or was stopped.
	StatusIdle Status = "idle"
	// StatusWaiting means the camera could not be opened.
	StatusWaiting Status = "waiting"
	// StatusCalibrating means thresholds are being derived from the scene.
	StatusCalibrating Status = "calibrating"
	// StatusDetecting means frames are being scanned for hits.
	StatusDetecting Status = "detecting"
)

// User-facing status messages.
const (
	MessageIdle         = "Detection stopped."
	MessageCalibrating  = "Calibrating... hold the LED in view."
	MessageCameraReady  = "Camera ready. Waiting for LED..."
	MessageLEDDetected  = "LED detected! Counting..."
	MessageCameraDenied = "Camera access denied."
)

// Session is the explicit context of one capture run. It is owned by the App and
// only touched from the tick loop.
type Session struct {
	Calibration *detector.Calibration
	Hits        *hit.Machine
	Last        detector.DetectionResult
	StartedAt   time.Time
}

// NewSession starts a session in the calibration phase.
func NewSession(cal detector.CalibrationConfig, now time.Time) *Session {
	return &Session{
		Calibration: detector.NewCalibration(cal),
		Hits:        hit.NewMachine(),
		StartedAt:   now,
	}
}

// Calibrating reports whether the session is still in the calibration phase.
func (s *Session) Calibrating() bool {
	return s.Calibration != nil
}

// Outcome is what one frame did to the session.
type Outcome struct {
	Result     detector.DetectionResult
	Transition hit.Transition

	// Calibrated is set on the frame that finished calibration.
	Calibrated *detector.CalibrationReport
}

// Advance processes one frame. During calibration the frame feeds the
// calibration and no detection happens; afterwards d scans the frame and the
// result drives the hit machine.
func (s *Session) Advance(f detector.Frame, d detector.Detector, now time.Time) Outcome {
	if s.Calibrating() {
		if !s.Calibration.Feed(f) {
			return Outcome{}
		}
		report := s.Calibration.Result()
		s.Calibration = nil
		return Outcome{Calibrated: &report}
	}

	res := d.Detect(f)
	s.Last = res
	return Outcome{
		Result:     res,
		Transition: s.Hits.Step(res.Detected, now),
	}
}

// Recalibrate drops any in-flight hit and restarts calibration.
func (s *Session) Recalibrate(cal detector.CalibrationConfig) {
	s.Hits.Reset()
	s.Last = detector.DetectionResult{}
	s.Calibration = detector.NewCalibration(cal)
}
