package app

import (
	"time"

	"github.com/ayusman/blinker/internal/detector"
	"github.com/ayusman/blinker/internal/hit"
)

// OverlayState is the per-tick snapshot drawn over the preview.
type OverlayState struct {
	Status      Status                   `json:"status"`
	Message     string                   `json:"message"`
	Detection   detector.DetectionResult `json:"detection"`
	Tracking    bool                     `json:"tracking"`
	LiveSeconds float64                  `json:"liveSeconds"`
	Window      detector.SearchWindow    `json:"window"`
	FaceGuide   *detector.SearchWindow   `json:"faceGuide,omitempty"`
	Calibration *CalibrationProgress     `json:"calibration,omitempty"`
	Points      int                      `json:"points"`
	Timestamp   time.Time                `json:"timestamp"`
}

// CalibrationProgress reports how many matched frames calibration has collected.
type CalibrationProgress struct {
	Matched int `json:"matched"`
	Target  int `json:"target"`
}

// overlayLocked builds the overlay snapshot. The caller holds a.mu.
func (a *App) overlayLocked(now time.Time) OverlayState {
	st := OverlayState{
		Status:    a.status,
		Message:   a.message,
		Window:    a.settings.Window,
		Points:    a.stats.Points,
		Timestamp: now,
	}
	if a.settings.FaceGuide {
		fg := detector.FaceGuideWindow()
		st.FaceGuide = &fg
	}

	if s := a.session; s != nil {
		st.Detection = s.Last
		if s.Calibrating() {
			matched, target := s.Calibration.Progress()
			st.Calibration = &CalibrationProgress{Matched: matched, Target: target}
			st.Window = s.Calibration.Window()
		} else {
			st.Tracking = s.Hits.State() == hit.Tracking
			st.LiveSeconds = s.Hits.Live(now).Seconds()
		}
	}
	return st
}

// Overlay returns the current overlay snapshot.
func (a *App) Overlay() OverlayState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.overlayLocked(a.clock.Now())
}
