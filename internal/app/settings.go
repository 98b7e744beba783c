package app

import (
	"fmt"
	"log"

	"github.com/ayusman/blinker/internal/detector"
	"github.com/ayusman/blinker/internal/hit"
	"github.com/ayusman/blinker/internal/store"
)

// Settings are the user-adjustable options persisted across runs.
type Settings struct {
	ScoringMode hit.Mode              `json:"scoringMode"`
	FaceGuide   bool                  `json:"faceGuide"`
	Window      detector.SearchWindow `json:"window"`
}

// Pinned marks the settings the operator fixed for this run through a flag or the
// config file. Pinned values replace the saved ones at startup.
type Pinned struct {
	ScoringMode bool
	FaceGuide   bool
	Window      bool
}

// pin returns s with the fields marked in p taken from configured.
func (s Settings) pin(configured Settings, p Pinned) Settings {
	if p.ScoringMode {
		s.ScoringMode = configured.ScoringMode
	}
	if p.FaceGuide {
		s.FaceGuide = configured.FaceGuide
	}
	if p.Window {
		s.Window = configured.Window
	}
	return s
}

// Validate checks the scoring mode and search window.
func (s Settings) Validate() error {
	if _, err := hit.ParseMode(string(s.ScoringMode)); err != nil {
		return err
	}
	return s.Window.Validate()
}

// Settings returns the active settings.
func (a *App) Settings() Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// ScoringConfig returns the scoring configuration in effect.
func (a *App) ScoringConfig() hit.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scoringConfigLocked()
}

func (a *App) scoringConfigLocked() hit.Config {
	cfg := a.config.Scoring
	cfg.Mode = a.policy.Mode()
	return cfg
}

// UpdateSettings validates, applies and persists s. A new search window takes effect on
// the next frame. If calibration is still running it restarts over the new window;
// finished thresholds are kept.
func (a *App) UpdateSettings(s Settings) error {
	if s.ScoringMode == "" {
		s.ScoringMode = hit.ModeTiered
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.settings.Window
	if err := a.applySettings(s); err != nil {
		return err
	}
	if a.session != nil && a.session.Calibrating() && s.Window != prev {
		a.session.Recalibrate(a.calibrationConfigLocked())
		log.Println("Search window changed, restarting calibration")
	}
	if err := a.store.Settings().SetJSON(store.SettingPreferences, s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	log.Printf("Settings updated: mode=%s faceGuide=%t", s.ScoringMode, s.FaceGuide)
	return nil
}

// applySettings rebuilds the policy and detector for s. The caller holds a.mu or owns a.
func (a *App) applySettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	scoring := a.config.Scoring
	scoring.Mode = s.ScoringMode
	policy, err := hit.NewPolicy(scoring)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	det := a.config.Detection
	det.Window = s.Window

	a.policy = policy
	a.detector = detector.NewSpotDetector(det, a.thresholds)
	a.settings = s
	return nil
}
