// Package app wires capture, detection, scoring and persistence into the Blinker session controller.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/blinker/internal/capture"
	"github.com/ayusman/blinker/internal/clock"
	"github.com/ayusman/blinker/internal/cue"
	"github.com/ayusman/blinker/internal/detector"
	"github.com/ayusman/blinker/internal/hit"
	"github.com/ayusman/blinker/internal/observe"
	"github.com/ayusman/blinker/internal/stats"
	"github.com/ayusman/blinker/internal/store"
)

// DefaultUsername is used when no profile has been chosen yet.
const DefaultUsername = "player"

var (
	// ErrNotRunning is returned by operations that need an active capture session.
	ErrNotRunning = errors.New("capture is not running")
	// ErrNoStore is returned by New when Config.Store is nil.
	ErrNoStore = errors.New("app requires a store")
)

// Config holds configuration options for the application.
type Config struct {
	Store *store.Store

	// Username selects the profile. Empty means the last used profile.
	Username string

	// CameraID is the primary capture device; AltCameraID is the one SwitchCamera toggles to.
	CameraID    int
	AltCameraID int
	FPS         int

	Detection   detector.Config
	Calibration detector.CalibrationConfig
	Scoring     hit.Config
	FaceGuide   bool

	// Pinned settings win over the ones saved through UpdateSettings.
	Pinned Pinned

	// Optional collaborators. Nil values get real or no-op implementations.
	Clock     clock.Clock
	NewCamera func(deviceID int) capture.Camera
	Cue       cue.Player
	Metrics   *observe.Metrics
}

// App is the session controller: it owns the camera, the detection state and the user's stats.
type App struct {
	config  Config
	store   *store.Store
	clock   clock.Clock
	cue     cue.Player
	metrics *observe.Metrics

	thresholds *detector.ThresholdStore

	// lifecycle serialises Start, Stop and SwitchCamera.
	lifecycle sync.Mutex

	mu       sync.Mutex
	camera   capture.Camera
	cameraID int
	detector *detector.SpotDetector
	policy   hit.Policy
	settings Settings
	profile  store.Profile
	stats    stats.UserStats
	session  *Session
	status   Status
	message  string
	latest   *capture.Frame
	lastHit  *hit.Verdict
	onTick   []func(OverlayState)
	onHit    []func(hit.Verdict)

	stopCh chan struct{}
	doneCh chan struct{}

	// busy keeps at most one scan in flight.
	busy atomic.Bool
}

// New creates an App, loading the current profile, its stats and the saved settings.
// Saved settings replace the configured ones except where Config.Pinned says otherwise.
func New(config Config) (*App, error) {
	if config.Store == nil {
		return nil, ErrNoStore
	}
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.Clock == nil {
		config.Clock = clock.Real{}
	}
	if config.NewCamera == nil {
		config.NewCamera = capture.NewCamera
	}
	if config.Cue == nil {
		config.Cue = cue.NopPlayer{}
	}
	if config.Detection.Window == (detector.SearchWindow{}) {
		config.Detection.Window = detector.DefaultWindow()
	}
	if config.Scoring.Mode == "" {
		config.Scoring.Mode = hit.ModeTiered
	}

	a := &App{
		config:     config,
		store:      config.Store,
		clock:      config.Clock,
		cue:        config.Cue,
		metrics:    config.Metrics,
		thresholds: detector.NewThresholdStore(detector.DefaultThresholds()),
		cameraID:   config.CameraID,
		status:     StatusIdle,
		message:    MessageIdle,
	}

	settings := Settings{
		ScoringMode: config.Scoring.Mode,
		FaceGuide:   config.FaceGuide,
		Window:      config.Detection.Window,
	}
	var saved Settings
	switch err := a.store.Settings().GetJSON(store.SettingPreferences, &saved); {
	case err == nil:
		settings = saved.pin(settings, config.Pinned)
	case !errors.Is(err, store.ErrNotFound):
		log.Printf("Ignoring saved settings: %v", err)
	}
	if err := a.applySettings(settings); err != nil {
		return nil, err
	}

	p, err := a.resolveProfile(config.Username)
	if err != nil {
		return nil, err
	}
	if err := a.loadProfile(p); err != nil {
		return nil, err
	}

	return a, nil
}

// resolveProfile picks the explicit username, then the last used profile, then DefaultUsername.
func (a *App) resolveProfile(username string) (*store.Profile, error) {
	if username == "" {
		id, err := a.store.Settings().Get(store.SettingCurrentProfile)
		if err == nil {
			p, err := a.store.Profiles().GetByID(id)
			if err == nil {
				return p, nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("load profile: %w", err)
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("read current profile: %w", err)
		}
		username = DefaultUsername
	}

	p, err := a.store.Profiles().GetOrCreate(username)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", username, err)
	}
	return p, nil
}

// loadProfile makes p current and loads its stats. A missing or corrupt record starts fresh.
func (a *App) loadProfile(p *store.Profile) error {
	us, err := a.store.Stats().Load(p.ID)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	if us == nil {
		fresh := stats.New()
		us = &fresh
	}
	if err := a.store.Settings().Set(store.SettingCurrentProfile, p.ID); err != nil {
		return fmt.Errorf("save current profile: %w", err)
	}

	a.profile = *p
	a.stats = *us
	return nil
}

// OnTick registers fn to receive the overlay state after every processed frame.
// Callbacks run on the pipeline goroutine and must not block.
func (a *App) OnTick(fn func(OverlayState)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onTick = append(a.onTick, fn)
}

// OnHit registers fn to receive the verdict of every completed hit.
func (a *App) OnHit(fn func(hit.Verdict)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onHit = append(a.onHit, fn)
}

// Open opens the camera and begins a session in the calibration phase without
// starting the tick loop. A camera that cannot be opened leaves the app waiting.
func (a *App) Open() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.openLocked()
}

func (a *App) openLocked() error {
	if a.session != nil {
		return nil
	}

	cam := a.config.NewCamera(a.cameraID)
	if err := cam.Open(); err != nil {
		a.status = StatusWaiting
		a.message = MessageCameraDenied
		a.metrics.RecordCaptureError(context.Background(), "open")
		return fmt.Errorf("open camera %d: %w", a.cameraID, err)
	}
	cam.SetFPS(a.config.FPS)

	now := a.clock.Now()
	a.stats = stats.StartSession(a.stats, now)
	if err := a.store.Stats().Save(a.profile.ID, a.stats); err != nil {
		log.Printf("Failed to save stats: %v", err)
	}

	a.camera = cam
	a.session = NewSession(a.calibrationConfigLocked(), now)
	a.status = StatusCalibrating
	a.message = MessageCalibrating
	return nil
}

// Start opens the camera and runs the tick loop at the configured frame rate.
func (a *App) Start() error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()
	return a.startLocked()
}

func (a *App) startLocked() error {
	a.mu.Lock()
	if a.stopCh != nil {
		a.mu.Unlock()
		return nil
	}
	if err := a.openLocked(); err != nil {
		a.mu.Unlock()
		return err
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	a.stopCh, a.doneCh = stop, done
	fps := a.config.FPS
	a.mu.Unlock()

	go a.runPipeline(stop, done, fps)
	return nil
}

// Stop halts the tick loop and releases the camera. An in-flight hit is discarded.
func (a *App) Stop() {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()
	a.stopLocked()
}

func (a *App) stopLocked() {
	a.mu.Lock()
	stop, done := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.camera != nil {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
		a.camera = nil
	}
	a.session = nil
	a.latest = nil
	a.status = StatusIdle
	a.message = MessageIdle
}

// Running reports whether a capture session is open.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil
}

// Toggle starts capture when stopped and stops it when running.
func (a *App) Toggle() error {
	if a.Running() {
		a.Stop()
		return nil
	}
	return a.Start()
}

// Recalibrate drops any in-flight hit and sends the session back to calibration.
func (a *App) Recalibrate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return ErrNotRunning
	}
	a.session.Recalibrate(a.calibrationConfigLocked())
	a.status = StatusCalibrating
	a.message = MessageCalibrating
	log.Println("Recalibrating")
	return nil
}

// SwitchCamera toggles between the primary and alternate camera, restarting capture
// if it was running. It returns the device now selected.
func (a *App) SwitchCamera() (int, error) {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	a.mu.Lock()
	running := a.session != nil
	looping := a.stopCh != nil
	if a.cameraID == a.config.CameraID {
		a.cameraID = a.config.AltCameraID
	} else {
		a.cameraID = a.config.CameraID
	}
	id := a.cameraID
	a.mu.Unlock()

	log.Printf("Switching to camera %d", id)
	if !running {
		return id, nil
	}

	a.stopLocked()
	if looping {
		return id, a.startLocked()
	}
	return id, a.Open()
}

// CameraID returns the currently selected capture device.
func (a *App) CameraID() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cameraID
}

// calibrationConfigLocked returns the calibration config for the current search window.
func (a *App) calibrationConfigLocked() detector.CalibrationConfig {
	cfg := a.config.Calibration
	cfg.Window = a.settings.Window
	return cfg
}

// Thresholds returns the thresholds currently applied to live detection.
func (a *App) Thresholds() detector.DetectionThresholds {
	return a.thresholds.Get()
}

// LatestFrame returns the most recently captured frame, or nil when none is available.
func (a *App) LatestFrame() *capture.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest
}

// Stats returns a copy of the current profile's stats.
func (a *App) Stats() stats.UserStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats.Clone()
}

// Summary returns the stats bucket for the period containing the current time.
func (a *App) Summary(period stats.Period) stats.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return stats.Summarize(a.stats, period, a.clock.Now())
}

// ResetStats clears the current profile's stats and hit history.
func (a *App) ResetStats() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	fresh := stats.New()
	if err := a.store.Reset(a.profile.ID, fresh); err != nil {
		return fmt.Errorf("reset stats: %w", err)
	}
	a.stats = fresh
	a.lastHit = nil
	log.Printf("Stats reset for %s", a.profile.Username)
	return nil
}

// Profile returns the current profile.
func (a *App) Profile() store.Profile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile
}

// SetUsername switches to the profile with the given username, creating it if needed.
// Any in-flight hit is dropped so it is not credited to the new profile.
func (a *App) SetUsername(username string) (store.Profile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.store.Profiles().GetOrCreate(username)
	if err != nil {
		return store.Profile{}, err
	}
	if p.ID == a.profile.ID {
		return a.profile, nil
	}
	if err := a.loadProfile(p); err != nil {
		return store.Profile{}, err
	}
	if a.session != nil {
		a.session.Hits.Reset()
	}
	a.lastHit = nil
	log.Printf("Switched to profile %s", p.Username)
	return a.profile, nil
}

// RecentHits returns the current profile's most recent scored hits, newest first.
func (a *App) RecentHits(limit int) ([]store.HitRecord, error) {
	a.mu.Lock()
	id := a.profile.ID
	a.mu.Unlock()
	return a.store.Hits().ListRecent(id, limit)
}

// HitCount returns how many hits the current profile has stored.
func (a *App) HitCount() (int, error) {
	a.mu.Lock()
	id := a.profile.ID
	a.mu.Unlock()
	return a.store.Hits().Count(id)
}

// Leaderboard ranks every profile by points.
func (a *App) Leaderboard() ([]store.LeaderboardEntry, error) {
	return a.store.Leaderboard()
}

// StatusReport is a snapshot of the session for the status API and tray.
type StatusReport struct {
	Status     Status                       `json:"status"`
	Message    string                       `json:"message"`
	Running    bool                         `json:"running"`
	CameraID   int                          `json:"cameraId"`
	Username   string                       `json:"username"`
	Points     int                          `json:"points"`
	Thresholds detector.DetectionThresholds `json:"thresholds"`
	Calibrated bool                         `json:"calibrated"`
	LastHit    *hit.Verdict                 `json:"lastHit,omitempty"`
	Time       time.Time                    `json:"time"`
}

// Status returns the current session snapshot.
func (a *App) Status() StatusReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := StatusReport{
		Status:     a.status,
		Message:    a.message,
		Running:    a.session != nil,
		CameraID:   a.cameraID,
		Username:   a.profile.Username,
		Points:     a.stats.Points,
		Thresholds: a.thresholds.Get(),
		Calibrated: a.thresholds.Calibrated(),
		Time:       a.clock.Now(),
	}
	if a.lastHit != nil {
		v := *a.lastHit
		r.LastHit = &v
	}
	return r
}
