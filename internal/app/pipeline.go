package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ayusman/blinker/internal/capture"
	"github.com/ayusman/blinker/internal/cue"
	"github.com/ayusman/blinker/internal/hit"
	"github.com/ayusman/blinker/internal/stats"
)

// runPipeline ticks at fps until stop is closed.
func (a *App) runPipeline(stop <-chan struct{}, done chan<- struct{}, fps int) {
	defer close(done)

	ticker := a.clock.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	log.Printf("Detection pipeline started at %d fps", fps)
	defer log.Println("Detection pipeline stopped")

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			a.Tick()
		}
	}
}

// Tick reads and processes one frame. It returns false when no frame was processed:
// capture is not running, a previous tick is still scanning, or the read failed.
func (a *App) Tick() bool {
	if !a.busy.CompareAndSwap(false, true) {
		return false
	}
	defer a.busy.Store(false)

	a.mu.Lock()
	cam, session := a.camera, a.session
	a.mu.Unlock()
	if cam == nil || session == nil {
		return false
	}

	frame, err := cam.ReadFrame()
	if err != nil {
		if !errors.Is(err, capture.ErrNoMoreFrames) {
			log.Printf("Frame read error: %v", err)
		}
		a.metrics.RecordCaptureError(context.Background(), "read")
		return false
	}

	a.mu.Lock()
	if a.session != session {
		// Stopped or restarted while the frame was being read.
		a.mu.Unlock()
		return false
	}

	now := a.clock.Now()
	phase := string(a.status)
	scanStart := time.Now()
	out := session.Advance(frame, a.detector, now)
	scan := time.Since(scanStart)

	a.latest = frame
	var events []cue.Event
	var verdict *hit.Verdict

	if report := out.Calibrated; report != nil {
		a.thresholds.Set(report.Thresholds, !report.Fallback)
		a.status = StatusDetecting
		a.message = MessageCameraReady
		a.metrics.RecordCalibration(context.Background(), report.Fallback)
		log.Printf("Calibration finished: %d/%d frames matched, brightness=%.1f sensitivity=%.1f fallback=%t",
			report.Matched, report.Attempts,
			report.Thresholds.BrightnessThreshold, report.Thresholds.Sensitivity, report.Fallback)
	}

	switch out.Transition.Edge {
	case hit.EdgeStarted:
		a.message = MessageLEDDetected
		events = append(events, cue.EventHitStarted)
	case hit.EdgeCompleted:
		v := a.scoreLocked(out.Transition.Duration, now)
		verdict = &v
		if v.Accepted && v.Hit.IsBlinker() {
			events = append(events, cue.EventBlinker)
		}
	}

	state := a.overlayLocked(now)
	tickFns := a.onTick
	hitFns := a.onHit
	a.mu.Unlock()

	a.metrics.RecordFrame(context.Background(), phase, scan)
	for _, e := range events {
		a.cue.Play(e)
	}
	if verdict != nil {
		for _, fn := range hitFns {
			fn(*verdict)
		}
	}
	for _, fn := range tickFns {
		fn(state)
	}
	return true
}

// scoreLocked scores a completed hit and, when accepted, updates and persists the stats.
func (a *App) scoreLocked(d time.Duration, now time.Time) hit.Verdict {
	v := a.policy.Score(d, now)
	a.lastHit = &v
	a.message = v.Message

	if !v.Accepted {
		a.metrics.RecordHitRejected(context.Background(), string(v.Reason), d.Seconds())
		log.Printf("Hit rejected: %s", v.Message)
		return v
	}

	a.stats = stats.Apply(a.stats, v.Hit)
	if err := a.store.Stats().Save(a.profile.ID, a.stats); err != nil {
		log.Printf("Failed to save stats: %v", err)
	}
	if err := a.store.Hits().Create(a.profile.ID, v.Hit); err != nil {
		log.Printf("Failed to record hit: %v", err)
	}
	a.metrics.RecordHitScored(context.Background(), string(v.Hit.Tier), string(v.Hit.Mode), v.Hit.DurationSeconds)
	log.Printf("Hit scored: %s", v.Message)
	return v
}
