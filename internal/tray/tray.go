// Package tray provides the system tray menu for Blinker.
package tray

import (
	"fmt"
	"sync"

	"github.com/ayusman/blinker/internal/hit"
	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle      func(enabled bool)
	onRecalibrate func()
	onDashboard   func()
	onQuit        func()
	enabled       bool
	points        int
	lastHit       string
	mu            sync.RWMutex

	// Menu items stored for later updates
	menuToggle  *systray.MenuItem
	menuPoints  *systray.MenuItem
	menuLastHit *systray.MenuItem
}

// New creates a new Tray instance with detection enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
		lastHit: "none",
	}
}

// OnToggle sets the callback function to be called when detection is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnRecalibrate sets the callback for the recalibrate menu item.
func (t *Tray) OnRecalibrate(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRecalibrate = fn
}

// OnOpenDashboard sets the callback for the dashboard menu item.
func (t *Tray) OnOpenDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Blinker")
	systray.SetTooltip("Blinker LED hit tracker")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume detection")
	menuRecalibrate := systray.AddMenuItem("Recalibrate", "Derive thresholds from the current scene")
	systray.AddSeparator()

	t.menuPoints = systray.AddMenuItem(pointsTitle(t.points), "Total points")
	t.menuPoints.Disable()
	t.menuLastHit = systray.AddMenuItem(lastHitTitle(t.lastHit), "Last completed hit")
	t.menuLastHit.Disable()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Blinker")
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuRecalibrate.ClickedCh:
				t.call(func(t *Tray) func() { return t.onRecalibrate })
			case <-menuDashboard.ClickedCh:
				t.call(func(t *Tray) func() { return t.onDashboard })
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// call reads a callback under the lock and runs it outside.
func (t *Tray) call(pick func(*Tray) func()) {
	t.mu.RLock()
	fn := pick(t)
	t.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetEnabled updates the toggle item without firing the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetPoints updates the points display.
func (t *Tray) SetPoints(points int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.points = points
	if t.menuPoints != nil {
		t.menuPoints.SetTitle(pointsTitle(points))
	}
}

// SetLastHit updates the last hit display from a scoring verdict.
func (t *Tray) SetLastHit(v hit.Verdict) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastHit = verdictSummary(v)
	if t.menuLastHit != nil {
		t.menuLastHit.SetTitle(lastHitTitle(t.lastHit))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Points returns the points last shown.
func (t *Tray) Points() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.points
}

// LastHit returns the last hit summary shown.
func (t *Tray) LastHit() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastHit
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Detecting"
	}
	return "○ Paused"
}

func pointsTitle(points int) string {
	return fmt.Sprintf("Points: %d", points)
}

func lastHitTitle(summary string) string {
	return "Last: " + summary
}

// verdictSummary condenses a verdict to fit a menu item.
func verdictSummary(v hit.Verdict) string {
	if !v.Accepted {
		return fmt.Sprintf("rejected (%s)", v.Reason)
	}
	return fmt.Sprintf("%.1fs %s +%d", v.Hit.DurationSeconds, v.Hit.Tier, v.Hit.Points)
}
