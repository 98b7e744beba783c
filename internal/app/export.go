package app

import (
	"time"

	"github.com/ayusman/blinker/internal/detector"
	"github.com/ayusman/blinker/internal/hit"
	"github.com/ayusman/blinker/internal/stats"
)

// Export is the portable snapshot of a profile's progress.
type Export struct {
	Username      string                       `json:"username"`
	Stats         stats.UserStats              `json:"stats"`
	ScoringConfig hit.Config                   `json:"scoringConfig"`
	Thresholds    detector.DetectionThresholds `json:"thresholds"`
	ExportedAt    time.Time                    `json:"exportedAt"`
}

// Export returns the current profile's export document.
func (a *App) Export() Export {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Export{
		Username:      a.profile.Username,
		Stats:         a.stats.Clone(),
		ScoringConfig: a.scoringConfigLocked(),
		Thresholds:    a.thresholds.Get(),
		ExportedAt:    a.clock.Now(),
	}
}
