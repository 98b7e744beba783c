// Package api provides the JSON HTTP handlers for the Blinker session.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/blinker/internal/app"
	"github.com/ayusman/blinker/internal/stats"
	"github.com/ayusman/blinker/internal/store"
)

// Controller is the subset of the session controller the handlers drive.
// *app.App implements it.
type Controller interface {
	Status() app.StatusReport
	Stats() stats.UserStats
	Summary(period stats.Period) stats.Summary
	ResetStats() error
	RecentHits(limit int) ([]store.HitRecord, error)
	HitCount() (int, error)
	Leaderboard() ([]store.LeaderboardEntry, error)
	Profile() store.Profile
	SetUsername(username string) (store.Profile, error)
	Settings() app.Settings
	UpdateSettings(s app.Settings) error
	Recalibrate() error
	SwitchCamera() (int, error)
	Export() app.Export
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// methodNotAllowed rejects requests whose method is not in allowed.
func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	for _, m := range allowed {
		if r.Method == m {
			return false
		}
	}
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return true
}
