package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/blinker/internal/stats"
	"github.com/ayusman/blinker/internal/store"
)

// StatsHandler serves stats, hit history and the leaderboard.
type StatsHandler struct {
	ctl Controller
}

// NewStatsHandler creates a StatsHandler backed by ctl.
func NewStatsHandler(ctl Controller) *StatsHandler {
	return &StatsHandler{ctl: ctl}
}

type statsResponse struct {
	Stats   stats.UserStats `json:"stats"`
	Summary *stats.Summary  `json:"summary,omitempty"`
}

type hitsResponse struct {
	Hits  []store.HitRecord `json:"hits"`
	Total int               `json:"total"`
}

type leaderboardResponse struct {
	Entries []store.LeaderboardEntry `json:"entries"`
}

// Stats handles GET /api/stats. The optional period query parameter adds the
// bucket for the current day, week or month.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}

	resp := statsResponse{Stats: h.ctl.Stats()}
	if p := r.URL.Query().Get("period"); p != "" {
		period, err := stats.ParsePeriod(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		summary := h.ctl.Summary(period)
		resp.Summary = &summary
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reset handles POST /api/stats/reset.
func (h *StatsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}
	if err := h.ctl.ResetStats(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset stats")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Stats: h.ctl.Stats()})
}

// Hits handles GET /api/hits?limit=N.
func (h *StatsHandler) Hits(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}

	limit := store.DefaultHitLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	hits, err := h.ctl.RecentHits(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hits")
		return
	}
	total, err := h.ctl.HitCount()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count hits")
		return
	}
	writeJSON(w, http.StatusOK, hitsResponse{Hits: hits, Total: total})
}

// Leaderboard handles GET /api/leaderboard.
func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}

	entries, err := h.ctl.Leaderboard()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}
	if entries == nil {
		entries = []store.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Entries: entries})
}
