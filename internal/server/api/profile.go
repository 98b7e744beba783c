package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/blinker/internal/store"
)

// ProfileHandler serves the current profile and the user settings.
type ProfileHandler struct {
	ctl Controller
}

// NewProfileHandler creates a ProfileHandler backed by ctl.
func NewProfileHandler(ctl Controller) *ProfileHandler {
	return &ProfileHandler{ctl: ctl}
}

type updateProfileRequest struct {
	Username string `json:"username"`
}

// Profile handles GET and PUT /api/profile.
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctl.Profile())
	case http.MethodPut:
		var req updateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		p, err := h.ctl.SetUsername(req.Username)
		if err != nil {
			if errors.Is(err, store.ErrInvalidUsername) {
				writeError(w, http.StatusBadRequest, "Username is required")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to switch profile")
			return
		}
		writeJSON(w, http.StatusOK, p)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Settings handles GET and PUT /api/settings.
func (h *ProfileHandler) Settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctl.Settings())
	case http.MethodPut:
		// Start from the current settings so a partial body only changes what it names.
		s := h.ctl.Settings()
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := h.ctl.UpdateSettings(s); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, h.ctl.Settings())
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

