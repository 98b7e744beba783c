package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ayusman/blinker/internal/app"
)

// ControlHandler serves session status and the capture controls.
type ControlHandler struct {
	ctl Controller
}

// NewControlHandler creates a ControlHandler backed by ctl.
func NewControlHandler(ctl Controller) *ControlHandler {
	return &ControlHandler{ctl: ctl}
}

type switchCameraResponse struct {
	CameraID int `json:"cameraId"`
}

// Status handles GET /api/status.
func (h *ControlHandler) Status(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.ctl.Status())
}

// Calibrate handles POST /api/calibrate.
func (h *ControlHandler) Calibrate(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}
	if err := h.ctl.Recalibrate(); err != nil {
		if errors.Is(err, app.ErrNotRunning) {
			writeError(w, http.StatusConflict, "Capture is not running")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to recalibrate")
		return
	}
	writeJSON(w, http.StatusAccepted, h.ctl.Status())
}

// SwitchCamera handles POST /api/camera/switch.
func (h *ControlHandler) SwitchCamera(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}
	id, err := h.ctl.SwitchCamera()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("Camera %d unavailable", id))
		return
	}
	writeJSON(w, http.StatusOK, switchCameraResponse{CameraID: id})
}

// Export handles GET /api/export, returning the export document as an attachment.
func (h *ControlHandler) Export(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}
	doc := h.ctl.Export()
	name := fmt.Sprintf("blinker-%s-%s.json", doc.Username, doc.ExportedAt.Format("20060102"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	writeJSON(w, http.StatusOK, doc)
}
