// Package api provides HTTP API handlers for the Abhinaya gesture interpretation system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/abhinaya/internal/engine"
)

// PublishFunc pushes an event to connected event subscribers.
type PublishFunc func(eventType string, data interface{})

// EngineHandler exposes engine control endpoints under /api/engine/.
type EngineHandler struct {
	engine  *engine.Engine
	publish PublishFunc
}

// NewEngineHandler creates a new EngineHandler. publish may be nil when no
// event transport is wired.
func NewEngineHandler(e *engine.Engine, publish PublishFunc) *EngineHandler {
	if publish == nil {
		publish = func(string, interface{}) {}
	}
	return &EngineHandler{engine: e, publish: publish}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
func (h *EngineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/engine/status":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.status(w, r)
	case "/api/engine/gesture":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.setGesture(w, r)
	case "/api/engine/reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.reset(w, r)
	case "/api/engine/calibrate":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.calibrate(w, r)
	default:
		http.NotFound(w, r)
	}
}

type statusResponse struct {
	Status    string `json:"status"`
	Gesture   string `json:"gesture"`
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

type setGestureRequest struct {
	Gesture string `json:"gesture"`
}

// status handles GET /api/engine/status.
func (h *EngineHandler) status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:    string(h.engine.Status()),
		Gesture:   string(h.engine.ActiveGesture()),
		SessionID: h.engine.SessionID(),
	}
	if err := h.engine.Err(); err != nil {
		resp.Error = err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

// setGesture handles POST /api/engine/gesture and switches the active
// detector. Any pending confirmation is discarded.
func (h *EngineHandler) setGesture(w http.ResponseWriter, r *http.Request) {
	var req setGestureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.engine.SetActiveGesture(engine.GestureType(req.Gesture)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"gesture": req.Gesture})
}

// reset handles POST /api/engine/reset.
func (h *EngineHandler) reset(w http.ResponseWriter, r *http.Request) {
	h.engine.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"session_id": h.engine.SessionID()})
}

// calibrate handles POST /api/engine/calibrate. Progress is pushed to event
// subscribers while the sequence runs.
func (h *EngineHandler) calibrate(w http.ResponseWriter, r *http.Request) {
	progress, err := h.engine.StartCalibration()
	if err != nil {
		if errors.Is(err, engine.ErrCalibrationRunning) {
			writeError(w, http.StatusConflict, "Calibration already in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to start calibration")
		return
	}

	go func() {
		for pct := range progress {
			h.publish("calibration", map[string]int{"percent": pct})
		}
		h.publish("calibration_done", nil)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}
