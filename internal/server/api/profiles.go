package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/store"
)

// ProfileHandler handles HTTP requests for detector tuning profiles.
type ProfileHandler struct {
	store *store.Store
}

// NewProfileHandler creates a new ProfileHandler with the given store.
func NewProfileHandler(s *store.Store) *ProfileHandler {
	return &ProfileHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/profiles or /api/profiles/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type profileRequest struct {
	Name                 string  `json:"name"`
	Gesture              string  `json:"gesture"`
	Threshold            float64 `json:"threshold"`
	ThresholdMultiplier  float64 `json:"threshold_multiplier"`
	MinDurationMs        int64   `json:"min_duration_ms"`
	MaxDurationMs        int64   `json:"max_duration_ms"`
	DoubleSignalWindowMs int64   `json:"double_signal_window_ms"`
	CooldownMs           int64   `json:"cooldown_ms"`
	HistorySize          int     `json:"history_size"`
	Enabled              *bool   `json:"enabled"`
}

type profileResponse struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Gesture              string  `json:"gesture"`
	Threshold            float64 `json:"threshold"`
	ThresholdMultiplier  float64 `json:"threshold_multiplier"`
	MinDurationMs        int64   `json:"min_duration_ms"`
	MaxDurationMs        int64   `json:"max_duration_ms"`
	DoubleSignalWindowMs int64   `json:"double_signal_window_ms"`
	CooldownMs           int64   `json:"cooldown_ms"`
	HistorySize          int     `json:"history_size"`
	Enabled              bool    `json:"enabled"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Profile to a profileResponse.
func toResponse(p *store.Profile) profileResponse {
	return profileResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Gesture:              p.Gesture,
		Threshold:            p.Threshold,
		ThresholdMultiplier:  p.ThresholdMultiplier,
		MinDurationMs:        p.MinDurationMs,
		MaxDurationMs:        p.MaxDurationMs,
		DoubleSignalWindowMs: p.DoubleSignalWindowMs,
		CooldownMs:           p.CooldownMs,
		HistorySize:          p.HistorySize,
		Enabled:              p.Enabled,
		CreatedAt:            p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:            p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
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

// list handles GET /api/profiles and returns all profiles.
func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	response := listProfilesResponse{
		Profiles: make([]profileResponse, 0, len(profiles)),
	}

	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/profiles/{id} and returns a single profile.
func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// create handles POST /api/profiles and creates a new profile.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if !engine.GestureType(req.Gesture).Valid() {
		writeError(w, http.StatusBadRequest, "Invalid gesture type")
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	profile := &store.Profile{
		ID:                   uuid.New().String(),
		Name:                 req.Name,
		Gesture:              req.Gesture,
		Threshold:            req.Threshold,
		ThresholdMultiplier:  req.ThresholdMultiplier,
		MinDurationMs:        req.MinDurationMs,
		MaxDurationMs:        req.MaxDurationMs,
		DoubleSignalWindowMs: req.DoubleSignalWindowMs,
		CooldownMs:           req.CooldownMs,
		HistorySize:          req.HistorySize,
		Enabled:              enabled,
	}

	if err := h.store.Profiles().Create(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(profile))
}

// update handles PUT /api/profiles/{id} and updates an existing profile.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Update fields if provided
	if req.Name != "" {
		profile.Name = req.Name
	}
	if req.Gesture != "" {
		if !engine.GestureType(req.Gesture).Valid() {
			writeError(w, http.StatusBadRequest, "Invalid gesture type")
			return
		}
		profile.Gesture = req.Gesture
	}
	if req.Threshold != 0 {
		profile.Threshold = req.Threshold
	}
	if req.ThresholdMultiplier != 0 {
		profile.ThresholdMultiplier = req.ThresholdMultiplier
	}
	if req.MinDurationMs != 0 {
		profile.MinDurationMs = req.MinDurationMs
	}
	if req.MaxDurationMs != 0 {
		profile.MaxDurationMs = req.MaxDurationMs
	}
	if req.DoubleSignalWindowMs != 0 {
		profile.DoubleSignalWindowMs = req.DoubleSignalWindowMs
	}
	if req.CooldownMs != 0 {
		profile.CooldownMs = req.CooldownMs
	}
	if req.HistorySize != 0 {
		profile.HistorySize = req.HistorySize
	}
	if req.Enabled != nil {
		profile.Enabled = *req.Enabled
	}

	if err := h.store.Profiles().Update(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// delete handles DELETE /api/profiles/{id} and removes a profile.
func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Profiles().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
