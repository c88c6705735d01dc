// Package app provides the main application logic for the Abhinaya gesture interpretation system.
package app

import (
	"errors"
	"log"
	"sync"

	"github.com/ayusman/abhinaya/internal/capture"
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/store"
	"github.com/ayusman/abhinaya/internal/tracker"
)

// Pipeline timing constants.
const (
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
	// MaxTrackErrors is the number of consecutive tracker failures before the
	// engine is put into its error state.
	MaxTrackErrors = 5
)

// Config holds configuration options for the application.
type Config struct {
	Store          *store.Store
	CameraID       int
	ActivityThresh float64
	// Engine overrides the built-in detector defaults. Zero-valued fields
	// keep their defaults; enabled store profiles are applied on top.
	Engine engine.Config
}

// App is the main application that orchestrates capture, face tracking, and
// gesture interpretation.
type App struct {
	config   Config
	camera   capture.Camera
	activity *capture.ActivityDetector
	tracker  tracker.Tracker
	engine   *engine.Engine
	enabled  bool
	mu       sync.RWMutex
	stopCh   chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	activityThreshold := config.ActivityThresh
	if activityThreshold <= 0 {
		activityThreshold = 1.0 // Default threshold: 1% pixel change
	}

	a := &App{
		config:   config,
		camera:   capture.NewCamera(config.CameraID),
		activity: capture.NewActivityDetector(activityThreshold),
		enabled:  false,
		stopCh:   nil,
	}

	a.engine = engine.New(a.buildEngineConfig())

	// Try the MediaPipe face landmarker first, fall back to the mock tracker
	if fl, err := tracker.NewFaceLandmarker(tracker.DefaultConfig()); err == nil {
		a.tracker = fl
		log.Println("Using MediaPipe face tracking")
	} else {
		log.Printf("MediaPipe not available (%v), using mock tracker", err)
		a.tracker = tracker.NewMockTracker()
	}

	if a.config.Store != nil {
		a.restoreActiveGesture()
	}

	return a
}

// buildEngineConfig layers enabled store profiles over the configured
// detector settings. The newest enabled profile per gesture wins.
func (a *App) buildEngineConfig() engine.Config {
	cfg := a.config.Engine

	if a.config.Store == nil {
		return cfg
	}

	for _, g := range []engine.GestureType{engine.GestureBlink, engine.GestureSmile, engine.GestureNod, engine.GestureWave} {
		profiles, err := a.config.Store.Profiles().ListEnabledByGesture(string(g))
		if err != nil {
			log.Printf("Failed to load profiles for %s: %v", g, err)
			continue
		}
		if len(profiles) == 0 {
			continue
		}

		p := profiles[0]
		var dc *engine.DetectorConfig
		switch g {
		case engine.GestureBlink:
			dc = &cfg.Blink
		case engine.GestureSmile:
			dc = &cfg.Smile
		case engine.GestureNod:
			dc = &cfg.Nod
		case engine.GestureWave:
			dc = &cfg.Wave
		}
		applyProfile(dc, p)
		log.Printf("Applied profile %q to %s detector", p.Name, g)
	}

	return cfg
}

// applyProfile copies the profile's non-zero fields into the detector config.
func applyProfile(dc *engine.DetectorConfig, p *store.Profile) {
	if p.Threshold != 0 {
		dc.Threshold = p.Threshold
	}
	if p.ThresholdMultiplier != 0 {
		dc.ThresholdMultiplier = p.ThresholdMultiplier
	}
	if p.MinDurationMs != 0 {
		dc.MinDurationMs = p.MinDurationMs
	}
	if p.MaxDurationMs != 0 {
		dc.MaxDurationMs = p.MaxDurationMs
	}
	if p.DoubleSignalWindowMs != 0 {
		dc.DoubleSignalWindowMs = p.DoubleSignalWindowMs
	}
	if p.CooldownMs != 0 {
		dc.CooldownMs = p.CooldownMs
	}
	if p.HistorySize != 0 {
		dc.HistorySize = p.HistorySize
	}
}

// restoreActiveGesture switches the engine to the last persisted gesture.
func (a *App) restoreActiveGesture() {
	g, err := a.config.Store.Settings().Get(store.SettingActiveGesture)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Failed to load active gesture setting: %v", err)
		}
		return
	}

	if err := a.engine.SetActiveGesture(engine.GestureType(g)); err != nil {
		log.Printf("Ignoring persisted gesture %q: %v", g, err)
	}
}

// SetEnabled enables or disables gesture interpretation.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture interpretation is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetTracker sets the face tracker implementation to use.
func (a *App) SetTracker(t tracker.Tracker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracker = t
}

// Tracker returns the face tracker.
func (a *App) Tracker() tracker.Tracker {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tracker
}

// Engine returns the interpretation engine.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// ActivityDetector returns the scene-activity detector instance.
func (a *App) ActivityDetector() *capture.ActivityDetector {
	return a.activity
}

// SetActiveGesture switches the engine's detector and persists the choice.
func (a *App) SetActiveGesture(g engine.GestureType) error {
	if err := a.engine.SetActiveGesture(g); err != nil {
		return err
	}

	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(store.SettingActiveGesture, string(g)); err != nil {
			log.Printf("Failed to persist active gesture: %v", err)
		}
	}

	return nil
}

// Start begins the interpretation pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	// Open the camera
	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(capture.IdleFPS)

	// Create stop channel and start the pipeline
	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Interpretation pipeline started")
	return nil
}

// Stop halts the interpretation pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Signal the pipeline to stop
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	// Close the camera
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	// Close the activity detector
	a.activity.Close()

	// Close the face tracker if set
	if a.tracker != nil {
		if err := a.tracker.Close(); err != nil {
			log.Printf("Error closing tracker: %v", err)
		}
	}

	log.Println("Interpretation pipeline stopped")
}
