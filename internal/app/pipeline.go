package app

import (
	"log"
	"time"

	"github.com/ayusman/abhinaya/internal/capture"
)

// runPipeline is the main loop that moves frames from the camera through the
// face tracker and into the engine. It manages the state transitions between
// idle and active modes based on scene activity.
//
// Pipeline logic:
// 1. Start in idle mode (low FPS)
// 2. On scene activity, switch to active mode (high FPS)
// 3. In active mode, run face tracking and feed the engine
// 4. After 2s without activity, switch back to idle mode
// 5. Consecutive tracker failures put the engine into its error state
func (a *App) runPipeline(stopCh <-chan struct{}) {
	activeMode := false
	lastActivityTime := time.Now()
	trackErrors := 0

	frameInterval := time.Second / time.Duration(capture.IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// Skip processing if interpretation is disabled
			if !a.IsEnabled() {
				continue
			}

			// Read a frame from the camera
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Scene-activity detection
			activityDetected, _ := a.activity.Detect(frame)

			if activityDetected {
				lastActivityTime = time.Now()

				// Switch to active mode if not already
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(capture.ActiveFPS)
					frameInterval = time.Second / time.Duration(capture.ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				// Check if we should switch back to idle mode
				if time.Since(lastActivityTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(capture.IdleFPS)
					frameInterval = time.Second / time.Duration(capture.IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Skip tracking if not in active mode
			if !activeMode {
				frame.Close()
				continue
			}

			// Step 2: Face tracking
			t := a.Tracker()
			measured, err := t.Track(frame, time.Now().UnixMilli())
			frame.Close()

			if err != nil {
				trackErrors++
				log.Printf("Error tracking face (%d consecutive): %v", trackErrors, err)
				if trackErrors == MaxTrackErrors {
					a.engine.SetError(err)
				}
				continue
			}
			trackErrors = 0

			// Step 3: Interpretation
			a.engine.OnFrame(measured)
		}
	}
}
