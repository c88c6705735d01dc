// Package tracker produces per-frame facial measurements from raw video
// frames. The engine treats the tracker as an external collaborator: it
// only ever sees the materialized measurement frames.
package tracker

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/abhinaya/internal/engine"
)

// Tracker defines the interface for face tracking implementations.
type Tracker interface {
	// Track analyzes a video frame and returns one measurement frame
	// stamped with the given timestamp. A frame without a face is
	// returned with FaceDetected false, not an error.
	Track(frame *gocv.Mat, timestampMs int64) (*engine.Frame, error)

	// Close releases any resources held by the tracker.
	Close() error
}

// Config holds configuration options for face tracking.
type Config struct {
	// MinConfidence is the minimum face detection confidence (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
