// Package engine interprets per-frame facial measurements as discrete,
// debounced yes/no intent signals.
package engine

import "math"

// Face landmark indices following the MediaPipe FaceMesh convention.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	NoseTip          = 1
	Forehead         = 10
	LeftEyeOuter     = 33
	Chin             = 152
	RightEyeOuter    = 263
	MouthCornerLeft  = 61
	MouthCornerRight = 291
	FaceEdgeLeft     = 234
	FaceEdgeRight    = 454
	NumLandmarks     = 478
)

// Blendshape category names produced by the face tracker.
const (
	BlendshapeEyeBlinkLeft    = "eyeBlinkLeft"
	BlendshapeEyeBlinkRight   = "eyeBlinkRight"
	BlendshapeMouthSmileLeft  = "mouthSmileLeft"
	BlendshapeMouthSmileRight = "mouthSmileRight"
)

// Point3D represents a 3D point with coordinates normalized to [0,1].
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Frame is one timestamped sample of facial measurements from the tracker.
// Blendshapes and Landmarks are present only when FaceDetected is true.
// Frames are immutable; detectors copy out the scalar values they need and
// never retain the frame beyond the call that consumes it.
type Frame struct {
	TimestampMs  int64              `json:"timestamp_ms"`
	FaceDetected bool               `json:"face_detected"`
	Blendshapes  map[string]float64 `json:"blendshapes,omitempty"`
	Landmarks    []Point3D          `json:"landmarks,omitempty"`
}

// Landmark returns the landmark at the given index, reporting whether it
// is present in the frame.
func (f *Frame) Landmark(i int) (Point3D, bool) {
	if i < 0 || i >= len(f.Landmarks) {
		return Point3D{}, false
	}
	return f.Landmarks[i], true
}

// Blendshape returns the score for the named category, reporting whether
// the category is present in the frame.
func (f *Frame) Blendshape(name string) (float64, bool) {
	score, ok := f.Blendshapes[name]
	return score, ok
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// midpoint returns the point halfway between a and b.
func midpoint(a, b Point3D) Point3D {
	return Point3D{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}
