package engine

// GestureType identifies which facial gesture a detector interprets.
type GestureType string

const (
	// GestureBlink answers with eye blinks: one blink yes, two blinks no.
	GestureBlink GestureType = "blink"
	// GestureSmile answers with a sustained smile.
	GestureSmile GestureType = "smile"
	// GestureNod answers with head nods: one nod yes, two nods no.
	GestureNod GestureType = "nod"
	// GestureWave answers with side-to-side head movement as a wave proxy.
	GestureWave GestureType = "wave"
)

// Valid reports whether t names a known gesture type.
func (t GestureType) Valid() bool {
	switch t {
	case GestureBlink, GestureSmile, GestureNod, GestureWave:
		return true
	}
	return false
}

// Answer is a yes/no intent value.
type Answer string

const (
	AnswerYes Answer = "yes"
	AnswerNo  Answer = "no"
)

// RawCandidate is a tentative yes/no produced by a detector. It is
// ephemeral: the confirmation gate consumes it immediately, and a later
// candidate replaces it inside the hold window.
type RawCandidate struct {
	Value       Answer
	Gesture     GestureType
	TimestampMs int64
}

// FinalSignal is a confirmed yes/no intent, emitted exactly once per
// confirmed gesture.
type FinalSignal struct {
	Value       Answer      `json:"value"`
	Gesture     GestureType `json:"gesture"`
	TimestampMs int64       `json:"timestamp_ms"`
}

// Detector is a stateful algorithm mapping a sequence of frames to zero or
// one raw candidate per invocation. Implementations own their state
// exclusively and are driven by frame timestamps, never wall-clock time, so
// gaps with no face present do not advance any duration. A frame missing a
// required landmark index or blendshape category is skipped without error.
//
// Detectors are not safe for concurrent use; the engine drives exactly one
// instance from a single loop.
type Detector interface {
	// Type returns the gesture type this detector interprets.
	Type() GestureType

	// Consume processes one frame and returns a raw candidate, or nil.
	Consume(f *Frame) *RawCandidate

	// Reset restores the detector to its initial state, zeroing any
	// captured baseline and counters.
	Reset()
}

// newDetector creates a fresh detector instance for the given gesture type.
// Callers swap whole instances on gesture change so every field returns to
// its initial value.
func newDetector(t GestureType, cfg Config) Detector {
	dc := cfg.gestureConfig(t)
	switch t {
	case GestureSmile:
		return newSmileDetector(dc)
	case GestureNod:
		return newNodDetector(dc)
	case GestureWave:
		return newWaveDetector(dc)
	default:
		return newBlinkDetector(dc)
	}
}
