package engine

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Status describes what the engine is currently doing with incoming frames.
type Status string

const (
	// StatusSearching means no face is present in the incoming frames.
	StatusSearching Status = "searching"
	// StatusDetected means a face is present and the active detector is
	// consuming frames.
	StatusDetected Status = "detected"
	// StatusWaiting means a candidate answer is waiting out the
	// confirmation hold window.
	StatusWaiting Status = "waiting"
	// StatusError means an upstream collaborator reported a fatal
	// failure; frames are dropped until Reset is called.
	StatusError Status = "error"
)

// Engine is the gesture session controller. It holds exactly one active
// detector at a time, multiplexes frames to it, and forwards raw candidates
// through the confirmation gate to the signal subscribers.
//
// Frames must arrive serially from a single driving loop; the engine is a
// single-owner state machine and is not safe for concurrent OnFrame calls
// without external serialization.
type Engine struct {
	mu         sync.Mutex
	cfg        Config
	active     GestureType
	detector   Detector
	gate       *Gate
	calibrator *Calibrator
	status     Status
	sessionID  string
	lastErr    error
	signalFns  []func(FinalSignal)
	statusFns  []func(Status)
}

// New creates an Engine with the given configuration. Zero-valued config
// fields fall back to DefaultConfig. The active gesture starts as blink.
func New(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		cfg:        cfg,
		active:     GestureBlink,
		status:     StatusSearching,
		sessionID:  uuid.NewString(),
		calibrator: NewCalibrator(cfg.CalibrationStepDelayMs),
	}
	e.detector = newDetector(GestureBlink, cfg)
	e.gate = NewGate(cfg.ConfirmationHoldMs, e.emitSignal)
	return e
}

// OnSignal registers a callback invoked once per confirmed final signal.
func (e *Engine) OnSignal(fn func(FinalSignal)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.signalFns = append(e.signalFns, fn)
}

// OnStatus registers a callback invoked whenever the status changes.
func (e *Engine) OnStatus(fn func(Status)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statusFns = append(e.statusFns, fn)
}

// Status returns the current engine status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// ActiveGesture returns the currently active gesture type.
func (e *Engine) ActiveGesture() GestureType {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// SessionID returns the identifier of the current answer session. Reset
// starts a new session.
func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// Err returns the upstream error set by SetError, or nil.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// OnFrame consumes one measurement frame. Frames are dropped while the
// engine is in the error status. Frames without a face report the searching
// status and are not forwarded to the active detector.
func (e *Engine) OnFrame(f *Frame) {
	if f == nil {
		return
	}

	e.mu.Lock()
	if e.status == StatusError {
		e.mu.Unlock()
		return
	}
	if !f.FaceDetected {
		e.mu.Unlock()
		e.setStatus(StatusSearching)
		return
	}

	// Submit while still holding the engine lock so a concurrent gesture
	// switch or reset cannot slip between consuming the candidate and
	// handing it to the gate; a candidate from a superseded detector
	// would otherwise finalize after its gesture was switched away.
	candidate := e.detector.Consume(f)
	if candidate != nil {
		e.gate.Submit(*candidate)
	}
	pending := candidate != nil || e.gate.Pending()
	e.mu.Unlock()

	if pending {
		e.setStatus(StatusWaiting)
	} else {
		e.setStatus(StatusDetected)
	}
}

// SetActiveGesture swaps the active detector to the given gesture type. The
// replacement is a fresh instance, so baselines and counters return to
// their initial values, and any pending candidate is cancelled.
func (e *Engine) SetActiveGesture(t GestureType) error {
	if !t.Valid() {
		return fmt.Errorf("unknown gesture type %q", t)
	}

	e.mu.Lock()
	e.gate.Cancel()
	e.active = t
	e.detector = newDetector(t, e.cfg)
	errSet := e.status == StatusError
	e.mu.Unlock()

	if !errSet {
		e.setStatus(StatusSearching)
	}
	log.Printf("Active gesture set to %s", t)
	return nil
}

// Reset performs the same full reset as a gesture switch without changing
// the active type: fresh detector state, no pending candidate, and a new
// session ID. It also clears the error status so frame processing resumes.
func (e *Engine) Reset() {
	e.calibrator.Cancel()

	e.mu.Lock()
	e.gate.Cancel()
	e.detector = newDetector(e.active, e.cfg)
	e.lastErr = nil
	e.sessionID = uuid.NewString()
	e.status = StatusSearching
	fns := append([]func(Status){}, e.statusFns...)
	e.mu.Unlock()

	for _, fn := range fns {
		fn(StatusSearching)
	}
}

// SetError puts the engine into the error status on behalf of an upstream
// collaborator (camera or model failure). Frames are dropped and any
// pending candidate is cancelled until Reset is called.
func (e *Engine) SetError(err error) {
	e.calibrator.Cancel()

	// Cancel and record the error in one critical section so a frame in
	// flight cannot submit a fresh candidate after the cancel.
	e.mu.Lock()
	e.gate.Cancel()
	e.lastErr = err
	changed := e.status != StatusError
	e.status = StatusError
	fns := append([]func(Status){}, e.statusFns...)
	e.mu.Unlock()

	if changed {
		for _, fn := range fns {
			fn(StatusError)
		}
	}
	log.Printf("Engine error: %v", err)
}

// StartCalibration resets the active detector so baselines are recaptured
// lazily from the next valid frame, then begins the calibration progress
// sequence. Returns ErrCalibrationRunning if a run is already in progress.
func (e *Engine) StartCalibration() (<-chan int, error) {
	progress, err := e.calibrator.Start()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.gate.Cancel()
	e.detector = newDetector(e.active, e.cfg)
	e.mu.Unlock()

	return progress, nil
}

// emitSignal fans a confirmed signal out to subscribers. Called by the gate
// outside its own lock.
func (e *Engine) emitSignal(s FinalSignal) {
	e.mu.Lock()
	fns := append([]func(FinalSignal){}, e.signalFns...)
	restore := e.status == StatusWaiting
	e.mu.Unlock()

	if restore {
		e.setStatus(StatusDetected)
	}
	for _, fn := range fns {
		fn(s)
	}
}

// setStatus updates the status and notifies subscribers outside the lock.
func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	if e.status == s {
		e.mu.Unlock()
		return
	}
	e.status = s
	fns := append([]func(Status){}, e.statusFns...)
	e.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
