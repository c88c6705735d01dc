package engine

import (
	"errors"
	"testing"
	"time"
)

// testConfig returns a config with a short confirmation hold so tests can
// wait it out in real time. Detector windows stay at their defaults and are
// driven by frame timestamps.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ConfirmationHoldMs = 40
	cfg.CalibrationStepDelayMs = 5
	return cfg
}

func TestEngine_Defaults(t *testing.T) {
	e := New(Config{})

	if e.ActiveGesture() != GestureBlink {
		t.Errorf("active gesture = %s, want %s", e.ActiveGesture(), GestureBlink)
	}
	if e.Status() != StatusSearching {
		t.Errorf("status = %s, want %s", e.Status(), StatusSearching)
	}
	if e.SessionID() == "" {
		t.Error("session ID not assigned")
	}
}

func TestEngine_StatusFollowsFacePresence(t *testing.T) {
	e := New(testConfig())

	var statuses []Status
	e.OnStatus(func(s Status) { statuses = append(statuses, s) })

	e.OnFrame(blinkFrame(0, 0.0))
	if e.Status() != StatusDetected {
		t.Errorf("status = %s, want %s with face present", e.Status(), StatusDetected)
	}

	e.OnFrame(&Frame{TimestampMs: 30, FaceDetected: false})
	if e.Status() != StatusSearching {
		t.Errorf("status = %s, want %s with no face", e.Status(), StatusSearching)
	}

	if len(statuses) != 2 {
		t.Errorf("status callbacks = %v, want detected then searching", statuses)
	}
}

func TestEngine_BlinkYesEndToEnd(t *testing.T) {
	e := New(testConfig())

	signals := make(chan FinalSignal, 4)
	e.OnSignal(func(s FinalSignal) { signals <- s })

	e.OnFrame(blinkFrame(0, 0.9))
	e.OnFrame(blinkFrame(100, 0.0))

	if e.Status() != StatusWaiting {
		t.Errorf("status = %s, want %s while candidate pending", e.Status(), StatusWaiting)
	}

	select {
	case s := <-signals:
		if s.Value != AnswerYes || s.Gesture != GestureBlink {
			t.Errorf("signal = %+v, want blink yes", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no final signal emitted")
	}
}

func TestEngine_GestureSwitchCancelsPending(t *testing.T) {
	e := New(testConfig())

	signals := make(chan FinalSignal, 4)
	e.OnSignal(func(s FinalSignal) { signals <- s })

	// Raise a blink candidate, then switch gesture mid-hold.
	e.OnFrame(blinkFrame(0, 0.9))
	e.OnFrame(blinkFrame(100, 0.0))
	if err := e.SetActiveGesture(GestureNod); err != nil {
		t.Fatalf("SetActiveGesture() error = %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	if len(signals) != 0 {
		t.Fatalf("received %d signals, want 0 (pending candidate cancelled)", len(signals))
	}
	if e.ActiveGesture() != GestureNod {
		t.Errorf("active gesture = %s, want %s", e.ActiveGesture(), GestureNod)
	}
}

func TestEngine_GestureSwitchRacingFrameFeedCancelsPending(t *testing.T) {
	e := New(testConfig())

	signals := make(chan FinalSignal, 64)
	e.OnSignal(func(s FinalSignal) { signals <- s })

	// A blink candidate raised concurrently with a gesture switch must
	// never survive the switch: either the switch's cancel lands after
	// the submit and clears it, or the swapped-in detector never raises
	// it. Run the interleaving many times; no signal may ever finalize.
	for i := 0; i < 100; i++ {
		if err := e.SetActiveGesture(GestureBlink); err != nil {
			t.Fatalf("SetActiveGesture() error = %v", err)
		}

		done := make(chan struct{})
		go func() {
			e.OnFrame(blinkFrame(0, 0.9))
			e.OnFrame(blinkFrame(100, 0.0))
			close(done)
		}()
		if err := e.SetActiveGesture(GestureNod); err != nil {
			t.Fatalf("SetActiveGesture() error = %v", err)
		}
		<-done
	}

	time.Sleep(150 * time.Millisecond)

	if n := len(signals); n != 0 {
		s := <-signals
		t.Fatalf("received %d signals (first %+v), want 0 after gesture switches", n, s)
	}
}

func TestEngine_SetActiveGestureRejectsUnknown(t *testing.T) {
	e := New(testConfig())

	if err := e.SetActiveGesture("shrug"); err == nil {
		t.Error("expected error for unknown gesture type")
	}
	if e.ActiveGesture() != GestureBlink {
		t.Errorf("active gesture = %s, want %s (unchanged)", e.ActiveGesture(), GestureBlink)
	}
}

func TestEngine_ResetIdempotent(t *testing.T) {
	e := New(testConfig())

	// Dirty the state: half-done blink plus a pending candidate.
	e.OnFrame(blinkFrame(0, 0.9))
	e.OnFrame(blinkFrame(100, 0.0))

	e.Reset()
	firstSession := e.SessionID()
	e.Reset()

	if e.Status() != StatusSearching {
		t.Errorf("status = %s, want %s", e.Status(), StatusSearching)
	}
	if e.gate.Pending() {
		t.Error("pending candidate survived reset")
	}
	if e.ActiveGesture() != GestureBlink {
		t.Errorf("active gesture = %s, want %s (reset keeps type)", e.ActiveGesture(), GestureBlink)
	}
	if e.SessionID() == firstSession {
		t.Error("reset did not start a new session")
	}

	// A detector reset twice behaves like one reset twice: the next blink
	// is evaluated from initial state.
	signals := make(chan FinalSignal, 4)
	e.OnSignal(func(s FinalSignal) { signals <- s })
	e.OnFrame(blinkFrame(1000, 0.9))
	e.OnFrame(blinkFrame(1100, 0.0))

	select {
	case s := <-signals:
		if s.Value != AnswerYes {
			t.Errorf("signal = %+v, want yes from fresh state", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no signal after double reset")
	}
}

func TestEngine_ErrorStopsFrames(t *testing.T) {
	e := New(testConfig())

	signals := make(chan FinalSignal, 4)
	e.OnSignal(func(s FinalSignal) { signals <- s })

	upstreamErr := errors.New("camera disconnected")
	e.SetError(upstreamErr)

	if e.Status() != StatusError {
		t.Fatalf("status = %s, want %s", e.Status(), StatusError)
	}
	if !errors.Is(e.Err(), upstreamErr) {
		t.Errorf("Err() = %v, want %v", e.Err(), upstreamErr)
	}

	// Frames are dropped while errored: a clean blink must not signal.
	e.OnFrame(blinkFrame(0, 0.9))
	e.OnFrame(blinkFrame(100, 0.0))
	time.Sleep(120 * time.Millisecond)
	if len(signals) != 0 {
		t.Fatalf("received %d signals while errored, want 0", len(signals))
	}

	// Reset resumes processing.
	e.Reset()
	if e.Err() != nil {
		t.Errorf("Err() after reset = %v, want nil", e.Err())
	}
	e.OnFrame(blinkFrame(1000, 0.9))
	e.OnFrame(blinkFrame(1100, 0.0))

	select {
	case <-signals:
	case <-time.After(time.Second):
		t.Fatal("no signal after recovery reset")
	}
}

func TestEngine_StartCalibration(t *testing.T) {
	e := New(testConfig())

	// Capture a smile baseline, then calibrate: the baseline must be
	// recaptured lazily afterwards.
	if err := e.SetActiveGesture(GestureSmile); err != nil {
		t.Fatalf("SetActiveGesture() error = %v", err)
	}
	e.OnFrame(smileFrame(0, 0.10))

	progress, err := e.StartCalibration()
	if err != nil {
		t.Fatalf("StartCalibration() error = %v", err)
	}

	if _, err := e.StartCalibration(); !errors.Is(err, ErrCalibrationRunning) {
		t.Errorf("overlapping StartCalibration() error = %v, want ErrCalibrationRunning", err)
	}

	var last int
	for p := range progress {
		last = p
	}
	if last != 100 {
		t.Errorf("final progress = %d, want 100", last)
	}

	// Fresh detector instance: first frame sets a new baseline, no candidate.
	sd, ok := e.detector.(*smileDetector)
	if !ok {
		t.Fatalf("active detector = %T, want *smileDetector", e.detector)
	}
	if sd.baseline != 0 {
		t.Errorf("baseline = %f, want 0 until next valid frame", sd.baseline)
	}
}
