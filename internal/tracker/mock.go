package tracker

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/abhinaya/internal/engine"
)

// MockTracker is a test implementation of the Tracker interface. It plays
// back a scripted sequence of measurement frames, ignoring the video input.
type MockTracker struct {
	mu     sync.Mutex
	frames []*engine.Frame
	index  int
	loop   bool
	err    error
}

// NewMockTracker creates a new MockTracker instance. Without scripted
// frames it reports "no face" for every call.
func NewMockTracker() *MockTracker {
	return &MockTracker{}
}

// SetFrames replaces the scripted frame sequence. With loop set, playback
// restarts from the beginning once the sequence is exhausted; otherwise the
// last frame repeats.
func (m *MockTracker) SetFrames(frames []*engine.Frame, loop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
	m.index = 0
	m.loop = loop
}

// SetError sets the error that will be returned by Track.
func (m *MockTracker) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Reset restarts playback from the beginning.
func (m *MockTracker) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = 0
}

// Track returns the next scripted frame, restamped with the caller's
// timestamp.
func (m *MockTracker) Track(_ *gocv.Mat, timestampMs int64) (*engine.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	if len(m.frames) == 0 {
		return &engine.Frame{TimestampMs: timestampMs}, nil
	}

	if m.index >= len(m.frames) {
		if m.loop {
			m.index = 0
		} else {
			m.index = len(m.frames) - 1
		}
	}

	scripted := m.frames[m.index]
	m.index++

	out := *scripted
	out.TimestampMs = timestampMs
	return &out, nil
}

// Close is a no-op for the mock tracker.
func (m *MockTracker) Close() error {
	return nil
}
