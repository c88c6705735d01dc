package engine

import (
	"errors"
	"sync"
	"time"
)

// ErrCalibrationRunning is returned when calibration is started while a
// previous run is still in progress. Overlapping runs are rejected rather
// than queued.
var ErrCalibrationRunning = errors.New("calibration already in progress")

// calibrationSteps is the fixed progress sequence reported to the user.
var calibrationSteps = []int{0, 20, 40, 60, 80, 100}

// Calibrator drives the fixed-step calibration progress sequence. It exists
// purely for user feedback; detector baselines are recaptured lazily from
// the first valid frame after the accompanying reset.
type Calibrator struct {
	mu        sync.Mutex
	stepDelay time.Duration
	running   bool
	cancel    chan struct{}
}

// NewCalibrator creates a Calibrator with the given inter-step delay in
// milliseconds.
func NewCalibrator(stepDelayMs int64) *Calibrator {
	return &Calibrator{
		stepDelay: time.Duration(stepDelayMs) * time.Millisecond,
	}
}

// Start begins the progress sequence and returns a channel that receives
// 0, 20, 40, 60, 80, 100 with the configured delay between steps, then
// closes. Returns ErrCalibrationRunning if a run is already in progress.
func (c *Calibrator) Start() (<-chan int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil, ErrCalibrationRunning
	}
	c.running = true
	c.cancel = make(chan struct{})

	// Buffered to the full sequence so a slow consumer never blocks the
	// step loop.
	progress := make(chan int, len(calibrationSteps))
	go c.run(progress, c.cancel)

	return progress, nil
}

// Cancel stops an in-progress run. The progress channel is closed without
// receiving further steps, and a new run may start immediately. Safe to
// call when no run is active.
func (c *Calibrator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
		c.running = false
	}
}

// Running reports whether a calibration run is in progress.
func (c *Calibrator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Calibrator) run(progress chan int, cancel chan struct{}) {
	defer func() {
		close(progress)
		c.mu.Lock()
		// Cancel may already have released this run and a new one may
		// have started; only clear state still belonging to this run.
		if c.cancel == cancel {
			c.cancel = nil
			c.running = false
		}
		c.mu.Unlock()
	}()

	for i, step := range calibrationSteps {
		progress <- step
		if i == len(calibrationSteps)-1 {
			return
		}
		select {
		case <-cancel:
			return
		case <-time.After(c.stepDelay):
		}
	}
}
