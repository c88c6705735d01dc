package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// ActivityDetector measures scene activity between consecutive video
// frames using frame differencing with Gaussian blur for noise reduction.
// The pipeline uses it to keep the expensive face-tracking call off the
// hot path while nothing in front of the camera moves.
type ActivityDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// Activity detection constants
const (
	// activityBlurSize is the kernel size for Gaussian blur (21x21)
	activityBlurSize = 21
	// activityDiffThreshold is the binary threshold for difference detection
	activityDiffThreshold = 25
)

// NewActivityDetector creates an ActivityDetector with the given threshold.
// The threshold is the percentage of pixels that must change for the scene
// to count as active; for example 1.0 means 1% of pixels.
func NewActivityDetector(threshold float64) *ActivityDetector {
	return &ActivityDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect compares a frame with the previous one. Returns whether the scene
// is active and the percentage of pixels that changed.
//
// Algorithm:
//  1. Convert frame to grayscale
//  2. Apply Gaussian blur (21x21) to reduce noise
//  3. If first frame, store as reference and return false
//  4. Absolute difference with the previous frame, thresholded at 25
//  5. Non-zero pixels / total pixels = changePercent
//  6. Return changePercent > threshold
func (a *ActivityDetector) Detect(frame *gocv.Mat) (bool, float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: activityBlurSize, Y: activityBlurSize}, 0, 0, gocv.BorderDefault)

	if !a.initialized {
		blurred.CopyTo(&a.prevGray)
		a.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, a.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, activityDiffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	totalPixels := thresh.Rows() * thresh.Cols()

	changePercent := float64(nonZero) / float64(totalPixels) * 100.0

	blurred.CopyTo(&a.prevGray)

	return changePercent > a.threshold, changePercent
}

// Reset clears the detector state so the next frame becomes the reference.
func (a *ActivityDetector) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.prevGray.Empty() {
		a.prevGray.Close()
		a.prevGray = gocv.NewMat()
	}
	a.initialized = false
}

// Close releases resources used by the detector.
func (a *ActivityDetector) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.prevGray.Empty() {
		a.prevGray.Close()
		a.prevGray = gocv.NewMat()
	}
	a.initialized = false
}

// SetThreshold sets the activity threshold as a percentage of changed
// pixels. Values less than or equal to 0 are ignored.
func (a *ActivityDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.threshold = threshold
}
