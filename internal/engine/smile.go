package engine

// smileDetector interprets a sustained smile as yes and a retracted one as
// no. The neutral mouth width is captured lazily from the first valid frame
// after activation and stays fixed until the detector is reset.
type smileDetector struct {
	cfg        DetectorConfig
	baseline   float64 // neutral mouth width, 0 = uncalibrated
	smiling    bool
	smileStart int64
	answered   bool // yes already emitted for the current smile
}

func newSmileDetector(cfg DetectorConfig) *smileDetector {
	return &smileDetector{cfg: cfg}
}

func (d *smileDetector) Type() GestureType { return GestureSmile }

func (d *smileDetector) Reset() {
	d.baseline = 0
	d.smiling = false
	d.smileStart = 0
	d.answered = false
}

// Consume measures the mouth width as the Euclidean distance between the
// two mouth-corner landmarks and compares it against the baseline-relative
// threshold.
//
// Holding the width above threshold for MinDurationMs emits yes exactly
// once per sustained smile. Dropping below threshold before the hold
// completes reads as a retraction and emits no.
func (d *smileDetector) Consume(f *Frame) *RawCandidate {
	left, okL := f.Landmark(MouthCornerLeft)
	right, okR := f.Landmark(MouthCornerRight)
	if !okL || !okR {
		return nil
	}

	width := distance3D(left, right)

	// First valid frame captures the neutral baseline and emits nothing.
	if d.baseline == 0 {
		d.baseline = width
		return nil
	}

	now := f.TimestampMs
	threshold := d.baseline * d.cfg.ThresholdMultiplier

	if width > threshold {
		if !d.smiling {
			d.smiling = true
			d.smileStart = now
			return nil
		}
		if !d.answered && now-d.smileStart >= d.cfg.MinDurationMs {
			d.answered = true
			return &RawCandidate{Value: AnswerYes, Gesture: GestureSmile, TimestampMs: now}
		}
		return nil
	}

	if d.smiling && !d.answered {
		// Smile broke off before the hold completed: retraction.
		d.smiling = false
		return &RawCandidate{Value: AnswerNo, Gesture: GestureSmile, TimestampMs: now}
	}

	d.smiling = false
	d.answered = false
	return nil
}
