package engine

import "math"

// nodReleaseFactor widens the falling threshold below the rising one so the
// nodding flag does not chatter at the boundary.
const nodReleaseFactor = 0.9

// nodDetector interprets head nods. The vertical distance between the nose
// tip and forehead landmarks approximates head pitch; the neutral pitch is
// captured lazily from the first valid frame after activation.
type nodDetector struct {
	cfg         DetectorConfig
	baseline    float64 // neutral head pitch, 0 = uncalibrated
	nodding     bool
	nodCount    int
	lastNodTime int64
}

func newNodDetector(cfg DetectorConfig) *nodDetector {
	return &nodDetector{cfg: cfg}
}

func (d *nodDetector) Type() GestureType { return GestureNod }

func (d *nodDetector) Reset() {
	d.baseline = 0
	d.nodding = false
	d.nodCount = 0
	d.lastNodTime = 0
}

// Consume counts rising edges of the pitch above the baseline-relative
// threshold. Once the cooldown elapses after the last nod, one nod reads as
// yes and two or more as no, and the count resets.
func (d *nodDetector) Consume(f *Frame) *RawCandidate {
	nose, okN := f.Landmark(NoseTip)
	forehead, okF := f.Landmark(Forehead)
	if !okN || !okF {
		return nil
	}

	pitch := math.Abs(nose.Y - forehead.Y)

	if d.baseline == 0 {
		d.baseline = pitch
		return nil
	}

	now := f.TimestampMs
	threshold := d.baseline * d.cfg.ThresholdMultiplier

	if pitch > threshold {
		if !d.nodding {
			d.nodding = true
			d.nodCount++
			d.lastNodTime = now
		}
	} else if pitch < threshold*nodReleaseFactor {
		d.nodding = false
	}

	if d.nodCount > 0 && now-d.lastNodTime > d.cfg.CooldownMs {
		value := AnswerYes
		if d.nodCount >= 2 {
			value = AnswerNo
		}
		d.nodCount = 0
		return &RawCandidate{Value: value, Gesture: GestureNod, TimestampMs: now}
	}

	return nil
}
