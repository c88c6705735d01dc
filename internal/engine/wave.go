package engine

// waveMinPoints is the minimum position history before movement magnitude
// is meaningful.
const waveMinPoints = 5

// waveDetector interprets side-to-side movement of the face center as a
// wave. The tracked point is the midpoint between the two face-edge
// landmarks; actual hand tracking is not available, so face movement stands
// in for the wave signal.
type waveDetector struct {
	cfg          DetectorConfig
	history      []Point3D // bounded ring of face-center positions
	waving       bool
	waveCount    int
	lastWaveTime int64
}

func newWaveDetector(cfg DetectorConfig) *waveDetector {
	return &waveDetector{
		cfg:     cfg,
		history: make([]Point3D, 0, cfg.HistorySize),
	}
}

func (d *waveDetector) Type() GestureType { return GestureWave }

func (d *waveDetector) Reset() {
	d.history = d.history[:0]
	d.waving = false
	d.waveCount = 0
	d.lastWaveTime = 0
}

// Consume appends the face-center point to the bounded history and sums
// consecutive point-to-point distances as a movement magnitude. Magnitude
// crossing the threshold on the rising edge counts a wave; falling below
// half the threshold releases the waving flag. After the cooldown one wave
// reads as yes, two or more as no; the count and history then clear.
func (d *waveDetector) Consume(f *Frame) *RawCandidate {
	left, okL := f.Landmark(FaceEdgeLeft)
	right, okR := f.Landmark(FaceEdgeRight)
	if !okL || !okR {
		return nil
	}

	center := midpoint(left, right)

	if len(d.history) >= d.cfg.HistorySize {
		// Shift the buffer left by one, dropping the oldest point.
		copy(d.history, d.history[1:])
		d.history = d.history[:d.cfg.HistorySize-1]
	}
	d.history = append(d.history, center)

	now := f.TimestampMs

	if len(d.history) >= waveMinPoints {
		var magnitude float64
		for i := 1; i < len(d.history); i++ {
			magnitude += distance3D(d.history[i-1], d.history[i])
		}

		if magnitude > d.cfg.Threshold {
			if !d.waving {
				d.waving = true
				d.waveCount++
				d.lastWaveTime = now
			}
		} else if magnitude < d.cfg.Threshold/2 {
			d.waving = false
		}
	}

	if d.waveCount > 0 && now-d.lastWaveTime > d.cfg.CooldownMs {
		value := AnswerYes
		if d.waveCount >= 2 {
			value = AnswerNo
		}
		d.waveCount = 0
		d.waving = false
		d.history = d.history[:0]
		return &RawCandidate{Value: value, Gesture: GestureWave, TimestampMs: now}
	}

	return nil
}
