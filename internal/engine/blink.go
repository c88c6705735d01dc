package engine

// blinkHistoryWindowMs bounds how long completed blinks stay in the rolling
// history before they are evicted.
const blinkHistoryWindowMs = 2000

// blinkDetector interprets eye blinks. A single genuine blink is a
// provisional yes; a second genuine blink inside the double-signal window
// turns it into a no. The confirmation gate's hold window gives the second
// blink time to arrive, so the detector itself emits immediately on the
// falling edge of each genuine blink.
type blinkDetector struct {
	cfg        DetectorConfig
	blinking   bool
	blinkStart int64
	history    []int64 // falling-edge timestamps of genuine blinks
}

func newBlinkDetector(cfg DetectorConfig) *blinkDetector {
	return &blinkDetector{cfg: cfg}
}

func (d *blinkDetector) Type() GestureType { return GestureBlink }

func (d *blinkDetector) Reset() {
	d.blinking = false
	d.blinkStart = 0
	d.history = d.history[:0]
}

// Consume tracks rising and falling edges of the averaged eye-blink
// blendshape scores.
//
// A falling edge completes a blink; only durations strictly inside
// (MinDurationMs, MaxDurationMs) count as genuine, filtering tracking noise
// and sustained eye closure. If the two most recent genuine blinks are
// closer than the double-signal window the pair reads as a no and the
// history clears, so a third blink starts a fresh evaluation rather than
// stacking responses.
func (d *blinkDetector) Consume(f *Frame) *RawCandidate {
	left, okL := f.Blendshape(BlendshapeEyeBlinkLeft)
	right, okR := f.Blendshape(BlendshapeEyeBlinkRight)
	if !okL || !okR {
		return nil
	}

	now := f.TimestampMs
	d.evict(now)

	avg := (left + right) / 2

	switch {
	case avg > d.cfg.Threshold && !d.blinking:
		d.blinking = true
		d.blinkStart = now

	case avg < d.cfg.Threshold && d.blinking:
		d.blinking = false

		duration := now - d.blinkStart
		if duration <= d.cfg.MinDurationMs || duration >= d.cfg.MaxDurationMs {
			return nil
		}

		d.history = append(d.history, now)

		if n := len(d.history); n >= 2 && now-d.history[n-2] < d.cfg.DoubleSignalWindowMs {
			d.history = d.history[:0]
			return &RawCandidate{Value: AnswerNo, Gesture: GestureBlink, TimestampMs: now}
		}

		return &RawCandidate{Value: AnswerYes, Gesture: GestureBlink, TimestampMs: now}
	}

	return nil
}

// evict drops history entries older than the rolling window.
func (d *blinkDetector) evict(now int64) {
	keep := d.history[:0]
	for _, ts := range d.history {
		if now-ts <= blinkHistoryWindowMs {
			keep = append(keep, ts)
		}
	}
	d.history = keep
}
