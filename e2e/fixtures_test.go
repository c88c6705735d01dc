package e2e

import "github.com/ayusman/abhinaya/internal/engine"

// eyesFrame builds a frame with both eye-blink blendshape scores set.
func eyesFrame(ts int64, score float64) *engine.Frame {
	return &engine.Frame{
		TimestampMs:  ts,
		FaceDetected: true,
		Blendshapes: map[string]float64{
			engine.BlendshapeEyeBlinkLeft:  score,
			engine.BlendshapeEyeBlinkRight: score,
		},
	}
}

// mouthFrame builds a frame whose mouth corners are width apart.
func mouthFrame(ts int64, width float64) *engine.Frame {
	landmarks := make([]engine.Point3D, engine.NumLandmarks)
	landmarks[engine.MouthCornerLeft] = engine.Point3D{X: 0.5 - width/2, Y: 0.65}
	landmarks[engine.MouthCornerRight] = engine.Point3D{X: 0.5 + width/2, Y: 0.65}
	return &engine.Frame{TimestampMs: ts, FaceDetected: true, Landmarks: landmarks}
}

// singleBlink produces a neutral lead-in, one genuine blink, and a neutral
// tail. The blink falls at startMs with the given duration.
func singleBlink(startMs, durationMs int64) []*engine.Frame {
	var frames []*engine.Frame
	for ts := int64(0); ts < startMs; ts += 33 {
		frames = append(frames, eyesFrame(ts, 0.1))
	}
	for ts := startMs; ts < startMs+durationMs; ts += 33 {
		frames = append(frames, eyesFrame(ts, 0.9))
	}
	for ts := startMs + durationMs; ts < startMs+durationMs+200; ts += 33 {
		frames = append(frames, eyesFrame(ts, 0.1))
	}
	return frames
}

// doubleBlink produces two genuine blinks separated by gapMs between the end
// of the first and the start of the second.
func doubleBlink(startMs, durationMs, gapMs int64) []*engine.Frame {
	frames := singleBlink(startMs, durationMs)
	last := frames[len(frames)-1].TimestampMs

	secondStart := startMs + durationMs + gapMs
	for ts := last + 33; ts < secondStart; ts += 33 {
		frames = append(frames, eyesFrame(ts, 0.1))
	}
	for ts := secondStart; ts < secondStart+durationMs; ts += 33 {
		frames = append(frames, eyesFrame(ts, 0.9))
	}
	for ts := secondStart + durationMs; ts < secondStart+durationMs+200; ts += 33 {
		frames = append(frames, eyesFrame(ts, 0.1))
	}
	return frames
}

// sustainedSmile produces a neutral baseline followed by a wide smile that is
// held for holdMs and continues past the hold.
func sustainedSmile(holdMs int64) []*engine.Frame {
	var frames []*engine.Frame
	for ts := int64(0); ts < 300; ts += 33 {
		frames = append(frames, mouthFrame(ts, 0.10))
	}
	for ts := int64(300); ts < 300+holdMs+500; ts += 33 {
		frames = append(frames, mouthFrame(ts, 0.13))
	}
	return frames
}
