package engine

import "testing"

// waveFrame builds a frame whose face-edge midpoint sits at centerX.
func waveFrame(ts int64, centerX float64) *Frame {
	landmarks := make([]Point3D, NumLandmarks)
	landmarks[FaceEdgeLeft] = Point3D{X: centerX - 0.2, Y: 0.5}
	landmarks[FaceEdgeRight] = Point3D{X: centerX + 0.2, Y: 0.5}
	return &Frame{TimestampMs: ts, FaceDetected: true, Landmarks: landmarks}
}

func TestWaveDetector_NeedsMinimumHistory(t *testing.T) {
	d := newWaveDetector(DefaultConfig().Wave)

	// Large jumps, but fewer than the minimum points: no wave counted.
	xs := []float64{0.3, 0.7, 0.3, 0.7}
	for i, x := range xs {
		if c := d.Consume(waveFrame(int64(i)*20, x)); c != nil {
			t.Fatalf("candidate %+v with %d history points", c, i+1)
		}
	}
	if d.waveCount != 0 {
		t.Errorf("waveCount = %d, want 0 before minimum history", d.waveCount)
	}
}

func TestWaveDetector_SingleWaveEmitsYes(t *testing.T) {
	d := newWaveDetector(DefaultConfig().Wave) // threshold 0.25, cooldown 600ms

	// Still face, then a burst of movement.
	d.Consume(waveFrame(0, 0.5))
	d.Consume(waveFrame(20, 0.5))
	d.Consume(waveFrame(40, 0.3))
	d.Consume(waveFrame(60, 0.7))
	d.Consume(waveFrame(80, 0.3)) // 5 points, magnitude 1.0

	if d.waveCount != 1 {
		t.Fatalf("waveCount = %d, want 1 after movement burst", d.waveCount)
	}

	if c := d.Consume(waveFrame(300, 0.3)); c != nil {
		t.Fatalf("candidate %+v before cooldown elapsed", c)
	}

	c := d.Consume(waveFrame(700, 0.3))
	if c == nil || c.Value != AnswerYes || c.Gesture != GestureWave {
		t.Fatalf("candidate = %+v, want single-wave yes", c)
	}
	if len(d.history) != 0 {
		t.Errorf("history length = %d, want 0 after classification", len(d.history))
	}
	if d.waveCount != 0 {
		t.Errorf("waveCount = %d, want 0 after classification", d.waveCount)
	}
}

func TestWaveDetector_DoubleWaveEmitsNo(t *testing.T) {
	d := newWaveDetector(DefaultConfig().Wave)

	ts := int64(0)
	feed := func(x float64) {
		d.Consume(waveFrame(ts, x))
		ts += 20
	}

	// Fill history with a still face, then one jump: magnitude 0.26.
	for i := 0; i < 10; i++ {
		feed(0.5)
	}
	feed(0.76)
	if d.waveCount != 1 {
		t.Fatalf("waveCount = %d, want 1 after first jump", d.waveCount)
	}

	// Hold still until the jump ages out of the ring and the flag releases.
	for i := 0; i < 15; i++ {
		feed(0.76)
	}
	if d.waving {
		t.Fatal("waving flag still set after magnitude decayed")
	}

	// Second jump within the cooldown window.
	feed(0.5)
	if d.waveCount != 2 {
		t.Fatalf("waveCount = %d, want 2 after second jump", d.waveCount)
	}

	c := d.Consume(waveFrame(ts+601, 0.5))
	if c == nil || c.Value != AnswerNo {
		t.Fatalf("candidate = %+v, want double-wave no", c)
	}
}

func TestWaveDetector_HistoryBounded(t *testing.T) {
	cfg := DefaultConfig().Wave
	d := newWaveDetector(cfg)

	for i := 0; i < cfg.HistorySize*2; i++ {
		d.Consume(waveFrame(int64(i)*20, 0.5))
	}
	if len(d.history) != cfg.HistorySize {
		t.Errorf("history length = %d, want %d", len(d.history), cfg.HistorySize)
	}
}

func TestWaveDetector_MissingLandmarks(t *testing.T) {
	d := newWaveDetector(DefaultConfig().Wave)

	short := &Frame{
		TimestampMs:  0,
		FaceDetected: true,
		Landmarks:    make([]Point3D, FaceEdgeLeft+1), // right edge missing
	}
	if c := d.Consume(short); c != nil {
		t.Errorf("malformed frame emitted candidate %+v", c)
	}
	if len(d.history) != 0 {
		t.Error("malformed frame must not extend the position history")
	}
}

func TestWaveDetector_Reset(t *testing.T) {
	d := newWaveDetector(DefaultConfig().Wave)

	d.Consume(waveFrame(0, 0.5))
	d.Consume(waveFrame(20, 0.5))
	d.Consume(waveFrame(40, 0.3))
	d.Consume(waveFrame(60, 0.7))
	d.Consume(waveFrame(80, 0.3))

	d.Reset()

	if len(d.history) != 0 || d.waving || d.waveCount != 0 || d.lastWaveTime != 0 {
		t.Errorf("state after reset = {history:%d waving:%v count:%d}, want zero values",
			len(d.history), d.waving, d.waveCount)
	}
}
