package engine

// DetectorConfig holds the thresholds and durations for a single detector.
// Not every field applies to every gesture type; unused fields are ignored.
type DetectorConfig struct {
	// Threshold is the absolute trigger level (blink blendshape score,
	// wave movement magnitude).
	Threshold float64

	// ThresholdMultiplier scales the captured neutral baseline into a
	// trigger level for baseline-relative detectors (smile, nod).
	ThresholdMultiplier float64

	// MinDurationMs and MaxDurationMs bound how long a signal must be
	// sustained. For blink they bound eye-closure duration; for smile
	// MinDurationMs is the required hold time.
	MinDurationMs int64
	MaxDurationMs int64

	// DoubleSignalWindowMs is the maximum gap between two signals for
	// them to count as a double (a "no").
	DoubleSignalWindowMs int64

	// CooldownMs is the quiet period after the last signal before the
	// accumulated count is classified (nod, wave).
	CooldownMs int64

	// HistorySize bounds the wave detector's position ring buffer.
	HistorySize int
}

// Config is the static table of detector tunings supplied at construction.
type Config struct {
	Blink DetectorConfig
	Smile DetectorConfig
	Nod   DetectorConfig
	Wave  DetectorConfig

	// ConfirmationHoldMs is the confirmation gate's hold window. A raw
	// candidate becomes final only after this delay passes without a
	// superseding candidate.
	ConfirmationHoldMs int64

	// CalibrationStepDelayMs is the delay between calibration progress
	// steps.
	CalibrationStepDelayMs int64
}

// DefaultConfig returns the tuned detector configuration.
func DefaultConfig() Config {
	return Config{
		Blink: DetectorConfig{
			Threshold:            0.5,
			MinDurationMs:        30,
			MaxDurationMs:        350,
			DoubleSignalWindowMs: 500,
		},
		Smile: DetectorConfig{
			ThresholdMultiplier: 1.15,
			MinDurationMs:       1500,
		},
		Nod: DetectorConfig{
			ThresholdMultiplier: 1.2,
			CooldownMs:          600,
		},
		Wave: DetectorConfig{
			Threshold:   0.25,
			CooldownMs:  600,
			HistorySize: 15,
		},
		ConfirmationHoldMs:     800,
		CalibrationStepDelayMs: 500,
	}
}

// gestureConfig returns the tuning table entry for the given gesture type.
func (c Config) gestureConfig(t GestureType) DetectorConfig {
	switch t {
	case GestureSmile:
		return c.Smile
	case GestureNod:
		return c.Nod
	case GestureWave:
		return c.Wave
	default:
		return c.Blink
	}
}

// withDefaults fills zero-valued fields from DefaultConfig so a partially
// specified Config behaves sensibly.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	c.Blink = c.Blink.withDefaults(def.Blink)
	c.Smile = c.Smile.withDefaults(def.Smile)
	c.Nod = c.Nod.withDefaults(def.Nod)
	c.Wave = c.Wave.withDefaults(def.Wave)
	if c.ConfirmationHoldMs <= 0 {
		c.ConfirmationHoldMs = def.ConfirmationHoldMs
	}
	if c.CalibrationStepDelayMs <= 0 {
		c.CalibrationStepDelayMs = def.CalibrationStepDelayMs
	}
	return c
}

func (d DetectorConfig) withDefaults(def DetectorConfig) DetectorConfig {
	if d.Threshold <= 0 {
		d.Threshold = def.Threshold
	}
	if d.ThresholdMultiplier <= 0 {
		d.ThresholdMultiplier = def.ThresholdMultiplier
	}
	if d.MinDurationMs <= 0 {
		d.MinDurationMs = def.MinDurationMs
	}
	if d.MaxDurationMs <= 0 {
		d.MaxDurationMs = def.MaxDurationMs
	}
	if d.DoubleSignalWindowMs <= 0 {
		d.DoubleSignalWindowMs = def.DoubleSignalWindowMs
	}
	if d.CooldownMs <= 0 {
		d.CooldownMs = def.CooldownMs
	}
	if d.HistorySize <= 0 {
		d.HistorySize = def.HistorySize
	}
	return d
}
