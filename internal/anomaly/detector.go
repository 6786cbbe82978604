// Package anomaly flags abnormal drops in per-account daily usage series.
package anomaly

import (
	"github.com/sells-group/health-cli/internal/config"
	"github.com/sells-group/health-cli/internal/model"
)

// DefaultConfig returns the standard detector thresholds: a 7-day trailing
// baseline, a 30% drop trigger, and an absolute floor of 50.
func DefaultConfig() config.AnomalyConfig {
	return config.AnomalyConfig{
		Window:    7,
		DropRatio: 0.7,
		Floor:     50,
	}
}

// Detector scans an ordered usage series and flags samples that fall
// abnormally below their trailing baseline or below an absolute floor.
type Detector struct {
	window    int
	dropRatio float64
	floor     float64
}

// NewDetector creates a Detector from config, substituting defaults for
// unset values.
func NewDetector(cfg config.AnomalyConfig) *Detector {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.DropRatio <= 0 {
		cfg.DropRatio = def.DropRatio
	}
	if cfg.Floor <= 0 {
		cfg.Floor = def.Floor
	}
	return &Detector{window: cfg.Window, dropRatio: cfg.DropRatio, floor: cfg.Floor}
}

// Detect returns a new series with Anomaly set on abnormal samples. The
// input is never mutated.
//
// For each sample past the warm-up window, the baseline is the arithmetic
// mean of the preceding window samples (temporal neighbors, so the pass is
// order-sensitive). A sample is anomalous when its value drops below
// dropRatio times the baseline, or below the absolute floor. Samples
// inside the warm-up window have insufficient history and are never
// flagged; a series shorter than the window is returned unflagged.
func (d *Detector) Detect(series []model.UsageSample) []model.UsageSample {
	if series == nil {
		return nil
	}

	out := make([]model.UsageSample, len(series))
	copy(out, series)

	var sum float64
	for i := range out {
		out[i].Anomaly = false
		if i >= d.window {
			baseline := sum / float64(d.window)
			if out[i].Value < d.dropRatio*baseline || out[i].Value < d.floor {
				out[i].Anomaly = true
			}
			sum -= out[i-d.window].Value
		}
		sum += out[i].Value
	}

	return out
}

// Count returns how many samples in a series are flagged.
func Count(series []model.UsageSample) int {
	var n int
	for _, s := range series {
		if s.Anomaly {
			n++
		}
	}
	return n
}
