package classify

import (
	"fmt"
	"math"
)

// Default cutoffs, matching common DESeq2 analysis practice.
const (
	DefaultPadjCutoff    = 0.05
	DefaultUpLFCCutoff   = 1.0
	DefaultDownLFCCutoff = -1.0
)

// Thresholds holds the cutoffs that drive significance classification.
type Thresholds struct {
	PadjCutoff    float64 `json:"padj"`
	UpLFCCutoff   float64 `json:"up_lfc"`
	DownLFCCutoff float64 `json:"down_lfc"`
}

// DefaultThresholds returns the standard cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PadjCutoff:    DefaultPadjCutoff,
		UpLFCCutoff:   DefaultUpLFCCutoff,
		DownLFCCutoff: DefaultDownLFCCutoff,
	}
}

// Validate checks threshold ranges at input boundaries (flags, config,
// request bodies). Classification itself never validates: crossed up/down
// cutoffs are legal and resolve mechanically by rule order.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.PadjCutoff) || t.PadjCutoff <= 0 || t.PadjCutoff > 1 {
		return fmt.Errorf("padj cutoff must be in (0, 1], got %v", t.PadjCutoff)
	}
	if math.IsNaN(t.DownLFCCutoff) || t.DownLFCCutoff > 0 {
		return fmt.Errorf("down log2 fold change cutoff must be <= 0, got %v", t.DownLFCCutoff)
	}
	if math.IsNaN(t.UpLFCCutoff) {
		return fmt.Errorf("up log2 fold change cutoff must be a number")
	}
	return nil
}
