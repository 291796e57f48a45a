package vision

import (
	"context"

	"github.com/dkarpov/runcatch/internal/capture"
)

// Classification is the verdict for a single frame. Score is nil when
// the active classifier cannot read a numeric score, which is always
// the case for the local detector. A Classification is produced fresh
// on every tick and never merged across ticks.
type Classification struct {
	IsGameOver bool
	Score      *int
	Confidence float64
}

// Classifier answers whether the run has ended on the given frame.
type Classifier interface {
	ClassifyFrame(ctx context.Context, frame *capture.Frame) (*Classification, error)
}
