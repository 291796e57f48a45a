package vision

import (
	"context"

	"github.com/dkarpov/runcatch/internal/capture"
)

// Geometry and color signature of the end screen, calibrated against
// the fixed sample resolution: a blue score ribbon in the upper part of
// the frame, a green restart button in the middle band, and a white
// share-link box below it.
const (
	stripWidth = 20

	// Euclidean RGB distance tolerance for the two reference colors.
	colorTolerance = 70

	// A row counts as matching when more than this fraction of the
	// strip matches the cue color.
	rowMatchRatio = 0.40

	// A cue is present when more than this fraction of all rows match
	// inside the cue's vertical band.
	cueRowRatio = 0.02

	whiteFloor = 220
)

var (
	ribbonBlue  = [3]int{66, 133, 244}
	buttonGreen = [3]int{76, 175, 80}
)

// LocalClassifier decides game-over from raw pixel data alone. It is a
// pure function: identical pixel input always yields identical output.
// It can never read the numeric score.
type LocalClassifier struct{}

func NewLocalClassifier() *LocalClassifier {
	return &LocalClassifier{}
}

func (lc *LocalClassifier) ClassifyFrame(_ context.Context, frame *capture.Frame) (*Classification, error) {
	// A missing or truncated pixel buffer is a negative result, not an
	// error; the controller treats it as no new information.
	if !frame.Valid() || frame.Width < stripWidth {
		return &Classification{}, nil
	}

	x0 := frame.Width/2 - stripWidth/2
	minMatches := int(rowMatchRatio * stripWidth)

	var blueRows, greenRows, whiteRows int
	for y := 0; y < frame.Height; y++ {
		var blue, green, white int
		for x := x0; x < x0+stripWidth; x++ {
			r, g, b := frame.At(x, y)
			if withinTolerance(r, g, b, ribbonBlue) {
				blue++
			}
			if withinTolerance(r, g, b, buttonGreen) {
				green++
			}
			if r > whiteFloor && g > whiteFloor && b > whiteFloor {
				white++
			}
		}

		pos := float64(y) / float64(frame.Height)
		if blue > minMatches && pos < 0.40 {
			blueRows++
		}
		if green > minMatches && pos >= 0.30 && pos <= 0.70 {
			greenRows++
		}
		if white > minMatches && pos >= 0.50 && pos <= 0.85 {
			whiteRows++
		}
	}

	minRows := int(cueRowRatio * float64(frame.Height))
	hasRibbon := blueRows > minRows
	hasButton := greenRows > minRows
	hasURLBox := whiteRows > minRows

	// The ribbon is mandatory; either secondary cue is enough, so a
	// partially occluded button or link box does not break detection.
	gameOver := hasRibbon && (hasButton || hasURLBox)

	result := &Classification{IsGameOver: gameOver}
	if gameOver {
		result.Confidence = 1.0
	}
	return result, nil
}

func withinTolerance(r, g, b uint8, ref [3]int) bool {
	dr := int(r) - ref[0]
	dg := int(g) - ref[1]
	db := int(b) - ref[2]
	return dr*dr+dg*dg+db*db <= colorTolerance*colorTolerance
}
