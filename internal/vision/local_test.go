package vision

import (
	"bytes"
	"context"
	"testing"

	"github.com/dkarpov/runcatch/internal/capture"
)

func blankFrame() *capture.Frame {
	f := &capture.Frame{
		Width:  capture.SampleWidth,
		Height: capture.SampleHeight,
		Pix:    make([]byte, capture.SampleWidth*capture.SampleHeight*4),
	}
	fillRect(f, 0, 0, f.Width, f.Height, 40, 40, 40)
	return f
}

func fillRect(f *capture.Frame, x0, y0, x1, y1 int, r, g, b uint8) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := (y*f.Width + x) * 4
			f.Pix[i] = r
			f.Pix[i+1] = g
			f.Pix[i+2] = b
			f.Pix[i+3] = 255
		}
	}
}

// Cue painters, positioned inside the vertical bands the detector
// scans: ribbon in the top 40%, button in the 30-70% band, link box in
// the 50-85% band.
func paintRibbon(f *capture.Frame) {
	fillRect(f, 0, 40, f.Width, 100, 66, 133, 244)
}

func paintButton(f *capture.Frame) {
	fillRect(f, 220, 150, 420, 200, 76, 175, 80)
}

func paintURLBox(f *capture.Frame) {
	fillRect(f, 180, 260, 460, 300, 235, 235, 235)
}

func TestLocalClassifier(t *testing.T) {
	tests := []struct {
		name       string
		paint      []func(*capture.Frame)
		wantOver   bool
		wantConf   float64
	}{
		{
			name:     "blank frame",
			paint:    nil,
			wantOver: false,
			wantConf: 0.0,
		},
		{
			name:     "ribbon and button",
			paint:    []func(*capture.Frame){paintRibbon, paintButton},
			wantOver: true,
			wantConf: 1.0,
		},
		{
			name:     "ribbon and url box",
			paint:    []func(*capture.Frame){paintRibbon, paintURLBox},
			wantOver: true,
			wantConf: 1.0,
		},
		{
			name:     "all three cues",
			paint:    []func(*capture.Frame){paintRibbon, paintButton, paintURLBox},
			wantOver: true,
			wantConf: 1.0,
		},
		{
			name:     "ribbon alone is not enough",
			paint:    []func(*capture.Frame){paintRibbon},
			wantOver: false,
			wantConf: 0.0,
		},
		{
			name:     "secondary cues without ribbon",
			paint:    []func(*capture.Frame){paintButton, paintURLBox},
			wantOver: false,
			wantConf: 0.0,
		},
		{
			name: "ribbon below its band is ignored",
			paint: []func(*capture.Frame){
				func(f *capture.Frame) { fillRect(f, 0, 180, f.Width, 240, 66, 133, 244) },
				paintButton,
			},
			wantOver: false,
			wantConf: 0.0,
		},
		{
			name: "ribbon off the center strip is ignored",
			paint: []func(*capture.Frame){
				func(f *capture.Frame) { fillRect(f, 0, 40, 100, 100, 66, 133, 244) },
				paintButton,
			},
			wantOver: false,
			wantConf: 0.0,
		},
		{
			name: "near-match colors within tolerance",
			paint: []func(*capture.Frame){
				func(f *capture.Frame) { fillRect(f, 0, 40, f.Width, 100, 80, 150, 230) },
				func(f *capture.Frame) { fillRect(f, 220, 150, 420, 200, 60, 160, 95) },
			},
			wantOver: true,
			wantConf: 1.0,
		},
	}

	lc := NewLocalClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := blankFrame()
			for _, paint := range tt.paint {
				paint(frame)
			}

			result, err := lc.ClassifyFrame(context.Background(), frame)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.IsGameOver != tt.wantOver {
				t.Errorf("expected isGameOver=%v, got %v", tt.wantOver, result.IsGameOver)
			}
			if result.Confidence != tt.wantConf {
				t.Errorf("expected confidence=%v, got %v", tt.wantConf, result.Confidence)
			}
			if result.Score != nil {
				t.Errorf("local classifier must never report a score, got %d", *result.Score)
			}
		})
	}
}

func TestLocalClassifierIsPure(t *testing.T) {
	frame := blankFrame()
	paintRibbon(frame)
	paintButton(frame)
	pixBefore := make([]byte, len(frame.Pix))
	copy(pixBefore, frame.Pix)

	lc := NewLocalClassifier()
	first, err := lc.ClassifyFrame(context.Background(), frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		result, err := lc.ClassifyFrame(context.Background(), frame)
		if err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
		if result.IsGameOver != first.IsGameOver || result.Confidence != first.Confidence {
			t.Fatalf("call %d diverged: got %+v, want %+v", i, result, first)
		}
	}
	if !bytes.Equal(frame.Pix, pixBefore) {
		t.Error("classifier mutated the input pixel buffer")
	}
}

func TestLocalClassifierBadInput(t *testing.T) {
	tests := []struct {
		name  string
		frame *capture.Frame
	}{
		{"nil frame", nil},
		{"empty frame", &capture.Frame{}},
		{"truncated pixel buffer", &capture.Frame{Width: 640, Height: 360, Pix: make([]byte, 100)}},
		{"narrower than the scan strip", &capture.Frame{Width: 10, Height: 10, Pix: make([]byte, 400)}},
	}

	lc := NewLocalClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := lc.ClassifyFrame(context.Background(), tt.frame)
			if err != nil {
				t.Fatalf("bad input must not produce an error, got %v", err)
			}
			if result.IsGameOver || result.Confidence != 0 || result.Score != nil {
				t.Errorf("bad input must classify as negative, got %+v", result)
			}
		})
	}
}
