package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

// Frame is a downscaled RGBA snapshot of one video frame. Pix holds
// 4 bytes per pixel (R, G, B, A) in row-major order.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// At returns the RGB components of the pixel at (x, y).
func (f *Frame) At(x, y int) (r, g, b uint8) {
	i := (y*f.Width + x) * 4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Valid reports whether the frame carries a complete pixel buffer.
func (f *Frame) Valid() bool {
	return f != nil && f.Width > 0 && f.Height > 0 && len(f.Pix) >= f.Width*f.Height*4
}

func (f *Frame) toImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	copy(img.Pix, f.Pix)
	return img
}

func (f *Frame) EncodePNG() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("cannot encode invalid frame")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, f.toImage()); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *Frame) EncodeJPEG() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("cannot encode invalid frame")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.toImage(), &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
